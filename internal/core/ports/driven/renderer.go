package driven

import "github.com/custodia-labs/finvoice/internal/core/domain"

// DocumentRenderer produces the printable visual description of an invoice.
type DocumentRenderer interface {
	// Render returns the complete document for inv.
	Render(inv *domain.Invoice) (*domain.RenderDocument, error)
}
