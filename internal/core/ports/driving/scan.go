package driving

import (
	"context"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// ScanService imports line items from photos.
type ScanService interface {
	// Available reports whether a scanner is configured.
	Available() bool

	// ScanFile extracts line items from an image file without saving them.
	ScanFile(ctx context.Context, imagePath string) ([]domain.LineItem, error)

	// ImportItems appends the items found in an image to a saved invoice.
	ImportItems(ctx context.Context, invoiceID, imagePath string) (*domain.Invoice, error)
}
