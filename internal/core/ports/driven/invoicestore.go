package driven

import (
	"context"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// SnapshotFunc receives the full, newest-first list of invoices in a
// subscription scope each time it changes.
type SnapshotFunc func(invoices []domain.Invoice)

// InvoiceStore persists invoices keyed by owning user.
// Implementations must be safe for concurrent use.
type InvoiceStore interface {
	// Save stores or replaces an invoice under inv.UserID.
	Save(ctx context.Context, inv *domain.Invoice) error

	// Get retrieves one invoice of a user.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, userID, id string) (*domain.Invoice, error)

	// Delete removes one invoice of a user.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, userID, id string) error

	// List returns a user's invoices, newest first.
	List(ctx context.Context, userID string) ([]domain.Invoice, error)

	// ListAll returns every user's invoices, newest first.
	ListAll(ctx context.Context) ([]domain.Invoice, error)

	// Subscribe delivers the current snapshot of scope to fn, then a new
	// snapshot after every change. Delivery stops when ctx is done or the
	// returned cancel function is called; cancel is safe to call twice.
	Subscribe(ctx context.Context, scope domain.StoreScope, fn SnapshotFunc) (cancel func(), err error)
}
