package driving

import (
	"context"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// InvoiceService creates, edits and stores invoices for the current user.
type InvoiceService interface {
	// Profile returns the user the service acts for.
	Profile() domain.UserProfile

	// New returns an unsaved draft seeded from the configured defaults
	// and numbered after the user's existing invoices.
	New(ctx context.Context) (*domain.Invoice, error)

	// Get retrieves a saved invoice by ID.
	Get(ctx context.Context, id string) (*domain.Invoice, error)

	// Details returns an invoice together with its computed, formatted totals.
	Details(ctx context.Context, id string) (*InvoiceDetails, error)

	// List returns the visible history, newest first. Admins see every user's invoices.
	List(ctx context.Context) ([]domain.Invoice, error)

	// Search filters the history by invoice number or client name, case-insensitively.
	Search(ctx context.Context, query string) ([]domain.Invoice, error)

	// Save stores inv according to mode and returns the stored record.
	// Returns domain.ErrAuthRequired when no user is configured.
	Save(ctx context.Context, inv *domain.Invoice, mode domain.SaveMode) (*domain.Invoice, error)

	// Delete removes a saved invoice.
	// Returns domain.ErrAuthRequired when no user is configured.
	Delete(ctx context.Context, id string) error

	// AddItem appends item to a saved invoice, assigning it a fresh ID.
	AddItem(ctx context.Context, invoiceID string, item domain.LineItem) (*domain.Invoice, error)

	// UpdateItem replaces the item with the same ID.
	UpdateItem(ctx context.Context, invoiceID string, item domain.LineItem) (*domain.Invoice, error)

	// RemoveItem deletes an item by ID.
	RemoveItem(ctx context.Context, invoiceID, itemID string) (*domain.Invoice, error)

	// SetItems replaces all items, keeping their order.
	SetItems(ctx context.Context, invoiceID string, items []domain.LineItem) (*domain.Invoice, error)

	// Watch calls fn with the visible history now and after every change
	// until ctx is done or cancel is called.
	Watch(ctx context.Context, fn func([]domain.Invoice)) (cancel func(), err error)
}

// InvoiceDetails is an invoice with its derived values ready for display.
type InvoiceDetails struct {
	Invoice *domain.Invoice
	Totals  domain.InvoiceTotals

	// Subtotal, TaxAmount and GrandTotal are formatted in the invoice
	// currency and locale.
	Subtotal   string
	TaxAmount  string
	GrandTotal string

	// AmountInWords spells the grand total in Indonesian for IDR invoices
	// ("… Rupiah"). Empty for other currencies.
	AmountInWords string
}
