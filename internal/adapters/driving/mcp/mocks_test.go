package mcp

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/core/services"
)

// mockInvoiceService is a mock implementation of driving.InvoiceService.
type mockInvoiceService struct {
	invoices []domain.Invoice
	err      error
}

func (m *mockInvoiceService) Profile() domain.UserProfile {
	return domain.NewUserProfile("user-1", "ana@example.com")
}

func (m *mockInvoiceService) New(_ context.Context) (*domain.Invoice, error) {
	return domain.NewDraftInvoice(time.Now(), domain.DefaultInvoiceSettings()), m.err
}

func (m *mockInvoiceService) Get(_ context.Context, id string) (*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.invoices {
		if m.invoices[i].ID == id {
			return m.invoices[i].Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceService) Details(ctx context.Context, id string) (*driving.InvoiceDetails, error) {
	inv, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return services.Describe(inv), nil
}

func (m *mockInvoiceService) List(_ context.Context) ([]domain.Invoice, error) {
	return m.invoices, m.err
}

func (m *mockInvoiceService) Search(_ context.Context, query string) ([]domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	var results []domain.Invoice
	for i := range m.invoices {
		if m.invoices[i].Matches(query) {
			results = append(results, m.invoices[i])
		}
	}
	return results, nil
}

func (m *mockInvoiceService) Save(_ context.Context, inv *domain.Invoice, _ domain.SaveMode) (*domain.Invoice, error) {
	return inv, m.err
}

func (m *mockInvoiceService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockInvoiceService) AddItem(ctx context.Context, invoiceID string, _ domain.LineItem) (*domain.Invoice, error) {
	return m.Get(ctx, invoiceID)
}

func (m *mockInvoiceService) UpdateItem(ctx context.Context, invoiceID string, _ domain.LineItem) (*domain.Invoice, error) {
	return m.Get(ctx, invoiceID)
}

func (m *mockInvoiceService) RemoveItem(ctx context.Context, invoiceID, _ string) (*domain.Invoice, error) {
	return m.Get(ctx, invoiceID)
}

func (m *mockInvoiceService) SetItems(ctx context.Context, invoiceID string, _ []domain.LineItem) (*domain.Invoice, error) {
	return m.Get(ctx, invoiceID)
}

func (m *mockInvoiceService) Watch(_ context.Context, fn func([]domain.Invoice)) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	fn(m.invoices)
	return func() {}, nil
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	path string
	err  error
}

func (m *mockExportService) ExportPDF(_ context.Context, _, outDir string) (string, error) {
	return filepath.Join(outDir, m.path), m.err
}

func (m *mockExportService) ExportInvoicePDF(_ context.Context, _ *domain.Invoice, outDir string) (string, error) {
	return filepath.Join(outDir, m.path), m.err
}

func (m *mockExportService) ExportCSV(_ context.Context, _ io.Writer) error {
	return m.err
}

func (m *mockExportService) ExportHistoryCSV(_ context.Context, dir string, _ time.Time) (string, error) {
	return filepath.Join(dir, "invoice_history.csv"), m.err
}

// testInvoices returns a paid invoice for Globex and an unpaid one for Acme.
func testInvoices() []domain.Invoice {
	settings := domain.DefaultInvoiceSettings()
	return []domain.Invoice{
		{
			ID:            "inv-2",
			UserID:        "user-1",
			InvoiceNumber: "INV-2026-002",
			Date:          "2026-10-12",
			DueDate:       "2026-10-19",
			Status:        domain.StatusPaid,
			Sender:        domain.CompanyInfo{Name: "Studio Ana"},
			Receiver:      domain.ClientInfo{Name: "Globex", Email: "ap@globex.example"},
			Items: []domain.LineItem{
				{ID: "a", Description: "Audit", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2_000_000)},
			},
			Settings: settings,
		},
		{
			ID:            "inv-1",
			UserID:        "user-1",
			InvoiceNumber: "INV-2026-001",
			Date:          "2026-10-01",
			DueDate:       "2026-10-08",
			Status:        domain.StatusUnpaid,
			Sender:        domain.CompanyInfo{Name: "Studio Ana"},
			Receiver:      domain.ClientInfo{Name: "Acme Corp"},
			Items: []domain.LineItem{
				{ID: "b", Description: "Website design", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5_000_000)},
			},
			Notes:    "Thank you",
			Settings: settings,
		},
	}
}
