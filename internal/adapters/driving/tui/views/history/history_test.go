package history

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// MockInvoiceService is a mock implementation of driving.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Profile() domain.UserProfile {
	args := m.Called()
	return args.Get(0).(domain.UserProfile)
}

func (m *MockInvoiceService) New(ctx context.Context) (*domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Details(ctx context.Context, id string) (*driving.InvoiceDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driving.InvoiceDetails), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Search(ctx context.Context, query string) ([]domain.Invoice, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Save(ctx context.Context, inv *domain.Invoice, mode domain.SaveMode) (*domain.Invoice, error) {
	args := m.Called(ctx, inv, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceService) AddItem(ctx context.Context, invoiceID string, item domain.LineItem) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, item)
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateItem(ctx context.Context, invoiceID string, item domain.LineItem) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, item)
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, itemID)
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) SetItems(ctx context.Context, invoiceID string, items []domain.LineItem) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, items)
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Watch(ctx context.Context, fn func([]domain.Invoice)) (func(), error) {
	args := m.Called(ctx, fn)
	return args.Get(0).(func()), args.Error(1)
}

// MockExportService is a mock implementation of driving.ExportService.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportPDF(ctx context.Context, invoiceID, outDir string) (string, error) {
	args := m.Called(ctx, invoiceID, outDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportService) ExportInvoicePDF(ctx context.Context, inv *domain.Invoice, outDir string) (string, error) {
	args := m.Called(ctx, inv, outDir)
	return args.String(0), args.Error(1)
}

func (m *MockExportService) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockExportService) ExportHistoryCSV(ctx context.Context, dir string, now time.Time) (string, error) {
	args := m.Called(ctx, dir, now)
	return args.String(0), args.Error(1)
}

func testInvoices() []domain.Invoice {
	return []domain.Invoice{
		{ID: "inv-2", InvoiceNumber: "INV-2026-002", Date: "2026-03-02", Status: domain.StatusUnpaid,
			Receiver: domain.ClientInfo{Name: "Globex"}, Settings: domain.DefaultInvoiceSettings()},
		{ID: "inv-1", InvoiceNumber: "INV-2026-001", Date: "2026-03-01", Status: domain.StatusPaid,
			Receiver: domain.ClientInfo{Name: "Acme Corp"}, Settings: domain.DefaultInvoiceSettings()},
	}
}

func member() domain.UserProfile {
	return domain.NewUserProfile("user-1", "user@example.com")
}

func newTestView(t *testing.T) (*View, *MockInvoiceService, *MockExportService) {
	t.Helper()
	invoices := new(MockInvoiceService)
	exports := new(MockExportService)
	invoices.On("Profile").Return(member()).Maybe()

	view := NewView(nil, nil, invoices, exports)
	view.SetDimensions(100, 30)
	view.SetInvoices(testInvoices())
	return view, invoices, exports
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	require.NotNil(t, view)
	assert.False(t, view.Ready())
	assert.Empty(t, view.Invoices())
	assert.Equal(t, "Initialising...", view.View())
}

func TestView_HistoryUpdated(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	view, cmd := view.Update(messages.HistoryUpdated{Invoices: testInvoices()})

	assert.Nil(t, cmd)
	assert.Len(t, view.Invoices(), 2)
	assert.Equal(t, 2, view.Status().Count())
}

func TestView_Filter(t *testing.T) {
	view, _, _ := newTestView(t)

	view, cmd := view.Update(key("/"))
	assert.True(t, view.Filtering())
	assert.NotNil(t, cmd)

	for _, r := range "acme" {
		view, _ = view.Update(key(string(r)))
	}

	assert.Equal(t, "acme", view.Filter())
	require.Len(t, view.Invoices(), 1)
	assert.Equal(t, "inv-1", view.Invoices()[0].ID)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, view.Filtering())
	assert.Len(t, view.Invoices(), 1)
}

func TestView_Filter_SurvivesSnapshot(t *testing.T) {
	view, _, _ := newTestView(t)

	view, _ = view.Update(key("/"))
	for _, r := range "INV-2026-002" {
		view, _ = view.Update(key(string(r)))
	}
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	more := append(testInvoices(), domain.Invoice{ID: "inv-3", InvoiceNumber: "INV-2026-003"})
	view, _ = view.Update(messages.HistoryUpdated{Invoices: more})

	require.Len(t, view.Invoices(), 1)
	assert.Equal(t, "inv-2", view.Invoices()[0].ID)
}

func TestView_Escape_ClearsFilterThenLeaves(t *testing.T) {
	view, _, _ := newTestView(t)

	view, _ = view.Update(key("/"))
	view, _ = view.Update(key("g"))
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "g", view.Filter())

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Empty(t, view.Filter())
	assert.Len(t, view.Invoices(), 2)

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Select(t *testing.T) {
	view, _, _ := newTestView(t)

	view, _ = view.Update(key("j"))
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.InvoiceSelected{ID: "inv-1"}, cmd())
}

func TestView_Select_Empty(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_New(t *testing.T) {
	view, _, _ := newTestView(t)

	view, cmd := view.Update(key("n"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.NewInvoiceRequested{}, cmd())
	assert.Equal(t, status.StateWorking, view.Status().State())
}

func TestView_Delete_Confirmed(t *testing.T) {
	view, invoices, _ := newTestView(t)
	invoices.On("Delete", mock.Anything, "inv-2").Return(nil)

	view, cmd := view.Update(key("d"))
	assert.Nil(t, cmd)
	require.NotNil(t, view.PendingDelete())
	assert.Equal(t, status.StatePrompt, view.Status().State())
	assert.Contains(t, view.Status().Message(), "INV-2026-002")

	view, cmd = view.Update(key("y"))
	require.NotNil(t, cmd)
	assert.Nil(t, view.PendingDelete())

	msg := cmd()
	assert.Equal(t, messages.InvoiceDeleted{ID: "inv-2"}, msg)
	invoices.AssertExpectations(t)

	view, _ = view.Update(msg)
	assert.Equal(t, status.StateDone, view.Status().State())
}

func TestView_Delete_Cancelled(t *testing.T) {
	view, invoices, _ := newTestView(t)

	view, _ = view.Update(key("d"))
	view, cmd := view.Update(key("n"))

	assert.Nil(t, cmd)
	assert.Nil(t, view.PendingDelete())
	assert.Equal(t, status.StateReady, view.Status().State())
	invoices.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestView_Delete_Error(t *testing.T) {
	view, _, _ := newTestView(t)

	view, _ = view.Update(messages.InvoiceDeleted{ID: "inv-2", Err: domain.ErrAuthRequired})

	assert.Equal(t, status.StateError, view.Status().State())
}

func TestView_ExportCSV(t *testing.T) {
	view, _, exports := newTestView(t)
	exports.On("ExportHistoryCSV", mock.Anything, "", mock.AnythingOfType("time.Time")).
		Return("invoice_history_2026-03-02.csv", nil)

	view, cmd := view.Update(key("x"))
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateWorking, view.Status().State())

	msg := cmd()
	assert.Equal(t, messages.CSVExported{Path: "invoice_history_2026-03-02.csv"}, msg)

	view, _ = view.Update(msg)
	assert.Equal(t, status.StateDone, view.Status().State())
	assert.Contains(t, view.Status().Message(), "invoice_history_2026-03-02.csv")
	exports.AssertExpectations(t)
}

func TestView_ExportCSV_NoService(t *testing.T) {
	invoices := new(MockInvoiceService)
	view := NewView(nil, nil, invoices, nil)

	_, cmd := view.Update(key("x"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.CSVExported)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoExportService)
}

func TestView_ErrorOccurred(t *testing.T) {
	view, _, _ := newTestView(t)

	view, _ = view.Update(messages.ErrorOccurred{Err: errors.New("store offline")})

	assert.Equal(t, status.StateError, view.Status().State())
	assert.Contains(t, view.View(), "store offline")
}

func TestView_View(t *testing.T) {
	view, _, _ := newTestView(t)

	out := view.View()

	assert.Contains(t, out, "Invoice History")
	assert.Contains(t, out, "INV-2026-001")
	assert.Contains(t, out, "Globex")
	assert.NotContains(t, out, "Guest mode")
}

func TestView_View_Guest(t *testing.T) {
	invoices := new(MockInvoiceService)
	invoices.On("Profile").Return(domain.UserProfile{})
	view := NewView(nil, nil, invoices, nil)
	view.SetDimensions(100, 30)

	assert.Contains(t, view.View(), "Guest mode")
}
