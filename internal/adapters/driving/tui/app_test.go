package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

func newTestPorts() *Ports {
	return NewPorts(&MockInvoiceService{}, &MockExportService{})
}

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

func sampleInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-2026-001",
		Date:          "2026-03-01",
		Status:        domain.StatusUnpaid,
		Receiver:      domain.ClientInfo{Name: "Acme Corp"},
		Items: []domain.LineItem{
			{ID: "a", Description: "Design", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
		Settings: domain.DefaultInvoiceSettings(),
	}
}

func sampleDetails(inv *domain.Invoice) *driving.InvoiceDetails {
	return &driving.InvoiceDetails{
		Invoice:    inv,
		Totals:     inv.Totals(),
		Subtotal:   "Rp 1.000",
		TaxAmount:  "Rp 110",
		GrandTotal: "Rp 1.110",
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

// brandSettings is a driving.SettingsService that only answers Get.
type brandSettings struct {
	color string
	err   error
}

func (b *brandSettings) Get() (*domain.AppSettings, error) {
	if b.err != nil {
		return nil, b.err
	}
	settings := domain.DefaultAppSettings()
	settings.Invoice.BrandColor = b.color
	return &settings, nil
}

func (b *brandSettings) Save(*domain.AppSettings) error { return nil }
func (b *brandSettings) Set(string, string) error { return nil }
func (b *brandSettings) Keys() []string { return nil }
func (b *brandSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func TestNewApp_UsesBrandColour(t *testing.T) {
	ports := newTestPorts()
	ports.Settings = &brandSettings{color: "#7C3AED"}

	app, err := NewApp(ports)

	require.NoError(t, err)
	assert.Equal(t, lipgloss.Color("#7C3AED"), app.styles.Palette().Accent)
}

func TestNewApp_SettingsErrorKeepsDefaultAccent(t *testing.T) {
	ports := newTestPorts()
	ports.Settings = &brandSettings{err: errors.New("config unreadable")}

	app, err := NewApp(ports)

	require.NoError(t, err)
	assert.Equal(t, lipgloss.Color(domain.DefaultBrandColor), app.styles.Palette().Accent)
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Export: &MockExportService{}})

	assert.ErrorIs(t, err, ErrMissingInvoiceService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Watch_DeliversSnapshots(t *testing.T) {
	var (
		mu      sync.Mutex
		publish func([]domain.Invoice)
		stopped bool
	)
	invoices := &MockInvoiceService{
		WatchFunc: func(_ context.Context, fn func([]domain.Invoice)) (func(), error) {
			mu.Lock()
			publish = fn
			mu.Unlock()
			fn([]domain.Invoice{*sampleInvoice()})
			return func() { stopped = true }, nil
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))

	started, ok := app.startWatch()().(messages.WatchStarted)
	require.True(t, ok)
	require.NoError(t, started.Err)

	_, wait := app.Update(started)
	require.NotNil(t, wait)

	updated, ok := wait().(messages.HistoryUpdated)
	require.True(t, ok)
	require.Len(t, updated.Invoices, 1)

	_, next := app.Update(updated)
	require.NotNil(t, next)
	assert.Len(t, app.historyView.Invoices(), 1)

	// Snapshots published faster than they are consumed collapse to the latest.
	mu.Lock()
	publish(nil)
	publish([]domain.Invoice{*sampleInvoice(), *sampleInvoice()})
	mu.Unlock()

	latest, ok := app.waitForHistory()().(messages.HistoryUpdated)
	require.True(t, ok)
	assert.Len(t, latest.Invoices, 2)

	app.Close()
	assert.True(t, stopped)
}

func TestApp_Watch_Error(t *testing.T) {
	invoices := &MockInvoiceService{
		WatchFunc: func(context.Context, func([]domain.Invoice)) (func(), error) {
			return nil, errors.New("store offline")
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))

	_, cmd := app.Update(app.startWatch()())

	assert.Nil(t, cmd)
	assert.EqualError(t, app.Err(), "store offline")
	app.Close()
}

func TestApp_WaitForHistory_ContextDone(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	ctx, cancel := context.WithCancel(context.Background())
	app.WithContext(ctx)
	cancel()

	assert.Nil(t, app.waitForHistory()())
}

func TestApp_Update_ViewChanged(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewHistory})

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.Contains(t, app.View(), "Invoice History")
}

func TestApp_Update_ViewChanged_ToSettings(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSettings})

	assert.NotNil(t, cmd)
	assert.Equal(t, messages.ViewSettings, app.CurrentView())
}

func TestApp_Update_InvoiceSelected(t *testing.T) {
	inv := sampleInvoice()
	invoices := &MockInvoiceService{
		DetailsFunc: func(_ context.Context, id string) (*driving.InvoiceDetails, error) {
			assert.Equal(t, "inv-1", id)
			return sampleDetails(inv), nil
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))

	_, cmd := app.Update(messages.InvoiceSelected{ID: "inv-1"})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewDetails, app.CurrentView())

	app.Update(cmd())

	assert.Contains(t, app.View(), "INV-2026-001")
	assert.Contains(t, app.View(), "Rp 1.110")
}

func TestApp_Update_NewInvoiceRequested(t *testing.T) {
	var savedMode domain.SaveMode
	invoices := &MockInvoiceService{
		ProfileValue: domain.NewUserProfile("user-1", ""),
		SaveFunc: func(_ context.Context, inv *domain.Invoice, mode domain.SaveMode) (*domain.Invoice, error) {
			savedMode = mode
			saved := inv.Clone()
			saved.ID = "new-id"
			return saved, nil
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))

	_, cmd := app.Update(messages.NewInvoiceRequested{})
	require.NotNil(t, cmd)

	saved, ok := cmd().(messages.InvoiceSaved)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, domain.SaveModeCreate, savedMode)

	_, cmd = app.Update(saved)
	assert.NotNil(t, cmd, "details load for the new invoice")
	assert.Equal(t, messages.ViewDetails, app.CurrentView())
	assert.Equal(t, "new-id", app.detailsView.InvoiceID())
}

func TestApp_Update_NewInvoiceRequested_Guest(t *testing.T) {
	invoices := &MockInvoiceService{
		SaveFunc: func(context.Context, *domain.Invoice, domain.SaveMode) (*domain.Invoice, error) {
			return nil, domain.ErrAuthRequired
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))
	app.Update(messages.ViewChanged{View: messages.ViewHistory})

	_, cmd := app.Update(messages.NewInvoiceRequested{})
	app.Update(cmd())

	assert.ErrorIs(t, app.Err(), domain.ErrAuthRequired)
	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.Equal(t, status.StateError, app.historyView.Status().State())
}

func TestApp_Update_InvoiceDeleted(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewDetails})

	app.Update(messages.InvoiceDeleted{ID: "inv-1"})

	assert.Equal(t, messages.ViewHistory, app.CurrentView())
}

func TestApp_Update_InvoiceDeleted_Error(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewDetails})

	app.Update(messages.InvoiceDeleted{ID: "inv-1", Err: domain.ErrAuthRequired})

	assert.Equal(t, messages.ViewDetails, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrAuthRequired)
}

func TestApp_Update_HistoryUpdated_ReloadsDetails(t *testing.T) {
	inv := sampleInvoice()
	calls := 0
	invoices := &MockInvoiceService{
		DetailsFunc: func(context.Context, string) (*driving.InvoiceDetails, error) {
			calls++
			return sampleDetails(inv), nil
		},
	}
	app := newTestApp(t, NewPorts(invoices, &MockExportService{}))
	_, cmd := app.Update(messages.InvoiceSelected{ID: "inv-1"})
	app.Update(cmd())

	_, cmd = app.Update(messages.HistoryUpdated{Invoices: []domain.Invoice{*inv}})
	require.NotNil(t, cmd)

	assert.Equal(t, 1, calls)
	assert.Len(t, app.historyView.Invoices(), 1)
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	assert.Contains(t, app.View(), "Export PDF")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_MenuView(t *testing.T) {
	app := newTestApp(t, newTestPorts())

	out := app.View()

	assert.Contains(t, out, "finvoice")
	assert.Contains(t, out, "Guest")
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewHistory})

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_Close_Idempotent(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.Close()
	app.Close()
}

func TestApp_PublishNeverBlocks(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	done := make(chan struct{})
	go func() {
		for range 10 {
			app.publish(nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
}
