package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/views/details"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView     *menu.View
	historyView  *history.View
	detailsView  *details.View
	settingsView *settings.View

	// updates carries history snapshots from the store watcher to the
	// program loop. Only the latest snapshot is kept.
	updates   chan []domain.Invoice
	stopWatch func()

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.BrandStyles(brandColor(ports))
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s)
	menuView.SetProfile(ports.Invoice.Profile())

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menuView,
		historyView:  history.NewView(s, km, ports.Invoice, ports.Export),
		detailsView:  details.NewView(s, km, ports.Invoice, ports.Export),
		settingsView: settings.NewView(s, km, ports.Settings),
		updates:      make(chan []domain.Invoice, 1),
		currentView:  messages.ViewMenu,
	}, nil
}

// brandColor returns the configured invoice accent, or "" when settings
// are unavailable.
func brandColor(ports *Ports) string {
	if ports.Settings == nil {
		return ""
	}
	settings, err := ports.Settings.Get()
	if err != nil {
		return ""
	}
	return settings.Invoice.BrandColor
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.historyView.WithContext(ctx)
	a.detailsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("finvoice"),
		a.startWatch(),
	)
}

// startWatch subscribes to the invoice history.
func (a *App) startWatch() tea.Cmd {
	return func() tea.Msg {
		stop, err := a.ports.Invoice.Watch(a.ctx, a.publish)
		return messages.WatchStarted{Stop: stop, Err: err}
	}
}

// publish hands a snapshot to the program loop, replacing any snapshot
// not yet consumed.
func (a *App) publish(invoices []domain.Invoice) {
	for {
		select {
		case a.updates <- invoices:
			return
		default:
		}
		select {
		case <-a.updates:
		default:
		}
	}
}

// waitForHistory blocks until the next snapshot arrives.
func (a *App) waitForHistory() tea.Cmd {
	ctx, ch := a.ctx, a.updates
	return func() tea.Msg {
		select {
		case invoices := <-ch:
			return messages.HistoryUpdated{Invoices: invoices}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.WatchStarted:
		if msg.Err != nil {
			a.err = msg.Err
			a.historyView, _ = a.historyView.Update(messages.ErrorOccurred{Err: msg.Err})
			return a, nil
		}
		a.stopWatch = msg.Stop
		return a, a.waitForHistory()

	case messages.HistoryUpdated:
		a.menuView, _ = a.menuView.Update(msg)
		a.historyView, _ = a.historyView.Update(msg)
		var reload tea.Cmd
		if a.currentView == messages.ViewDetails {
			a.detailsView, reload = a.detailsView.Update(msg)
		}
		return a, tea.Batch(reload, a.waitForHistory())

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewSettings {
			return a, a.settingsView.Init()
		}
		return a, nil

	case messages.InvoiceSelected:
		a.currentView = messages.ViewDetails
		return a, a.detailsView.Load(msg.ID)

	case messages.NewInvoiceRequested:
		return a, a.createInvoice()

	case messages.InvoiceSaved:
		if msg.Err != nil {
			a.err = msg.Err
			return a, a.updateCurrent(msg)
		}
		if msg.Mode == domain.SaveModeCreate || msg.Mode == domain.SaveModeCopy {
			a.currentView = messages.ViewDetails
			load := a.detailsView.Load(msg.Invoice.ID)
			a.detailsView, _ = a.detailsView.Update(msg)
			return a, load
		}
		a.detailsView, cmd = a.detailsView.Update(msg)
		return a, cmd

	case messages.InvoiceDeleted:
		if msg.Err != nil {
			a.err = msg.Err
			return a, a.updateCurrent(msg)
		}
		a.currentView = messages.ViewHistory
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.DetailsLoaded, messages.PDFExported:
		a.detailsView, cmd = a.detailsView.Update(msg)
		return a, cmd

	case messages.CSVExported:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewDetails:
		a.detailsView, cmd = a.detailsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// createInvoice saves a fresh draft and reports it as created.
func (a *App) createInvoice() tea.Cmd {
	ctx, invoices := a.ctx, a.ports.Invoice
	return func() tea.Msg {
		inv, err := invoices.New(ctx)
		if err != nil {
			return messages.InvoiceSaved{Mode: domain.SaveModeCreate, Err: err}
		}
		saved, err := invoices.Save(ctx, inv, domain.SaveModeCreate)
		return messages.InvoiceSaved{Invoice: saved, Mode: domain.SaveModeCreate, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewDetails:
		return a.detailsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

History:
  /           Filter by number or client
  enter       Open invoice
  n           New invoice
  x           Export history to CSV
  d           Delete invoice

Invoice:
  e           Export PDF
  p           Toggle paid
  c           Copy to a new invoice
  d           Delete invoice

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Close stops the history subscription.
func (a *App) Close() {
	if a.stopWatch != nil {
		a.stopWatch()
		a.stopWatch = nil
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.detailsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
