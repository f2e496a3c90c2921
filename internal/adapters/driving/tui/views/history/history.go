// Package history provides the live invoice history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// ErrNoExportService indicates that no export service was provided.
var ErrNoExportService = errors.New("export service is required")

// View lists the invoice history and keeps it current as snapshots arrive.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	filter    *input.Field
	list      *list.InvoiceList
	statusbar *status.Bar

	invoiceService driving.InvoiceService
	exportService  driving.ExportService
	ctx            context.Context

	// all is the latest unfiltered snapshot.
	all []domain.Invoice

	// pendingDelete is the invoice awaiting confirmation.
	pendingDelete *domain.Invoice

	filtering bool
	width     int
	height    int
	ready     bool
}

// NewView creates a new history view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	invoiceService driving.InvoiceService,
	exportService driving.ExportService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.HistoryHelp())

	return &View{
		styles:         s,
		keymap:         km,
		filter:         input.NewFilterInput(s),
		list:           list.NewInvoiceList(s),
		statusbar:      bar,
		invoiceService: invoiceService,
		exportService:  exportService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.HistoryUpdated:
		v.SetInvoices(msg.Invoices)
		return v, nil

	case messages.InvoiceDeleted:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
		} else {
			v.statusbar.Done("Invoice deleted")
		}
		return v, nil

	case messages.InvoiceSaved:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
		}
		return v, nil

	case messages.CSVExported:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
		} else {
			v.statusbar.Done("Saved " + msg.Path)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.pendingDelete != nil {
		inv := v.pendingDelete
		v.pendingDelete = nil
		if keymap.Matches(msg.String(), v.keymap.Confirm) {
			v.statusbar.Working("Deleting " + inv.InvoiceNumber)
			return v, v.deleteInvoice(inv.ID)
		}
		v.statusbar.Clear()
		return v, nil
	}

	if v.filtering {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			v.filtering = false
			v.filter.Blur()
			return v, nil
		}
		var cmd tea.Cmd
		v.filter, cmd = v.filter.Update(msg)
		v.applyFilter()
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		if v.filter.Value() != "" {
			v.filter.Reset()
			v.applyFilter()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Filter):
		v.filtering = true
		return v, v.filter.Focus()

	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down):
		v.list, _ = v.list.Update(msg)
		return v, nil

	case keymap.Matches(key, v.keymap.Select):
		inv := v.list.SelectedInvoice()
		if inv == nil {
			return v, nil
		}
		id := inv.ID
		return v, func() tea.Msg {
			return messages.InvoiceSelected{ID: id}
		}

	case keymap.Matches(key, v.keymap.New):
		v.statusbar.Working("Creating invoice")
		return v, func() tea.Msg {
			return messages.NewInvoiceRequested{}
		}

	case keymap.Matches(key, v.keymap.ExportCSV):
		v.statusbar.Working("Exporting CSV")
		return v, v.exportCSV()

	case keymap.Matches(key, v.keymap.Delete):
		if inv := v.list.SelectedInvoice(); inv != nil {
			c := *inv
			v.pendingDelete = &c
			v.statusbar.Prompt(fmt.Sprintf("Delete %s? [y/N]", inv.InvoiceNumber))
		}
		return v, nil
	}

	return v, nil
}

func (v *View) deleteInvoice(id string) tea.Cmd {
	return func() tea.Msg {
		return messages.InvoiceDeleted{ID: id, Err: v.invoiceService.Delete(v.ctx, id)}
	}
}

func (v *View) exportCSV() tea.Cmd {
	return func() tea.Msg {
		if v.exportService == nil {
			return messages.CSVExported{Err: ErrNoExportService}
		}
		path, err := v.exportService.ExportHistoryCSV(v.ctx, "", time.Now())
		return messages.CSVExported{Path: path, Err: err}
	}
}

// applyFilter narrows the latest snapshot to invoices matching the filter.
func (v *View) applyFilter() {
	query := v.filter.Value()
	filtered := make([]domain.Invoice, 0, len(v.all))
	for i := range v.all {
		if v.all[i].Matches(query) {
			filtered = append(filtered, v.all[i])
		}
	}
	v.list.SetInvoices(filtered)
	v.statusbar.SetCount(len(filtered))
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Invoice History"), "")

	if v.filtering || v.filter.Value() != "" {
		sections = append(sections, v.filter.View(), "")
	}

	if v.invoiceService != nil && v.invoiceService.Profile().IsGuest() {
		sections = append(sections,
			v.styles.Warning.Render("Guest mode: set user.uid in Settings to save invoices."), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetInvoices replaces the snapshot and reapplies the filter.
func (v *View) SetInvoices(invoices []domain.Invoice) {
	v.all = invoices
	v.applyFilter()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.filter.SetWidth(width)
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Invoices returns the invoices currently listed.
func (v *View) Invoices() []domain.Invoice {
	return v.list.Invoices()
}

// SelectedInvoice returns the highlighted invoice.
func (v *View) SelectedInvoice() *domain.Invoice {
	return v.list.SelectedInvoice()
}

// Filter returns the current filter text.
func (v *View) Filter() string {
	return v.filter.Value()
}

// Filtering returns whether the filter input has focus.
func (v *View) Filtering() bool {
	return v.filtering
}

// PendingDelete returns the invoice awaiting delete confirmation.
func (v *View) PendingDelete() *domain.Invoice {
	return v.pendingDelete
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
