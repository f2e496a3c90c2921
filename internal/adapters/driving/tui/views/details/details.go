// Package details provides the invoice details view for the TUI.
package details

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/locale"
)

// ErrNoExportService indicates that no export service was provided.
var ErrNoExportService = errors.New("export service is required")

// View shows one invoice with its totals and offers export and edit actions.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	viewport  viewport.Model
	statusbar *status.Bar

	invoiceService driving.InvoiceService
	exportService  driving.ExportService
	ctx            context.Context

	id             string
	details        *driving.InvoiceDetails
	confirmDelete  bool
	err            error
	width          int
	height         int
	ready          bool
	viewportHeight int
}

// NewView creates a new details view.
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
	bar.SetHints(km.DetailsHelp())

	return &View{
		styles:         s,
		keymap:         km,
		viewport:       viewport.New(80, 18),
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

// Load shows the invoice with the given ID.
func (v *View) Load(id string) tea.Cmd {
	v.id = id
	v.details = nil
	v.err = nil
	v.confirmDelete = false
	v.statusbar.Working("Loading")
	return v.loadDetails(id)
}

func (v *View) loadDetails(id string) tea.Cmd {
	return func() tea.Msg {
		d, err := v.invoiceService.Details(v.ctx, id)
		return messages.DetailsLoaded{Details: d, Err: err}
	}
}

// Update handles messages for the details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DetailsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.Fail(msg.Err)
			return v, nil
		}
		if msg.Details == nil || msg.Details.Invoice == nil || msg.Details.Invoice.ID != v.id {
			return v, nil
		}
		v.err = nil
		v.details = msg.Details
		if v.statusbar.State() == status.StateWorking {
			v.statusbar.Clear()
		}
		v.viewport.SetContent(v.renderInvoice())
		return v, nil

	case messages.HistoryUpdated:
		if v.id == "" {
			return v, nil
		}
		for i := range msg.Invoices {
			if msg.Invoices[i].ID == v.id {
				return v, v.loadDetails(v.id)
			}
		}
		v.statusbar.Prompt("This invoice was deleted")
		return v, nil

	case messages.PDFExported:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
		} else {
			v.statusbar.Done("Saved " + msg.Path)
		}
		return v, nil

	case messages.InvoiceSaved:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
			return v, nil
		}
		switch msg.Mode {
		case domain.SaveModeUpdate:
			v.statusbar.Done(fmt.Sprintf("%s is now %s", msg.Invoice.InvoiceNumber, msg.Invoice.Status))
			return v, v.loadDetails(v.id)
		case domain.SaveModeCopy:
			v.statusbar.Done("Copied to " + msg.Invoice.InvoiceNumber)
		case domain.SaveModeCreate:
			v.statusbar.Done("Created " + msg.Invoice.InvoiceNumber)
		}
		return v, nil

	case messages.InvoiceDeleted:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.confirmDelete {
		v.confirmDelete = false
		if keymap.Matches(key, v.keymap.Confirm) && v.details != nil {
			v.statusbar.Working("Deleting")
			return v, v.deleteInvoice(v.details.Invoice.ID)
		}
		v.statusbar.Clear()
		return v, nil
	}

	if keymap.Matches(key, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHistory}
		}
	}

	if v.details == nil {
		return v, nil
	}
	inv := v.details.Invoice

	switch {
	case keymap.Matches(key, v.keymap.ExportPDF):
		v.statusbar.Working("Exporting PDF")
		return v, v.exportPDF(inv.ID)

	case keymap.Matches(key, v.keymap.TogglePaid):
		updated := inv.Clone()
		if updated.Status == domain.StatusPaid {
			updated.Status = domain.StatusUnpaid
		} else {
			updated.Status = domain.StatusPaid
		}
		v.statusbar.Working("Saving")
		return v, v.save(updated, domain.SaveModeUpdate)

	case keymap.Matches(key, v.keymap.Copy):
		v.statusbar.Working("Copying")
		return v, v.save(inv.Clone(), domain.SaveModeCopy)

	case keymap.Matches(key, v.keymap.Delete):
		v.confirmDelete = true
		v.statusbar.Prompt(fmt.Sprintf("Delete %s? [y/N]", inv.InvoiceNumber))
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *View) exportPDF(id string) tea.Cmd {
	return func() tea.Msg {
		if v.exportService == nil {
			return messages.PDFExported{Err: ErrNoExportService}
		}
		path, err := v.exportService.ExportPDF(v.ctx, id, "")
		return messages.PDFExported{Path: path, Err: err}
	}
}

func (v *View) save(inv *domain.Invoice, mode domain.SaveMode) tea.Cmd {
	return func() tea.Msg {
		saved, err := v.invoiceService.Save(v.ctx, inv, mode)
		return messages.InvoiceSaved{Invoice: saved, Mode: mode, Err: err}
	}
}

func (v *View) deleteInvoice(id string) tea.Cmd {
	return func() tea.Msg {
		return messages.InvoiceDeleted{ID: id, Err: v.invoiceService.Delete(v.ctx, id)}
	}
}

// renderInvoice formats the loaded invoice for the viewport.
func (v *View) renderInvoice() string {
	d := v.details
	inv := d.Invoice
	code, tag := inv.Settings.Currency, inv.Settings.Locale

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", v.styles.Subtitle.Render(inv.InvoiceNumber), v.styles.StatusBadge(inv.Status))
	fmt.Fprintf(&b, "%s\n\n", v.styles.Muted.Render(fmt.Sprintf("Date %s  Due %s", inv.Date, inv.DueDate)))

	from := []string{v.styles.Muted.Render("From"), inv.Sender.Name, inv.Sender.Address, inv.Sender.Email}
	to := []string{v.styles.Muted.Render("Bill To"), inv.Receiver.Name, inv.Receiver.Address, inv.Receiver.Email}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(v.width/2).Render(strings.Join(from, "\n")),
		strings.Join(to, "\n"),
	))
	b.WriteString("\n\n")

	for i := range inv.Items {
		item := inv.Items[i]
		fmt.Fprintf(&b, "%2d. %-32s %8s x %14s = %s\n",
			i+1,
			item.Description,
			item.Quantity.String(),
			locale.MustFormatCurrency(item.UnitPrice, code, tag),
			locale.MustFormatCurrency(item.LineTotal(), code, tag),
		)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-20s %s\n", "Subtotal", d.Subtotal)
	fmt.Fprintf(&b, "%-20s %s\n", fmt.Sprintf("Tax (%s%%)", d.Totals.TaxRate.String()), d.TaxAmount)
	fmt.Fprintf(&b, "%-20s %s\n", v.styles.Title.Render("Grand Total"), v.styles.Title.Render(d.GrandTotal))
	if d.AmountInWords != "" {
		fmt.Fprintf(&b, "\n%s\n", v.styles.Muted.Render("Terbilang: "+d.AmountInWords))
	}
	if inv.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", inv.Notes)
	}
	return b.String()
}

// View renders the details view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 6)
	sections = append(sections, v.styles.Title.Render("Invoice"), "")

	switch {
	case v.details != nil:
		sections = append(sections, v.viewport.View())
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewportHeight = height - 5
	if v.viewportHeight < 3 {
		v.viewportHeight = 3
	}
	v.viewport.Width = width
	v.viewport.Height = v.viewportHeight
	v.statusbar.SetWidth(width)
	if v.details != nil {
		v.viewport.SetContent(v.renderInvoice())
	}
}

// Details returns the loaded invoice details.
func (v *View) Details() *driving.InvoiceDetails {
	return v.details
}

// InvoiceID returns the ID of the shown invoice.
func (v *View) InvoiceID() string {
	return v.id
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// ConfirmingDelete returns whether a delete confirmation is pending.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
