// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/locale"
)

// InvoiceList displays invoices in a navigable list.
type InvoiceList struct {
	invoices []domain.Invoice
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewInvoiceList creates a new invoice list component.
func NewInvoiceList(s *styles.Styles) *InvoiceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &InvoiceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *InvoiceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *InvoiceList) Update(msg tea.Msg) (*InvoiceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *InvoiceList) View() string {
	if len(l.invoices) == 0 {
		return l.styles.Muted.Render("No invoices")
	}

	lines := make([]string, 0, len(l.invoices)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Invoices (%d)", len(l.invoices))), "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.invoices) {
		end = len(l.invoices)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderRow(i, &l.invoices[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *InvoiceList) renderRow(index int, inv *domain.Invoice) string {
	nameWidth := l.width - 60
	if nameWidth < 12 {
		nameWidth = 12
	}
	client := inv.Receiver.Name
	if r := []rune(client); len(r) > nameWidth {
		client = string(r[:nameWidth-3]) + "..."
	}

	total := locale.MustFormatCurrency(inv.Totals().GrandTotal, inv.Settings.Currency, inv.Settings.Locale)
	row := fmt.Sprintf("%-14s %-10s %-*s %18s", inv.InvoiceNumber, inv.Date, nameWidth, client, total)

	if index == l.selected {
		return l.styles.Selected.Render("> "+row) + " " + l.styles.StatusBadge(inv.Status)
	}
	return l.styles.Normal.Render("  "+row) + " " + l.styles.StatusBadge(inv.Status)
}

// SetInvoices replaces the listed invoices, keeping the selection on the
// same invoice when it is still present.
func (l *InvoiceList) SetInvoices(invoices []domain.Invoice) {
	var selectedID string
	if inv := l.SelectedInvoice(); inv != nil {
		selectedID = inv.ID
	}

	l.invoices = invoices
	l.selected = 0
	for i := range invoices {
		if invoices[i].ID == selectedID {
			l.selected = i
			break
		}
	}
}

// Invoices returns the listed invoices.
func (l *InvoiceList) Invoices() []domain.Invoice {
	return l.invoices
}

// Selected returns the index of the selected invoice.
func (l *InvoiceList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *InvoiceList) SetSelected(index int) {
	if index >= 0 && index < len(l.invoices) {
		l.selected = index
	}
}

// SelectedInvoice returns the currently selected invoice, or nil if none.
func (l *InvoiceList) SelectedInvoice() *domain.Invoice {
	if len(l.invoices) == 0 || l.selected < 0 || l.selected >= len(l.invoices) {
		return nil
	}
	return &l.invoices[l.selected]
}

// MoveUp moves selection up.
func (l *InvoiceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *InvoiceList) MoveDown() {
	if l.selected < len(l.invoices)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *InvoiceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of invoices.
func (l *InvoiceList) Count() int {
	return len(l.invoices)
}

// IsEmpty returns whether the list is empty.
func (l *InvoiceList) IsEmpty() bool {
	return len(l.invoices) == 0
}
