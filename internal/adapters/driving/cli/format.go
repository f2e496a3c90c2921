package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/locale"
)

var (
	paidStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	unpaidStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	draftStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9CA3AF"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.StatusPaid:
		return paidStyle.Render(status.String())
	case domain.StatusDraft:
		return draftStyle.Render(status.String())
	default:
		return unpaidStyle.Render(status.String())
	}
}

func printInvoiceRow(cmd *cobra.Command, inv *domain.Invoice) {
	totals := inv.Totals()
	cmd.Printf("  %-14s %-10s %-24s %s  %s\n",
		inv.InvoiceNumber,
		inv.Date,
		truncate(inv.Receiver.Name, 24),
		locale.MustFormatCurrency(totals.GrandTotal, inv.Settings.Currency, inv.Settings.Locale),
		statusBadge(inv.Status),
	)
	cmd.Printf("    ID: %s\n", inv.ID)
}

func printInvoiceDetails(cmd *cobra.Command, d *driving.InvoiceDetails) {
	inv := d.Invoice

	cmd.Println(headerStyle.Render("Invoice " + inv.InvoiceNumber))
	cmd.Println(strings.Repeat("=", len("Invoice ")+len(inv.InvoiceNumber)))
	if inv.ID != "" {
		cmd.Printf("ID:       %s\n", inv.ID)
	}
	cmd.Printf("Date:     %s\n", inv.Date)
	cmd.Printf("Due:      %s\n", inv.DueDate)
	cmd.Printf("Status:   %s\n", statusBadge(inv.Status))
	cmd.Println()

	cmd.Println("[From]")
	cmd.Printf("  %s\n", inv.Sender.Name)
	printIfSet(cmd, inv.Sender.Address)
	printIfSet(cmd, inv.Sender.Email)
	printIfSet(cmd, inv.Sender.Phone)
	cmd.Println()

	cmd.Println("[Bill To]")
	cmd.Printf("  %s\n", inv.Receiver.Name)
	printIfSet(cmd, inv.Receiver.Address)
	printIfSet(cmd, inv.Receiver.Email)
	printIfSet(cmd, inv.Receiver.Phone)
	cmd.Println()

	code, tag := inv.Settings.Currency, inv.Settings.Locale
	cmd.Println("[Items]")
	for i := range inv.Items {
		item := inv.Items[i]
		cmd.Printf("  %d. %s\n", i+1, item.Description)
		cmd.Printf("     %s x %s = %s\n",
			item.Quantity.String(),
			locale.MustFormatCurrency(item.UnitPrice, code, tag),
			locale.MustFormatCurrency(item.LineTotal(), code, tag),
		)
		cmd.Printf("     item id: %s\n", item.ID)
	}
	cmd.Println()

	cmd.Printf("Subtotal:     %s\n", d.Subtotal)
	cmd.Printf("Tax (%s%%):  %s\n", d.Totals.TaxRate.String(), d.TaxAmount)
	cmd.Printf("Grand Total:  %s\n", d.GrandTotal)
	if d.AmountInWords != "" {
		cmd.Printf("Terbilang:    %s\n", d.AmountInWords)
	}
	if inv.Notes != "" {
		cmd.Println()
		cmd.Printf("Notes: %s\n", inv.Notes)
	}
}

func printIfSet(cmd *cobra.Command, s string) {
	if s != "" {
		cmd.Printf("  %s\n", s)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
