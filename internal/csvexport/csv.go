package csvexport

import (
	"io"
	"strings"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// Header lists the column names in output order.
var Header = []string{
	"Invoice Number",
	"Date",
	"Due Date",
	"Sender Name",
	"Client Name",
	"Client Email",
	"Currency",
	"Subtotal",
	"Tax Rate (%)",
	"Tax Amount",
	"Grand Total",
	"Status",
	"Notes",
}

// MoneyDecimals is the fixed scale of the money columns.
const MoneyDecimals = 2

// EscapeField quotes a text field, doubling any embedded quotes.
func EscapeField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Row returns the CSV line for one invoice, without a trailing newline.
func Row(inv *domain.Invoice) string {
	totals := inv.Totals()
	fields := []string{
		EscapeField(inv.InvoiceNumber),
		EscapeField(inv.Date),
		EscapeField(inv.DueDate),
		EscapeField(inv.Sender.Name),
		EscapeField(inv.Receiver.Name),
		EscapeField(inv.Receiver.Email),
		EscapeField(inv.Settings.Currency),
		totals.Subtotal.StringFixed(MoneyDecimals),
		inv.Settings.TaxRate.String(),
		totals.TaxAmount.StringFixed(MoneyDecimals),
		totals.GrandTotal.StringFixed(MoneyDecimals),
		EscapeField(inv.Status.String()),
		EscapeField(inv.Notes),
	}
	return strings.Join(fields, ",")
}

// Encode returns the full document: the header line followed by one line
// per invoice, joined by "\n" with no trailing newline.
func Encode(invoices []domain.Invoice) string {
	lines := make([]string, 0, len(invoices)+1)
	lines = append(lines, strings.Join(Header, ","))
	for i := range invoices {
		lines = append(lines, Row(&invoices[i]))
	}
	return strings.Join(lines, "\n")
}

// Write encodes invoices to w.
func Write(w io.Writer, invoices []domain.Invoice) error {
	_, err := io.WriteString(w, Encode(invoices))
	return err
}
