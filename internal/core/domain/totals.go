package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// InvoiceTotals holds the monetary values derived from an invoice's line items.
// It is computed on demand and never stored.
type InvoiceTotals struct {
	// Subtotal is the sum of all line totals.
	Subtotal decimal.Decimal

	// TaxRate is the percentage the tax was computed with.
	TaxRate decimal.Decimal

	// TaxAmount is Subtotal × TaxRate / 100.
	TaxAmount decimal.Decimal

	// GrandTotal is Subtotal + TaxAmount.
	GrandTotal decimal.Decimal
}

// ComputeTotals sums the line items and applies the tax rate (a percentage).
// No rounding is applied. Negative quantities or prices are not rejected;
// they propagate arithmetically.
func ComputeTotals(items []LineItem, taxRatePercent decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	taxAmount := subtotal.Mul(taxRatePercent).Div(hundred)

	return InvoiceTotals{
		Subtotal:   subtotal,
		TaxRate:    taxRatePercent,
		TaxAmount:  taxAmount,
		GrandTotal: subtotal.Add(taxAmount),
	}
}
