package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var terbilangDigits = [...]string{
	"", "Satu", "Dua", "Tiga", "Empat", "Lima", "Enam",
	"Tujuh", "Delapan", "Sembilan", "Sepuluh", "Sebelas",
}

var (
	ten         = decimal.NewFromInt(10)
	twelve      = decimal.NewFromInt(12)
	twenty      = decimal.NewFromInt(20)
	twoHundred  = decimal.NewFromInt(200)
	thousand    = decimal.NewFromInt(1_000)
	twoThousand = decimal.NewFromInt(2_000)
	million     = decimal.NewFromInt(1_000_000)
	billion     = decimal.NewFromInt(1_000_000_000)
	trillion    = decimal.NewFromInt(1_000_000_000_000)
)

// Terbilang spells out the integer part of amount in Indonesian,
// e.g. 21 becomes "Dua Puluh Satu" and 1000 becomes "Seribu".
//
// The fractional part is not transcribed. Amounts of one trillion or more
// have no spelling and yield an empty string.
func Terbilang(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "Minus " + Terbilang(amount.Abs())
	}
	return strings.TrimSpace(spell(amount))
}

// spell returns the words for n with a single leading space before every group.
func spell(n decimal.Decimal) string {
	switch {
	case n.LessThan(twelve):
		word := terbilangDigits[n.Floor().IntPart()]
		if word == "" {
			return ""
		}
		return " " + word
	case n.LessThan(twenty):
		return spell(n.Sub(ten)) + " Belas"
	case n.LessThan(hundred):
		return spell(n.Div(ten).Floor()) + " Puluh" + spell(n.Mod(ten))
	case n.LessThan(twoHundred):
		return " Seratus" + spell(n.Sub(hundred))
	case n.LessThan(thousand):
		return spell(n.Div(hundred).Floor()) + " Ratus" + spell(n.Mod(hundred))
	case n.LessThan(twoThousand):
		return " Seribu" + spell(n.Sub(thousand))
	case n.LessThan(million):
		return spell(n.Div(thousand).Floor()) + " Ribu" + spell(n.Mod(thousand))
	case n.LessThan(billion):
		return spell(n.Div(million).Floor()) + " Juta" + spell(n.Mod(million))
	case n.LessThan(trillion):
		return spell(n.Div(billion).Floor()) + " Milyar" + spell(n.Mod(billion))
	default:
		// No spelling exists at or above one trillion.
		return ""
	}
}

// AmountInWords returns the grand-total line printed under the totals:
// "<words> Rupiah" for IDR amounts, empty for other currencies or when
// the amount has no spelling.
func AmountInWords(amount decimal.Decimal, currency string) string {
	if !strings.EqualFold(currency, "IDR") {
		return ""
	}
	words := Terbilang(amount)
	if words == "" {
		return ""
	}
	return words + " Rupiah"
}
