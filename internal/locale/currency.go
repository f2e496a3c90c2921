package locale

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// noBreakSpace separates the symbol from the amount where the pattern
// has a space, and after alphabetic leading symbols.
const noBreakSpace = "\u00a0"

// MaxFractionDigits is the largest number of decimals shown for an amount.
const MaxFractionDigits = 2

// placement is where a locale's standard currency pattern puts the symbol.
type placement int

const (
	symbolFirst       placement = iota // ¤#,##0.00
	symbolFirstSpaced                  // ¤ #,##0.00
	symbolLast                         // #,##0.00 ¤
)

// placements lists the CLDR standard currency patterns that differ from
// ¤#,##0.00. A language-region entry wins over the bare language.
var placements = map[string]placement{
	"bg": symbolLast, "ca": symbolLast, "cs": symbolLast, "da": symbolLast,
	"de": symbolLast, "el": symbolLast, "es": symbolLast, "et": symbolLast,
	"fi": symbolLast, "fr": symbolLast, "hr": symbolLast, "hu": symbolLast,
	"it": symbolLast, "lt": symbolLast, "lv": symbolLast, "nb": symbolLast,
	"no": symbolLast, "pl": symbolLast, "ro": symbolLast, "ru": symbolLast,
	"sk": symbolLast, "sl": symbolLast, "sr": symbolLast, "sv": symbolLast,
	"uk": symbolLast, "vi": symbolLast,

	"nl": symbolFirstSpaced, "pt": symbolFirstSpaced,

	"de-AT": symbolFirstSpaced, "de-CH": symbolFirstSpaced, "de-LI": symbolFirstSpaced,
	"it-CH": symbolFirstSpaced, "es-AR": symbolFirstSpaced,
	"es-419": symbolFirst, "es-MX": symbolFirst, "es-US": symbolFirst,
	"pt-PT": symbolLast,
}

func placementFor(tag language.Tag) placement {
	base, _ := tag.Base()
	region, _ := tag.Region()
	if p, ok := placements[base.String()+"-"+region.String()]; ok {
		return p
	}
	return placements[base.String()]
}

// Formatter formats amounts for one currency and locale.
type Formatter struct {
	printer   *message.Printer
	symbol    string
	placement placement
}

// NewFormatter resolves the currency code and BCP 47 locale tag.
func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", domain.ErrInvalidInput, locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: currency %q: %v", domain.ErrInvalidInput, currencyCode, err)
	}

	p := message.NewPrinter(tag)
	return &Formatter{
		printer:   p,
		symbol:    p.Sprint(currency.Symbol(unit)),
		placement: placementFor(tag),
	}, nil
}

// Symbol returns the localized currency symbol, e.g. "Rp" or "$".
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Number formats the magnitude of amount with locale grouping and
// between zero and two fraction digits, without a symbol or sign.
func (f *Formatter) Number(amount decimal.Decimal) string {
	v := amount.Abs().Round(MaxFractionDigits).InexactFloat64()
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(0),
		number.MaxFractionDigits(MaxFractionDigits),
	))
}

// Format returns the full currency string for amount, with the symbol
// placed the way the locale's currency pattern places it.
func (f *Formatter) Format(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(MaxFractionDigits).IsNegative() {
		sign = "-"
	}
	n := f.Number(amount)
	switch f.placement {
	case symbolLast:
		return sign + n + noBreakSpace + f.symbol
	case symbolFirstSpaced:
		return sign + f.symbol + noBreakSpace + n
	default:
		return sign + f.symbol + separator(f.symbol) + n
	}
}

// FormatCurrency formats amount in the given ISO 4217 currency for a locale,
// e.g. FormatCurrency(6882000, "IDR", "id-ID").
func FormatCurrency(amount decimal.Decimal, currencyCode, locale string) (string, error) {
	f, err := NewFormatter(currencyCode, locale)
	if err != nil {
		return "", err
	}
	return f.Format(amount), nil
}

// MustFormatCurrency is like FormatCurrency but falls back to the plain
// amount and code when the currency or locale is unknown.
func MustFormatCurrency(amount decimal.Decimal, currencyCode, locale string) string {
	s, err := FormatCurrency(amount, currencyCode, locale)
	if err != nil {
		return currencyCode + " " + amount.StringFixed(MaxFractionDigits)
	}
	return s
}

func separator(symbol string) string {
	r, _ := utf8.DecodeLastRuneInString(symbol)
	if unicode.IsLetter(r) {
		return noBreakSpace
	}
	return ""
}

// ValidateCurrency checks that code is a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Errorf("%w: currency %q: %v", domain.ErrInvalidInput, code, err)
	}
	return nil
}

// ValidateLocale checks that tag is a well-formed BCP 47 language tag.
func ValidateLocale(tag string) error {
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("%w: locale %q: %v", domain.ErrInvalidInput, tag, err)
	}
	return nil
}
