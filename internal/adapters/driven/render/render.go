// Package render turns invoices into the HTML documents the rasterizer
// captures.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/locale"
)

// Ensure Renderer implements the interface.
var _ driven.DocumentRenderer = (*Renderer)(nil)

// Element markers shared with the rasterizer.
const (
	TargetID     = "invoice-preview"
	NoPrintClass = "no-print"
)

//go:embed templates/*.html
var templateFS embed.FS

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// Renderer renders invoices with the embedded HTML template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("invoice.html").ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// view is the data handed to the template.
type view struct {
	TargetID     string
	NoPrintClass string

	Invoice    *domain.Invoice
	BrandColor template.CSS
	Logo       template.URL
	ShowStatus bool
	StatusText string
	StatusCSS  string

	Rows          []row
	Subtotal      string
	TaxRate       string
	TaxAmount     string
	GrandTotal    string
	AmountInWords string
}

type row struct {
	Number      int
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// Render returns the complete document for inv.
func (r *Renderer) Render(inv *domain.Invoice) (*domain.RenderDocument, error) {
	code, tag := inv.Settings.Currency, inv.Settings.Locale

	totals := inv.Totals()
	v := view{
		TargetID:      TargetID,
		NoPrintClass:  NoPrintClass,
		Invoice:       inv,
		BrandColor:    brandColor(inv.Settings.BrandColor),
		Logo:          logoURL(inv.Sender.Logo),
		ShowStatus:    inv.Settings.UseStatus,
		StatusText:    inv.Status.String(),
		StatusCSS:     "status-" + strings.ToLower(inv.Status.String()),
		Rows:          make([]row, len(inv.Items)),
		Subtotal:      locale.MustFormatCurrency(totals.Subtotal, code, tag),
		TaxRate:       inv.Settings.TaxRate.String(),
		TaxAmount:     locale.MustFormatCurrency(totals.TaxAmount, code, tag),
		GrandTotal:    locale.MustFormatCurrency(totals.GrandTotal, code, tag),
		AmountInWords: domain.AmountInWords(totals.GrandTotal, code),
	}
	for i, item := range inv.Items {
		v.Rows[i] = row{
			Number:      i + 1,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   locale.MustFormatCurrency(item.UnitPrice, code, tag),
			Total:       locale.MustFormatCurrency(item.LineTotal(), code, tag),
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}

	return &domain.RenderDocument{
		HTML:         buf.String(),
		TargetID:     TargetID,
		NoPrintClass: NoPrintClass,
	}, nil
}

func brandColor(c string) template.CSS {
	if !hexColor.MatchString(c) {
		c = domain.DefaultBrandColor
	}
	return template.CSS(c) //nolint:gosec // validated above
}

// logoURL accepts inline image data URLs only.
func logoURL(logo string) template.URL {
	if !strings.HasPrefix(logo, "data:image/") {
		return ""
	}
	return template.URL(logo) //nolint:gosec // restricted to data:image/ URLs
}
