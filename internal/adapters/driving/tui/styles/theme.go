// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

var brandHex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// Palette is the set of colours the TUI draws with. Accent follows the
// invoice brand colour so the terminal matches the printed document.
type Palette struct {
	Accent  lipgloss.Color
	Heading lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Paid    lipgloss.Color
	Unpaid  lipgloss.Color
	Caution lipgloss.Color
	Frame   lipgloss.Color
	Bar     lipgloss.Color
}

// DefaultPalette returns the palette used when no brand colour is set.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.Color(domain.DefaultBrandColor),
		Heading: lipgloss.Color("#0EA5E9"),
		Text:    lipgloss.Color("#E2E8F0"),
		Dim:     lipgloss.Color("#64748B"),
		Paid:    lipgloss.Color("#22C55E"),
		Unpaid:  lipgloss.Color("#EF4444"),
		Caution: lipgloss.Color("#F59E0B"),
		Frame:   lipgloss.Color("#334155"),
		Bar:     lipgloss.Color("#0F172A"),
	}
}

// BrandPalette returns the default palette with its accent replaced by
// brand. An empty or malformed colour keeps the default accent.
func BrandPalette(brand string) Palette {
	p := DefaultPalette()
	if brandHex.MatchString(brand) {
		p.Accent = lipgloss.Color(brand)
	}
	return p
}

// Styles contains the lipgloss styles shared by every view.
type Styles struct {
	palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// InputField frames the search and settings editors.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	badges map[domain.InvoiceStatus]lipgloss.Style
}

// New builds styles from a palette.
func New(p Palette) *Styles {
	badge := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c)
	}

	return &Styles{
		palette: p,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(p.Heading),
		Normal:   lipgloss.NewStyle().Foreground(p.Text),
		Muted:    lipgloss.NewStyle().Foreground(p.Dim),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Text).Background(p.Accent),
		Help:     lipgloss.NewStyle().Foreground(p.Dim),

		Error:   lipgloss.NewStyle().Foreground(p.Unpaid),
		Success: lipgloss.NewStyle().Foreground(p.Paid),
		Warning: lipgloss.NewStyle().Foreground(p.Caution),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Dim).
			Background(p.Bar).
			Padding(0, 1),

		badges: map[domain.InvoiceStatus]lipgloss.Style{
			domain.StatusPaid:   badge(p.Paid),
			domain.StatusUnpaid: badge(p.Unpaid),
			domain.StatusDraft:  badge(p.Dim),
		},
	}
}

// DefaultStyles returns styles built from the default palette.
func DefaultStyles() *Styles {
	return New(DefaultPalette())
}

// BrandStyles returns styles whose accent is the invoice brand colour.
func BrandStyles(brand string) *Styles {
	return New(BrandPalette(brand))
}

// Palette returns the palette these styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}

// StatusBadge renders an invoice status in its colour. Unknown statuses
// render like UNPAID.
func (s *Styles) StatusBadge(status domain.InvoiceStatus) string {
	style, ok := s.badges[status]
	if !ok {
		style = s.badges[domain.StatusUnpaid]
	}
	return style.Render(status.String())
}
