package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

func TestDefaultPalette_AccentIsDefaultBrand(t *testing.T) {
	p := DefaultPalette()

	assert.Equal(t, lipgloss.Color(domain.DefaultBrandColor), p.Accent)
}

func TestDefaultPalette_StatusColoursDiffer(t *testing.T) {
	p := DefaultPalette()

	seen := map[lipgloss.Color]bool{}
	for _, c := range []lipgloss.Color{p.Accent, p.Paid, p.Unpaid, p.Caution, p.Dim} {
		assert.False(t, seen[c], "duplicate colour %s", c)
		seen[c] = true
	}
}

func TestBrandPalette(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		want  lipgloss.Color
	}{
		{"six digit", "#7C3AED", "#7C3AED"},
		{"three digit", "#abc", "#abc"},
		{"empty keeps default", "", lipgloss.Color(domain.DefaultBrandColor)},
		{"missing hash keeps default", "7C3AED", lipgloss.Color(domain.DefaultBrandColor)},
		{"not hex keeps default", "#zzzzzz", lipgloss.Color(domain.DefaultBrandColor)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BrandPalette(tt.brand)
			assert.Equal(t, tt.want, p.Accent)
			assert.Equal(t, DefaultPalette().Paid, p.Paid)
		})
	}
}

func TestBrandStyles_KeepsPalette(t *testing.T) {
	s := BrandStyles("#7C3AED")

	require.NotNil(t, s)
	assert.Equal(t, lipgloss.Color("#7C3AED"), s.Palette().Accent)
	assert.Equal(t, lipgloss.Color("#7C3AED"), s.Title.GetForeground())
	assert.Equal(t, lipgloss.Color("#7C3AED"), s.Selected.GetBackground())
}

func TestDefaultStyles(t *testing.T) {
	s := DefaultStyles()

	require.NotNil(t, s)
	assert.Equal(t, DefaultPalette(), s.Palette())
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, DefaultPalette().Dim, s.StatusBar.GetForeground())
}

func TestStyles_StatusBadge(t *testing.T) {
	s := DefaultStyles()

	for _, status := range domain.AllInvoiceStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			assert.Contains(t, s.StatusBadge(status), status.String())
		})
	}
}

func TestStyles_StatusBadge_UnknownFallsBackToUnpaid(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.StatusBadge(domain.InvoiceStatus("VOID")), "VOID")
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"title":    s.Title,
		"subtitle": s.Subtitle,
		"normal":   s.Normal,
		"muted":    s.Muted,
		"selected": s.Selected,
		"error":    s.Error,
		"success":  s.Success,
		"warning":  s.Warning,
		"help":     s.Help,
		"input":    s.InputField,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, style.Render("Total"), "Total")
		})
	}
}
