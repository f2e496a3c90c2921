// Package settings provides the settings editor view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

const notSet = "(not set)"

// View lists every setting and edits one at a time.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService
	editor          *input.Field
	statusbar       *status.Bar

	keys     []string
	values   map[string]string
	err      error
	selected int
	editing  bool

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	var keys []string
	if settingsService != nil {
		keys = settingsService.Keys()
	}

	bar := status.NewBar(s, km)
	bar.SetHints([]key.Binding{km.Select, km.Back})

	return &View{
		styles:          s,
		keymap:          km,
		settingsService: settingsService,
		editor:          input.NewField(s, "", ""),
		statusbar:       bar,
		keys:            keys,
		values:          map[string]string{},
		width:           80,
		height:          24,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) saveSetting(name, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingSaved{Key: name, Err: ErrNoSettingsService}
		}
		return messages.SettingSaved{Key: name, Err: v.settingsService.Set(name, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.Fail(msg.Err)
			return v, nil
		}
		v.err = nil
		v.values = Values(msg.Settings)
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.statusbar.Fail(msg.Err)
			return v, nil
		}
		done := "Saved " + msg.Key
		if NeedsRestart(msg.Key) {
			done += "; restart finvoice for the change to take effect"
		}
		v.statusbar.Done(done)
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	pressed := msg.String()
	switch {
	case keymap.Matches(pressed, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(pressed, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}

	case keymap.Matches(pressed, v.keymap.Down):
		if v.selected < len(v.keys)-1 {
			v.selected++
		}

	case keymap.Matches(pressed, v.keymap.Select):
		if len(v.keys) == 0 {
			return v, nil
		}
		k := v.keys[v.selected]
		v.editing = true
		v.editor.Reset()
		v.editor.SetLabel(k + ": ")
		v.editor.SetMasked(IsSecret(k))
		if !IsSecret(k) {
			v.editor.SetValue(v.values[k])
		}
		v.statusbar.Prompt("Enter to save, Esc to cancel")
		return v, v.editor.Focus()
	}

	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.editor.Blur()
		v.statusbar.Clear()
		return v, nil

	case tea.KeyEnter:
		v.editing = false
		v.editor.Blur()
		k := v.keys[v.selected]
		v.statusbar.Working("Saving " + k)
		return v, v.saveSetting(k, v.editor.Value())
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, len(v.keys)+8)
	sections = append(sections, v.styles.Title.Render("Settings"), "")

	if v.err != nil && len(v.values) == 0 {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	} else {
		group := ""
		for i, k := range v.keys {
			if g, _, _ := strings.Cut(k, "."); g != group {
				group = g
				sections = append(sections, v.styles.Subtitle.Render("["+group+"]"))
			}
			line := fmt.Sprintf("%-24s %s", k, v.display(k))
			if i == v.selected {
				sections = append(sections, "> "+v.styles.Selected.Render(line))
			} else {
				sections = append(sections, "  "+v.styles.Normal.Render(line))
			}
		}
	}

	if v.editing {
		sections = append(sections, "", v.editor.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) display(name string) string {
	value := v.values[name]
	if value == "" {
		return v.styles.Muted.Render(notSet)
	}
	if IsSecret(name) {
		return maskSecret(value)
	}
	return value
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.editor.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Selected returns the highlighted key.
func (v *View) Selected() string {
	if len(v.keys) == 0 {
		return ""
	}
	return v.keys[v.selected]
}

// Editing returns whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Value returns the loaded value of the named setting.
func (v *View) Value(name string) string {
	return v.values[name]
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Values flattens settings into the dot-notation keys accepted by
// SettingsService.Set.
func Values(s *domain.AppSettings) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	timeout := ""
	if s.Export.Timeout > 0 {
		timeout = s.Export.Timeout.String()
	}
	return map[string]string{
		"invoice.currency":       s.Invoice.Currency,
		"invoice.tax_rate":       s.Invoice.TaxRate.String(),
		"invoice.locale":         s.Invoice.Locale,
		"invoice.brand_color":    s.Invoice.BrandColor,
		"invoice.signature_text": s.Invoice.SignatureText,
		"invoice.hide_status":    strconv.FormatBool(s.Invoice.HideStatus),
		"export.output_dir":      s.Export.OutputDir,
		"export.scale":           strconv.FormatFloat(s.Export.Scale, 'f', -1, 64),
		"export.background":      s.Export.Background,
		"export.tolerance_mm":    strconv.FormatFloat(s.Export.ToleranceMm, 'f', -1, 64),
		"export.timeout":         timeout,
		"export.chrome_path":     s.Export.ChromePath,
		"storage.backend":        s.Storage.Backend.String(),
		"storage.redis_addr":     s.Storage.RedisAddr,
		"storage.redis_password": s.Storage.RedisPassword,
		"storage.redis_db":       strconv.Itoa(s.Storage.RedisDB),
		"scanner.api_key":        s.Scanner.APIKey,
		"scanner.model":          s.Scanner.Model,
		"scanner.base_url":       s.Scanner.BaseURL,
		"user.uid":               s.User.UID,
		"user.email":             s.User.Email,
	}
}

// IsSecret reports whether the named setting holds a credential.
func IsSecret(name string) bool {
	return name == "scanner.api_key" || name == "storage.redis_password"
}

// NeedsRestart reports whether a change to the named setting only applies
// on the next start.
func NeedsRestart(name string) bool {
	return strings.HasPrefix(name, "storage.") || strings.HasPrefix(name, "user.")
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
