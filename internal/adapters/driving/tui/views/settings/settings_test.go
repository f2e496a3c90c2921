package settings

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// MockSettingsService is a mock implementation of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsService) Set(key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockSettingsService) Keys() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	args := m.Called()
	return args.Get(0).(domain.AppSettings)
}

var testKeys = []string{
	"invoice.currency",
	"invoice.tax_rate",
	"storage.backend",
	"scanner.api_key",
}

func testSettings() *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Invoice.TaxRate = decimal.NewFromInt(11)
	s.Scanner.APIKey = "AIzaSyExampleKey1234"
	return &s
}

func newTestView(t *testing.T) (*View, *MockSettingsService) {
	t.Helper()
	svc := new(MockSettingsService)
	svc.On("Keys").Return(testKeys)
	svc.On("Get").Return(testSettings(), nil).Maybe()

	view := NewView(nil, nil, svc)
	view.SetDimensions(100, 40)
	view, _ = view.Update(view.Init()())
	return view, svc
}

func typeText(view *View, text string) *View {
	for _, r := range text {
		view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return view
}

func TestNewView_NoService(t *testing.T) {
	view := NewView(nil, nil, nil)

	require.NotNil(t, view)
	assert.Empty(t, view.Selected())

	msg, ok := view.Init()().(messages.SettingsLoaded)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoSettingsService)
}

func TestView_Init_Loads(t *testing.T) {
	view, svc := newTestView(t)

	assert.NoError(t, view.Err())
	assert.Equal(t, "IDR", view.Value("invoice.currency"))
	assert.Equal(t, "11", view.Value("invoice.tax_rate"))
	assert.Equal(t, "sqlite", view.Value("storage.backend"))
	svc.AssertExpectations(t)
}

func TestView_Init_Error(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("Keys").Return(testKeys)
	svc.On("Get").Return(nil, errors.New("config unreadable"))

	view := NewView(nil, nil, svc)
	view.SetDimensions(100, 40)
	view, _ = view.Update(view.Init()())

	assert.Error(t, view.Err())
	assert.Contains(t, view.View(), "config unreadable")
}

func TestView_View(t *testing.T) {
	view, _ := newTestView(t)

	out := view.View()

	assert.Contains(t, out, "Settings")
	assert.Contains(t, out, "[invoice]")
	assert.Contains(t, out, "[scanner]")
	assert.Contains(t, out, "invoice.currency")
	assert.Contains(t, out, "AIza...1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
}

func TestView_Navigate(t *testing.T) {
	view, _ := newTestView(t)

	assert.Equal(t, "invoice.currency", view.Selected())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "invoice.tax_rate", view.Selected())

	for range 10 {
		view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, "scanner.api_key", view.Selected())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, "storage.backend", view.Selected())
}

func TestView_Back(t *testing.T) {
	view, _ := newTestView(t)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EditAndSave(t *testing.T) {
	view, svc := newTestView(t)
	svc.On("Set", "invoice.tax_rate", "12").Return(nil)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, view.Editing())
	assert.Equal(t, status.StatePrompt, view.Status().State())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	view = typeText(view, "12")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, view.Editing())

	msg := cmd()
	assert.Equal(t, messages.SettingSaved{Key: "invoice.tax_rate"}, msg)

	view, cmd = view.Update(msg)
	assert.NotNil(t, cmd, "settings reload after save")
	assert.Equal(t, status.StateDone, view.Status().State())
	assert.NotContains(t, view.Status().Message(), "restart")
	svc.AssertExpectations(t)
}

func TestView_EditSecret_StartsEmpty(t *testing.T) {
	view, svc := newTestView(t)
	svc.On("Set", "scanner.api_key", "new-key").Return(nil)

	for range 3 {
		view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, view.Editing())
	assert.Empty(t, view.editor.Value())

	view = typeText(view, "new-key")
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.SettingSaved{Key: "scanner.api_key"}, cmd())
}

func TestView_EditCancel(t *testing.T) {
	view, svc := newTestView(t)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view = typeText(view, "X")
	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, view.Editing())
	assert.Equal(t, status.StateReady, view.Status().State())
	svc.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestView_SettingSaved_Error(t *testing.T) {
	view, _ := newTestView(t)

	view, cmd := view.Update(messages.SettingSaved{Key: "invoice.tax_rate", Err: domain.ErrInvalidInput})

	assert.Nil(t, cmd)
	assert.Equal(t, status.StateError, view.Status().State())
}

func TestView_SettingSaved_Restart(t *testing.T) {
	view, _ := newTestView(t)

	view, _ = view.Update(messages.SettingSaved{Key: "storage.backend"})

	assert.Contains(t, view.Status().Message(), "restart")
}

func TestValues(t *testing.T) {
	s := testSettings()
	s.Export.Timeout = 45 * time.Second
	s.Storage.RedisDB = 2

	values := Values(s)

	assert.Equal(t, "11", values["invoice.tax_rate"])
	assert.Equal(t, "2", values["export.scale"])
	assert.Equal(t, "45s", values["export.timeout"])
	assert.Equal(t, "2", values["storage.redis_db"])
	assert.Equal(t, "AIzaSyExampleKey1234", values["scanner.api_key"])
	assert.Empty(t, values["user.uid"])
	assert.Equal(t, "false", values["invoice.hide_status"])
	assert.Len(t, values, 21)
}

func TestValues_Nil(t *testing.T) {
	assert.Empty(t, Values(nil))
}

func TestIsSecret(t *testing.T) {
	assert.True(t, IsSecret("scanner.api_key"))
	assert.True(t, IsSecret("storage.redis_password"))
	assert.False(t, IsSecret("scanner.model"))
}

func TestNeedsRestart(t *testing.T) {
	assert.True(t, NeedsRestart("storage.backend"))
	assert.True(t, NeedsRestart("user.uid"))
	assert.False(t, NeedsRestart("invoice.currency"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...mnop", maskSecret("abcdefghijklmnop"))
}
