package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "AIzaSy1234567890abcdef",
			expected: "AIza...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow_Defaults(t *testing.T) {
	setupTestServices(t, testProfile())

	out, err := executeCommand(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Currency: IDR")
	assert.Contains(t, out, "Tax Rate: 11%")
	assert.Contains(t, out, "Output Dir: (working directory)")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Guest (invoices are not saved)")
	assert.Contains(t, out, "Status Badge: shown")
}

func TestSettingsSet_HideStatus(t *testing.T) {
	setupTestServices(t, testProfile())

	_, err := executeCommand(t, "settings", "set", "invoice.hide_status", "true")
	require.NoError(t, err)

	out, err := executeCommand(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Status Badge: hidden")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.True(t, settings.Invoice.HideStatus)
	assert.False(t, settings.Invoice.InvoiceSettings().UseStatus)
}

func TestSettingsSet(t *testing.T) {
	setupTestServices(t, testProfile())

	out, err := executeCommand(t, "settings", "set", "invoice.tax_rate", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Set invoice.tax_rate = 12")
	assert.NotContains(t, out, "Restart")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.True(t, settings.Invoice.TaxRate.Equal(decimal.NewFromInt(12)))
}

func TestSettingsSet_NeedsRestart(t *testing.T) {
	setupTestServices(t, testProfile())

	out, err := executeCommand(t, "settings", "set", "storage.backend", "redis")
	require.NoError(t, err)
	assert.Contains(t, out, "Restart finvoice for the change to take effect.")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendRedis, settings.Storage.Backend)
}

func TestSettingsSet_SecretIsNotEchoed(t *testing.T) {
	setupTestServices(t, testProfile())

	out, err := executeCommand(t, "settings", "set", "scanner.api_key", "AIzaSyExampleKey1234")
	require.NoError(t, err)
	assert.Contains(t, out, "Set scanner.api_key")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")

	out, err = executeCommand(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: AIza...1234")
	assert.Contains(t, out, "Status: configured")
}

func TestSettingsSet_User(t *testing.T) {
	setupTestServices(t, testProfile())

	_, err := executeCommand(t, "settings", "set", "user.uid", "user-7")
	require.NoError(t, err)
	_, err = executeCommand(t, "settings", "set", "user.email", "admin@example.com")
	require.NoError(t, err)

	out, err := executeCommand(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "UID: user-7")
	assert.Contains(t, out, "Email: admin@example.com")
	assert.Contains(t, out, "Role: admin")
}

func TestSettingsSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"colour", "blue"}, "unknown setting"},
		{"bad value", []string{"invoice.tax_rate", "lots"}, "invoice.tax_rate"},
		{"missing value", []string{"invoice.currency"}, "a value is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t, testProfile())

			_, err := executeCommand(t, append([]string{"settings", "set"}, tt.args...)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettingsKeys(t *testing.T) {
	setupTestServices(t, testProfile())

	out, err := executeCommand(t, "settings", "keys")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 21)
	assert.Equal(t, "invoice.currency", lines[0])
	assert.Equal(t, "invoice.hide_status", lines[5])
	assert.Equal(t, "user.email", lines[20])
}
