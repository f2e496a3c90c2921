package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finvoice/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/services"
)

// resetFlags restores every flag in the tree to its default so that one
// test's flags do not leak into the next Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs rootCmd with args and returns everything it printed.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// setupTestServices installs an invoice service over an in-memory store and
// a settings service over an in-memory config. Both are removed when the
// test ends.
func setupTestServices(t *testing.T, profile domain.UserProfile) *services.InvoiceService {
	t.Helper()
	t.Setenv(services.EnvScannerAPIKey, "")

	invoices := services.NewInvoiceService(
		memory.NewInvoiceStore(),
		profile,
		domain.DefaultAppSettings().Invoice,
	)
	SetInvoiceService(invoices)
	SetSettingsService(services.NewSettingsService(memory.NewConfigStore()))

	t.Cleanup(func() {
		invoiceService = nil
		exportService = nil
		scanService = nil
		settingsService = nil
	})
	return invoices
}

func testProfile() domain.UserProfile {
	return domain.NewUserProfile("user-1", "ana@example.com")
}

// invoiceNumber returns the nth number handed out this year.
func invoiceNumber(n int) string {
	return fmt.Sprintf("INV-%d-%03d", time.Now().Year(), n)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"invoice", "export", "scan", "settings", "tui", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_Bootstrap(t *testing.T) {
	var got Options
	SetBootstrap(func(_ context.Context, opts Options) error {
		got = opts
		return nil
	})
	defer SetBootstrap(nil)

	_, err := executeCommand(t, "--config-dir", "/tmp/finvoice-conf", "--data-dir", "/tmp/finvoice-data", "version")

	require.NoError(t, err)
	assert.Equal(t, Options{ConfigDir: "/tmp/finvoice-conf", DataDir: "/tmp/finvoice-data"}, got)
}

func TestRootCmd_BootstrapError(t *testing.T) {
	SetBootstrap(func(context.Context, Options) error {
		return errors.New("config unreadable")
	})
	defer SetBootstrap(nil)

	_, err := executeCommand(t, "version")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config unreadable")
}

func TestRootCmd_NoServices(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"invoice", "list"}, "invoice service not configured"},
		{[]string{"invoice", "get", "inv-1"}, "invoice service not configured"},
		{[]string{"export", "csv", "--stdout"}, "export service not configured"},
		{[]string{"scan", "receipt.jpg"}, "scan service not configured"},
		{[]string{"settings", "keys"}, "settings service not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.args[1], func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
