// Package cli provides the cobra command tree for finvoice.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the bootstrap function or directly by tests.
var (
	invoiceService  driving.InvoiceService
	exportService   driving.ExportService
	scanService     driving.ScanService
	settingsService driving.SettingsService
)

// Options are the global flags every command shares.
type Options struct {
	// ConfigDir overrides the directory holding config.toml and prompts.
	ConfigDir string

	// DataDir overrides the directory holding the SQLite database.
	DataDir string
}

// BootstrapFunc builds the services for the parsed global options and
// installs them with the Set* functions.
type BootstrapFunc func(ctx context.Context, opts Options) error

var (
	verbose   bool
	options   Options
	bootstrap BootstrapFunc
)

var rootCmd = &cobra.Command{
	Use:   "finvoice",
	Short: "Create, export and track invoices",
	Long: `finvoice drafts invoices, computes their totals, exports them as
paginated A4 PDFs and keeps a searchable history of saved invoices.

Run 'finvoice tui' for the interactive editor or use the subcommands below.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
		}
		if bootstrap == nil {
			return nil
		}
		return bootstrap(cmd.Context(), options)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&options.ConfigDir, "config-dir", "", "config directory (default ~/.finvoice)")
	rootCmd.PersistentFlags().StringVar(&options.DataDir, "data-dir", "", "data directory for the SQLite store (default ~/.finvoice)")
}

// SetBootstrap sets the function that wires services once flags are parsed.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by 'finvoice version'.
func SetVersion(v string) {
	version = v
}

// SetInvoiceService sets the invoice service used by the commands.
func SetInvoiceService(s driving.InvoiceService) {
	invoiceService = s
}

// SetExportService sets the export service used by the commands.
func SetExportService(s driving.ExportService) {
	exportService = s
}

// SetScanService sets the scan service used by the commands.
func SetScanService(s driving.ScanService) {
	scanService = s
}

// SetSettingsService sets the settings service used by the commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
