package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/finvoice/internal/adapters/driving/tui"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// TUIConfig holds configuration for the TUI command.
type TUIConfig struct {
	InvoiceService  driving.InvoiceService
	ExportService   driving.ExportService
	ScanService     driving.ScanService
	SettingsService driving.SettingsService
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for finvoice.

The TUI shows the saved invoice history, updating live as invoices change,
and lets you open, export, copy and delete invoices with the keyboard.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open
  /        - Filter history
  n        - New invoice
  e        - Export PDF
  x        - Export history CSV
  p        - Toggle paid
  d        - Delete
  Esc      - Back / Cancel
  q        - Quit`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := tui.NewPorts(invoiceService, exportService)
	ports.Scan = scanService
	ports.Settings = settingsService

	if tuiConfig != nil {
		if tuiConfig.InvoiceService != nil {
			ports.Invoice = tuiConfig.InvoiceService
		}
		if tuiConfig.ExportService != nil {
			ports.Export = tuiConfig.ExportService
		}
		if tuiConfig.ScanService != nil {
			ports.Scan = tuiConfig.ScanService
		}
		if tuiConfig.SettingsService != nil {
			ports.Settings = tuiConfig.SettingsService
		}
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
