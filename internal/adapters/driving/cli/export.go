package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices as PDF or CSV",
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf [invoice-id]",
	Short: "Export an invoice as a paginated A4 PDF",
	Long: `Render an invoice, rasterize it with headless Chromium and write
Invoice-<number>.pdf, splitting tall invoices across A4 pages.

Without an invoice ID a fresh draft built from the configured defaults is exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportPDF,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export the invoice history as CSV",
	Long: `Write the visible invoice history to invoice_history_<date>.csv.

Use --stdout to print the CSV instead of writing a file.`,
	Args: cobra.NoArgs,
	RunE: runExportCSV,
}

var (
	exportOutDir string
	exportStdout bool
)

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutDir, "out", "o", "", "output directory (default: export.output_dir or the working directory)")
	exportCSVCmd.Flags().BoolVar(&exportStdout, "stdout", false, "write the CSV to standard output")

	exportCmd.AddCommand(exportPDFCmd)
	exportCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportPDF(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}
	ctx := cmd.Context()

	var (
		path string
		err  error
	)
	if len(args) == 1 {
		path, err = exportService.ExportPDF(ctx, args[0], exportOutDir)
	} else {
		if invoiceService == nil {
			return errors.New("invoice service not configured")
		}
		draft, draftErr := invoiceService.New(ctx)
		if draftErr != nil {
			return fmt.Errorf("failed to create draft: %w", draftErr)
		}
		path, err = exportService.ExportInvoicePDF(ctx, draft, exportOutDir)
	}
	if err != nil {
		return fmt.Errorf("failed to export PDF: %w", err)
	}

	cmd.Printf("Saved %s\n", path)
	return nil
}

func runExportCSV(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	if exportStdout {
		return exportService.ExportCSV(cmd.Context(), cmd.OutOrStdout())
	}

	path, err := exportService.ExportHistoryCSV(cmd.Context(), exportOutDir, time.Now())
	if err != nil {
		return fmt.Errorf("failed to export CSV: %w", err)
	}
	cmd.Printf("Saved %s\n", path)
	return nil
}
