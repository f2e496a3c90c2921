package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/locale"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Extract line items from a receipt photo",
	Long: `Send a photo of a receipt or invoice to the configured scanner and print
the line items it finds. With --invoice the items are appended to that invoice.

The scanner needs an API key: set scanner.api_key with 'finvoice settings set'
or export FINVOICE_SCANNER_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

var scanInvoiceID string

func init() {
	scanCmd.Flags().StringVar(&scanInvoiceID, "invoice", "", "append the items to this saved invoice")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanService == nil {
		return errors.New("scan service not configured")
	}
	if !scanService.Available() {
		return fmt.Errorf("%w: set scanner.api_key or FINVOICE_SCANNER_API_KEY", domain.ErrScannerUnavailable)
	}
	ctx := cmd.Context()

	if scanInvoiceID != "" {
		before := 0
		if invoiceService != nil {
			if inv, err := invoiceService.Get(ctx, scanInvoiceID); err == nil {
				before = len(inv.Items)
			}
		}
		inv, err := scanService.ImportItems(ctx, scanInvoiceID, args[0])
		if err != nil {
			return fmt.Errorf("failed to import items: %w", err)
		}
		cmd.Printf("Added %d items to %s\n", len(inv.Items)-before, inv.InvoiceNumber)
		return nil
	}

	items, err := scanService.ScanFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", args[0], err)
	}
	if len(items) == 0 {
		cmd.Println("No items found.")
		return nil
	}

	code, tag := defaultMoneyFormat()
	cmd.Printf("Found %d items:\n\n", len(items))
	for i := range items {
		cmd.Printf("  %d. %s\n", i+1, items[i].Description)
		cmd.Printf("     %s x %s\n", items[i].Quantity.String(), locale.MustFormatCurrency(items[i].UnitPrice, code, tag))
	}
	return nil
}

// defaultMoneyFormat returns the configured invoice currency and locale.
func defaultMoneyFormat() (currency, tag string) {
	s := domain.DefaultInvoiceSettings()
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			s = settings.Invoice.InvoiceSettings()
		}
	}
	return s.Currency, s.Locale
}
