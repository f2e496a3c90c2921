package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/services"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"inv"},
	Short:   "Manage invoices",
	Long:    `Create, view, edit and delete saved invoices.`,
}

var invoiceNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an invoice",
	Long: `Create an invoice from the configured defaults and the given flags.

Items are given as "description:quantity:price" and may be repeated:

  finvoice invoice new --client "Acme" --item "Design:2:1500000" --item "Hosting:1:300000"

Without --item the sample items of a new draft are kept. Use --dry-run to
print the invoice without saving it.`,
	RunE: runInvoiceNew,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved invoices",
	Long:  `List saved invoices, newest first. Admin users see every user's invoices.`,
	RunE:  runInvoiceList,
}

var invoiceGetCmd = &cobra.Command{
	Use:   "get [invoice-id]",
	Short: "Show an invoice with its totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceGet,
}

var invoiceUpdateCmd = &cobra.Command{
	Use:   "update [invoice-id]",
	Short: "Update a saved invoice",
	Long:  `Update the fields given as flags. With --item the item list is replaced.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceUpdate,
}

var invoiceCopyCmd = &cobra.Command{
	Use:   "copy [invoice-id]",
	Short: "Save a copy of an invoice under the next number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceCopy,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete [invoice-id]",
	Short: "Delete a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status [invoice-id] [PAID|UNPAID|DRAFT]",
	Short: "Set the payment status of an invoice",
	Args:  cobra.ExactArgs(2),
	RunE:  runInvoiceStatus,
}

var invoiceWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the invoice history whenever it changes",
	Long: `Print the invoice history and reprint it every time an invoice is saved
or deleted, including changes made by other finvoice processes. Press Ctrl+C to stop.`,
	RunE: runInvoiceWatch,
}

// invoiceFields holds the flags shared by new and update.
type invoiceFields struct {
	number        string
	date          string
	dueDate       string
	status        string
	senderName    string
	client        string
	clientAddress string
	clientEmail   string
	clientPhone   string
	notes         string
	currency      string
	taxRate       string
	items         []string
}

var (
	newFields    invoiceFields
	updateFields invoiceFields
	newDryRun    bool
	listSearch   string
	deleteYes    bool
)

func init() {
	addInvoiceFlags(invoiceNewCmd, &newFields)
	invoiceNewCmd.Flags().BoolVar(&newDryRun, "dry-run", false, "print the invoice without saving it")
	addInvoiceFlags(invoiceUpdateCmd, &updateFields)
	invoiceListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by invoice number or client name")
	invoiceDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "delete without asking for confirmation")

	invoiceCmd.AddCommand(invoiceNewCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceGetCmd)
	invoiceCmd.AddCommand(invoiceUpdateCmd)
	invoiceCmd.AddCommand(invoiceCopyCmd)
	invoiceCmd.AddCommand(invoiceDeleteCmd)
	invoiceCmd.AddCommand(invoiceStatusCmd)
	invoiceCmd.AddCommand(invoiceWatchCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func addInvoiceFlags(cmd *cobra.Command, f *invoiceFields) {
	flags := cmd.Flags()
	flags.StringVar(&f.number, "number", "", "invoice number, e.g. INV-2026-004")
	flags.StringVar(&f.date, "date", "", "issue date (YYYY-MM-DD)")
	flags.StringVar(&f.dueDate, "due", "", "due date (YYYY-MM-DD)")
	flags.StringVar(&f.status, "status", "", "PAID, UNPAID or DRAFT")
	flags.StringVar(&f.senderName, "sender", "", "sender company name")
	flags.StringVarP(&f.client, "client", "c", "", "client name")
	flags.StringVar(&f.clientAddress, "client-address", "", "client address")
	flags.StringVar(&f.clientEmail, "client-email", "", "client email")
	flags.StringVar(&f.clientPhone, "client-phone", "", "client phone")
	flags.StringVar(&f.notes, "notes", "", "notes printed under the items")
	flags.StringVar(&f.currency, "currency", "", "ISO 4217 currency code")
	flags.StringVar(&f.taxRate, "tax", "", "tax rate in percent")
	flags.StringArrayVarP(&f.items, "item", "i", nil, `line item as "description:quantity:price" (repeatable)`)
}

// apply copies the flags the user set onto inv.
func (f *invoiceFields) apply(cmd *cobra.Command, inv *domain.Invoice) error {
	changed := cmd.Flags().Changed

	if changed("number") {
		inv.InvoiceNumber = f.number
	}
	if changed("date") {
		if err := validateDate(f.date); err != nil {
			return err
		}
		inv.Date = f.date
	}
	if changed("due") {
		if err := validateDate(f.dueDate); err != nil {
			return err
		}
		inv.DueDate = f.dueDate
	}
	if changed("status") {
		status, err := domain.ParseInvoiceStatus(f.status)
		if err != nil {
			return err
		}
		inv.Status = status
	}
	if changed("sender") {
		inv.Sender.Name = f.senderName
	}
	if changed("client") {
		inv.Receiver.Name = f.client
	}
	if changed("client-address") {
		inv.Receiver.Address = f.clientAddress
	}
	if changed("client-email") {
		inv.Receiver.Email = f.clientEmail
	}
	if changed("client-phone") {
		inv.Receiver.Phone = f.clientPhone
	}
	if changed("notes") {
		inv.Notes = f.notes
	}
	if changed("currency") {
		inv.Settings.Currency = strings.ToUpper(f.currency)
	}
	if changed("tax") {
		rate, err := decimal.NewFromString(f.taxRate)
		if err != nil {
			return fmt.Errorf("%w: tax rate %q", domain.ErrInvalidInput, f.taxRate)
		}
		inv.Settings.TaxRate = rate
	}
	if changed("item") {
		items := make([]domain.LineItem, 0, len(f.items))
		for _, arg := range f.items {
			item, err := parseItem(arg)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		inv.Items = items
	}
	return nil
}

// parseItem parses "description:quantity:price". The description may
// itself contain colons.
func parseItem(arg string) (domain.LineItem, error) {
	rest, priceText, ok := cutLast(arg, ":")
	if !ok {
		return domain.LineItem{}, fmt.Errorf("%w: item %q is not description:quantity:price", domain.ErrInvalidInput, arg)
	}
	description, qtyText, ok := cutLast(rest, ":")
	if !ok {
		return domain.LineItem{}, fmt.Errorf("%w: item %q is not description:quantity:price", domain.ErrInvalidInput, arg)
	}

	item := domain.NewLineItem()
	if d := strings.TrimSpace(description); d != "" {
		item.Description = d
	}
	if q := strings.TrimSpace(qtyText); q != "" {
		qty, err := decimal.NewFromString(q)
		if err != nil {
			return domain.LineItem{}, fmt.Errorf("%w: quantity %q", domain.ErrInvalidInput, q)
		}
		item.Quantity = qty
	}
	if p := strings.TrimSpace(priceText); p != "" {
		price, err := decimal.NewFromString(p)
		if err != nil {
			return domain.LineItem{}, fmt.Errorf("%w: price %q", domain.ErrInvalidInput, p)
		}
		item.UnitPrice = price
	}
	return item, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func validateDate(s string) error {
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return nil
}

func runInvoiceNew(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}
	ctx := cmd.Context()

	inv, err := invoiceService.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	if err := newFields.apply(cmd, inv); err != nil {
		return err
	}

	if newDryRun || invoiceService.Profile().IsGuest() {
		printInvoiceDetails(cmd, services.Describe(inv))
		if !newDryRun {
			cmd.Println()
			cmd.Println("Not saved: no user configured.")
			cmd.Println("Run 'finvoice settings set user.uid <id>' to keep a history.")
		}
		return nil
	}

	saved, err := invoiceService.Save(ctx, inv, domain.SaveModeCreate)
	if err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	cmd.Printf("Created invoice %s\n", saved.InvoiceNumber)
	cmd.Printf("  ID: %s\n", saved.ID)
	return nil
}

func runInvoiceList(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	invoices, err := invoiceService.Search(cmd.Context(), listSearch)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if len(invoices) == 0 {
		if listSearch != "" {
			cmd.Printf("No invoices match %q\n", listSearch)
		} else {
			cmd.Println("No invoices saved yet.")
		}
		return nil
	}

	cmd.Println("Invoices:")
	cmd.Println()
	for i := range invoices {
		printInvoiceRow(cmd, &invoices[i])
	}
	cmd.Println()
	cmd.Printf("Total: %d invoices\n", len(invoices))
	return nil
}

func runInvoiceGet(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	details, err := invoiceService.Details(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	printInvoiceDetails(cmd, details)
	return nil
}

func runInvoiceUpdate(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}
	ctx := cmd.Context()

	inv, err := invoiceService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	if err := updateFields.apply(cmd, inv); err != nil {
		return err
	}

	saved, err := invoiceService.Save(ctx, inv, domain.SaveModeUpdate)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	cmd.Printf("Updated invoice %s\n", saved.InvoiceNumber)
	return nil
}

func runInvoiceCopy(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}
	ctx := cmd.Context()

	inv, err := invoiceService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	saved, err := invoiceService.Save(ctx, inv, domain.SaveModeCopy)
	if err != nil {
		return fmt.Errorf("failed to copy invoice: %w", err)
	}
	cmd.Printf("Copied %s to %s\n", inv.InvoiceNumber, saved.InvoiceNumber)
	cmd.Printf("  ID: %s\n", saved.ID)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}
	ctx := cmd.Context()

	inv, err := invoiceService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if !deleteYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}
		cmd.Printf("Delete invoice %s for %s? [y/N]: ", inv.InvoiceNumber, inv.Receiver.Name)
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := invoiceService.Delete(ctx, inv.ID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	cmd.Printf("Deleted invoice %s\n", inv.InvoiceNumber)
	return nil
}

func runInvoiceStatus(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}
	ctx := cmd.Context()

	status, err := domain.ParseInvoiceStatus(args[1])
	if err != nil {
		return err
	}
	inv, err := invoiceService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}
	inv.Status = status

	if _, err := invoiceService.Save(ctx, inv, domain.SaveModeUpdate); err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	cmd.Printf("Invoice %s is now %s\n", inv.InvoiceNumber, statusBadge(status))
	return nil
}

func runInvoiceWatch(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cancel, err := invoiceService.Watch(ctx, func(invoices []domain.Invoice) {
		cmd.Printf("-- %d invoices --\n", len(invoices))
		for i := range invoices {
			printInvoiceRow(cmd, &invoices[i])
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch invoices: %w", err)
	}
	defer cancel()

	<-ctx.Done()
	return nil
}
