package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/services"
	"github.com/custodia-labs/finvoice/internal/locale"
)

// ListInvoicesInput is the input schema for the list_invoices tool.
type ListInvoicesInput struct {
	Query  string `json:"query,omitempty" jsonschema:"filter by invoice number or client name"`
	Status string `json:"status,omitempty" jsonschema:"only invoices with this status: PAID, UNPAID or DRAFT"`
}

// ListInvoicesOutput is the output schema for the list_invoices tool.
type ListInvoicesOutput struct {
	Invoices []InvoiceSummary `json:"invoices"`
	Count    int              `json:"count"`
}

// InvoiceSummary is one row of the invoice history.
type InvoiceSummary struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	Date       string `json:"date"`
	DueDate    string `json:"due_date"`
	Client     string `json:"client"`
	Status     string `json:"status"`
	Currency   string `json:"currency"`
	GrandTotal string `json:"grand_total"`
}

// InvoiceTotalsInput is the input schema for the invoice_totals tool.
type InvoiceTotalsInput struct {
	ID string `json:"id" jsonschema:"the invoice ID as returned by list_invoices"`
}

// TotalsOutput is the output schema for the totals tools. Amounts are
// formatted in the invoice currency and locale; the *_value fields hold
// the exact decimal.
type TotalsOutput struct {
	Number          string `json:"number,omitempty"`
	Subtotal        string `json:"subtotal"`
	TaxRate         string `json:"tax_rate"`
	TaxAmount       string `json:"tax_amount"`
	GrandTotal      string `json:"grand_total"`
	GrandTotalValue string `json:"grand_total_value"`
	AmountInWords   string `json:"amount_in_words,omitempty"`
}

// ComputeTotalsInput is the input schema for the compute_totals tool.
type ComputeTotalsInput struct {
	Items    []ItemInput `json:"items" jsonschema:"the line items"`
	TaxRate  string      `json:"tax_rate,omitempty" jsonschema:"tax rate in percent (default 11)"`
	Currency string      `json:"currency,omitempty" jsonschema:"ISO 4217 currency code (default IDR)"`
	Locale   string      `json:"locale,omitempty" jsonschema:"BCP 47 locale used for formatting (default id-ID)"`
}

// ItemInput is a line item given as decimal strings.
type ItemInput struct {
	Description string `json:"description,omitempty" jsonschema:"what is billed"`
	Quantity    string `json:"quantity,omitempty" jsonschema:"quantity as a decimal string (default 1)"`
	Price       string `json:"price" jsonschema:"unit price as a decimal string"`
}

// TerbilangInput is the input schema for the terbilang tool.
type TerbilangInput struct {
	Amount string `json:"amount" jsonschema:"the amount to spell out, as a decimal string"`
}

// TerbilangOutput is the output schema for the terbilang tool.
type TerbilangOutput struct {
	Words string `json:"words"`
}

// ExportPDFInput is the input schema for the export_pdf tool.
type ExportPDFInput struct {
	ID     string `json:"id" jsonschema:"the invoice ID as returned by list_invoices"`
	OutDir string `json:"out_dir,omitempty" jsonschema:"directory to write the PDF to (default export.output_dir)"`
}

// ExportPDFOutput is the output schema for the export_pdf tool.
type ExportPDFOutput struct {
	Path string `json:"path"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_invoices",
		Description: "List saved invoices, newest first",
	}, s.handleListInvoices)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "invoice_totals",
		Description: "Subtotal, tax and grand total of a saved invoice",
	}, s.handleInvoiceTotals)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compute_totals",
		Description: "Compute subtotal, tax and grand total for a list of line items",
	}, s.handleComputeTotals)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "terbilang",
		Description: "Spell out an amount in Indonesian words",
	}, s.handleTerbilang)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_pdf",
		Description: "Export a saved invoice as a paginated A4 PDF",
	}, s.handleExportPDF)
}

// handleListInvoices handles the list_invoices tool invocation.
func (s *Server) handleListInvoices(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInvoicesInput,
) (*mcp.CallToolResult, ListInvoicesOutput, error) {
	var status domain.InvoiceStatus
	if input.Status != "" {
		parsed, err := domain.ParseInvoiceStatus(input.Status)
		if err != nil {
			return nil, ListInvoicesOutput{}, err
		}
		status = parsed
	}

	invoices, err := s.ports.Invoices.Search(ctx, input.Query)
	if err != nil {
		return nil, ListInvoicesOutput{}, err
	}

	output := ListInvoicesOutput{Invoices: make([]InvoiceSummary, 0, len(invoices))}
	for i := range invoices {
		if status != "" && invoices[i].Status != status {
			continue
		}
		output.Invoices = append(output.Invoices, summarise(&invoices[i]))
	}
	output.Count = len(output.Invoices)

	return nil, output, nil
}

// handleInvoiceTotals handles the invoice_totals tool invocation.
func (s *Server) handleInvoiceTotals(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InvoiceTotalsInput,
) (*mcp.CallToolResult, TotalsOutput, error) {
	if input.ID == "" {
		return nil, TotalsOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	details, err := s.ports.Invoices.Details(ctx, input.ID)
	if err != nil {
		return nil, TotalsOutput{}, err
	}

	return nil, TotalsOutput{
		Number:          details.Invoice.InvoiceNumber,
		Subtotal:        details.Subtotal,
		TaxRate:         details.Totals.TaxRate.String(),
		TaxAmount:       details.TaxAmount,
		GrandTotal:      details.GrandTotal,
		GrandTotalValue: details.Totals.GrandTotal.String(),
		AmountInWords:   details.AmountInWords,
	}, nil
}

// handleComputeTotals handles the compute_totals tool invocation.
func (s *Server) handleComputeTotals(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ComputeTotalsInput,
) (*mcp.CallToolResult, TotalsOutput, error) {
	defaults := domain.DefaultInvoiceSettings()
	code := strings.ToUpper(orDefault(input.Currency, defaults.Currency))
	tag := orDefault(input.Locale, defaults.Locale)

	rate := defaults.TaxRate
	if input.TaxRate != "" {
		parsed, err := parseDecimal("tax_rate", input.TaxRate)
		if err != nil {
			return nil, TotalsOutput{}, err
		}
		rate = parsed
	}

	items := make([]domain.LineItem, 0, len(input.Items))
	for i, in := range input.Items {
		item := domain.NewLineItem()
		if in.Description != "" {
			item.Description = in.Description
		}
		if in.Quantity != "" {
			qty, err := parseDecimal(fmt.Sprintf("items[%d].quantity", i), in.Quantity)
			if err != nil {
				return nil, TotalsOutput{}, err
			}
			item.Quantity = qty
		}
		price, err := parseDecimal(fmt.Sprintf("items[%d].price", i), in.Price)
		if err != nil {
			return nil, TotalsOutput{}, err
		}
		item.UnitPrice = price
		items = append(items, item)
	}

	formatter, err := locale.NewFormatter(code, tag)
	if err != nil {
		return nil, TotalsOutput{}, err
	}

	totals := domain.ComputeTotals(items, rate)
	return nil, TotalsOutput{
		Subtotal:        formatter.Format(totals.Subtotal),
		TaxRate:         totals.TaxRate.String(),
		TaxAmount:       formatter.Format(totals.TaxAmount),
		GrandTotal:      formatter.Format(totals.GrandTotal),
		GrandTotalValue: totals.GrandTotal.String(),
		AmountInWords:   domain.AmountInWords(totals.GrandTotal, code),
	}, nil
}

// handleTerbilang handles the terbilang tool invocation.
func (s *Server) handleTerbilang(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TerbilangInput,
) (*mcp.CallToolResult, TerbilangOutput, error) {
	amount, err := parseDecimal("amount", input.Amount)
	if err != nil {
		return nil, TerbilangOutput{}, err
	}
	return nil, TerbilangOutput{Words: domain.Terbilang(amount)}, nil
}

// handleExportPDF handles the export_pdf tool invocation.
func (s *Server) handleExportPDF(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportPDFInput,
) (*mcp.CallToolResult, ExportPDFOutput, error) {
	if s.ports.Export == nil {
		return nil, ExportPDFOutput{}, errors.New("pdf export is not configured")
	}
	if input.ID == "" {
		return nil, ExportPDFOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	path, err := s.ports.Export.ExportPDF(ctx, input.ID, input.OutDir)
	if err != nil {
		return nil, ExportPDFOutput{}, err
	}
	return nil, ExportPDFOutput{Path: path}, nil
}

func summarise(inv *domain.Invoice) InvoiceSummary {
	details := services.Describe(inv)
	return InvoiceSummary{
		ID:         inv.ID,
		Number:     inv.InvoiceNumber,
		Date:       inv.Date,
		DueDate:    inv.DueDate,
		Client:     inv.Receiver.Name,
		Status:     inv.Status.String(),
		Currency:   inv.Settings.Currency,
		GrandTotal: details.GrandTotal,
	}
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidInput, field, value)
	}
	return d, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
