package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/services"
)

const (
	// URIScheme is the custom URI scheme for finvoice resources.
	uriScheme = "finvoice://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "invoices",
		Name:        "invoices",
		Description: "The saved invoice history, newest first",
		MIMEType:    "application/json",
	}, s.handleInvoicesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "invoices/{invoiceId}",
		Name:        "invoice",
		Description: "A saved invoice with its line items and totals",
		MIMEType:    "application/json",
	}, s.handleInvoiceResource)
}

// invoiceDocument is the JSON shape of one invoice resource.
type invoiceDocument struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	Date          string         `json:"date"`
	DueDate       string         `json:"due_date"`
	Status        string         `json:"status"`
	From          partyDocument  `json:"from"`
	BillTo        partyDocument  `json:"bill_to"`
	Items         []itemDocument `json:"items"`
	Notes         string         `json:"notes,omitempty"`
	Currency      string         `json:"currency"`
	Subtotal      string         `json:"subtotal"`
	TaxRate       string         `json:"tax_rate"`
	TaxAmount     string         `json:"tax_amount"`
	GrandTotal    string         `json:"grand_total"`
	AmountInWords string         `json:"amount_in_words,omitempty"`
}

type partyDocument struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type itemDocument struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// handleInvoicesResource returns the visible invoice history.
func (s *Server) handleInvoicesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	invoices, err := s.ports.Invoices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	summaries := make([]InvoiceSummary, len(invoices))
	for i := range invoices {
		summaries[i] = summarise(&invoices[i])
	}

	return jsonResult(req.Params.URI, summaries)
}

// handleInvoiceResource returns one invoice with its totals.
func (s *Server) handleInvoiceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// URI: finvoice://invoices/{invoiceId}
	id := extractInvoiceID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	inv, err := s.ports.Invoices.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return jsonResult(req.Params.URI, describeInvoice(inv))
}

func describeInvoice(inv *domain.Invoice) invoiceDocument {
	details := services.Describe(inv)
	doc := invoiceDocument{
		ID:            inv.ID,
		Number:        inv.InvoiceNumber,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Status:        inv.Status.String(),
		From:          partyDocument{inv.Sender.Name, inv.Sender.Address, inv.Sender.Email, inv.Sender.Phone},
		BillTo:        partyDocument{inv.Receiver.Name, inv.Receiver.Address, inv.Receiver.Email, inv.Receiver.Phone},
		Items:         make([]itemDocument, len(inv.Items)),
		Notes:         inv.Notes,
		Currency:      inv.Settings.Currency,
		Subtotal:      details.Subtotal,
		TaxRate:       details.Totals.TaxRate.String(),
		TaxAmount:     details.TaxAmount,
		GrandTotal:    details.GrandTotal,
		AmountInWords: details.AmountInWords,
	}
	for i := range inv.Items {
		item := inv.Items[i]
		doc.Items[i] = itemDocument{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			LineTotal:   item.LineTotal().String(),
		}
	}
	return doc
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractInvoiceID extracts the invoice ID from a URI like finvoice://invoices/{invoiceId}.
func extractInvoiceID(uri string) string {
	const prefix = uriScheme + "invoices/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
