package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInvoiceID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid invoice URI",
			uri:      "finvoice://invoices/inv-123",
			expected: "inv-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://invoices/inv-123",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "finvoice://invoices/inv-123/items",
			expected: "",
		},
		{
			name:     "list URI",
			uri:      "finvoice://invoices",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractInvoiceID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleInvoicesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the history", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{invoices: testInvoices()}, nil)

		result, err := server.handleInvoicesResource(ctx, makeReadResourceRequest("finvoice://invoices"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var summaries []InvoiceSummary
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &summaries))
		require.Len(t, summaries, 2)
		assert.Equal(t, "inv-2", summaries[0].ID)
		assert.Equal(t, "Acme Corp", summaries[1].Client)
	})

	t.Run("empty history", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{}, nil)

		result, err := server.handleInvoicesResource(ctx, makeReadResourceRequest("finvoice://invoices"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{err: errors.New("database error")}, nil)

		_, err := server.handleInvoicesResource(ctx, makeReadResourceRequest("finvoice://invoices"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing invoices")
	})
}

func TestServer_handleInvoiceResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the invoice with totals", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{invoices: testInvoices()}, nil)

		result, err := server.handleInvoiceResource(ctx, makeReadResourceRequest("finvoice://invoices/inv-1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var doc invoiceDocument
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &doc))
		assert.Equal(t, "INV-2026-001", doc.Number)
		assert.Equal(t, "UNPAID", doc.Status)
		assert.Equal(t, "Studio Ana", doc.From.Name)
		assert.Equal(t, "Acme Corp", doc.BillTo.Name)
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "5000000", doc.Items[0].LineTotal)
		assert.Equal(t, idr(5_550_000), doc.GrandTotal)
		assert.Equal(t, "Thank you", doc.Notes)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{invoices: testInvoices()}, nil)

		_, err := server.handleInvoiceResource(ctx, makeReadResourceRequest("finvoice://other/inv-1"))

		require.Error(t, err)
	})

	t.Run("unknown invoice returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{invoices: testInvoices()}, nil)

		_, err := server.handleInvoiceResource(ctx, makeReadResourceRequest("finvoice://invoices/missing"))

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "getting invoice")
	})

	t.Run("returns error on get failure", func(t *testing.T) {
		server := newTestServer(t, &mockInvoiceService{err: errors.New("storage error")}, nil)

		_, err := server.handleInvoiceResource(ctx, makeReadResourceRequest("finvoice://invoices/inv-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting invoice")
	})
}
