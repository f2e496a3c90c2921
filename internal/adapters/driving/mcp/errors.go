// Package mcp provides an MCP (Model Context Protocol) server adapter for finvoice.
// It lets AI assistants list saved invoices, read their totals and compute
// totals for ad-hoc line items.
package mcp

import "errors"

// ErrMissingInvoiceService is returned when the invoice service is not provided.
var ErrMissingInvoiceService = errors.New("mcp: invoice service is required")
