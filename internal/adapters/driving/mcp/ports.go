package mcp

import (
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Invoices reads the invoice history.
	Invoices driving.InvoiceService

	// Export writes invoices to PDF. Optional; export_pdf fails without it.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Invoices == nil {
		return ErrMissingInvoiceService
	}
	return nil
}
