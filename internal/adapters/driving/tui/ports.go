// Package tui provides an interactive terminal user interface for finvoice.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Invoice creates, lists and watches saved invoices.
	Invoice driving.InvoiceService

	// Export writes PDF and CSV files.
	Export driving.ExportService

	// Scan imports line items from photos. Optional.
	Scan driving.ScanService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(invoice driving.InvoiceService, export driving.ExportService) *Ports {
	return &Ports{
		Invoice: invoice,
		Export:  export,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Invoice == nil {
		return ErrMissingInvoiceService
	}
	if p.Export == nil {
		return ErrMissingExportService
	}
	return nil
}
