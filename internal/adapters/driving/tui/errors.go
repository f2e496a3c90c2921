package tui

import "errors"

// ErrMissingInvoiceService is returned when the invoice service is not provided.
var ErrMissingInvoiceService = errors.New("tui: invoice service is required")

// ErrMissingExportService is returned when the export service is not provided.
var ErrMissingExportService = errors.New("tui: export service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
