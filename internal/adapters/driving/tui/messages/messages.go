// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewHistory lists saved invoices.
	ViewHistory
	// ViewDetails shows a single invoice with its totals.
	ViewDetails
	// ViewSettings is the settings editor.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewHistory:
		return "history"
	case ViewDetails:
		return "details"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// WatchStarted carries the cancel function of the history subscription.
type WatchStarted struct {
	Stop func()
	Err  error
}

// HistoryUpdated carries a fresh snapshot of the visible invoice history.
type HistoryUpdated struct {
	Invoices []domain.Invoice
}

// InvoiceSelected asks the app to open an invoice.
type InvoiceSelected struct {
	ID string
}

// NewInvoiceRequested asks the app to create and save a fresh invoice.
type NewInvoiceRequested struct{}

// DetailsLoaded carries an invoice with its formatted totals.
type DetailsLoaded struct {
	Details *driving.InvoiceDetails
	Err     error
}

// InvoiceSaved signals an invoice was created, updated or copied.
type InvoiceSaved struct {
	Invoice *domain.Invoice
	Mode    domain.SaveMode
	Err     error
}

// InvoiceDeleted signals an invoice was deleted.
type InvoiceDeleted struct {
	ID  string
	Err error
}

// PDFExported signals a PDF export finished.
type PDFExported struct {
	Path string
	Err  error
}

// CSVExported signals a CSV history export finished.
type CSVExported struct {
	Path string
	Err  error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingSaved signals a single setting was stored.
type SettingSaved struct {
	Key string
	Err error
}
