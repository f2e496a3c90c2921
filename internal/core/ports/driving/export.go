package driving

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// ExportService turns invoices into files.
type ExportService interface {
	// ExportPDF renders, rasterizes and paginates an invoice into
	// <outDir>/Invoice-<number>.pdf and returns the path.
	ExportPDF(ctx context.Context, invoiceID, outDir string) (string, error)

	// ExportInvoicePDF is ExportPDF for an invoice that need not be saved.
	ExportInvoicePDF(ctx context.Context, inv *domain.Invoice, outDir string) (string, error)

	// ExportCSV writes the visible history as CSV to w.
	ExportCSV(ctx context.Context, w io.Writer) error

	// ExportHistoryCSV writes the visible history to
	// <dir>/invoice_history_<date>.csv and returns the path.
	ExportHistoryCSV(ctx context.Context, dir string, now time.Time) (string, error)
}
