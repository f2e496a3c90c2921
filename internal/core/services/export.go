package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/csvexport"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// PDF page setup used for every export.
const (
	pdfUnit   = "mm"
	pdfFormat = "A4"
)

// ExportService writes invoices to PDF and CSV files.
type ExportService struct {
	invoices   driving.InvoiceService
	renderer   driven.DocumentRenderer
	rasterizer driven.Rasterizer
	pdf        driven.PDFWriter
	settings   domain.ExportSettings
}

// NewExportService creates a new export service.
// renderer, rasterizer and pdf may be nil; PDF export then returns domain.ErrNotImplemented.
func NewExportService(
	invoices driving.InvoiceService,
	renderer driven.DocumentRenderer,
	rasterizer driven.Rasterizer,
	pdf driven.PDFWriter,
	settings domain.ExportSettings,
) *ExportService {
	return &ExportService{
		invoices:   invoices,
		renderer:   renderer,
		rasterizer: rasterizer,
		pdf:        pdf,
		settings:   settings,
	}
}

// ExportPDF exports a saved invoice to <outDir>/Invoice-<number>.pdf.
func (s *ExportService) ExportPDF(ctx context.Context, invoiceID, outDir string) (string, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	return s.ExportInvoicePDF(ctx, inv, outDir)
}

// ExportInvoicePDF renders inv, captures it as one tall bitmap and lays the
// bitmap onto as many A4 pages as it needs.
//
// Nothing is written when rendering or capturing fails.
func (s *ExportService) ExportInvoicePDF(ctx context.Context, inv *domain.Invoice, outDir string) (string, error) {
	if s.renderer == nil || s.rasterizer == nil || s.pdf == nil {
		return "", domain.ErrNotImplemented
	}
	logger.Section("PDF Export")
	logger.Debug("Invoice: %s", inv.InvoiceNumber)

	doc, err := s.renderer.Render(inv)
	if err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	if doc.TargetID == "" {
		return "", fmt.Errorf("%w: document has no printable element", domain.ErrRenderTargetNotFound)
	}

	bitmap, err := s.capture(ctx, doc)
	if err != nil {
		logger.Warn("capture of %s failed: %v", inv.InvoiceNumber, err)
		return "", err
	}

	plan, err := domain.PlanPages(bitmap.WidthPx, bitmap.HeightPx, s.settings.PageGeometry())
	if err != nil {
		return "", err
	}
	logger.Debug("Bitmap %dx%dpx drawn at %.2fx%.2fmm over %d page(s)",
		bitmap.WidthPx, bitmap.HeightPx, plan.ImageWidthMm, plan.ImageHeightMm, plan.PageCount())

	pdfDoc, err := s.paginate(bitmap, plan)
	if err != nil {
		logger.Warn("pdf assembly of %s failed: %v", inv.InvoiceNumber, err)
		return "", err
	}

	dir := s.outputDir(outDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, domain.PDFFileName(inv.InvoiceNumber))
	if err := pdfDoc.Save(path); err != nil {
		logger.Warn("save %s failed: %v", path, err)
		return "", fmt.Errorf("%w: save %s: %w", domain.ErrPDFFailed, path, err)
	}

	logger.Info("Exported %s (%d pages)", path, pdfDoc.PageCount())
	return path, nil
}

// capture opens the document and rasterizes its printable element with
// non-printable elements hidden.
func (s *ExportService) capture(ctx context.Context, doc *domain.RenderDocument) (*domain.Bitmap, error) {
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}
	defer logger.Timed("rasterize")()

	surface, err := s.rasterizer.Open(ctx, doc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			logger.Warn("close capture surface: %v", cerr)
		}
	}()

	var bitmap *domain.Bitmap
	err = withPrintableView(ctx, surface, func() error {
		var cerr error
		bitmap, cerr = surface.Capture(ctx, s.settings.RasterOptions())
		return cerr
	})
	if err != nil {
		return nil, err
	}
	return bitmap, nil
}

// paginate draws the whole bitmap once per page, shifted up by each
// page's offset so consecutive bands of the image appear in order.
func (s *ExportService) paginate(bitmap *domain.Bitmap, plan *domain.PagePlan) (driven.PDFDocument, error) {
	doc, err := s.pdf.NewDocument(domain.OrientationPortrait, pdfUnit, pdfFormat)
	if err != nil {
		return nil, err
	}

	for i, page := range plan.Pages {
		if i > 0 {
			if err := doc.AddPage(); err != nil {
				return nil, err
			}
		}
		if err := doc.AddImage(bitmap, 0, page.OffsetMm, plan.ImageWidthMm, plan.ImageHeightMm); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// ExportCSV writes the visible history as CSV to w.
func (s *ExportService) ExportCSV(ctx context.Context, w io.Writer) error {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return err
	}
	return csvexport.Write(w, invoices)
}

// ExportHistoryCSV writes the visible history to <dir>/invoice_history_<date>.csv.
func (s *ExportService) ExportHistoryCSV(ctx context.Context, dir string, now time.Time) (string, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return "", err
	}

	dir = s.outputDir(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, domain.CSVFileName(now))
	if err := os.WriteFile(path, []byte(csvexport.Encode(invoices)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("Exported %d invoices to %s", len(invoices), path)
	return path, nil
}

func (s *ExportService) outputDir(dir string) string {
	if dir != "" {
		return dir
	}
	if s.settings.OutputDir != "" {
		return s.settings.OutputDir
	}
	return "."
}
