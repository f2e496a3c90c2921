package services

import (
	"context"
	"os"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
)

// mockRenderer is a mock implementation of driven.DocumentRenderer.
type mockRenderer struct {
	RenderFunc func(inv *domain.Invoice) (*domain.RenderDocument, error)
}

func (m *mockRenderer) Render(inv *domain.Invoice) (*domain.RenderDocument, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(inv)
	}
	return &domain.RenderDocument{HTML: "<div id=\"invoice-preview\"></div>", TargetID: "invoice-preview", NoPrintClass: "no-print"}, nil
}

// mockSurface is a mock implementation of driven.CaptureSurface that
// records the order of calls.
type mockSurface struct {
	calls []string

	HideFunc    func() (*domain.VisibilitySnapshot, error)
	RestoreFunc func(*domain.VisibilitySnapshot) error
	CaptureFunc func(opts domain.RasterOptions) (*domain.Bitmap, error)

	restored *domain.VisibilitySnapshot
	closed   int
}

func (m *mockSurface) HideNonPrintable(_ context.Context) (*domain.VisibilitySnapshot, error) {
	m.calls = append(m.calls, "hide")
	if m.HideFunc != nil {
		return m.HideFunc()
	}
	return &domain.VisibilitySnapshot{Displays: []string{"flex", ""}}, nil
}

func (m *mockSurface) RestoreVisibility(_ context.Context, snapshot *domain.VisibilitySnapshot) error {
	m.calls = append(m.calls, "restore")
	m.restored = snapshot
	if m.RestoreFunc != nil {
		return m.RestoreFunc(snapshot)
	}
	return nil
}

func (m *mockSurface) Capture(_ context.Context, opts domain.RasterOptions) (*domain.Bitmap, error) {
	m.calls = append(m.calls, "capture")
	if m.CaptureFunc != nil {
		return m.CaptureFunc(opts)
	}
	return &domain.Bitmap{WidthPx: 210, HeightPx: 599, Format: domain.ImageFormatPNG, Data: []byte("png")}, nil
}

func (m *mockSurface) Close() error {
	m.closed++
	return nil
}

func (m *mockSurface) count(call string) int {
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

// mockRasterizer is a mock implementation of driven.Rasterizer.
type mockRasterizer struct {
	surface  *mockSurface
	OpenFunc func(doc *domain.RenderDocument) (driven.CaptureSurface, error)
}

func (m *mockRasterizer) Open(_ context.Context, doc *domain.RenderDocument) (driven.CaptureSurface, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(doc)
	}
	return m.surface, nil
}

// drawCall records one AddImage call.
type drawCall struct {
	page       int
	x, y, w, h float64
}

// mockPDFWriter is a mock implementation of driven.PDFWriter.
type mockPDFWriter struct {
	created []*mockPDFDocument
	SaveErr error
}

func (m *mockPDFWriter) NewDocument(_ domain.Orientation, _, _ string) (driven.PDFDocument, error) {
	doc := &mockPDFDocument{pages: 1, saveErr: m.SaveErr}
	m.created = append(m.created, doc)
	return doc, nil
}

// mockPDFDocument is a mock implementation of driven.PDFDocument.
type mockPDFDocument struct {
	pages   int
	draws   []drawCall
	saved   string
	saveErr error
}

func (m *mockPDFDocument) AddImage(_ *domain.Bitmap, x, y, w, h float64) error {
	m.draws = append(m.draws, drawCall{page: m.pages - 1, x: x, y: y, w: w, h: h})
	return nil
}

func (m *mockPDFDocument) AddPage() error {
	m.pages++
	return nil
}

func (m *mockPDFDocument) PageCount() int {
	return m.pages
}

func (m *mockPDFDocument) Save(path string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = path
	return os.WriteFile(path, []byte("%PDF-1.3"), 0o600)
}

// mockScanner is a mock implementation of driven.ItemScanner.
type mockScanner struct {
	ScanFunc func(image []byte, mimeType string) ([]domain.LineItem, error)
	mimeType string
}

func (m *mockScanner) Scan(_ context.Context, image []byte, mimeType string) ([]domain.LineItem, error) {
	m.mimeType = mimeType
	if m.ScanFunc != nil {
		return m.ScanFunc(image, mimeType)
	}
	return nil, nil
}
