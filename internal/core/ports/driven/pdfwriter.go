package driven

import "github.com/custodia-labs/finvoice/internal/core/domain"

// PDFWriter creates paged PDF documents.
type PDFWriter interface {
	// NewDocument creates a document holding one empty page.
	// unit is a length unit such as "mm"; format is a page size such as "A4".
	NewDocument(orientation domain.Orientation, unit, format string) (PDFDocument, error)
}

// PDFDocument is a PDF under construction. Drawing targets the last page.
type PDFDocument interface {
	// AddImage draws bitmap at (x, y) scaled to w × h, in document units.
	AddImage(bitmap *domain.Bitmap, x, y, w, h float64) error

	// AddPage appends an empty page and makes it current.
	AddPage() error

	// PageCount returns the number of pages.
	PageCount() int

	// Save writes the document to path.
	Save(path string) error
}
