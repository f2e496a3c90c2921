// Package pdf assembles exported invoice pages with go-pdf/fpdf.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.PDFWriter = (*Writer)(nil)

// Writer creates fpdf documents.
type Writer struct{}

// NewWriter creates a PDF writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewDocument creates a margin-free document holding one empty page.
func (w *Writer) NewDocument(orientation domain.Orientation, unit, format string) (driven.PDFDocument, error) {
	orient := "P"
	switch orientation {
	case domain.OrientationPortrait, "":
	case domain.OrientationLandscape:
		orient = "L"
	default:
		return nil, fmt.Errorf("%w: orientation %q", domain.ErrInvalidInput, orientation)
	}

	pdf := fpdf.New(orient, unit, format, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("finvoice", true)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPDFFailed, err)
	}

	return &document{
		pdf:    pdf,
		images: make(map[*domain.Bitmap]string),
	}, nil
}

// document wraps one fpdf instance.
type document struct {
	pdf *fpdf.Fpdf

	// images maps bitmaps to their registered names so a bitmap drawn on
	// several pages is embedded once.
	images map[*domain.Bitmap]string
}

// AddImage draws bitmap on the current page.
func (d *document) AddImage(bitmap *domain.Bitmap, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{
		ImageType:             string(bitmap.Format),
		AllowNegativePosition: true,
	}

	name, ok := d.images[bitmap]
	if !ok {
		name = fmt.Sprintf("bitmap-%d", len(d.images))
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(bitmap.Data))
		if err := d.pdf.Error(); err != nil {
			return fmt.Errorf("%w: register image: %w", domain.ErrPDFFailed, err)
		}
		d.images[bitmap] = name
	}

	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("%w: draw image: %w", domain.ErrPDFFailed, err)
	}
	return nil
}

// AddPage appends an empty page.
func (d *document) AddPage() error {
	d.pdf.AddPage()
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPDFFailed, err)
	}
	return nil
}

// PageCount returns the number of pages.
func (d *document) PageCount() int {
	return d.pdf.PageCount()
}

// Save writes the document to path and closes it.
func (d *document) Save(path string) error {
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPDFFailed, err)
	}
	return nil
}
