package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Orientation of a PDF page.
type Orientation string

// Available orientations.
const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// ImageFormat identifies how Bitmap.Data is encoded.
type ImageFormat string

// Supported bitmap encodings.
const (
	ImageFormatPNG  ImageFormat = "PNG"
	ImageFormatJPEG ImageFormat = "JPG"
)

// Bitmap is a rasterized document. Its content is opaque to the core;
// only the pixel dimensions matter for pagination.
type Bitmap struct {
	WidthPx  int
	HeightPx int
	Format   ImageFormat
	Data     []byte
}

// RasterOptions controls how a document is rasterized.
type RasterOptions struct {
	// Scale is the device scale factor (2 doubles the pixel density).
	Scale float64

	// Background is the opaque fill colour behind the document, e.g. "#ffffff".
	Background string
}

// RenderDocument is the visual description handed to the rasterizer.
type RenderDocument struct {
	// HTML is the complete document markup.
	HTML string

	// TargetID is the element id of the printable surface.
	TargetID string

	// NoPrintClass marks elements hidden during capture.
	NoPrintClass string
}

// VisibilitySnapshot records the display state of non-printable elements
// before they were hidden, in document order.
type VisibilitySnapshot struct {
	Displays []string
}

// PDFFileName returns the export file name for an invoice number.
func PDFFileName(invoiceNumber string) string {
	return "Invoice-" + sanitizeFileComponent(invoiceNumber) + ".pdf"
}

// CSVFileName returns the history export file name for a date.
func CSVFileName(date time.Time) string {
	return "invoice_history_" + date.UTC().Format(DateLayout) + ".csv"
}

// sanitizeFileComponent strips path separators so an invoice number cannot
// escape the output directory.
func sanitizeFileComponent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '-'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "untitled"
	}
	return s
}
