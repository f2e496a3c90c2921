package domain

import "fmt"

// Page geometry defaults, in millimetres.
const (
	A4WidthMm  = 210.0
	A4HeightMm = 297.0

	// DefaultPageToleranceMm absorbs scaling noise so a microscopic overflow
	// does not produce a near-empty trailing page.
	DefaultPageToleranceMm = 2.0
)

// PageGeometry describes the printed page the bitmap is laid onto.
type PageGeometry struct {
	// WidthMm is the page width; the bitmap is scaled to fill it.
	WidthMm float64

	// HeightMm is the page height.
	HeightMm float64

	// ToleranceMm is the smallest overflow that earns another page.
	ToleranceMm float64
}

// A4Portrait returns A4 portrait geometry with the given overflow tolerance.
func A4Portrait(toleranceMm float64) PageGeometry {
	return PageGeometry{
		WidthMm:     A4WidthMm,
		HeightMm:    A4HeightMm,
		ToleranceMm: toleranceMm,
	}
}

// PageSlice says where the full bitmap is drawn on one page.
// OffsetMm is zero for the first page and negative afterwards, shifting the
// image up so the next unseen band starts at the page top.
type PageSlice struct {
	PageIndex int
	OffsetMm  float64
}

// PagePlan is the output of PlanPages.
type PagePlan struct {
	// ImageWidthMm is the drawn width of the bitmap on every page.
	ImageWidthMm float64

	// ImageHeightMm is the drawn height of the bitmap on every page.
	ImageHeightMm float64

	// Pages holds one slice per emitted page, in order.
	Pages []PageSlice
}

// PageCount returns the number of pages in the plan.
func (p *PagePlan) PageCount() int {
	return len(p.Pages)
}

// PlanPages scales a canvas of widthPx × heightPx to the page width and
// computes the offset at which the whole image is drawn on each page.
//
// A zero-sized canvas is reported as ErrCaptureFailed so no empty or
// malformed document is produced.
func PlanPages(widthPx, heightPx int, geometry PageGeometry) (*PagePlan, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return nil, fmt.Errorf("%w: canvas is %dx%d", ErrCaptureFailed, widthPx, heightPx)
	}
	if geometry.WidthMm <= 0 || geometry.HeightMm <= 0 {
		return nil, fmt.Errorf("%w: page geometry %.2fx%.2fmm", ErrInvalidInput, geometry.WidthMm, geometry.HeightMm)
	}

	imgWidth := geometry.WidthMm
	imgHeight := float64(heightPx) * imgWidth / float64(widthPx)

	plan := &PagePlan{
		ImageWidthMm:  imgWidth,
		ImageHeightMm: imgHeight,
		Pages:         []PageSlice{{PageIndex: 0, OffsetMm: 0}},
	}

	remaining := imgHeight - geometry.HeightMm
	for remaining >= geometry.ToleranceMm {
		plan.Pages = append(plan.Pages, PageSlice{
			PageIndex: len(plan.Pages),
			OffsetMm:  remaining - imgHeight,
		})
		remaining -= geometry.HeightMm
	}

	return plan, nil
}
