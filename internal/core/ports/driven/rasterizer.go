package driven

import (
	"context"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// Rasterizer loads rendered documents into a capture surface.
type Rasterizer interface {
	// Open loads doc and locates its printable element.
	// Returns domain.ErrRenderTargetNotFound if the element is missing.
	Open(ctx context.Context, doc *domain.RenderDocument) (CaptureSurface, error)
}

// CaptureSurface is an opened document ready to be captured.
type CaptureSurface interface {
	// HideNonPrintable hides every non-printable element and returns
	// their prior display state.
	HideNonPrintable(ctx context.Context) (*domain.VisibilitySnapshot, error)

	// RestoreVisibility puts back the display state recorded in snapshot.
	RestoreVisibility(ctx context.Context, snapshot *domain.VisibilitySnapshot) error

	// Capture rasterizes the printable element.
	Capture(ctx context.Context, opts domain.RasterOptions) (*domain.Bitmap, error)

	// Close releases the surface.
	Close() error
}
