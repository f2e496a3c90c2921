package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// withPrintableView hides the surface's non-printable elements, runs fn and
// restores the recorded visibility exactly once, whether fn succeeds,
// fails or panics.
func withPrintableView(ctx context.Context, surface driven.CaptureSurface, fn func() error) (err error) {
	snapshot, err := surface.HideNonPrintable(ctx)
	if err != nil {
		return fmt.Errorf("%w: hide non-printable elements: %w", domain.ErrCaptureFailed, err)
	}
	logger.Debug("Hid %d non-printable elements", len(snapshot.Displays))

	defer func() {
		// Restore even if ctx was cancelled mid-capture.
		if rerr := surface.RestoreVisibility(context.WithoutCancel(ctx), snapshot); rerr != nil {
			logger.Warn("restore visibility failed: %v", rerr)
			if err == nil {
				err = fmt.Errorf("restore visibility: %w", rerr)
			}
		}
	}()

	return fn()
}
