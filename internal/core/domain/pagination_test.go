package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPages_ExactlyOnePage(t *testing.T) {
	plan, err := PlanPages(210, 297, A4Portrait(DefaultPageToleranceMm))

	require.NoError(t, err)
	assert.InDelta(t, 297.0, plan.ImageHeightMm, 1e-9)
	assert.Equal(t, 210.0, plan.ImageWidthMm)
	require.Equal(t, 1, plan.PageCount())
	assert.Equal(t, PageSlice{PageIndex: 0, OffsetMm: 0}, plan.Pages[0])
}

func TestPlanPages_OverflowWithinTolerance(t *testing.T) {
	// 597 * 210 / 420 = 298.5mm, 1.5mm past one page
	plan, err := PlanPages(420, 597, A4Portrait(DefaultPageToleranceMm))

	require.NoError(t, err)
	assert.InDelta(t, 298.5, plan.ImageHeightMm, 1e-9)
	assert.Equal(t, 1, plan.PageCount())
}

func TestPlanPages_ThreePages(t *testing.T) {
	// 297*2 + 5 = 599mm
	plan, err := PlanPages(210, 599, A4Portrait(DefaultPageToleranceMm))

	require.NoError(t, err)
	require.Equal(t, 3, plan.PageCount())
	assert.InDelta(t, 0.0, plan.Pages[0].OffsetMm, 1e-9)
	assert.InDelta(t, -297.0, plan.Pages[1].OffsetMm, 1e-9)
	assert.InDelta(t, -594.0, plan.Pages[2].OffsetMm, 1e-9)

	for i := 1; i < plan.PageCount(); i++ {
		assert.Equal(t, i, plan.Pages[i].PageIndex)
		assert.InDelta(t, -A4HeightMm, plan.Pages[i].OffsetMm-plan.Pages[i-1].OffsetMm, 1e-9)
	}
}

func TestPlanPages_ShortDocument(t *testing.T) {
	plan, err := PlanPages(1000, 200, A4Portrait(DefaultPageToleranceMm))

	require.NoError(t, err)
	assert.InDelta(t, 42.0, plan.ImageHeightMm, 1e-9)
	assert.Equal(t, 1, plan.PageCount())
}

func TestPlanPages_ConfigurableTolerance(t *testing.T) {
	// 298.5mm overflows by 1.5mm; a 1mm tolerance earns a second page.
	plan, err := PlanPages(420, 597, A4Portrait(1))

	require.NoError(t, err)
	require.Equal(t, 2, plan.PageCount())
	assert.InDelta(t, -297.0, plan.Pages[1].OffsetMm, 1e-9)
}

func TestPlanPages_CoversEveryRow(t *testing.T) {
	geometry := A4Portrait(DefaultPageToleranceMm)
	plan, err := PlanPages(1588, 12000, geometry)
	require.NoError(t, err)

	// Each page reveals [−offset, −offset+pageHeight) of the image.
	covered := 0.0
	for _, p := range plan.Pages {
		assert.InDelta(t, covered, -p.OffsetMm, 1e-6)
		covered = -p.OffsetMm + geometry.HeightMm
	}
	assert.Greater(t, covered+geometry.ToleranceMm, plan.ImageHeightMm)
}

func TestPlanPages_ZeroDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 100},
		{"zero height", 100, 0},
		{"both zero", 0, 0},
		{"negative", -1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanPages(tt.width, tt.height, A4Portrait(DefaultPageToleranceMm))

			assert.Nil(t, plan)
			assert.True(t, errors.Is(err, ErrCaptureFailed))
		})
	}
}

func TestPlanPages_InvalidGeometry(t *testing.T) {
	_, err := PlanPages(100, 100, PageGeometry{WidthMm: 210, HeightMm: 0, ToleranceMm: 2})

	assert.True(t, errors.Is(err, ErrInvalidInput))
}
