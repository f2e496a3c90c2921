package driven

import (
	"context"

	"github.com/custodia-labs/finvoice/internal/core/domain"
)

// ItemScanner extracts invoice line items from a photo or scan.
type ItemScanner interface {
	// Scan returns the line items found in image. Items carry fresh IDs;
	// missing quantities default to 1 and missing prices to 0.
	Scan(ctx context.Context, image []byte, mimeType string) ([]domain.LineItem, error)
}
