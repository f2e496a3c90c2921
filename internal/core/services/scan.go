package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/core/ports/driving"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure ScanService implements the interface.
var _ driving.ScanService = (*ScanService)(nil)

// maxScanImageBytes bounds the photo size sent to the scanner.
const maxScanImageBytes = 20 << 20

// ScanService imports line items from receipt and invoice photos.
type ScanService struct {
	scanner  driven.ItemScanner
	invoices driving.InvoiceService
}

// NewScanService creates a new scan service. scanner may be nil.
func NewScanService(scanner driven.ItemScanner, invoices driving.InvoiceService) *ScanService {
	return &ScanService{
		scanner:  scanner,
		invoices: invoices,
	}
}

// Available reports whether a scanner is configured.
func (s *ScanService) Available() bool {
	return s.scanner != nil
}

// ScanFile extracts line items from an image file.
func (s *ScanService) ScanFile(ctx context.Context, imagePath string) ([]domain.LineItem, error) {
	if s.scanner == nil {
		return nil, domain.ErrScannerUnavailable
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if info.Size() > maxScanImageBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d MiB", domain.ErrInvalidInput, imagePath, maxScanImageBytes>>20)
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	mimeType := detectImageType(imagePath, data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image (%s)", domain.ErrInvalidInput, imagePath, mimeType)
	}

	logger.Debug("Scanning %s (%s, %d bytes)", imagePath, mimeType, len(data))
	items, err := s.scanner.Scan(ctx, data, mimeType)
	if err != nil {
		logger.Warn("scan of %s failed: %v", imagePath, err)
		return nil, err
	}
	logger.Info("Scanned %d items from %s", len(items), imagePath)
	return items, nil
}

// ImportItems appends the scanned items to a saved invoice.
func (s *ScanService) ImportItems(ctx context.Context, invoiceID, imagePath string) (*domain.Invoice, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	items, err := s.ScanFile(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return inv, nil
	}

	merged := make([]domain.LineItem, 0, len(inv.Items)+len(items))
	merged = append(merged, inv.Items...)
	merged = append(merged, items...)
	return s.invoices.SetItems(ctx, invoiceID, merged)
}

// detectImageType prefers the file extension and falls back to sniffing.
func detectImageType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
	}
	return http.DetectContentType(data)
}
