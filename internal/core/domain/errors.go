package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrAuthRequired indicates the operation needs a signed-in user.
	// Guest mode can draft invoices but cannot save or delete them.
	ErrAuthRequired = errors.New("authentication required")

	// Export Errors.

	// ErrRenderTargetNotFound indicates the document has no renderable surface.
	ErrRenderTargetNotFound = errors.New("render target not found")

	// ErrCaptureFailed indicates the rasterizer produced an unusable bitmap,
	// such as one with zero width or height.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrRasterizeFailed indicates the external rasterizer raised an error.
	ErrRasterizeFailed = errors.New("rasterize failed")

	// ErrPDFFailed indicates the PDF writer failed to assemble or save the file.
	ErrPDFFailed = errors.New("pdf assembly failed")

	// Scanner Errors.

	// ErrScannerUnavailable indicates no line-item scanner is configured.
	ErrScannerUnavailable = errors.New("scanner unavailable")

	// ErrScanFailed indicates the scanner could not extract line items.
	ErrScanFailed = errors.New("scan failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
