// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - InvoiceStore: Invoice persistence keyed by user, with change subscriptions
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the dependent operation returns domain.ErrNotImplemented:
//
//   - DocumentRenderer: Turns an invoice into a printable document. Required for PDF export.
//   - Rasterizer: Captures a rendered document as a bitmap. Required for PDF export.
//   - PDFWriter: Assembles bitmaps into a paged PDF. Required for PDF export.
//   - ItemScanner: Extracts line items from a photo. Without it, scanning is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
