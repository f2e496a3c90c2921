// Package domain defines the core business entities for finvoice.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types and the pure computations over them:
//
//   - Invoice: A saved or draft invoice with its line items and settings
//   - InvoiceTotals: Subtotal, tax and grand total derived from line items
//   - Terbilang: Indonesian number-to-words transcription of an amount
//   - PagePlan: How a tall rendered bitmap is sliced onto A4 pages
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/shopspring/decimal
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
