// Package csvexport encodes the invoice history as a spreadsheet-friendly
// CSV document.
//
// Text columns are always quoted so commas, quotes and line breaks in
// free-text fields survive. Money columns are left unquoted with two fixed
// decimals so spreadsheets treat them as numbers. encoding/csv only quotes
// on demand, so rows are assembled here directly.
package csvexport
