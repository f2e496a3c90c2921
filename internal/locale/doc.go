// Package locale formats monetary amounts for display using CLDR data
// from golang.org/x/text.
package locale
