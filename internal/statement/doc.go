// Package statement models label-indexed financial statements and resolves
// line items out of them by case-insensitive label matching.
//
// Providers label the same line item inconsistently ("Total Stockholder
// Equity", "Total Equity", "Stockholders Equity"), so fields are looked up
// with an ordered list of candidate substrings rather than by exact key.
package statement
