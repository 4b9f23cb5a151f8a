// Package processor contains the top-level workflow of a translation run.
// It archives the previous output, loads and validates the input table,
// drives the row-by-row translation and writes the resulting CSV.
package processor
