// Package table loads medicine records from spreadsheets, holds them in
// memory together with the Chinese target columns and writes the result as
// a BOM-prefixed UTF-8 CSV.
package table
