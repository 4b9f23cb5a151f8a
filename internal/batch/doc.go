// Package batch walks a loaded table row by row, translating each record
// and writing the result or a failure marker into the target columns.
package batch
