// Package archive keeps previous translation results by moving them aside
// before a new run overwrites the output file.
package archive
