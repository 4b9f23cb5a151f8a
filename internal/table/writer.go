package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WriteCSV writes the header and all rows to path as comma-separated UTF-8
// with a leading byte-order mark, so spreadsheet applications detect the
// encoding of the Chinese columns.
func (t *Table) WriteCSV(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	encoded := transform.NewWriter(file, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(encoded)

	if err := w.Write(t.Header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := encoded.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return file.Close()
}
