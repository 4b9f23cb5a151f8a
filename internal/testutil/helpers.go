package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// UTF8BOM is the byte-order mark written at the start of every output CSV.
var UTF8BOM = []byte{0xEF, 0xBB, 0xBF}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateTestWorkbook writes rows (header first) into a fresh .xlsx file.
// An empty sheet name uses the workbook's default sheet.
func CreateTestWorkbook(t *testing.T, path, sheet string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)
	if sheet != "" && sheet != name {
		if err := f.SetSheetName(name, sheet); err != nil {
			t.Fatalf("Failed to rename sheet: %v", err)
		}
		name = sheet
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to compute cell name: %v", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			t.Fatalf("Failed to write row %d: %v", i+1, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for workbook: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook %s: %v", path, err)
	}
}

// ReadCSVFile returns the raw bytes of a CSV file and its records with any
// leading BOM removed.
func ReadCSVFile(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, UTF8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV %s: %v", path, err)
	}
	return raw, records
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// MedicineRows builds a header plus n numbered records using the default
// English column names.
func MedicineRows(n int) [][]string {
	rows := [][]string{{"ID", "Drug_Name", "Reason", "Description"}}
	for i := 1; i <= n; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("Drug %d", i),
			"Pain",
			fmt.Sprintf("Relieves pain %d", i),
		})
	}
	return rows
}
