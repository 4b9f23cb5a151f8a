package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Load reads path into a Table. Excel workbooks use sheet, or the first
// sheet when sheet is empty. CSV files ignore sheet.
func Load(path string, schema Schema, sheet string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx":
		records, err = readWorkbook(path, sheet)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q (supported: .xlsx, .xlsm, .xltx, .csv)", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptySheet
	}
	return New(records[0], records[1:], schema)
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	// BOMOverride drops a leading BOM and otherwise passes UTF-8 through.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(file, decoder))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return records, nil
}
