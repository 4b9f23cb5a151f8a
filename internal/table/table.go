package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrEmptySheet is returned when the input has no header row.
	ErrEmptySheet = errors.New("input sheet is empty")
)

// Schema names the three source columns and the three target columns.
type Schema struct {
	NameColumn        string
	CategoryColumn    string
	DescriptionColumn string

	NameTarget        string
	CategoryTarget    string
	DescriptionTarget string
}

// DefaultSchema returns the column names of the medicine export.
func DefaultSchema() Schema {
	return Schema{
		NameColumn:        "Drug_Name",
		CategoryColumn:    "Reason",
		DescriptionColumn: "Description",

		NameTarget:        "药品名称（中文）",
		CategoryTarget:    "药瓶类型（中文）",
		DescriptionTarget: "药品描述（中文）",
	}
}

func (s Schema) sources() []string {
	return []string{s.NameColumn, s.CategoryColumn, s.DescriptionColumn}
}

func (s Schema) targets() []string {
	return []string{s.NameTarget, s.CategoryTarget, s.DescriptionTarget}
}

// MissingColumnsError lists the required columns that the header lacks.
type MissingColumnsError struct {
	Missing  []string
	Required []string
	Present  []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns %s (required: %s, present: %s)",
		strings.Join(e.Missing, ", "),
		strings.Join(e.Required, ", "),
		strings.Join(e.Present, ", "))
}

// Table is an in-memory sheet. Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string

	source [3]int
	target [3]int
}

// New validates the header against schema, pads short rows and appends or
// clears the target columns.
func New(header []string, rows [][]string, schema Schema) (*Table, error) {
	header = normalizeHeader(header, rows)
	if len(header) == 0 {
		return nil, ErrEmptySheet
	}

	t := &Table{Header: header}

	var missing []string
	for i, name := range schema.sources() {
		idx := t.column(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		t.source[i] = idx
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{
			Missing:  missing,
			Required: schema.sources(),
			Present:  t.Header,
		}
	}

	for i, name := range schema.targets() {
		idx := t.column(name)
		if idx < 0 {
			t.Header = append(t.Header, name)
			idx = len(t.Header) - 1
		}
		t.target[i] = idx
	}

	t.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(t.Header))
		copy(cells, row)
		for _, idx := range t.target {
			cells[idx] = ""
		}
		t.Rows = append(t.Rows, cells)
	}

	return t, nil
}

// normalizeHeader sizes the header to the widest populated cell of any row,
// so no data is dropped. Trailing columns that are empty everywhere are
// removed and unnamed columns are called "Unnamed: <index>".
func normalizeHeader(header []string, rows [][]string) []string {
	width := lastPopulated(header)
	for _, row := range rows {
		if n := lastPopulated(row); n > width {
			width = n
		}
	}

	out := make([]string, width)
	copy(out, header)
	for i, name := range out {
		if name == "" {
			out[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	return out
}

// lastPopulated returns one past the index of the last non-empty cell.
func lastPopulated(cells []string) int {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return n
}

func (t *Table) column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Source returns the name, category and description of row i.
func (t *Table) Source(i int) (name, category, description string) {
	row := t.Rows[i]
	return row[t.source[0]], row[t.source[1]], row[t.source[2]]
}

// SetTranslation fills the three target cells of row i.
func (t *Table) SetTranslation(i int, name, category, description string) {
	row := t.Rows[i]
	row[t.target[0]] = name
	row[t.target[1]] = category
	row[t.target[2]] = description
}

// Targets returns the three target cells of row i.
func (t *Table) Targets(i int) (name, category, description string) {
	row := t.Rows[i]
	return row[t.target[0]], row[t.target[1]], row[t.target[2]]
}
