package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table is a header plus string rows, the shape of the survey CSV before
// any column is interpreted as numeric.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV loads a table from path. The first record is the header; short
// rows are padded with empty cells.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a CSV table from r.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec[:len(header)])
	}
	return t, nil
}

// ColumnIndex finds a column by name, ignoring surrounding spaces and case.
// Returns -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// NumericColumns returns the indexes of columns whose every non-empty cell
// parses as a number, in header order. Excluded columns and columns with no
// numeric cell at all are skipped.
func (t *Table) NumericColumns(exclude []string) []int {
	skip := make(map[int]bool, len(exclude))
	for _, name := range exclude {
		if i := t.ColumnIndex(name); i >= 0 {
			skip[i] = true
		}
	}

	var cols []int
	for c := range t.Header {
		if skip[c] {
			continue
		}
		seen := 0
		numeric := true
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[c])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
				break
			}
			seen++
		}
		if numeric && seen > 0 {
			cols = append(cols, c)
		}
	}
	return cols
}

// Matrix extracts the given columns as row-major floats. Empty cells take
// the mean of the column's present values (0 when the column has none).
// The second return value counts filled cells.
func (t *Table) Matrix(cols []int) ([][]float64, int, error) {
	means := make([]float64, len(cols))
	for j, c := range cols {
		var sum float64
		var n int
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[c])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("column %q: %w", t.Header[c], err)
			}
			sum += v
			n++
		}
		if n > 0 {
			means[j] = sum / float64(n)
		}
	}

	filled := 0
	out := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		vec := make([]float64, len(cols))
		for j, c := range cols {
			cell := strings.TrimSpace(row[c])
			if cell == "" {
				vec[j] = means[j]
				filled++
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("row %d column %q: %w", i+1, t.Header[c], err)
			}
			vec[j] = v
		}
		out[i] = vec
	}
	return out, filled, nil
}

// Columns returns the header names for the given indexes.
func (t *Table) Columns(cols []int) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = t.Header[c]
	}
	return names
}

// AppendColumn adds a column with one value per row.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// WriteCSV writes the table to path, replacing any existing file.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return f.Close()
}
