// Package table holds the in-memory string-celled table model the
// normalization pipeline transforms. An empty cell is treated as null,
// matching the CSV and XLSX sources the vendor extracts arrive in.
package table

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a fully materialized tabular dataset with named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// ColumnIndex returns the index of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the named column's values, one per row.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, eris.Errorf("table: no column %q", name)
	}
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = t.cell(row, idx)
	}
	return vals, nil
}

// Cell returns the value at (row, column name), or "" if the row is
// ragged. The column must exist.
func (t *Table) Cell(row int, name string) (string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return "", eris.Errorf("table: no column %q", name)
	}
	return t.cell(t.Rows[row], idx), nil
}

func (t *Table) cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// AddColumn appends a column with the given values. The value count
// must match the row count.
func (t *Table) AddColumn(name string, values []string) error {
	if t.HasColumn(name) {
		return eris.Errorf("table: column %q already exists", name)
	}
	if len(values) != len(t.Rows) {
		return eris.Errorf("table: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	idx := len(t.Columns)
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		// Pad short rows and drop unaddressable spillover cells from
		// ragged ones, so the new value lands at the column index.
		for len(t.Rows[i]) < idx {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i] = append(t.Rows[i][:idx], values[i])
	}
	return nil
}

// SetColumn overwrites the named column's values, adding the column if
// it does not exist yet.
func (t *Table) SetColumn(name string, values []string) error {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return t.AddColumn(name, values)
	}
	if len(values) != len(t.Rows) {
		return eris.Errorf("table: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	for i := range t.Rows {
		for len(t.Rows[i]) <= idx {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// RenameColumn renames a column in place. Missing source columns are
// ignored so vendor profiles can list optional renames.
func (t *Table) RenameColumn(from, to string) {
	if idx := t.ColumnIndex(from); idx >= 0 {
		t.Columns[idx] = to
	}
}

// DropColumns removes the named columns and their cells. Unknown names
// are ignored.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[int]bool, len(names))
	for _, n := range names {
		if idx := t.ColumnIndex(n); idx >= 0 {
			drop[idx] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	kept := make([]string, 0, len(t.Columns)-len(drop))
	for i, c := range t.Columns {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	for r, row := range t.Rows {
		next := make([]string, 0, len(kept))
		for i := range t.Columns {
			if !drop[i] {
				next = append(next, t.cell(row, i))
			}
		}
		t.Rows[r] = next
	}
	t.Columns = kept
}

// Record returns row i as a column-name → value map.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Columns))
	for j, c := range t.Columns {
		rec[c] = t.cell(t.Rows[i], j)
	}
	return rec
}

// AppendRecord appends a row built from a column-name → value map.
// Columns absent from the map become empty cells.
func (t *Table) AppendRecord(rec map[string]string) {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = rec[c]
	}
	t.Rows = append(t.Rows, row)
}

// IsNull reports whether a cell value counts as null.
func IsNull(v string) bool {
	return strings.TrimSpace(v) == ""
}
