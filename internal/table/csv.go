package table

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a CSV file into a table. The first record is the
// header. Raw vendor extracts have arbitrary column sets, so this path
// stays generic; typed canonical tables go through csvutil instead.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ParseCSV(f)
}

// ParseCSV reads CSV content from r into a table.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // vendor extracts are occasionally ragged

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv header")
	}

	t := New(header...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: read csv record")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteCSV writes the table to path, header first.
func WriteCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "table: create csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "table: write csv header")
	}
	for i, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j := range t.Columns {
			rec[j] = t.cell(row, j)
		}
		if err := w.Write(rec); err != nil {
			return eris.Wrapf(err, "table: write csv row %d", i)
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "table: flush csv")
}
