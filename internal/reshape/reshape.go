// Package reshape converts denormalized one-to-many wide columns
// (resource_type_1..3, county_1..3) into long relational child tables.
package reshape

import (
	"github.com/rotisserie/eris"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

// AttrGroup names one target attribute and the ordered parallel source
// columns that feed it. Groups passed to Normalize together must have
// source lists of equal length; aligning them is the caller's job and
// is not checked here.
type AttrGroup struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
}

// Normalize melts the wide source columns into one row per (input row,
// slot index), zipping slots positionally across all groups. Rows where
// every target attribute is null are dropped. The id column's value is
// carried into every output row as the foreign key back to the input.
func Normalize(t *table.Table, idCol string, groups []AttrGroup) (*table.Table, error) {
	if len(groups) == 0 {
		return nil, eris.New("reshape: no attribute groups")
	}
	if !t.HasColumn(idCol) {
		return nil, eris.Errorf("reshape: no id column %q", idCol)
	}
	for _, g := range groups {
		for _, src := range g.Sources {
			if !t.HasColumn(src) {
				return nil, eris.Errorf("reshape: attribute %q references missing column %q", g.Name, src)
			}
		}
	}

	cols := make([]string, 0, len(groups)+1)
	cols = append(cols, idCol)
	for _, g := range groups {
		cols = append(cols, g.Name)
	}
	out := table.New(cols...)

	slots := len(groups[0].Sources)
	for i := range t.Rows {
		id, err := t.Cell(i, idCol)
		if err != nil {
			return nil, err
		}
		for s := 0; s < slots; s++ {
			row := make([]string, 0, len(cols))
			row = append(row, id)
			allNull := true
			for _, g := range groups {
				v, err := t.Cell(i, g.Sources[s])
				if err != nil {
					return nil, err
				}
				if !table.IsNull(v) {
					allNull = false
				}
				row = append(row, v)
			}
			if allNull {
				continue
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// SourceColumns returns every source column named by the groups, in
// order, for dropping from the parent table once consumed.
func SourceColumns(groups []AttrGroup) []string {
	var cols []string
	for _, g := range groups {
		cols = append(cols, g.Sources...)
	}
	return cols
}
