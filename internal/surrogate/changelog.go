package surrogate

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

// Snapshot is one report-dated extract with surrogate keys assigned.
type Snapshot struct {
	ReportDate time.Time
	Table      *table.Table
}

// Changelog bookkeeping columns.
const (
	ReportDateColumn = "report_date"
	ValidUntilColumn = "valid_until_date"
)

// BuildChangelog compares each surrogate key's row hash against its
// immediately preceding snapshot and retains only rows that are new or
// materially changed. Each retained row carries the report_date it
// became valid and a valid_until_date equal to the report date of the
// key's next retained row (empty while still current).
func BuildChangelog(snapshots []Snapshot) (*table.Table, error) {
	if len(snapshots) == 0 {
		return nil, eris.New("surrogate: no snapshots")
	}

	ordered := make([]Snapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReportDate.Before(ordered[j].ReportDate)
	})

	for _, s := range ordered {
		if !s.Table.HasColumn(IDColumn) {
			return nil, eris.Errorf("surrogate: snapshot %s lacks %s column", s.ReportDate.Format("2006-01-02"), IDColumn)
		}
	}

	cols := append([]string(nil), ordered[0].Table.Columns...)
	cols = append(cols, ReportDateColumn, ValidUntilColumn)
	out := table.New(cols...)

	type retained struct {
		rec map[string]string
		row int // index into out.Rows, for back-filling valid_until
	}
	prevHash := make(map[string]int64)
	lastRetained := make(map[string]retained)

	for _, snap := range ordered {
		date := snap.ReportDate.Format("2006-01-02")
		for i := range snap.Table.Rows {
			rec := snap.Table.Record(i)
			id := rec[IDColumn]
			hash := RowHash(rec)

			if prev, seen := prevHash[id]; seen && prev == hash {
				prevHash[id] = hash
				continue
			}
			prevHash[id] = hash

			if prev, ok := lastRetained[id]; ok {
				validUntilIdx := out.ColumnIndex(ValidUntilColumn)
				out.Rows[prev.row][validUntilIdx] = date
			}

			rec[ReportDateColumn] = date
			rec[ValidUntilColumn] = ""
			out.AppendRecord(rec)
			lastRetained[id] = retained{rec: rec, row: len(out.Rows) - 1}
		}
	}
	return out, nil
}

// ParseReportDate reads a snapshot report date from a file-name style
// token like "2024-06-01".
func ParseReportDate(s string) (time.Time, error) {
	ts, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "surrogate: parse report date %q", s)
	}
	return ts, nil
}
