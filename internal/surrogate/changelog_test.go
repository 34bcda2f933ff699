package surrogate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

func snapshot(t *testing.T, day string, rows map[string]string) Snapshot {
	t.Helper()
	tb := table.New(IDColumn, "queue_status")
	for id, status := range rows {
		tb.AppendRecord(map[string]string{IDColumn: id, "queue_status": status})
	}
	date, err := ParseReportDate(day)
	require.NoError(t, err)
	return Snapshot{ReportDate: date, Table: tb}
}

func findRow(t *testing.T, tb *table.Table, id, reportDate string) map[string]string {
	t.Helper()
	for i := range tb.Rows {
		rec := tb.Record(i)
		if rec[IDColumn] == id && rec[ReportDateColumn] == reportDate {
			return rec
		}
	}
	t.Fatalf("no row for key %s at %s", id, reportDate)
	return nil
}

func TestBuildChangelogKeepsOnlyChanges(t *testing.T) {
	snaps := []Snapshot{
		snapshot(t, "2024-01-01", map[string]string{"1": "active", "2": "active"}),
		snapshot(t, "2024-02-01", map[string]string{"1": "active", "2": "withdrawn"}),
		snapshot(t, "2024-03-01", map[string]string{"1": "active", "2": "withdrawn", "3": "active"}),
	}

	out, err := BuildChangelog(snaps)
	require.NoError(t, err)

	// key 1 never changes: one row. key 2 changes once: two rows.
	// key 3 is new in March: one row.
	assert.Len(t, out.Rows, 4)

	first := findRow(t, out, "2", "2024-01-01")
	assert.Equal(t, "2024-02-01", first[ValidUntilColumn])

	second := findRow(t, out, "2", "2024-02-01")
	assert.Equal(t, "", second[ValidUntilColumn], "latest version is still current")

	only := findRow(t, out, "1", "2024-01-01")
	assert.Equal(t, "", only[ValidUntilColumn])
}

func TestBuildChangelogSortsSnapshots(t *testing.T) {
	snaps := []Snapshot{
		snapshot(t, "2024-02-01", map[string]string{"1": "withdrawn"}),
		snapshot(t, "2024-01-01", map[string]string{"1": "active"}),
	}

	out, err := BuildChangelog(snaps)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	jan := findRow(t, out, "1", "2024-01-01")
	assert.Equal(t, "2024-02-01", jan[ValidUntilColumn])
}

func TestBuildChangelogValidation(t *testing.T) {
	_, err := BuildChangelog(nil)
	assert.Error(t, err)

	bad := table.New("queue_status")
	date, err := ParseReportDate("2024-01-01")
	require.NoError(t, err)
	_, err = BuildChangelog([]Snapshot{{ReportDate: date, Table: bad}})
	assert.Error(t, err, "snapshot without surrogate ids")
}

func TestParseReportDate(t *testing.T) {
	ts, err := ParseReportDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ts)

	_, err = ParseReportDate("June 2024")
	assert.Error(t, err)
}
