package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseStringFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-06-01", date(2024, 6, 1)},
		{"06/01/2024", date(2024, 6, 1)},
		{"6/1/2024", date(2024, 6, 1)},
		{"Jun 1, 2024", date(2024, 6, 1)},
		{"1-Jun-24", date(2024, 6, 1)},
		{"Q3 2026", date(2026, 7, 1)},
		{"2026 Q1", date(2026, 1, 1)},
		{"2024", date(2024, 1, 1)},
		{"  2024-06-01  ", date(2024, 6, 1)},
	}
	for _, tt := range tests {
		got := ParseString(tt.raw)
		require.NotNil(t, got, "raw: %q", tt.raw)
		assert.True(t, tt.want.Equal(*got), "raw: %q got %v", tt.raw, got)
	}
}

func TestParseStringFailuresAreNull(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a date", "Q5 2024", "13/45/2024"} {
		assert.Nil(t, ParseString(raw), "raw: %q", raw)
	}
}

// A single column may mix formats; the strategy chain handles each
// value independently.
func TestParseStringsMixedFormats(t *testing.T) {
	out := ParseStrings([]string{"2024-06-01", "6/1/2024", "garbage", ""})
	require.Len(t, out, 4)
	assert.NotNil(t, out[0])
	assert.NotNil(t, out[1])
	assert.Nil(t, out[2])
	assert.Nil(t, out[3])
	assert.True(t, out[0].Equal(*out[1]))
}

func fptr(f float64) *float64 { return &f }

func TestParseNumericSpreadsheetEpoch(t *testing.T) {
	// 45000 days after 1899-12-30 is 2023-03-15; mean year ~2023.
	out := ParseNumeric([]*float64{fptr(45000), fptr(45100), nil}, 2023)
	require.Len(t, out, 3)
	require.NotNil(t, out[0])
	assert.Equal(t, date(2023, 3, 15), out[0].UTC())
	assert.Nil(t, out[2])
}

func TestParseNumericUnixEpoch(t *testing.T) {
	// 19500 days from 1970-01-01 is mid-2023; from the spreadsheet
	// epoch it would be 1953, far from the target year.
	out := ParseNumeric([]*float64{fptr(19500), fptr(19600)}, 2023)
	require.NotNil(t, out[0])
	assert.Equal(t, 2023, out[0].Year())
}

func TestParseNumericNullsFailureYears(t *testing.T) {
	// Zero under the spreadsheet epoch is 1899-12-30: a missing value
	// mis-encoded by spreadsheet software, not a real date.
	out := ParseNumeric([]*float64{fptr(0), fptr(45000)}, 2023)
	assert.Nil(t, out[0])
	require.NotNil(t, out[1])
	assert.Equal(t, date(2023, 3, 15), out[1].UTC(), "the zero must not flip the column to the Unix epoch")
}

func TestChooseEpochIgnoresMisencodedZeros(t *testing.T) {
	// A column that is mostly zeros still reads its real values against
	// the spreadsheet epoch.
	out := ParseNumeric([]*float64{fptr(0), fptr(0), fptr(0), fptr(45000)}, 2023)
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])
	assert.Nil(t, out[2])
	require.NotNil(t, out[3])
	assert.Equal(t, 2023, out[3].Year())
}

func TestIsDateColumn(t *testing.T) {
	assert.True(t, IsDateColumn("queue_date"))
	assert.True(t, IsDateColumn("date_withdrawn"))
	assert.True(t, IsDateColumn("Date"))
	assert.False(t, IsDateColumn("updated"))
	assert.False(t, IsDateColumn("datum_id"))
}

func TestParseColumnDetectsNumeric(t *testing.T) {
	out := ParseColumn([]string{"45000", "", "45100"}, 2023)
	require.NotNil(t, out[0])
	assert.Equal(t, 2023, out[0].Year())

	out = ParseColumn([]string{"2024-06-01", "45000"}, 2023)
	assert.NotNil(t, out[0], "mixed column falls back to string parsing")
	assert.Nil(t, out[1], "bare offset is not a parseable date string")
}

func TestParseTableDates(t *testing.T) {
	tb := table.New("project_id", "queue_date", "status")
	tb.Rows = [][]string{
		{"p1", "6/1/2024", "active"},
		{"p2", "bogus", "active"},
	}

	require.NoError(t, ParseTableDates(tb, 2024))

	assert.Equal(t, []string{"project_id", "queue_date", "status", "queue_date_raw"}, tb.Columns)

	parsed, err := tb.Cell(0, "queue_date")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:00:00Z", parsed)

	raw, err := tb.Cell(1, "queue_date_raw")
	require.NoError(t, err)
	assert.Equal(t, "bogus", raw)

	failed, err := tb.Cell(1, "queue_date")
	require.NoError(t, err)
	assert.Equal(t, "", failed)
}
