package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnAccess(t *testing.T) {
	tb := New("a", "b")
	tb.Rows = [][]string{{"1", "x"}, {"2", "y"}}

	assert.Equal(t, 0, tb.ColumnIndex("a"))
	assert.Equal(t, -1, tb.ColumnIndex("missing"))
	assert.True(t, tb.HasColumn("b"))

	col, err := tb.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, col)

	_, err = tb.Column("missing")
	assert.Error(t, err)
}

func TestRaggedRowsReadAsNull(t *testing.T) {
	tb := New("a", "b", "c")
	tb.Rows = [][]string{{"1"}}

	col, err := tb.Column("c")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, col)
}

func TestAddAndSetColumn(t *testing.T) {
	tb := New("a")
	tb.Rows = [][]string{{"1"}, {"2"}}

	require.NoError(t, tb.AddColumn("b", []string{"x", "y"}))
	assert.Error(t, tb.AddColumn("b", []string{"x", "y"}), "duplicate column")
	assert.Error(t, tb.AddColumn("c", []string{"x"}), "length mismatch")

	require.NoError(t, tb.SetColumn("b", []string{"p", "q"}))
	col, err := tb.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, col)

	// SetColumn on a new name behaves like AddColumn.
	require.NoError(t, tb.SetColumn("c", []string{"m", "n"}))
	assert.Equal(t, []string{"a", "b", "c"}, tb.Columns)
}

func TestAddColumnToOverlongRow(t *testing.T) {
	// Rows with more cells than the header come from ragged vendor
	// extracts; a column added afterwards must land at its own index,
	// not after the spillover.
	tb, err := ParseCSV(strings.NewReader("a,b\n1,2,SPILL\n"))
	require.NoError(t, err)

	require.NoError(t, tb.SetColumn("project_id", []string{"queue_7"}))
	v, err := tb.Cell(0, "project_id")
	require.NoError(t, err)
	assert.Equal(t, "queue_7", v)

	col, err := tb.Column("project_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"queue_7"}, col)
}

func TestDropColumns(t *testing.T) {
	tb := New("a", "b", "c")
	tb.Rows = [][]string{{"1", "2", "3"}, {"4", "5", "6"}}

	tb.DropColumns("b", "nope")
	assert.Equal(t, []string{"a", "c"}, tb.Columns)
	assert.Equal(t, [][]string{{"1", "3"}, {"4", "6"}}, tb.Rows)
}

func TestRecordRoundTrip(t *testing.T) {
	tb := New("a", "b")
	tb.AppendRecord(map[string]string{"a": "1", "b": "2"})
	tb.AppendRecord(map[string]string{"a": "3"})

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, tb.Record(0))
	assert.Equal(t, map[string]string{"a": "3", "b": ""}, tb.Record(1))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(""))
	assert.True(t, IsNull("   "))
	assert.False(t, IsNull("0"))
}

func TestCSVRoundTrip(t *testing.T) {
	in := "a,b\n1,x\n2,\n"
	tb, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tb.Columns)
	require.Len(t, tb.Rows, 2)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(tb, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, string(data))
}

func TestParseCSVRagged(t *testing.T) {
	tb, err := ParseCSV(strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)
	v, err := tb.Cell(0, "c")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}
