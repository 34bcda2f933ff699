package surrogate

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

func TestCanonicalize(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mw := 200.0

	tests := []struct {
		in   any
		want string
	}{
		{"  Maple Ridge  ", "maple ridge"},
		{"", ""},
		{nil, ""},
		{200.0, "200.000"},
		{200.0004, "200.000"}, // representation noise collapses
		{&mw, "200.000"},
		{(*float64)(nil), ""},
		{42, "42"},
		{ts, "2024-06-01T12:00:00Z"},
		{(*time.Time)(nil), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), "input: %v", tt.in)
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("Maple Ridge", "Phase 1", "solar", 200.0)
	b := Key("  maple ridge ", "phase 1", "SOLAR", 200.0001)
	assert.Equal(t, a, b, "byte-identical canonicalized inputs hash identically")

	c := Key("Maple Ridge", "Phase 2", "solar", 200.0)
	assert.NotEqual(t, a, c)
}

func TestAssignKeysUniqueAt10k(t *testing.T) {
	gofakeit.Seed(11)

	tb := table.New("project_name", "phase", "capacity_mw")
	for i := 0; i < 10000; i++ {
		tb.Rows = append(tb.Rows, []string{
			gofakeit.Company(),
			fmt.Sprintf("phase %d", i), // guarantees tuple uniqueness
			fmt.Sprintf("%.1f", gofakeit.Float64Range(1, 2000)),
		})
	}

	require.NoError(t, AssignKeys(tb, []string{"project_name", "phase", "capacity_mw"}))

	keys, err := tb.Column(IDColumn)
	require.NoError(t, err)
	distinct := make(map[string]bool, len(keys))
	for _, k := range keys {
		distinct[k] = true
	}
	assert.Len(t, distinct, 10000)
}

func TestAssignKeysDuplicateNaturalKeyFatal(t *testing.T) {
	tb := table.New("name", "state")
	tb.Rows = [][]string{
		{"Maple Ridge", "OR"},
		{"maple ridge ", "or"}, // same tuple after canonicalization
		{"Oak Creek", "OR"},
	}

	err := AssignKeys(tb, []string{"name", "state"})
	require.Error(t, err)

	var dup *DuplicateKeyError
	require.True(t, eris.As(err, &dup))
	assert.Equal(t, 1, dup.Duplicates)
	assert.False(t, tb.HasColumn(IDColumn), "no output on fatal violation")
}

func TestAssignKeysValidation(t *testing.T) {
	tb := table.New("a")
	assert.Error(t, AssignKeys(tb, nil))
	assert.Error(t, AssignKeys(tb, []string{"missing"}))
}

func TestRowHashIgnoresRawAndDateColumns(t *testing.T) {
	base := map[string]string{
		"project_name": "Maple Ridge",
		"queue_status": "active",
		IDColumn:       "123",
	}
	changedRaw := map[string]string{
		"project_name":   "Maple Ridge",
		"queue_status":   "active",
		IDColumn:         "123",
		"queue_date_raw": "6/1/24",
		"queue_date":     "2024-06-01",
	}
	assert.Equal(t, RowHash(base), RowHash(changedRaw))

	changed := map[string]string{
		"project_name": "Maple Ridge",
		"queue_status": "withdrawn",
		IDColumn:       "123",
	}
	assert.NotEqual(t, RowHash(base), RowHash(changed))
}
