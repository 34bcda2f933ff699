package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

func TestNormalizePOI(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Maple Ridge Substation 115kV", "maple ridge"},
		{"115 kV Maple-Ridge Station", "maple ridge"},
		{"Ridge Maple", "maple ridge"}, // permutation-invariant
		{"Oak Creek Tap, 34.5kV", "creek oak"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePOI(tt.raw), "raw: %q", tt.raw)
	}
}

func TestNormalizeUtility(t *testing.T) {
	assert.Equal(t, "pacificorp", NormalizeUtility(" PacifiCorp ", "MISO"))
	assert.Equal(t, "miso", NormalizeUtility("", "MISO"))
	assert.Equal(t, "", NormalizeUtility("", ""))
}

func TestStatusRanker(t *testing.T) {
	r, err := LoadStatusRanker()
	require.NoError(t, err)

	assert.Greater(t, r.Rank("operational"), r.Rank("withdrawn"))
	assert.Greater(t, r.Rank("withdrawn"), r.Rank("construction"))
	assert.Greater(t, r.Rank("IA Executed"), r.Rank("feasibility study"))
	assert.Equal(t, 0, r.Rank("never heard of it"))
	assert.Equal(t, 0, r.Rank(""))
}

func ts(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func dup(id string, completion *time.Time, status string, queue *time.Time) model.Project {
	mw := 200.0
	return model.Project{
		ProjectID:              id,
		PointOfInterconnection: "Maple Ridge Substation 115kV",
		Utility:                "PacifiCorp",
		CapacityMW:             &mw,
		QueueStatus:            "active",
		InterconnectionStatus:  status,
		ProposedCompletionDate: completion,
		QueueDate:              queue,
	}
}

func siblings(ids ...string) ([]model.Location, []model.ResourceCapacity) {
	var locs []model.Location
	var res []model.ResourceCapacity
	for _, id := range ids {
		locs = append(locs, model.Location{ProjectID: id, RawStateName: "OR", RawCountyName: "Coos"})
		res = append(res, model.ResourceCapacity{ProjectID: id, ResourceRaw: "pv", ResourceClean: "Solar"})
	}
	return locs, res
}

// Two rows identical on the dedup key but with different proposed
// completion dates collapse to the one with the later date.
func TestDeduplicateLaterCompletionWins(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	projects := []model.Project{
		dup("p1", ts(2026, 6, 1), "ia executed", ts(2022, 1, 1)),
		dup("p2", ts(2027, 3, 1), "ia executed", ts(2022, 1, 1)),
	}
	locs, res := siblings("p1", "p2")

	kept := d.Deduplicate(projects, locs, res)
	require.Len(t, kept, 1)
	assert.Equal(t, "p2", kept[0].ProjectID)
}

func TestDeduplicateStatusRankBreaksDateTie(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	projects := []model.Project{
		dup("p1", ts(2026, 6, 1), "feasibility study", nil),
		dup("p2", ts(2026, 6, 1), "withdrawn", nil),
	}
	locs, res := siblings("p1", "p2")

	kept := d.Deduplicate(projects, locs, res)
	require.Len(t, kept, 1)
	assert.Equal(t, "p2", kept[0].ProjectID, "terminal status outranks in-study")
}

func TestDeduplicateNullsSortLast(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	projects := []model.Project{
		dup("p1", nil, "", nil),
		dup("p2", ts(2026, 6, 1), "", nil),
	}
	locs, res := siblings("p1", "p2")

	kept := d.Deduplicate(projects, locs, res)
	require.Len(t, kept, 1)
	assert.Equal(t, "p2", kept[0].ProjectID, "any date beats no date")
}

func TestDeduplicateDistinctKeysUntouched(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	p1 := dup("p1", ts(2026, 6, 1), "ia executed", nil)
	p2 := dup("p2", ts(2026, 6, 1), "ia executed", nil)
	p2.PointOfInterconnection = "Oak Creek Tap"
	locs, res := siblings("p1", "p2")

	kept := d.Deduplicate([]model.Project{p1, p2}, locs, res)
	assert.Len(t, kept, 2)
}

func TestDeduplicateDeterministic(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	projects := []model.Project{
		dup("p1", nil, "", nil),
		dup("p2", nil, "", nil),
		dup("p3", nil, "", nil),
	}
	locs, res := siblings("p1", "p2", "p3")

	first := d.Deduplicate(projects, locs, res)
	for i := 0; i < 10; i++ {
		again := d.Deduplicate(projects, locs, res)
		assert.Equal(t, first, again)
	}
	require.Len(t, first, 1)
	assert.Equal(t, "p1", first[0].ProjectID, "full tie keeps first input row")
}

func TestFilterChildren(t *testing.T) {
	kept := []model.Project{{ProjectID: "p2"}}
	locs, res := siblings("p1", "p2")

	outLocs, outRes := FilterChildren(kept, locs, res)
	require.Len(t, outLocs, 1)
	require.Len(t, outRes, 1)
	assert.Equal(t, "p2", outLocs[0].ProjectID)
	assert.Equal(t, "p2", outRes[0].ProjectID)
}
