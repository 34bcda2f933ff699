package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

func TestNormalizeFIPS(t *testing.T) {
	assert.Equal(t, "06", NormalizeFIPSState("6"))
	assert.Equal(t, "41", NormalizeFIPSState("41"))
	assert.Equal(t, "", NormalizeFIPSState(""))

	assert.Equal(t, "011", NormalizeFIPSCounty("11"))
	assert.Equal(t, "001", NormalizeFIPSCounty("1"))

	assert.Equal(t, "41011", CombineFIPS("41", "11"))
	assert.Equal(t, "", CombineFIPS("", "11"))

	assert.Equal(t, "06037", FormatFIPS(6037, 5))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "dona ana", NormalizeName("  Doña   Ana "))
	assert.Equal(t, "coos", NormalizeName("COOS"))
}

func TestNormalizeCountyName(t *testing.T) {
	assert.Equal(t, "coos", NormalizeCountyName("Coos County"))
	assert.Equal(t, "st. landry", NormalizeCountyName("St. Landry Parish"))
	assert.Equal(t, "matanuska-susitna", NormalizeCountyName("Matanuska-Susitna Borough"))
}

func TestStateFIPS(t *testing.T) {
	assert.Equal(t, "41", StateFIPS("OR"))
	assert.Equal(t, "41", StateFIPS("oregon"))
	assert.Equal(t, "36", StateFIPS(" NY "))
	assert.Equal(t, "", StateFIPS("narnia"))
}

func TestLoadAliases(t *testing.T) {
	aliases, err := LoadAliases()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, aliases.Len(), 20)

	state, locality := aliases.Apply("OR", "Coos & Curry")
	assert.Equal(t, "or", state)
	assert.Equal(t, "coos", locality)

	state, locality = aliases.Apply("wa", "king")
	assert.Equal(t, "wa", state, "unknown pairs pass through unchanged")
	assert.Equal(t, "king", locality)
}

func testCounties() []model.County {
	return []model.County{
		{StateIDFIPS: "41", CountyIDFIPS: "41011", State: "OR", CountyName: "Coos"},
		{StateIDFIPS: "41", CountyIDFIPS: "41051", State: "OR", CountyName: "Multnomah"},
		{StateIDFIPS: "36", CountyIDFIPS: "36085", State: "NY", CountyName: "Richmond"},
		{StateIDFIPS: "35", CountyIDFIPS: "35013", State: "NM", CountyName: "Doña Ana"},
		{StateIDFIPS: "51", CountyIDFIPS: "51810", State: "VA", CountyName: "Virginia Beach"},
	}
}

func TestReferenceLookup(t *testing.T) {
	ref, err := NewReference(testCounties())
	require.NoError(t, err)
	assert.Equal(t, 5, ref.Len())

	c, ok := ref.LookupName("OR", "Coos County")
	require.True(t, ok)
	assert.Equal(t, "41011", c.CountyIDFIPS)

	c, ok = ref.LookupName("new mexico", "Dona Ana")
	require.True(t, ok, "diacritics fold in both directions")
	assert.Equal(t, "35013", c.CountyIDFIPS)

	_, ok = ref.LookupName("OR", "Narnia")
	assert.False(t, ok)

	c, ok = ref.LookupFIPS("36085")
	require.True(t, ok)
	assert.Equal(t, "Richmond", c.CountyName)
}

func TestReferenceNormalizesShortFIPS(t *testing.T) {
	ref, err := NewReference([]model.County{
		{StateIDFIPS: "6", CountyIDFIPS: "37", State: "CA", CountyName: "Los Angeles"},
	})
	require.NoError(t, err)

	c, ok := ref.LookupName("CA", "Los Angeles")
	require.True(t, ok)
	assert.Equal(t, "06", c.StateIDFIPS)
	assert.Equal(t, "06037", c.CountyIDFIPS)
}

func TestReferenceRejectsMalformedFIPS(t *testing.T) {
	_, err := NewReference([]model.County{
		{StateIDFIPS: "41", CountyIDFIPS: "4101112", CountyName: "Bad"},
	})
	assert.Error(t, err)
}
