package geo

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/county_aliases.yaml
var countyAliasYAML []byte

type aliasEntry struct {
	State      string `yaml:"state"`
	Locality   string `yaml:"locality"`
	ToState    string `yaml:"to_state"`
	ToLocality string `yaml:"to_locality"`
}

type aliasKey struct {
	state    string
	locality string
}

// AliasTable rewrites known-bad raw (locality, state) pairs to the
// locality the vendor actually meant.
type AliasTable struct {
	entries map[aliasKey]aliasEntry
}

// LoadAliases parses the embedded manual-correction table.
func LoadAliases() (*AliasTable, error) {
	var entries []aliasEntry
	if err := yaml.Unmarshal(countyAliasYAML, &entries); err != nil {
		return nil, eris.Wrap(err, "geo: parse county aliases")
	}

	t := &AliasTable{entries: make(map[aliasKey]aliasEntry, len(entries))}
	for _, e := range entries {
		key := aliasKey{state: NormalizeName(e.State), locality: NormalizeName(e.Locality)}
		if _, dup := t.entries[key]; dup {
			return nil, eris.Errorf("geo: duplicate alias for (%s, %s)", e.Locality, e.State)
		}
		t.entries[key] = e
	}
	return t, nil
}

// Apply rewrites the pair if an alias exists; otherwise it returns the
// inputs unchanged.
func (t *AliasTable) Apply(state, locality string) (string, string) {
	e, ok := t.entries[aliasKey{state: NormalizeName(state), locality: NormalizeName(locality)}]
	if !ok {
		return state, locality
	}
	return e.ToState, e.ToLocality
}

// Len returns the number of alias entries.
func (t *AliasTable) Len() int {
	return len(t.entries)
}
