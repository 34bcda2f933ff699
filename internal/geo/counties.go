package geo

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

// Reference is the authoritative state+county FIPS lookup.
type Reference struct {
	counties []model.County
	byName   map[aliasKey]*model.County // (state fips, normalized county name)
	byFIPS   map[string]*model.County
}

// NewReference indexes the given county rows by normalized name and by
// 5-digit FIPS code.
func NewReference(counties []model.County) (*Reference, error) {
	r := &Reference{
		counties: counties,
		byName:   make(map[aliasKey]*model.County, len(counties)),
		byFIPS:   make(map[string]*model.County, len(counties)),
	}
	for i := range counties {
		c := &r.counties[i]
		c.StateIDFIPS = NormalizeFIPSState(c.StateIDFIPS)
		if len(c.CountyIDFIPS) <= 3 {
			c.CountyIDFIPS = CombineFIPS(c.StateIDFIPS, c.CountyIDFIPS)
		}
		if len(c.CountyIDFIPS) != 5 {
			return nil, eris.Errorf("geo: county %q has malformed FIPS %q", c.CountyName, c.CountyIDFIPS)
		}
		key := aliasKey{state: c.StateIDFIPS, locality: NormalizeCountyName(c.CountyName)}
		r.byName[key] = c
		r.byFIPS[c.CountyIDFIPS] = c
	}
	return r, nil
}

// LoadReference reads the county reference CSV (state_id_fips,
// county_id_fips, state, county_name[, latitude, longitude]).
func LoadReference(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read county reference %s", path)
	}

	var counties []model.County
	if err := csvutil.Unmarshal(data, &counties); err != nil {
		return nil, eris.Wrap(err, "geo: parse county reference")
	}
	if len(counties) == 0 {
		return nil, eris.New("geo: empty county reference")
	}
	return NewReference(counties)
}

// LookupName resolves a (state, county name) pair. The state may be a
// name or postal abbreviation; the county name is normalized and the
// " county"/" parish" style suffixes are ignored.
func (r *Reference) LookupName(state, county string) (*model.County, bool) {
	stateFips := StateFIPS(state)
	if stateFips == "" {
		return nil, false
	}
	c, ok := r.byName[aliasKey{state: stateFips, locality: NormalizeCountyName(county)}]
	return c, ok
}

// LookupFIPS resolves a 5-digit county FIPS code.
func (r *Reference) LookupFIPS(fips string) (*model.County, bool) {
	c, ok := r.byFIPS[fips]
	return c, ok
}

// Len returns the number of reference counties.
func (r *Reference) Len() int {
	return len(r.counties)
}

// Counties returns the indexed reference rows.
func (r *Reference) Counties() []model.County {
	out := make([]model.County, len(r.counties))
	copy(out, r.counties)
	return out
}
