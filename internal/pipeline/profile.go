package pipeline

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/reshape"
)

// Profile describes how one vendor's raw extract maps onto the
// canonical schema: column renames, the numbered-suffix one-to-many
// groups, and which column identifies a row.
type Profile struct {
	// Name identifies the vendor/ISO and prefixes generated project ids.
	Name string `yaml:"name"`
	// IDColumn is the vendor's row identifier. When empty, row ordinals
	// stand in.
	IDColumn string `yaml:"id_column"`
	// Rename maps raw column names to canonical ones, applied before
	// any other step.
	Rename map[string]string `yaml:"rename"`
	// StateColumn is the single-valued state column locations inherit.
	StateColumn string `yaml:"state_column"`
	// LocationGroups melt the county_1..n columns.
	LocationGroups []reshape.AttrGroup `yaml:"location_groups"`
	// ResourceGroups melt the resource_type_1..n and parallel
	// capacity columns. Source lists must be aligned to equal length.
	ResourceGroups []reshape.AttrGroup `yaml:"resource_groups"`
}

// DefaultProfile covers extracts already shaped like the compiled
// multi-ISO queue workbooks: canonical column names with three
// county and resource slots.
func DefaultProfile() *Profile {
	return &Profile{
		Name:        "queue",
		IDColumn:    "queue_id",
		StateColumn: "state",
		LocationGroups: []reshape.AttrGroup{
			{Name: "county", Sources: []string{"county_1", "county_2", "county_3"}},
		},
		ResourceGroups: []reshape.AttrGroup{
			{Name: "resource", Sources: []string{"resource_type_1", "resource_type_2", "resource_type_3"}},
			{Name: "capacity_mw", Sources: []string{"capacity_mw_resource_1", "capacity_mw_resource_2", "capacity_mw_resource_3"}},
		},
	}
}

// LoadProfile reads a vendor profile from YAML.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read profile %s", path)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse profile %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the profile's internal consistency. Group alignment
// is checked here, at the configuration boundary, because Normalize
// assumes it.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return eris.New("pipeline: profile needs a name")
	}
	for _, groups := range [][]reshape.AttrGroup{p.LocationGroups, p.ResourceGroups} {
		if len(groups) == 0 {
			continue
		}
		want := len(groups[0].Sources)
		for _, g := range groups[1:] {
			if len(g.Sources) != want {
				return eris.Errorf("pipeline: profile %s: group %q has %d sources, expected %d", p.Name, g.Name, len(g.Sources), want)
			}
		}
	}
	return nil
}
