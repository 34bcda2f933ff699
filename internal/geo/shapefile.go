package geo

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

// LoadReferenceFromShapefile builds the county reference from a Census
// TIGER/Line county shapefile. The DBF attributes carry the FIPS codes
// and names; the internal point comes from INTPTLAT/INTPTLON, falling
// back to the polygon centroid when those attributes are absent.
func LoadReferenceFromShapefile(path string) (*Reference, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}
	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var counties []model.County
	skipped := 0
	for reader.Next() {
		_, shape := reader.Shape()

		stateFips := NormalizeFIPSState(attr("STATEFP"))
		countyFips := attr("GEOID")
		if countyFips == "" {
			countyFips = CombineFIPS(stateFips, attr("COUNTYFP"))
		}
		name := attr("NAME")
		if name == "" {
			name = attr("NAMELSAD")
		}
		if stateFips == "" || countyFips == "" || name == "" {
			skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimPrefix(attr("INTPTLAT"), "+"), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimPrefix(attr("INTPTLON"), "+"), 64)
		if latErr != nil || lonErr != nil {
			lon, lat = shapeCentroid(shape)
		}

		counties = append(counties, model.County{
			StateIDFIPS:  stateFips,
			CountyIDFIPS: countyFips,
			State:        attr("STUSPS"),
			CountyName:   name,
			Latitude:     lat,
			Longitude:    lon,
		})
	}
	if skipped > 0 {
		zap.L().Debug("skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(counties) == 0 {
		return nil, eris.Errorf("geo: shapefile %s yielded no counties", path)
	}
	return NewReference(counties)
}

// shapeCentroid computes a representative (lon, lat) for a county
// polygon. Returns zeros for unsupported shapes.
func shapeCentroid(shape shp.Shape) (lon, lat float64) {
	p, ok := shape.(*shp.Polygon)
	if !ok || p.NumParts == 0 || len(p.Points) == 0 {
		return 0, 0
	}

	// Outer ring only; island rings barely move a county's
	// representative point.
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	coords := make([]float64, 0, end*2)
	for _, pt := range p.Points[:end] {
		coords = append(coords, pt.X, pt.Y)
	}

	ring := geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
	centroid, err := xy.Centroid(ring)
	if err != nil {
		return 0, 0
	}
	return centroid.X(), centroid.Y()
}
