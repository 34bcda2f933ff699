package geo

import (
	"context"

	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/pkg/geocode"
)

// Resolver fills the resolved geographic fields of Location rows:
// manual aliases first, then the FIPS reference, then the batched
// external geocoder. Resolution failures are non-fatal; the row keeps
// its raw names and empty resolved fields.
type Resolver struct {
	ref       *Reference
	aliases   *AliasTable
	client    geocode.Client
	batchSize int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGeocoder sets the fallback geocoding client. Without one,
// resolution stops after the direct reference match.
func WithGeocoder(c geocode.Client) ResolverOption {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithBatchSize overrides how many unresolved pairs go into one
// geocoder call.
func WithBatchSize(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// NewResolver creates a Resolver against the given county reference.
func NewResolver(ref *Reference, opts ...ResolverOption) (*Resolver, error) {
	aliases, err := LoadAliases()
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		ref:       ref,
		aliases:   aliases,
		batchSize: geocode.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve mutates locs in place. Every row either gains a county FIPS
// present in the reference or keeps explicit empty fields with a
// logged reason; no row is ever dropped.
func (r *Resolver) Resolve(ctx context.Context, locs []model.Location) error {
	var pending []int
	for i := range locs {
		if r.resolveDirect(&locs[i]) {
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 && r.client != nil {
		if err := r.resolveGeocoded(ctx, locs, pending); err != nil {
			return err
		}
	}

	unresolved := 0
	for i := range locs {
		if !locs[i].Resolved() {
			unresolved++
			zap.L().Warn("location unresolved, keeping nulls",
				zap.String("project_id", locs[i].ProjectID),
				zap.String("state", locs[i].RawStateName),
				zap.String("county", locs[i].RawCountyName),
			)
		}
	}
	if unresolved > 0 {
		zap.L().Info("geographic resolution finished with misses",
			zap.Int("total", len(locs)),
			zap.Int("unresolved", unresolved),
		)
	}
	return nil
}

// resolveDirect tries the alias table and the exact reference match.
func (r *Resolver) resolveDirect(loc *model.Location) bool {
	state, locality := r.aliases.Apply(loc.RawStateName, loc.RawCountyName)

	if fips := StateFIPS(state); fips != "" {
		loc.StateIDFIPS = fips
	}

	c, ok := r.ref.LookupName(state, locality)
	if !ok {
		return false
	}
	loc.StateIDFIPS = c.StateIDFIPS
	loc.CountyIDFIPS = c.CountyIDFIPS
	loc.GeocodedLocalityName = c.CountyName
	loc.GeocodedLocalityType = model.LocalityCounty
	loc.GeocodedContainingCounty = c.CountyName
	return true
}

// resolveGeocoded sends the still-unresolved rows to the external
// service in fixed-size batches and maps responses back onto them.
func (r *Resolver) resolveGeocoded(ctx context.Context, locs []model.Location, pending []int) error {
	for start := 0; start < len(pending); start += r.batchSize {
		end := min(start+r.batchSize, len(pending))
		chunk := pending[start:end]

		batch := make([]geocode.LocalityInput, len(chunk))
		for j, idx := range chunk {
			state, locality := r.aliases.Apply(locs[idx].RawStateName, locs[idx].RawCountyName)
			batch[j] = geocode.LocalityInput{Name: NormalizeName(locality), State: NormalizeName(state)}
		}

		results, err := r.client.BatchLookup(ctx, batch)
		if err != nil {
			// Geocoding is enrichment, not a required path.
			zap.L().Warn("geocoder batch failed, leaving rows unresolved",
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for j, idx := range chunk {
			r.applyResult(&locs[idx], batch[j], results[j])
		}
	}
	return nil
}

func (r *Resolver) applyResult(loc *model.Location, in geocode.LocalityInput, res geocode.Result) {
	if !res.Found() {
		return
	}

	loc.GeocodedLocalityName = res.LocalityName
	loc.GeocodedLocalityType = model.LocalityType(res.LocalityType)

	containing := res.ContainingCounty
	if containing == "" && res.LocalityType == "city" {
		// Independent cities (mostly Virginia) have no containing
		// county; the city stands in for itself.
		containing = res.LocalityName
	}
	loc.GeocodedContainingCounty = containing
	if containing == "" {
		return
	}

	if c, ok := r.ref.LookupName(in.State, containing); ok {
		loc.StateIDFIPS = c.StateIDFIPS
		loc.CountyIDFIPS = c.CountyIDFIPS
	}
}
