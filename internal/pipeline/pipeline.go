// Package pipeline orchestrates the normalization stages: rename and
// identify, melt one-to-many columns, parse dates, harmonize resource
// codes, resolve counties, then deduplicate.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/dedupe"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/geo"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/reshape"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/resource"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/temporal"
)

// Output is the canonical relational result of one pipeline run.
type Output struct {
	RunID     string
	Projects  []model.Project
	Locations []model.Location
	Resources []model.ResourceCapacity
}

// Pipeline holds the stage implementations shared across runs.
type Pipeline struct {
	harmonizer *resource.Harmonizer
	dedup      *dedupe.Deduplicator
	resolver   *geo.Resolver
	targetYear int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithResolver sets the geographic resolver. Without one, location rows
// keep their raw names only.
func WithResolver(r *geo.Resolver) Option {
	return func(p *Pipeline) {
		p.resolver = r
	}
}

// WithTargetYear anchors ambiguous numeric date columns to the given
// year. Zero means the current year.
func WithTargetYear(year int) Option {
	return func(p *Pipeline) {
		p.targetYear = year
	}
}

// New builds a Pipeline with the embedded resource vocabulary and
// status ranking.
func New(opts ...Option) (*Pipeline, error) {
	harmonizer, err := resource.Load()
	if err != nil {
		return nil, err
	}
	dedup, err := dedupe.New()
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		harmonizer: harmonizer,
		dedup:      dedup,
		targetYear: time.Now().Year(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.targetYear == 0 {
		p.targetYear = time.Now().Year()
	}
	return p, nil
}

// Run normalizes one raw vendor extract. The input table is mutated;
// callers should not reuse it.
func (p *Pipeline) Run(ctx context.Context, raw *table.Table, profile *Profile) (*Output, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := zap.L().With(
		zap.String("run_id", runID),
		zap.String("profile", profile.Name),
	)
	logger.Info("pipeline run starting", zap.Int("rows", len(raw.Rows)))

	for from, to := range profile.Rename {
		raw.RenameColumn(from, to)
	}
	if err := assignProjectIDs(raw, profile); err != nil {
		return nil, err
	}

	locTable, err := meltGroup(raw, profile.LocationGroups)
	if err != nil {
		return nil, err
	}
	resTable, err := meltGroup(raw, profile.ResourceGroups)
	if err != nil {
		return nil, err
	}

	if err := temporal.ParseTableDates(raw, p.targetYear); err != nil {
		return nil, err
	}

	projects, err := buildProjects(raw)
	if err != nil {
		return nil, err
	}
	locations, err := buildLocations(raw, locTable, profile.StateColumn)
	if err != nil {
		return nil, err
	}
	resources, err := p.buildResources(resTable)
	if err != nil {
		return nil, err
	}

	if p.resolver != nil {
		if err := p.resolver.Resolve(ctx, locations); err != nil {
			return nil, err
		}
	}

	kept := p.dedup.Deduplicate(projects, locations, resources)
	locations, resources = dedupe.FilterChildren(kept, locations, resources)

	logger.Info("pipeline run finished",
		zap.Int("projects", len(kept)),
		zap.Int("locations", len(locations)),
		zap.Int("resources", len(resources)),
	)
	return &Output{
		RunID:     runID,
		Projects:  kept,
		Locations: locations,
		Resources: resources,
	}, nil
}

// assignProjectIDs writes the project_id and source columns. The id is
// the source-prefixed vendor queue id, or the row ordinal when the
// profile names no id column.
func assignProjectIDs(t *table.Table, profile *Profile) error {
	ids := make([]string, len(t.Rows))
	src := make([]string, len(t.Rows))
	for i := range t.Rows {
		suffix := strconv.Itoa(i)
		if profile.IDColumn != "" {
			v, err := t.Cell(i, profile.IDColumn)
			if err != nil {
				return eris.Wrapf(err, "pipeline: profile %s id column", profile.Name)
			}
			if !table.IsNull(v) {
				suffix = strings.TrimSpace(v)
			}
		}
		ids[i] = fmt.Sprintf("%s_%s", profile.Name, suffix)
		src[i] = profile.Name
	}
	if err := t.SetColumn("project_id", ids); err != nil {
		return err
	}
	return t.SetColumn("source", src)
}

// meltGroup runs one melt and drops the consumed wide columns from the
// parent. An empty group list yields an empty child table.
func meltGroup(t *table.Table, groups []reshape.AttrGroup) (*table.Table, error) {
	if len(groups) == 0 {
		return table.New("project_id"), nil
	}
	out, err := reshape.Normalize(t, "project_id", groups)
	if err != nil {
		return nil, err
	}
	t.DropColumns(reshape.SourceColumns(groups)...)
	return out, nil
}

func buildProjects(t *table.Table) ([]model.Project, error) {
	projects := make([]model.Project, 0, len(t.Rows))
	for i := range t.Rows {
		rec := t.Record(i)
		capacity, err := parseFloatCell(rec["capacity_mw"])
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: row %d capacity_mw", i)
		}
		projects = append(projects, model.Project{
			ProjectID:              rec["project_id"],
			Source:                 rec["source"],
			QueueID:                rec["queue_id"],
			ProjectName:            rec["project_name"],
			Developer:              rec["developer"],
			Utility:                rec["utility"],
			Region:                 rec["region"],
			PointOfInterconnection: rec["point_of_interconnection"],
			CapacityMW:             capacity,
			QueueStatus:            rec["queue_status"],
			InterconnectionStatus:  rec["interconnection_status"],
			QueueDate:              parseTimeCell(rec["queue_date"]),
			QueueDateRaw:           rec["queue_date_raw"],
			ProposedCompletionDate: parseTimeCell(rec["proposed_completion_date"]),
			ProposedCompletionRaw:  rec["proposed_completion_date_raw"],
			WithdrawnDate:          parseTimeCell(rec["withdrawn_date"]),
			WithdrawnDateRaw:       rec["withdrawn_date_raw"],
			OperationalDate:        parseTimeCell(rec["operational_date"]),
			OperationalDateRaw:     rec["operational_date_raw"],
		})
	}
	return projects, nil
}

// buildLocations joins the melted county rows back to each project's
// single-valued state column.
func buildLocations(parent, melted *table.Table, stateCol string) ([]model.Location, error) {
	stateByID := make(map[string]string, len(parent.Rows))
	if stateCol != "" && parent.HasColumn(stateCol) {
		for i := range parent.Rows {
			rec := parent.Record(i)
			stateByID[rec["project_id"]] = rec[stateCol]
		}
	}

	if !melted.HasColumn("county") {
		return nil, nil
	}
	locs := make([]model.Location, 0, len(melted.Rows))
	for i := range melted.Rows {
		rec := melted.Record(i)
		locs = append(locs, model.Location{
			ProjectID:     rec["project_id"],
			RawStateName:  stateByID[rec["project_id"]],
			RawCountyName: rec["county"],
		})
	}
	return locs, nil
}

// buildResources harmonizes every melted resource code. Unmapped codes
// abort the run.
func (p *Pipeline) buildResources(melted *table.Table) ([]model.ResourceCapacity, error) {
	if !melted.HasColumn("resource") {
		return nil, nil
	}
	raws, err := melted.Column("resource")
	if err != nil {
		return nil, err
	}
	clean, err := p.harmonizer.Harmonize(raws)
	if err != nil {
		return nil, err
	}

	resources := make([]model.ResourceCapacity, 0, len(melted.Rows))
	for i := range melted.Rows {
		rec := melted.Record(i)
		capacity, err := parseFloatCell(rec["capacity_mw"])
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: resource row %d capacity_mw", i)
		}
		resources = append(resources, model.ResourceCapacity{
			ProjectID:     rec["project_id"],
			ResourceRaw:   raws[i],
			ResourceClean: clean[i],
			CapacityMW:    capacity,
		})
	}
	return resources, nil
}

func parseTimeCell(v string) *time.Time {
	if table.IsNull(v) {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &ts
}

func parseFloatCell(v string) (*float64, error) {
	if table.IsNull(v) {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse number %q", v)
	}
	return &f, nil
}
