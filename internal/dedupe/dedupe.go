// Package dedupe collapses near-duplicate project rows: the same
// physical project reported more than once, typically with alternate
// proposed dates or interconnection-status snapshots.
package dedupe

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/model"
)

// groupKey is the ephemeral composite key duplicate reports share. It
// is built from normalized fields and never persisted.
type groupKey struct {
	poi      string
	capacity string
	county   string
	state    string
	utility  string
	resource string
	status   string
}

// candidate pairs a project with its precomputed tie-break fields.
type candidate struct {
	project    model.Project
	order      int // original slice position, last-resort tie-break
	statusRank int
}

// Deduplicator groups projects by their normalized composite key and
// keeps one row per group.
type Deduplicator struct {
	ranker *StatusRanker
}

// New creates a Deduplicator with the embedded status ranking.
func New() (*Deduplicator, error) {
	ranker, err := LoadStatusRanker()
	if err != nil {
		return nil, err
	}
	return &Deduplicator{ranker: ranker}, nil
}

// Deduplicate returns the kept projects. Within each group rows are
// ordered by proposed completion date, then status rank, then queue
// date, all descending with nulls last; the first row wins. Output
// order and content depend only on the input rows and the explicit
// tie-breaks, never on randomness.
func (d *Deduplicator) Deduplicate(projects []model.Project, locations []model.Location, resources []model.ResourceCapacity) []model.Project {
	countyByProject := make(map[string]string)
	stateByProject := make(map[string]string)
	for _, loc := range locations {
		if _, ok := countyByProject[loc.ProjectID]; !ok {
			countyByProject[loc.ProjectID] = strings.ToLower(strings.TrimSpace(loc.RawCountyName))
			stateByProject[loc.ProjectID] = strings.ToLower(strings.TrimSpace(loc.RawStateName))
		}
	}

	resourcesByProject := make(map[string][]string)
	for _, rc := range resources {
		resourcesByProject[rc.ProjectID] = append(resourcesByProject[rc.ProjectID], rc.ResourceClean)
	}

	groups := make(map[groupKey][]candidate)
	var order []groupKey
	for i, p := range projects {
		key := groupKey{
			poi:      NormalizePOI(p.PointOfInterconnection),
			capacity: formatCapacity(p.CapacityMW),
			county:   countyByProject[p.ProjectID],
			state:    stateByProject[p.ProjectID],
			utility:  NormalizeUtility(p.Utility, p.Region),
			resource: joinSorted(resourcesByProject[p.ProjectID]),
			status:   strings.ToLower(strings.TrimSpace(p.QueueStatus)),
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], candidate{
			project:    p,
			order:      i,
			statusRank: d.ranker.Rank(p.InterconnectionStatus),
		})
	}

	kept := make([]model.Project, 0, len(order))
	dropped := 0
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return lessCandidate(group[i], group[j])
		})
		kept = append(kept, group[0].project)
		dropped += len(group) - 1
	}
	if dropped > 0 {
		zap.L().Info("deduplicated project rows",
			zap.Int("input", len(projects)),
			zap.Int("dropped", dropped),
		)
	}
	return kept
}

// lessCandidate orders candidates best-first. Missing tie-break values
// always sort last.
func lessCandidate(a, b candidate) bool {
	if c := compareDatesDesc(a.project.ProposedCompletionDate, b.project.ProposedCompletionDate); c != 0 {
		return c < 0
	}
	if a.statusRank != b.statusRank {
		return a.statusRank > b.statusRank
	}
	if c := compareDatesDesc(a.project.QueueDate, b.project.QueueDate); c != 0 {
		return c < 0
	}
	return a.order < b.order
}

// compareDatesDesc returns -1 if a should come before b under
// descending order with nulls last.
func compareDatesDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case b.After(*a):
		return 1
	default:
		return 0
	}
}

// FilterChildren drops Location and ResourceCapacity rows whose parent
// project was removed by deduplication.
func FilterChildren(kept []model.Project, locations []model.Location, resources []model.ResourceCapacity) ([]model.Location, []model.ResourceCapacity) {
	ids := make(map[string]bool, len(kept))
	for _, p := range kept {
		ids[p.ProjectID] = true
	}

	outLocs := make([]model.Location, 0, len(locations))
	for _, l := range locations {
		if ids[l.ProjectID] {
			outLocs = append(outLocs, l)
		}
	}
	outRes := make([]model.ResourceCapacity, 0, len(resources))
	for _, r := range resources {
		if ids[r.ProjectID] {
			outRes = append(outRes, r)
		}
	}
	return outLocs, outRes
}

func formatCapacity(mw *float64) string {
	if mw == nil {
		return ""
	}
	return fmt.Sprintf("%.3f", *mw)
}

func joinSorted(vals []string) string {
	sorted := make([]string, len(vals))
	copy(sorted, vals)
	sort.Strings(sorted)
	return strings.Join(sorted, ";")
}
