package dedupe

import (
	_ "embed"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/status_rank.yaml
var statusRankYAML []byte

var (
	poiPunctRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	kvTokenRe  = regexp.MustCompile(`^\d+(\.\d+)?(kv)?$`)
)

// poiStopwords are tokens that vary between reports of the same
// physical point of interconnection.
var poiStopwords = map[string]bool{
	"station":    true,
	"substation": true,
	"sub":        true,
	"tap":        true,
	"kv":         true,
	"volt":       true,
	"line":       true,
	"bus":        true,
}

// NormalizePOI canonicalizes a point-of-interconnection string so that
// token order, punctuation, and voltage ratings don't split duplicate
// reports: lowercase, strip punctuation, drop station/kV tokens, sort
// the remaining tokens.
func NormalizePOI(poi string) string {
	s := strings.ToLower(strings.TrimSpace(poi))
	s = poiPunctRe.ReplaceAllString(s, " ")

	var kept []string
	for _, tok := range strings.Fields(s) {
		if poiStopwords[tok] || kvTokenRe.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	sort.Strings(kept)
	return strings.Join(kept, " ")
}

// NormalizeUtility lowercases and trims the utility name, falling back
// to the region/market when the utility is missing.
func NormalizeUtility(utility, region string) string {
	u := strings.ToLower(strings.TrimSpace(utility))
	if u != "" {
		return u
	}
	return strings.ToLower(strings.TrimSpace(region))
}

// StatusRanker maps interconnection statuses to their priority rank.
type StatusRanker struct {
	rank map[string]int
}

// LoadStatusRanker builds a ranker from the embedded ordered status
// list (least to most final).
func LoadStatusRanker() (*StatusRanker, error) {
	var order []string
	if err := yaml.Unmarshal(statusRankYAML, &order); err != nil {
		return nil, eris.Wrap(err, "dedupe: parse status ranks")
	}
	if len(order) == 0 {
		return nil, eris.New("dedupe: empty status rank list")
	}
	r := &StatusRanker{rank: make(map[string]int, len(order))}
	for i, s := range order {
		r.rank[strings.ToLower(strings.TrimSpace(s))] = i + 1
	}
	return r, nil
}

// Rank returns the status priority; unknown or missing statuses rank
// lowest (0) so they lose every tie-break.
func (r *StatusRanker) Rank(status string) int {
	return r.rank[strings.ToLower(strings.TrimSpace(status))]
}
