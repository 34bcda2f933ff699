// Package resource maps vendor-specific resource/fuel codes onto the
// small canonical vocabulary the data marts aggregate over.
package resource

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Unknown is the sentinel category blank raw values map to.
const Unknown = "Unknown"

//go:embed data/resource_map.yaml
var resourceMapYAML []byte

// UnmappedError reports vendor codes with no canonical mapping. The
// pipeline halts on it so new vocabulary gets triaged by a human
// instead of being silently bucketed.
type UnmappedError struct {
	Counts map[string]int
}

func (e *UnmappedError) Error() string {
	codes := make([]string, 0, len(e.Counts))
	for c := range e.Counts {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	var b strings.Builder
	fmt.Fprintf(&b, "resource: %d unmapped raw value(s):", len(codes))
	for _, c := range codes {
		fmt.Fprintf(&b, " %q(x%d)", c, e.Counts[c])
	}
	return b.String()
}

// Harmonizer resolves raw vendor codes to canonical categories.
type Harmonizer struct {
	lookup     map[string]string
	vocabulary []string
}

// Load builds a Harmonizer from the embedded canonical → codes table.
// The canonical name itself is always a valid code for its category.
func Load() (*Harmonizer, error) {
	return Parse(resourceMapYAML)
}

// Parse builds a Harmonizer from YAML mapping canonical → code list.
func Parse(data []byte) (*Harmonizer, error) {
	var mapping map[string][]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, eris.Wrap(err, "resource: parse mapping")
	}
	if len(mapping) == 0 {
		return nil, eris.New("resource: empty mapping")
	}

	h := &Harmonizer{lookup: make(map[string]string)}
	canon := make([]string, 0, len(mapping))
	for c := range mapping {
		canon = append(canon, c)
	}
	sort.Strings(canon)

	for _, canonical := range canon {
		h.vocabulary = append(h.vocabulary, canonical)
		for _, code := range append(mapping[canonical], canonical) {
			key := normalizeCode(code)
			if prev, ok := h.lookup[key]; ok && prev != canonical {
				return nil, eris.Errorf("resource: code %q mapped to both %q and %q", code, prev, canonical)
			}
			h.lookup[key] = canonical
		}
	}
	return h, nil
}

// Vocabulary returns the canonical categories, sorted.
func (h *Harmonizer) Vocabulary() []string {
	out := make([]string, len(h.vocabulary))
	copy(out, h.vocabulary)
	return out
}

// Lookup resolves one raw code. Blank input resolves to Unknown; a
// non-blank code with no mapping returns ok=false.
func (h *Harmonizer) Lookup(raw string) (string, bool) {
	key := normalizeCode(raw)
	if key == "" {
		key = normalizeCode(Unknown)
	}
	clean, ok := h.lookup[key]
	return clean, ok
}

// Harmonize maps every raw value to its canonical category. Any value
// with no mapping is fatal: the returned *UnmappedError lists each
// distinct unmapped value with its frequency.
func (h *Harmonizer) Harmonize(raw []string) ([]string, error) {
	clean := make([]string, len(raw))
	unmapped := make(map[string]int)
	for i, r := range raw {
		c, ok := h.Lookup(r)
		if !ok {
			unmapped[strings.TrimSpace(r)]++
			continue
		}
		clean[i] = c
	}
	if len(unmapped) > 0 {
		return nil, &UnmappedError{Counts: unmapped}
	}
	return clean, nil
}

func normalizeCode(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
