// Package surrogate derives stable hashed identifiers from natural-key
// fields and builds changelogs across time-stamped snapshots.
package surrogate

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

// DuplicateKeyError reports natural-key tuples appearing more than once
// in the input. The natural key must already be unique; violations are
// never silently resolved.
type DuplicateKeyError struct {
	Duplicates int
	Example    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("surrogate: natural key not unique: %d duplicate tuple(s), e.g. %q", e.Duplicates, e.Example)
}

// Canonicalize renders one natural-key field in its hash-stable form:
// strings are trimmed and lowercased, floats formatted to 3 decimal
// places so representation noise cannot split identities.
func Canonicalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(x))
	case float64:
		return strconv.FormatFloat(x, 'f', 3, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 3, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', 3, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprint(x)))
	}
}

// Key hashes canonicalized natural-key fields to a fixed-width signed
// identifier: SHA-256 truncated to 8 bytes. At expected data volumes
// (≤10k rows) the collision probability is on the order of 1e-12.
func Key(fields ...any) int64 {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = Canonicalize(f)
	}
	digest := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return int64(binary.BigEndian.Uint64(digest[:8])) //nolint:gosec // deliberate truncation to signed 64-bit
}

// IDColumn is the table column AssignKeys writes surrogate keys to.
const IDColumn = "surrogate_id"

// AssignKeys canonicalizes the ordered natural-key columns of every
// row, asserts tuple uniqueness, and writes the hashed key to the
// surrogate_id column. Duplicate tuples or colliding keys are fatal.
func AssignKeys(t *table.Table, keyCols []string) error {
	if len(keyCols) == 0 {
		return eris.New("surrogate: no natural-key columns")
	}
	for _, c := range keyCols {
		if !t.HasColumn(c) {
			return eris.Errorf("surrogate: missing natural-key column %q", c)
		}
	}

	seen := make(map[string]bool, len(t.Rows))
	keys := make([]string, len(t.Rows))
	dupes := 0
	example := ""
	for i := range t.Rows {
		parts := make([]string, len(keyCols))
		for j, c := range keyCols {
			v, err := t.Cell(i, c)
			if err != nil {
				return err
			}
			parts[j] = Canonicalize(v)
		}
		tuple := strings.Join(parts, "|")
		if seen[tuple] {
			dupes++
			if example == "" {
				example = tuple
			}
		}
		seen[tuple] = true

		digest := sha256.Sum256([]byte(tuple))
		keys[i] = strconv.FormatInt(int64(binary.BigEndian.Uint64(digest[:8])), 10) //nolint:gosec
	}
	if dupes > 0 {
		return &DuplicateKeyError{Duplicates: dupes, Example: example}
	}

	// Unique tuples must hash to unique keys; a collision here is a
	// failed design assumption, not bad input.
	distinct := make(map[string]bool, len(keys))
	for _, k := range keys {
		distinct[k] = true
	}
	if len(distinct) != len(keys) {
		return eris.Errorf("surrogate: hash collision among %d unique natural keys", len(keys))
	}

	return t.SetColumn(IDColumn, keys)
}

// RowHash digests every non-raw, non-date column of a record so
// snapshot rows can be compared for material change. Raw passthrough
// and report-date bookkeeping columns never count as changes.
func RowHash(rec map[string]string) int64 {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		if strings.HasSuffix(c, "_raw") || isDateName(c) || c == IDColumn {
			continue
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, 0, len(cols)*2)
	for _, c := range cols {
		parts = append(parts, c, rec[c])
	}
	digest := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return int64(binary.BigEndian.Uint64(digest[:8])) //nolint:gosec
}

func isDateName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.HasPrefix(n, "date") || strings.HasSuffix(n, "date")
}
