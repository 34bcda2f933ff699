package temporal

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deployment-gap-model-education-fund/deployment-gap-model-sub000/internal/table"
)

// IsDateColumn reports whether a column name follows the date naming
// convention (starts or ends with "date").
func IsDateColumn(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.HasPrefix(n, "date") || strings.HasSuffix(n, "date")
}

// ParseColumn parses one suspected date column. Columns whose non-null
// values are all numeric are treated as epoch day offsets; everything
// else goes through the string strategy chain.
func ParseColumn(vals []string, targetYear int) []*time.Time {
	if nums, ok := asNumeric(vals); ok {
		return ParseNumeric(nums, targetYear)
	}
	return ParseStrings(vals)
}

// asNumeric converts the column to floats if every non-null value
// parses as one. A column with no non-null values is not numeric.
func asNumeric(vals []string) ([]*float64, bool) {
	out := make([]*float64, len(vals))
	any := false
	for i, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = &f
		any = true
	}
	return out, any
}

// ParseTableDates rewrites every date-named column of t in place: the
// original values move under a _raw suffix and the column itself holds
// the parsed timestamps in RFC 3339, empty where parsing failed.
func ParseTableDates(t *table.Table, targetYear int) error {
	for _, col := range append([]string(nil), t.Columns...) {
		if !IsDateColumn(col) || strings.HasSuffix(col, "_raw") {
			continue
		}
		raw, err := t.Column(col)
		if err != nil {
			return err
		}
		parsed := ParseColumn(raw, targetYear)

		formatted := make([]string, len(parsed))
		nulled := 0
		for i, ts := range parsed {
			if ts == nil {
				if !table.IsNull(raw[i]) {
					nulled++
				}
				continue
			}
			formatted[i] = ts.Format(time.RFC3339)
		}
		if nulled > 0 {
			zap.L().Warn("unparseable date values nulled",
				zap.String("column", col),
				zap.Int("count", nulled),
			)
		}

		if err := t.SetColumn(col+"_raw", raw); err != nil {
			return err
		}
		if err := t.SetColumn(col, formatted); err != nil {
			return err
		}
	}
	return nil
}
