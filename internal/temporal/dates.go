// Package temporal parses the heterogeneous date encodings vendor
// extracts arrive with: inconsistent date strings, spreadsheet-epoch
// day offsets, and Unix-epoch day offsets.
package temporal

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet software encodes dates as day offsets from 1899-12-30 and
// mis-encodes missing values as 0, which round-trips to 1899/1900.
var (
	spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	unixEpoch        = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Strategy is one way of reading a date string. Strategies are tried in
// a fixed order until one succeeds; a value no strategy accepts is null.
type Strategy struct {
	Name    string
	Layouts []string
}

// strategies is the ordered chain applied to string-typed columns.
// Unambiguous ISO forms come first, vendor quirks last.
var strategies = []Strategy{
	{Name: "iso", Layouts: []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}},
	{Name: "us-slash", Layouts: []string{"01/02/2006", "1/2/2006", "01/02/06", "1/2/06"}},
	{Name: "us-text", Layouts: []string{"Jan 2, 2006", "January 2, 2006", "2-Jan-06", "2-Jan-2006"}},
	{Name: "month-year", Layouts: []string{"Jan 2006", "January 2006", "01/2006", "2006-01"}},
	{Name: "year-only", Layouts: []string{"2006"}},
}

// ParseString runs the strategy chain over one value. Returns nil when
// nothing matches; individual failures are never errors.
func ParseString(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if q := parseQuarter(s); q != nil {
		return q
	}
	for _, strat := range strategies {
		for _, layout := range strat.Layouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return &ts
			}
		}
	}
	return nil
}

// parseQuarter reads quarter markers like "Q3 2026" or "2026 Q3" as the
// first day of the quarter.
func parseQuarter(s string) *time.Time {
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) != 2 {
		return nil
	}
	q, y := fields[0], fields[1]
	if !strings.HasPrefix(q, "Q") {
		q, y = y, q
	}
	if len(q) != 2 || q[0] != 'Q' || q[1] < '1' || q[1] > '4' {
		return nil
	}
	year, err := strconv.Atoi(y)
	if err != nil || year < 1000 || year > 9999 {
		return nil
	}
	quarter := int(q[1] - '1')
	ts := time.Date(year, time.Month(quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
	return &ts
}

// ParseStrings applies the strategy chain to every value.
func ParseStrings(vals []string) []*time.Time {
	out := make([]*time.Time, len(vals))
	for i, v := range vals {
		out[i] = ParseString(v)
	}
	return out
}

// ParseNumeric interprets a numeric column as day offsets from either
// the spreadsheet epoch or the Unix epoch. The column-wide epoch is
// whichever puts the mean resulting year closer to targetYear. Dates
// landing in the spreadsheet encoding's failure years (1899/1900) are
// nulled: those are zeros standing in for missing values.
func ParseNumeric(vals []*float64, targetYear int) []*time.Time {
	epoch := chooseEpoch(vals, targetYear)

	out := make([]*time.Time, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		ts := addDays(epoch, *v)
		if y := ts.Year(); y == 1899 || y == 1900 {
			continue
		}
		out[i] = &ts
	}
	return out
}

func chooseEpoch(vals []*float64, targetYear int) time.Time {
	var sumSpread, sumUnix float64
	var n int
	for _, v := range vals {
		if v == nil {
			continue
		}
		spread := addDays(spreadsheetEpoch, *v)
		if y := spread.Year(); y == 1899 || y == 1900 {
			// A mis-encoded zero, not evidence for either epoch; it
			// must not drag the column mean toward 1970.
			continue
		}
		sumSpread += yearOf(spread)
		sumUnix += yearOf(addDays(unixEpoch, *v))
		n++
	}
	if n == 0 {
		return spreadsheetEpoch
	}
	target := float64(targetYear)
	if diff(sumUnix/float64(n), target) < diff(sumSpread/float64(n), target) {
		return unixEpoch
	}
	return spreadsheetEpoch
}

func addDays(epoch time.Time, days float64) time.Time {
	return epoch.Add(time.Duration(days * 24 * float64(time.Hour)))
}

func yearOf(ts time.Time) float64 {
	return float64(ts.Year()) + float64(ts.YearDay())/365.25
}

func diff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}
