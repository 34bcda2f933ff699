// Package geo resolves raw (state, locality) name pairs to canonical
// county FIPS codes, with a manual alias layer and a batched external
// geocoder fallback.
package geo

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeFIPSState zero-pads a state FIPS code to 2 digits.
func NormalizeFIPSState(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if len(code) == 1 {
		return "0" + code
	}
	return code
}

// NormalizeFIPSCounty zero-pads a county FIPS code to 3 digits.
func NormalizeFIPSCounty(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}

// CombineFIPS joins state and county FIPS codes into the 5-digit form.
func CombineFIPS(state, county string) string {
	s := NormalizeFIPSState(state)
	c := NormalizeFIPSCounty(county)
	if s == "" || c == "" {
		return ""
	}
	return s + c
}

// FormatFIPS zero-pads a numeric FIPS code to the given width.
func FormatFIPS(code int, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a place name for matching: lowercase,
// trimmed, whitespace collapsed, diacritics folded away so "Doña Ana"
// and "Dona Ana" meet.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	return s
}

// NormalizeCountyName additionally strips trailing jurisdiction words
// so "Coos County" matches the reference's "Coos".
func NormalizeCountyName(name string) string {
	s := NormalizeName(name)
	for _, suffix := range []string{" county", " parish", " borough", " census area", " municipality"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}
