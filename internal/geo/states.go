package geo

import "strings"

// stateFIPS maps lowercase state names and postal abbreviations to the
// 2-digit state FIPS code.
var stateFIPS = map[string]string{
	"al": "01", "alabama": "01",
	"ak": "02", "alaska": "02",
	"az": "04", "arizona": "04",
	"ar": "05", "arkansas": "05",
	"ca": "06", "california": "06",
	"co": "08", "colorado": "08",
	"ct": "09", "connecticut": "09",
	"de": "10", "delaware": "10",
	"dc": "11", "district of columbia": "11",
	"fl": "12", "florida": "12",
	"ga": "13", "georgia": "13",
	"hi": "15", "hawaii": "15",
	"id": "16", "idaho": "16",
	"il": "17", "illinois": "17",
	"in": "18", "indiana": "18",
	"ia": "19", "iowa": "19",
	"ks": "20", "kansas": "20",
	"ky": "21", "kentucky": "21",
	"la": "22", "louisiana": "22",
	"me": "23", "maine": "23",
	"md": "24", "maryland": "24",
	"ma": "25", "massachusetts": "25",
	"mi": "26", "michigan": "26",
	"mn": "27", "minnesota": "27",
	"ms": "28", "mississippi": "28",
	"mo": "29", "missouri": "29",
	"mt": "30", "montana": "30",
	"ne": "31", "nebraska": "31",
	"nv": "32", "nevada": "32",
	"nh": "33", "new hampshire": "33",
	"nj": "34", "new jersey": "34",
	"nm": "35", "new mexico": "35",
	"ny": "36", "new york": "36",
	"nc": "37", "north carolina": "37",
	"nd": "38", "north dakota": "38",
	"oh": "39", "ohio": "39",
	"ok": "40", "oklahoma": "40",
	"or": "41", "oregon": "41",
	"pa": "42", "pennsylvania": "42",
	"ri": "44", "rhode island": "44",
	"sc": "45", "south carolina": "45",
	"sd": "46", "south dakota": "46",
	"tn": "47", "tennessee": "47",
	"tx": "48", "texas": "48",
	"ut": "49", "utah": "49",
	"vt": "50", "vermont": "50",
	"va": "51", "virginia": "51",
	"wa": "53", "washington": "53",
	"wv": "54", "west virginia": "54",
	"wi": "55", "wisconsin": "55",
	"wy": "56", "wyoming": "56",
	"pr": "72", "puerto rico": "72",
}

// StateFIPS resolves a state name or postal abbreviation to its 2-digit
// FIPS code. Returns "" when unknown.
func StateFIPS(state string) string {
	return stateFIPS[strings.ToLower(strings.TrimSpace(state))]
}
