// Package states holds the US state reference data used by mileage
// attribution: two-letter postal codes, the contiguous-48 domain filter, and
// full-name normalization for reverse-geocoder responses.
package states

import "strings"

// Unknown is the bucket for mileage that could not be attributed to any
// state. It is reported alongside real codes so trip totals stay conserved.
const Unknown = "UNKNOWN"

// contiguous is the lower-48 domain for mileage reporting. Boundary datasets
// include AK, HI, DC and territories; those never appear in output.
var contiguous = map[string]bool{
	"AL": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true,
	"DE": true, "FL": true, "GA": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true, "MT": true,
	"NE": true, "NV": true, "NH": true, "NJ": true, "NM": true, "NY": true,
	"NC": true, "ND": true, "OH": true, "OK": true, "OR": true, "PA": true,
	"RI": true, "SC": true, "SD": true, "TN": true, "TX": true, "UT": true,
	"VT": true, "VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
}

var byName = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT",
	"delaware": "DE", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI",
	"minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

var codes = func() map[string]bool {
	m := make(map[string]bool, len(byName))
	for _, code := range byName {
		m[code] = true
	}
	return m
}()

// IsContiguous reports whether code is a contiguous-US state code.
func IsContiguous(code string) bool {
	return contiguous[code]
}

// Normalize converts a state name or code from a geocoder response to its
// two-letter postal code. It accepts either form ("California", "CA").
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if code, ok := byName[strings.ToLower(s)]; ok {
		return code, true
	}

	upper := strings.ToUpper(s)
	if codes[upper] {
		return upper, true
	}

	return "", false
}

// FromLocation extracts a state code from a "City, ST" location string.
// Returns empty when the string carries no recognizable state.
func FromLocation(location string) string {
	idx := strings.LastIndex(location, ",")
	if idx < 0 || idx+1 >= len(location) {
		return ""
	}

	tail := strings.TrimSpace(location[idx+1:])
	if code, ok := Normalize(tail); ok {
		return code
	}

	// Tolerate trailing zip codes ("Dallas, TX 75201").
	if fields := strings.Fields(tail); len(fields) > 0 {
		if code, ok := Normalize(fields[0]); ok {
			return code
		}
	}
	return ""
}
