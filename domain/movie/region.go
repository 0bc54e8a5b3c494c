package movie

import "strings"

// Region is a two-letter territory code used for streaming availability.
type Region string

// Regions the catalog client queries.
const (
	RegionIN Region = "IN"
	RegionUS Region = "US"
)

// indianCinema holds the lower-cased movie types served from region IN.
var indianCinema = map[string]struct{}{
	"bollywood":    {},
	"south indian": {},
	"tollywood":    {},
	"kollywood":    {},
	"mollywood":    {},
	"indian":       {},
}

// RegionFor maps a movie type to the region whose providers are checked first.
func RegionFor(movieType string) Region {
	key := strings.ToLower(strings.TrimSpace(movieType))
	if _, ok := indianCinema[key]; ok {
		return RegionIN
	}
	return RegionUS
}

// String returns the region code.
func (r Region) String() string { return string(r) }
