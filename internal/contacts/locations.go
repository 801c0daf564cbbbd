package contacts

import (
	"strings"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
)

// EnsurePrimary leaves exactly one primary location when the list is not
// empty: the first flagged one, or the first location when none is flagged.
// changed reports whether any flag was modified.
func EnsurePrimary(locs []Location) (out []Location, changed bool) {
	out = append([]Location(nil), locs...)
	primary := -1
	for i, loc := range out {
		if loc.IsPrimary {
			primary = i
			break
		}
	}
	if primary < 0 && len(out) > 0 {
		primary = 0
	}
	for i := range out {
		want := i == primary
		if out[i].IsPrimary != want {
			out[i].IsPrimary = want
			changed = true
		}
	}
	return out, changed
}

// NormalizeLocations prepares a location list for storage. Regions are
// trimmed and dropped outside France, exactly one location is primary, and an
// empty list receives the default location.
func NormalizeLocations(locs []Location) []Location {
	out := make([]Location, 0, len(locs))
	for _, loc := range locs {
		loc.Country = strings.TrimSpace(loc.Country)
		if loc.Country == "" {
			loc.Country = enums.CountryWorldwide
		}
		if loc.Region != nil {
			region := strings.TrimSpace(*loc.Region)
			if region == "" || loc.Country != enums.CountryFrance {
				loc.Region = nil
			} else {
				loc.Region = &region
			}
		}
		out = append(out, loc)
	}
	if len(out) == 0 {
		return []Location{DefaultLocation()}
	}
	out, _ = EnsurePrimary(out)
	return out
}
