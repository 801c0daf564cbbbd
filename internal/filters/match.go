package filters

import (
	"strings"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
)

// Matches reports whether the contact satisfies every enabled criterion.
func Matches(c contacts.Contact, s Spec) bool {
	s = s.Normalize()

	if s.Job != All && c.JobTitle != s.Job {
		return false
	}

	scope := c.Locations
	if s.Country != All {
		scope = make([]contacts.Location, 0, len(c.Locations))
		for _, loc := range c.Locations {
			if loc.Country == s.Country {
				scope = append(scope, loc)
			}
		}
		if len(scope) == 0 {
			return false
		}
		if s.Country == enums.CountryFrance && len(s.Regions) > 0 && !anyRegionIn(scope, s.Regions) {
			return false
		}
	}

	if s.IncludeVehicle && !anyLocation(scope, func(l contacts.Location) bool { return l.HasVehicle }) {
		return false
	}
	if s.IncludeHoused && !anyLocation(scope, func(l contacts.Location) bool { return l.IsHoused }) {
		return false
	}
	if s.IncludeResident && !anyLocation(scope, func(l contacts.Location) bool { return l.IsLocalResident }) {
		return false
	}
	return true
}

func anyRegionIn(locs []contacts.Location, regions []string) bool {
	for _, loc := range locs {
		if loc.Region == nil {
			continue
		}
		for _, r := range regions {
			if *loc.Region == r {
				return true
			}
		}
	}
	return false
}

func anyLocation(locs []contacts.Location, pred func(contacts.Location) bool) bool {
	for _, loc := range locs {
		if pred(loc) {
			return true
		}
	}
	return false
}

// MatchesSearch reports whether the trimmed, lower-cased query is a substring
// of the name, the job title, or any location country or region. An empty
// query matches everything.
func MatchesSearch(c contacts.Contact, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.JobTitle), q) {
		return true
	}
	for _, loc := range c.Locations {
		if strings.Contains(strings.ToLower(loc.Country), q) {
			return true
		}
		if loc.Region != nil && strings.Contains(strings.ToLower(*loc.Region), q) {
			return true
		}
	}
	return false
}

// Predicate combines the spec and the search query. The spec is only
// evaluated when it is active.
func Predicate(s Spec, query string) func(contacts.Contact) bool {
	s = s.Normalize()
	active := s.IsActive()
	return func(c contacts.Contact) bool {
		if active && !Matches(c, s) {
			return false
		}
		return MatchesSearch(c, query)
	}
}

// Apply returns the contacts accepted by Predicate, preserving order.
func Apply(list []contacts.Contact, s Spec, query string) []contacts.Contact {
	keep := Predicate(s, query)
	out := make([]contacts.Contact, 0, len(list))
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
