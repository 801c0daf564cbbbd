package filters

import (
	"sort"
	"strings"

	"github.com/angelmondragon/mycrew-backend/pkg/enums"
)

// All is the sentinel meaning "no constraint" for job and country.
const All = "Tous"

// Spec is a composable set of inclusion criteria for the contact list.
type Spec struct {
	Job             string   `json:"job"`
	Country         string   `json:"country"`
	Regions         []string `json:"regions"`
	IncludeVehicle  bool     `json:"includeVehicle"`
	IncludeHoused   bool     `json:"includeHoused"`
	IncludeResident bool     `json:"includeResident"`
}

// Default returns a spec that accepts every contact.
func Default() Spec {
	return Spec{Job: All, Country: All}
}

// Normalize trims the fields, maps blanks to All and deduplicates the region
// set. Regions only survive when the country is France.
func (s Spec) Normalize() Spec {
	s.Job = strings.TrimSpace(s.Job)
	if s.Job == "" {
		s.Job = All
	}
	s.Country = strings.TrimSpace(s.Country)
	if s.Country == "" {
		s.Country = All
	}
	if s.Country != enums.CountryFrance {
		s.Regions = nil
		return s
	}

	seen := map[string]struct{}{}
	regions := make([]string, 0, len(s.Regions))
	for _, r := range s.Regions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		regions = append(regions, r)
	}
	sort.Strings(regions)
	if len(regions) == 0 {
		regions = nil
	}
	s.Regions = regions
	return s
}

// WithCountry changes the country, dropping selected regions when moving
// away from France.
func (s Spec) WithCountry(country string) Spec {
	if country != enums.CountryFrance {
		s.Regions = nil
	}
	s.Country = country
	return s
}

// IsActive reports whether any criterion differs from the default.
func (s Spec) IsActive() bool {
	n := s.Normalize()
	return n.Job != All ||
		n.Country != All ||
		len(n.Regions) > 0 ||
		n.IncludeVehicle ||
		n.IncludeHoused ||
		n.IncludeResident
}

// SingleJob returns the job filter value when one is selected.
func (s Spec) SingleJob() (string, bool) {
	n := s.Normalize()
	return n.Job, n.Job != All
}
