package filters

import (
	"strings"

	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
)

const (
	// NoFilterDescription describes an unfiltered list.
	NoFilterDescription = "Tous les contacts"
	// DescriptionSeparator joins description parts.
	DescriptionSeparator = " • "

	LabelJob      = "Poste: "
	LabelCountry  = "Pays: "
	LabelRegions  = "Régions: "
	LabelCriteria = "Critères: "
	LabelSearch   = "Recherche: "
)

// Describe renders the active criteria as a human-readable line used in
// export headers and file names.
func Describe(s Spec, query string) string {
	s = s.Normalize()
	var parts []string
	if s.Job != All {
		parts = append(parts, LabelJob+s.Job)
	}
	if s.Country != All {
		parts = append(parts, LabelCountry+s.Country)
	}
	if len(s.Regions) > 0 {
		parts = append(parts, LabelRegions+strings.Join(s.Regions, ", "))
	}

	var criteria []string
	if s.IncludeVehicle {
		criteria = append(criteria, "Véhiculé")
	}
	if s.IncludeHoused {
		criteria = append(criteria, "Logé")
	}
	if s.IncludeResident {
		criteria = append(criteria, "Résidence fiscale")
	}
	if len(criteria) > 0 {
		parts = append(parts, LabelCriteria+strings.Join(criteria, ", "))
	}

	// The description is written on a single header line of csv and text
	// exports; line breaks in the query must not start a new line there.
	if q := strings.Join(strings.Fields(query), " "); q != "" {
		parts = append(parts, LabelSearch+`"`+q+`"`)
	}

	if len(parts) == 0 {
		return NoFilterDescription
	}
	return strings.Join(parts, DescriptionSeparator)
}

// Options lists the values offered in the filter pickers, each starting
// with All.
type Options struct {
	Jobs      []string `json:"jobs"`
	Countries []string `json:"countries"`
	Regions   []string `json:"regions"`
}

// BuildOptions offers the standard job vocabulary, plus the import-only job
// when some contact carries it, and only the countries present in the store.
func BuildOptions(usage contacts.Usage) Options {
	jobs := []string{All}
	jobs = append(jobs, enums.AllJobs()...)
	for _, job := range usage.JobTitles {
		if job == enums.DefaultJob {
			jobs = append(jobs, enums.DefaultJob)
			break
		}
	}

	countries := []string{All}
	countries = append(countries, usage.Countries...)

	return Options{Jobs: jobs, Countries: countries, Regions: enums.FrenchRegions()}
}
