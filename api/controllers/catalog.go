package controllers

import (
	"net/http"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/internal/filters"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
)

type catalogResponse struct {
	Departments   []enums.Department     `json:"departments"`
	Jobs          []string               `json:"jobs"`
	DefaultJob    string                 `json:"defaultJob"`
	Countries     []string               `json:"countries"`
	FrenchRegions []string               `json:"frenchRegions"`
	AllSentinel   string                 `json:"allSentinel"`
	ExportFormats []enums.TransferFormat `json:"exportFormats"`
	ImportFormats []enums.TransferFormat `json:"importFormats"`
}

// Catalog serves the fixed vocabularies the client uses to build pickers.
func Catalog() http.HandlerFunc {
	body := catalogResponse{
		Departments:   enums.Departments(),
		Jobs:          enums.AllJobs(),
		DefaultJob:    enums.DefaultJob,
		Countries:     enums.Countries(),
		FrenchRegions: enums.FrenchRegions(),
		AllSentinel:   filters.All,
		ExportFormats: enums.ExportFormats(),
		ImportFormats: []enums.TransferFormat{enums.FormatJSON, enums.FormatCSV, enums.FormatVCard, enums.FormatScan},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, body)
	}
}
