package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/api/validators"
	"github.com/angelmondragon/mycrew-backend/internal/profile"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

// ProfileGet returns the user's own card, or the example card before the
// first save.
func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

func ProfileSave(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body profile.Profile
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saved, err := svc.Save(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

func ProfileScanCode(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := svc.ScanCode(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, scanCodeResponse{Payload: payload})
	}
}

func ProfileExport(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawFormat := r.URL.Query().Get("format")
		if strings.TrimSpace(rawFormat) == "" {
			rawFormat = string(enums.FormatJSON)
		}
		format, err := parseFormat(rawFormat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := svc.Export(r.Context(), format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, artifact)
	}
}
