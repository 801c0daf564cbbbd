package controllers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/api/validators"
	"github.com/angelmondragon/mycrew-backend/internal/imports"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

const uploadField = "file"

type decisionRequest struct {
	Decision string `json:"decision" validate:"notblank"`
}

type scanImportRequest struct {
	Payload string `json:"payload" validate:"notblank"`
}

func writeImportResult(w http.ResponseWriter, result imports.Result) {
	status := http.StatusOK
	switch result.Status {
	case imports.StatusApplied:
		status = http.StatusCreated
	case imports.StatusAwaitingDecision:
		status = http.StatusAccepted
	}
	responses.WriteSuccessStatus(w, status, result)
}

// readUpload accepts a multipart "file" part or a raw body named by the
// filename query parameter.
func readUpload(r *http.Request, maxBytes int64) (imports.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return imports.Upload{}, uploadReadError(err)
		}
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return imports.Upload{}, pkgerrors.New(pkgerrors.CodeValidation, "file part is required").WithDetails(map[string]any{"field": uploadField})
			}
			return imports.Upload{}, pkgerrors.Wrap(pkgerrors.CodeAccessDenied, err, "uploaded file could not be opened")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return imports.Upload{}, uploadReadError(err)
		}
		return imports.Upload{FileName: header.Filename, Data: data}, nil
	}

	name := strings.TrimSpace(r.URL.Query().Get("filename"))
	if name == "" {
		return imports.Upload{}, pkgerrors.New(pkgerrors.CodeValidation, "filename query parameter is required").WithDetails(map[string]any{"field": "filename"})
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return imports.Upload{}, uploadReadError(err)
	}
	return imports.Upload{FileName: name, Data: data}, nil
}

func uploadReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file too large").WithDetails(map[string]any{"limit": tooLarge.Limit})
	}
	return pkgerrors.Wrap(pkgerrors.CodeAccessDenied, err, "uploaded file could not be read")
}

// ImportUpload parses an uploaded file and applies it, or parks it until the
// caller decides what to do with duplicate names.
func ImportUpload(svc imports.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		upload, err := readUpload(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Import(r.Context(), upload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeImportResult(w, result)
	}
}

func ImportDecision(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID := strings.TrimSpace(chi.URLParam(r, "importId"))
		if importID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "importId is required"))
			return
		}
		var body decisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseImportDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision").WithDetails(map[string]any{"decision": "must be continue or cancel"}))
			return
		}
		result, err := svc.Resolve(r.Context(), importID, decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeImportResult(w, result)
	}
}

func ImportScan(svc imports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body scanImportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ImportScanCode(r.Context(), body.Payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeImportResult(w, result)
	}
}
