package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/api/validators"
	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/exports"
	"github.com/angelmondragon/mycrew-backend/internal/filters"
	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

type exportRequest struct {
	Format string       `json:"format" validate:"notblank"`
	Filter filters.Spec `json:"filter"`
	Search string       `json:"search"`
}

type scanCodeResponse struct {
	Payload string `json:"payload"`
}

func parseFormat(raw string) (enums.TransferFormat, error) {
	format, err := enums.ParseExportFormat(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnsupportedFormat, err, "unsupported export format").
			WithDetails(map[string]any{"format": raw, "allowed": enums.ExportFormats()})
	}
	return format, nil
}

// buildExport decodes the request and resolves the contacts it selects.
func buildExport(r *http.Request, svc contacts.Service) (exports.Request, error) {
	var body exportRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		return exports.Request{}, err
	}
	format, err := parseFormat(body.Format)
	if err != nil {
		return exports.Request{}, err
	}
	query := listQuery{Filter: body.Filter, Search: body.Search}.normalized()
	list, err := svc.List(r.Context(), contacts.ListOptions{Match: filters.Predicate(query.Filter, query.Search)})
	if err != nil {
		return exports.Request{}, err
	}
	return exports.Request{Format: format, Contacts: list, Description: query.description()}, nil
}

// ContactsExport renders the filtered list. Text comes back inline; csv and
// json are stored and returned as a reference.
func ContactsExport(contactSvc contacts.Service, exportSvc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := buildExport(r, contactSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := exportSvc.Export(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, artifact)
	}
}

// ContactsExportDownload streams the rendered list as an attachment without
// touching the sink.
func ContactsExportDownload(contactSvc contacts.Service, exportSvc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := buildExport(r, contactSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := exportSvc.Render(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !artifact.IsFile() {
			artifact.FileName = transfer.FileName(req.Description, artifact.Count, time.Now(), artifact.Format)
			artifact.Data = []byte(artifact.Text)
		}
		responses.WriteAttachment(w, artifact.FileName, artifact.ContentType, artifact.Data)
	}
}

// ContactExport shares one contact as json or text. download=true streams
// the bytes instead of storing them.
func ContactExport(contactSvc contacts.Service, exportSvc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawFormat := r.URL.Query().Get("format")
		if strings.TrimSpace(rawFormat) == "" {
			rawFormat = string(enums.FormatJSON)
		}
		format, err := parseFormat(rawFormat)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		download, err := validators.ParseQueryBool(r, "download")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contact, err := contactSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !download {
			artifact, err := exportSvc.ExportContact(r.Context(), contact, format)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, artifact)
			return
		}

		artifact, err := exportSvc.RenderContact(r.Context(), contact, format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !artifact.IsFile() {
			artifact.FileName = strings.TrimSuffix(transfer.ContactFileName(contact.Name), ".json") + ".txt"
			artifact.Data = []byte(artifact.Text)
		}
		responses.WriteAttachment(w, artifact.FileName, artifact.ContentType, artifact.Data)
	}
}

func ContactScanCode(contactSvc contacts.Service, exportSvc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contact, err := contactSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := exportSvc.ScanCode(r.Context(), contact)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, scanCodeResponse{Payload: payload})
	}
}
