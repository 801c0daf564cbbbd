package controllers

import (
	"net/http"

	"github.com/angelmondragon/mycrew-backend/api/responses"
	"github.com/angelmondragon/mycrew-backend/api/validators"
	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/filters"
	pkgerrors "github.com/angelmondragon/mycrew-backend/pkg/errors"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/pagination"
	"github.com/angelmondragon/mycrew-backend/pkg/types"
)

type contactListResponse struct {
	Contacts     []contacts.Contact `json:"contacts,omitempty"`
	Groups       []contacts.Group   `json:"groups,omitempty"`
	Description  string             `json:"description"`
	FilterActive bool               `json:"filterActive"`
}

// ContactList returns the filtered, searched and sorted contact list. With
// grouped=true the page is split into alphabetical sections.
func ContactList(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := listQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		grouped, err := validators.ParseQueryBool(r, "grouped")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pagination.Parse(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination"))
			return
		}

		list, err := svc.List(r.Context(), contacts.ListOptions{Match: filters.Predicate(query.Filter, query.Search)})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.Page(list, params)
		body := contactListResponse{
			Description:  query.description(),
			FilterActive: query.Filter.IsActive(),
		}
		if grouped {
			body.Groups = contacts.GroupByInitial(page)
		} else {
			body.Contacts = page
		}
		responses.WriteList(w, body, types.PageMeta{Total: len(list), Limit: params.Limit, Offset: params.Offset})
	}
}

func ContactCreate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft contacts.Draft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ContactGet(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contact, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contact)
	}
}

// ContactUpdate replaces the contact with the submitted edit buffer,
// locations included.
func ContactUpdate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var draft contacts.Draft
		if err := validators.DecodeJSONBody(r, &draft); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ContactDelete(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true, "id": id})
	}
}

func ContactToggleFavorite(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contact, err := svc.ToggleFavorite(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contact)
	}
}

// ContactFilterOptions lists the job, country and region values currently
// worth offering in the filter pickers.
func ContactFilterOptions(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usage, err := svc.Usage(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, filters.BuildOptions(usage))
	}
}
