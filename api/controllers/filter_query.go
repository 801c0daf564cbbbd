package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mycrew-backend/api/validators"
	"github.com/angelmondragon/mycrew-backend/internal/filters"
)

// listQuery is the filter and search carried by the list and export routes.
type listQuery struct {
	Filter filters.Spec `json:"filter"`
	Search string       `json:"search"`
}

func (q listQuery) normalized() listQuery {
	q.Filter = q.Filter.Normalize()
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (q listQuery) description() string {
	return filters.Describe(q.Filter, q.Search)
}

func listQueryFromRequest(r *http.Request) (listQuery, error) {
	values := r.URL.Query()
	spec := filters.Spec{
		Job:     values.Get("job"),
		Country: values.Get("country"),
		Regions: validators.ParseQueryList(r, "region"),
	}
	var err error
	if spec.IncludeVehicle, err = validators.ParseQueryBool(r, "vehicle"); err != nil {
		return listQuery{}, err
	}
	if spec.IncludeHoused, err = validators.ParseQueryBool(r, "housed"); err != nil {
		return listQuery{}, err
	}
	if spec.IncludeResident, err = validators.ParseQueryBool(r, "resident"); err != nil {
		return listQuery{}, err
	}
	return listQuery{Filter: spec, Search: values.Get("q")}.normalized(), nil
}
