package types

// SuccessEnvelope wraps a single MyCrew payload: a contact, the profile, an
// import result or an export artifact.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope carries one page of contacts. Data is either a flat list or
// the grouped-by-initial sections, depending on the list mode.
type ListEnvelope struct {
	Data any      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// PageMeta counts contacts after the filter and search were applied.
type PageMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// APIError is the client view of a pkg/errors failure. Details holds field
// paths such as "locations[0].country" for validation errors and the
// duplicate names for DUPLICATE_CONFLICT.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
