package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the stable, client-visible identifier of a failure class.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeInvalidFormat     Code = "INVALID_FORMAT"
	CodeDuplicateConflict Code = "DUPLICATE_CONFLICT"
	CodeAccessDenied      Code = "ACCESS_DENIED"
	CodePersistence       Code = "PERSISTENCE_FAILURE"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP.
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Retryable marks failures a client may retry unchanged.
	Retryable bool
	// DetailsAllowed lets Error.Details reach the response body.
	DetailsAllowed bool
	// ExposeMessage replaces PublicMessage with the error's own message.
	ExposeMessage bool
}

type flag uint8

const (
	retryable flag = 1 << iota
	details
	expose
)

func define(status int, public string, flags flag) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		DetailsAllowed: flags&details != 0,
		ExposeMessage:  flags&expose != 0,
	}
}

var registry = map[Code]Metadata{
	CodeValidation:        define(http.StatusBadRequest, "validation failed", details|expose),
	CodeNotFound:          define(http.StatusNotFound, "resource not found", expose),
	CodeConflict:          define(http.StatusConflict, "conflict detected", expose),
	CodeIdempotency:       define(http.StatusConflict, "idempotency key reused", details|expose),
	CodeUnsupportedFormat: define(http.StatusUnsupportedMediaType, "unsupported format", details|expose),
	CodeInvalidFormat:     define(http.StatusUnprocessableEntity, "invalid format", details|expose),
	CodeDuplicateConflict: define(http.StatusConflict, "duplicate contacts require a decision", details|expose),
	CodeAccessDenied:      define(http.StatusForbidden, "resource access denied", expose),
	CodePersistence:       define(http.StatusServiceUnavailable, "could not persist changes", retryable|details),
	CodeInternal:          define(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:        define(http.StatusServiceUnavailable, "dependency unavailable", retryable|details),
}

// Meta returns the HTTP metadata for c. Unknown codes behave like
// CodeInternal.
func (c Code) Meta() Metadata {
	if meta, ok := registry[c]; ok {
		return meta
	}
	return registry[CodeInternal]
}

// Error carries a code for callers, a message for the client and an
// optional cause for logs.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err yields a plain New.
func Wrap(code Code, err error, message string) *Error {
	e := New(code, message)
	e.cause = err
	return e
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// PublicMessage is what a client may see for this error.
func (e *Error) PublicMessage() string {
	meta := e.Code().Meta()
	if meta.ExposeMessage && e.Message() != "" {
		return e.message
	}
	return meta.PublicMessage
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return fmt.Sprintf("%s [%s]", e.message, e.code)
	default:
		return fmt.Sprintf("%s [%s]: %v", e.message, e.code, e.cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
