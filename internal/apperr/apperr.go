package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how it should surface to clients.
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindInternal       Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindInternal:       http.StatusInternalServerError,
}

// Status returns the HTTP status for a kind. Unknown kinds map to 500.
func (k Kind) Status() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified error carrying a client-safe message.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New returns an Error of the given kind with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap classifies err. The message is what clients see; err stays available
// through errors.Unwrap for logging.
func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

// Validation reports a malformed or incomplete request (400).
func Validation(message string) *Error { return New(KindValidation, message) }

// Authentication reports missing or rejected credentials (401).
func Authentication(message string) *Error { return New(KindAuthentication, message) }

// Internal hides err behind a generic client message (500).
func Internal(err error) *Error {
	return Wrap(KindInternal, err, "Something went wrong. Please try again later.")
}

// Kind reports the classification; a nil Error counts as internal.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Message is the client-safe text.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the first *Error in err's chain.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf reports the kind of err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.Kind()
	}
	return KindInternal
}
