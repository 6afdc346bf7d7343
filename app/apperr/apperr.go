// Package apperr defines the failure kinds the API distinguishes and maps
// each of them to the closest HTTP status. Services return these errors;
// controllers only ever call Status and Message on them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnexpected is anything we did not classify.
	KindUnexpected Kind = iota
	// KindValidation is a missing or malformed input field.
	KindValidation
	// KindNotFound is a referenced comment, post, or user that does not exist.
	KindNotFound
	// KindTransient is a failed call to the underlying store.
	KindTransient
	// KindBadCredentials is a missing, invalid, or expired credential.
	KindBadCredentials
	// KindPermissionDenied is an authenticated caller acting on something it does not own.
	KindPermissionDenied
	// KindConflict is a uniqueness violation such as a duplicate email.
	KindConflict
)

var statuses = map[Kind]int{
	KindUnexpected:       http.StatusInternalServerError,
	KindValidation:       http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindTransient:        http.StatusInternalServerError,
	KindBadCredentials:   http.StatusUnauthorized,
	KindPermissionDenied: http.StatusForbidden,
	KindConflict:         http.StatusConflict,
}

// Error carries a human-readable message, its Kind, and optionally the
// lower-level cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message, followed by the cause when there is one.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for this error's kind.
func (e *Error) Status() int {
	if status, ok := statuses[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validation reports a missing or malformed field. Always a 400.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, nil, format, args...)
}

// NotFound reports a missing record. Always a 404.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, nil, format, args...)
}

// Transient wraps a store failure. Always a 500.
func Transient(err error, format string, args ...interface{}) *Error {
	return newError(KindTransient, err, format, args...)
}

// BadCredentials reports a failed authentication. Always a 401.
func BadCredentials(format string, args ...interface{}) *Error {
	return newError(KindBadCredentials, nil, format, args...)
}

// PermissionDenied reports an ownership violation. Always a 403.
func PermissionDenied(format string, args ...interface{}) *Error {
	return newError(KindPermissionDenied, nil, format, args...)
}

// Conflict reports a uniqueness violation. Always a 409.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, nil, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnexpected if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status looks up the HTTP status for err. Unclassified errors are 500s.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}

// Message returns the text that is safe to show a caller. Store causes
// and unclassified errors are hidden behind a generic message.
func Message(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindUnexpected {
		return "internal server error"
	}
	return appErr.Message
}
