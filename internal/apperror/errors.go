// Package apperror defines the error kinds shared by the store, the services and
// the HTTP layer.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	// KindConflict is the duplicate unique key flavour of a validation error
	KindConflict         Kind = "conflict"
	KindStoreUnavailable Kind = "store_unavailable"
	KindInternal         Kind = "internal"
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing vendor or purchase order
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports input that violates the data model
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate unique key
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// StoreUnavailable wraps a transient persistence failure
func StoreUnavailable(err error, message string) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain. Deadline and
// cancellation errors count as store unavailability.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindStoreUnavailable
	}
	return KindInternal
}

// Is reports whether err has the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether a single retry of the failed operation may succeed
func IsRetryable(err error) bool {
	return Is(err, KindStoreUnavailable)
}

// HTTPStatus maps an error to the status code returned by the API
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to API callers
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal && appErr.Kind != KindStoreUnavailable {
		return appErr.Message
	}
	if KindOf(err) == KindStoreUnavailable {
		return "Storage temporarily unavailable"
	}
	return "Internal server error"
}
