// Package apperror defines the closed set of failure kinds the API reports to callers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	// KindUnknown is any error that was not classified by a service.
	KindUnknown Kind = iota
	// KindUnauthenticated is a missing or invalid credential.
	KindUnauthenticated
	// KindBadRequest is a missing required parameter or unreadable body.
	KindBadRequest
	// KindPersistence is a grid store that is unreachable or rejected the operation.
	KindPersistence
	// KindProxy is an upstream fetch that failed before a response arrived.
	KindProxy
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBadRequest:
		return "bad_request"
	case KindPersistence:
		return "persistence"
	case KindProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to callers; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Unauthenticated creates a KindUnauthenticated error.
func Unauthenticated(msg string, cause error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg, Cause: cause}
}

// BadRequest creates a KindBadRequest error.
func BadRequest(msg string, cause error) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Cause: cause}
}

// Persistence creates a KindPersistence error.
func Persistence(msg string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Cause: cause}
}

// Proxy creates a KindProxy error.
func Proxy(msg string, cause error) *Error {
	return &Error{Kind: KindProxy, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-facing message for err.
// Unclassified errors get a generic message so internals never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "An internal error occurred"
}
