package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies application failures so the HTTP layer can map them
// to status codes in one place.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicate
	KindCapacityExceeded
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindUpstream
)

// Error is the typed failure raised by domain services.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus carries the HTTP status returned by an external API
	// for KindUpstream errors. Zero otherwise.
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing resource.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Duplicate reports a uniqueness violation.
func Duplicate(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// CapacityExceeded reports a per-member limit being hit.
func CapacityExceeded(format string, args ...any) *Error {
	return &Error{Kind: KindCapacityExceeded, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports a request the caller could have avoided.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an authenticated caller acting on a resource it does not own.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a failed call to an external API.
func Upstream(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, UpstreamStatus: status, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsRateLimited reports whether err is an upstream failure caused by HTTP 429.
func IsRateLimited(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == KindUpstream && appErr.UpstreamStatus == http.StatusTooManyRequests
	}
	return false
}

// HTTPStatus maps an error to the status code the API should answer with.
func HTTPStatus(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate, KindCapacityExceeded:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		if appErr.UpstreamStatus == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
