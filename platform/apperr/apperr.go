// Package apperr carries typed application errors from the domain and
// service layers to the transport edge, where the kind decides the HTTP
// status. Services return *Error values; handlers map them without
// inspecting message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindUnknown is the zero kind for errors of unknown origin.
	KindUnknown Kind = iota
	// KindNotFound marks a missing resource.
	KindNotFound
	// KindValidation marks input that fails a business rule.
	KindValidation
	// KindConflict marks a clash with current state, such as an illegal
	// status transition or a lost concurrent write.
	KindConflict
	// KindForbidden marks an action the acting party may not perform.
	KindForbidden
	// KindUnauthorized marks missing or failed authentication.
	KindUnauthorized
	// KindBadRequest marks a request that could not be parsed.
	KindBadRequest
	// KindInternal marks an unexpected failure.
	KindInternal
	// KindGone marks a resource that existed but is no longer available,
	// such as an expired share link.
	KindGone
)

// Error is an application error with a Kind for transport mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed (optional)
	Err     error  // underlying cause (optional)
	Details any    // extra payload for the response body (optional)
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	case KindGone:
		return http.StatusGone
	default:
		return http.StatusBadRequest
	}
}

// New creates an error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error that carries an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp annotates the error with the failing operation.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches a payload that transports may include in the body.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// BadRequest creates a bad-request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// Gone creates a gone error for expired or withdrawn resources.
func Gone(message string) *Error {
	return New(KindGone, message)
}

// GetKind extracts the kind from anywhere in the error chain.
// Returns KindUnknown when no *Error is present.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether the error chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
