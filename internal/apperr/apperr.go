package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	// KindValidation covers bad or missing input, duplicate email and
	// image counts outside [1,10].
	KindValidation Kind = iota + 1
	// KindUnauthenticated covers missing, malformed or expired credentials
	// and credentials whose user no longer exists.
	KindUnauthenticated
	// KindRevoked marks a token that was explicitly logged out. Checked
	// before cryptographic validity.
	KindRevoked
	// KindNotFound covers missing resources and disguised ownership
	// mismatches.
	KindNotFound
	// KindInternal covers unexpected persistence or media-host failures.
	KindInternal
)

// Error carries a kind plus a user-presentable message. An optional cause
// is kept for logging and unwrapping but never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error      { return New(KindValidation, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Revoked(message string) *Error         { return New(KindRevoked, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf extracts the kind from err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-presentable message for err. Unclassified errors
// get a generic message so internals never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindRevoked:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
