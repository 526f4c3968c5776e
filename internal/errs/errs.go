// Package errs defines the failure taxonomy shared by every component and its
// mapping onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	BadRequest               Kind = "BAD_REQUEST"
	CredentialsNotConfigured Kind = "CREDENTIALS_NOT_CONFIGURED"
	AuthFailure              Kind = "AUTH_FAILURE"
	NotFound                 Kind = "NOT_FOUND"
	ModelRefusal             Kind = "MODEL_REFUSAL"
	NoStructuredData         Kind = "NO_STRUCTURED_DATA"
	MalformedPayload         Kind = "MALFORMED_PAYLOAD"
	IncompleteRecord         Kind = "INCOMPLETE_RECORD"
	UpstreamFailure          Kind = "UPSTREAM_FAILURE"
	IOFailure                Kind = "IO_FAILURE"
)

// Error implements error so a bare Kind can be used as an errors.Is target:
//
//	errors.Is(err, errs.NotFound)
func (k Kind) Error() string { return string(k) }

// Error is a classified failure. Message is safe to show to API callers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a classified error carrying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsParseFailure reports whether err is one of the generative-response
// interpretation failures.
func IsParseFailure(err error) bool {
	switch KindOf(err) {
	case ModelRefusal, NoStructuredData, MalformedPayload, IncompleteRecord:
		return true
	}
	return false
}

// HTTPStatus maps err onto the status code returned at the request boundary.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message for err, dropping any wrapping
// context added above the classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// Preview truncates s to at most n runes for inclusion in error messages.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
