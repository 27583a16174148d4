// Package schederr defines the error taxonomy shared by the calendar, staff,
// and scheduler packages so callers can branch on failure kind without
// string-matching messages.
package schederr

import (
	"errors"
	"fmt"
)

// Kind classifies why a scheduling request failed.
type Kind string

const (
	InvalidDate       Kind = "invalid_date"
	InvalidRole       Kind = "invalid_role"
	InvalidRange      Kind = "invalid_range"
	InsufficientStaff Kind = "insufficient_staff"
	MissingSenior     Kind = "missing_senior"
	NoSolution        Kind = "no_solution"
	DecodeInvariant   Kind = "decode_invariant"
	InternalError     Kind = "internal_error"
)

// Error is a typed, wrappable error carrying a Kind for programmatic
// handling and a human-readable Message for display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message, followed by the wrapped cause when there is
// one. InternalError returns only its own message so that the cause's text
// is not surfaced; the cause stays reachable through Unwrap.
func (e *Error) Error() string {
	if e.Err != nil && e.Kind != InternalError {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is, or wraps, a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
