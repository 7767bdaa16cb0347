package media

import (
	"errors"
	"fmt"
)

// Kind is a machine-stable error category surfaced in API payloads.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindUpstreamBlocked Kind = "upstream_blocked"
	KindNotFound        Kind = "not_found"
	KindExhausted       Kind = "all_strategies_exhausted"
	KindExtractionMiss  Kind = "extraction_miss"
	KindStreamFailure   Kind = "stream_failure"
)

// Error pairs a Kind with a human-readable message and an optional cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error without a cause.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new Error wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or an empty Kind if err does not
// wrap a media.Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
