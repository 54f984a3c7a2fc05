// Package coreerr implements the fatal-error taxonomy as a single wrapped
// error type, so callers can use errors.As/errors.Is instead of matching
// on message strings.
package coreerr

import (
	"errors"
	"fmt"
)

// Kind names one row of the fatal-error taxonomy.
type Kind string

const (
	KindConfigInvalid            Kind = "ConfigInvalid"
	KindFileDiscoveryEmpty       Kind = "FileDiscoveryEmpty"
	KindHelperUnavailable        Kind = "HelperUnavailable"
	KindHelperTimeout            Kind = "HelperTimeout"
	KindMatcherGlobInvalid       Kind = "MatcherGlobInvalid"
	KindSchemaVersionUnsupported Kind = "SchemaVersionUnsupported"
	KindInvariantViolated        Kind = "InvariantViolated"
	KindCancelled                Kind = "Cancelled"
)

// Error wraps a Kind from the §7 taxonomy with a message and, usually, an
// underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Kind-tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Kind-tagged error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
