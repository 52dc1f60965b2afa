// Package errors provides the structured error type shared by vogonix
// services and the CLI. The error Kind determines the process exit code.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/gueldenstone/vogonix/internal/duration"
)

// Kind represents the category of an error.
type Kind int

const (
	// KindInvalidArgs represents invalid input, including negative durations
	// and unparsable timestamps. CLI exit code: 2
	KindInvalidArgs Kind = iota

	// KindNotFound represents a missing issue, timer or worklog.
	// CLI exit code: 3
	KindNotFound

	// KindStateError represents an operation not valid for the current
	// timer state. CLI exit code: 4
	KindStateError

	// KindInternal represents a local database or filesystem failure.
	// CLI exit code: 5
	KindInternal

	// KindRemote represents a failure talking to the issue tracker.
	// CLI exit code: 7
	KindRemote

	// KindGeneral represents anything else. CLI exit code: 1
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindNotFound:
		return "NotFound"
	case KindStateError:
		return "StateError"
	case KindInternal:
		return "Internal"
	case KindRemote:
		return "Remote"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// ExitCode returns the CLI exit code for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindInvalidArgs:
		return 2
	case KindNotFound:
		return 3
	case KindStateError:
		return 4
	case KindInternal:
		return 5
	case KindRemote:
		return 7
	default:
		return 1
	}
}

// Error is a structured error with kind, message, cause, and optional details.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the exit code for this error.
func (e *Error) CLIExitCode() int {
	return e.Kind.ExitCode()
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgs, format, args...)
}

// StateError creates an error for operations invalid in the current state.
func StateError(format string, args ...interface{}) *Error {
	return newError(KindStateError, format, args...)
}

// Internal creates an error for database or filesystem failures.
func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, format, args...)
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return newError(KindGeneral, format, args...)
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.Cause = err
	return e
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// WrapRemote wraps an issue tracker failure.
func WrapRemote(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindRemote, format, args...)
}

// FromDuration classifies an error returned by the duration package.
// Negative durations and bad timestamps become InvalidArgs; anything else
// is returned as a general error.
func FromDuration(err error, format string, args ...interface{}) *Error {
	var perr *duration.TimestampParseError
	if stderrors.Is(err, duration.ErrInvalidDuration) || stderrors.As(err, &perr) {
		return Wrap(err, KindInvalidArgs, format, args...)
	}
	return Wrap(err, KindGeneral, format, args...)
}

// GetKind extracts the Kind from an error chain, returning KindGeneral if
// no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	return GetKind(err).ExitCode()
}

// Is returns true if the error chain holds an *Error of the specified kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
