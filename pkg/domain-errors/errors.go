// Package domainerrors provides code-tagged errors shared across the engine.
//
// Services and stores attach a Code when they create or wrap an error; callers
// branch on the code with HasCode instead of string matching. Infrastructure
// failures (row missing, backend down) are tagged with a code where they
// occur, so no caller ever inspects driver error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a category of domain error.
type Code string

const (
	// CodeInvalidInput marks malformed or missing caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvalidGeometry marks degenerate project geometry: empty,
	// zero-area, or self-intersecting rings. Fatal to a whole analysis.
	CodeInvalidGeometry Code = "invalid_geometry"
	// CodeConfiguration marks an invalid rules or catalog file. Raised at
	// startup validation, never at request time.
	CodeConfiguration Code = "configuration"
	// CodeNotFound marks a lookup of an unknown entity (e.g. layer id).
	CodeNotFound Code = "not_found"
	// CodeUnavailable marks a dependency that could not be reached.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures. Details are not exposed to
	// API clients.
	CodeInternal Code = "internal"
)

// Error is a domain error carrying a code and an operator-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error, preserving the
// cause chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the code of the outermost domain error in the chain, or
// CodeInternal when the error was never tagged.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
