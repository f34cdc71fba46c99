// Package domainerrors carries coded errors across service boundaries so
// transport layers can translate them without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	CodeBadRequest        Code = "bad_request"
	CodeValidation        Code = "validation_failed"
	CodeInvalidTransition Code = "invalid_transition"
	CodeConflict          Code = "conflict"
	CodeNotFound          Code = "not_found"
	CodeUnauthorized      Code = "unauthorized"
	CodeForbidden         Code = "forbidden"
	CodeTimeout           Code = "timeout"
	CodeInternal          Code = "internal"
)

// Error is the canonical domain error. Fields carries a per-field validation
// report; FromState/ToState describe a rejected lifecycle transition. Both are
// optional and only set by the constructors that take them.
type Error struct {
	Code      Code
	Message   string
	Fields    map[string]string
	FromState string
	ToState   string
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewValidation builds a field-level validation report. The map keys are field
// names, values are the reason each field was rejected.
func NewValidation(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "one or more fields failed validation",
		Fields:  fields,
	}
}

// NewInvalidTransition reports an illegal state change with both states so the
// caller can render a precise message.
func NewInvalidTransition(from, to string) *Error {
	return &Error{
		Code:      CodeInvalidTransition,
		Message:   fmt.Sprintf("cannot transition from %q to %q", from, to),
		FromState: from,
		ToState:   to,
	}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
