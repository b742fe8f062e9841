// Package errors provides structured error types for ontoflow.
//
// Errors carry a machine-readable [Code] so that the CLI, the pipeline and
// embedding shells can branch on the failure class without string matching.
//
// # Error Codes
//
// Codes follow the taxonomy of the layout and topology core:
//   - INVALID_*: malformed input or configuration
//   - SCHEMA_VIOLATION: ontology-noncompliant data (usually reported as a
//     list of strings instead, see pkg/ontology)
//   - DANGLING_REFERENCE: an edge names a node that does not exist
//   - UNKNOWN_ALGORITHM: a layout algorithm name outside the dispatcher table
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownAlgorithm, "unknown algorithm %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownAlgorithm) {
//	    // fall back to the configured default
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidOntology Code = "INVALID_ONTOLOGY"
	ErrCodeInvalidParams   Code = "INVALID_PARAMS"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Graph data errors
	ErrCodeSchemaViolation   Code = "SCHEMA_VIOLATION"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeUnknownNode       Code = "UNKNOWN_NODE"

	// Layout errors
	ErrCodeUnknownAlgorithm Code = "UNKNOWN_ALGORITHM"
	ErrCodeCancelled        Code = "CANCELLED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or *ListError with a
// matching code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is neither an *Error nor a *ListError.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var le *ListError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ListError aggregates human-readable violations into a single error value.
// It is used where an API must return an error but the caller still wants
// every problem at once (ontology loading, CLI validation).
type ListError struct {
	Code       Code
	Violations []string
}

// Error implements the error interface.
func (e *ListError) Error() string {
	switch len(e.Violations) {
	case 0:
		return string(e.Code)
	case 1:
		return fmt.Sprintf("%s: %s", e.Code, e.Violations[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more)", e.Code, e.Violations[0], len(e.Violations)-1)
	}
}

// Is lets errors.Is match a ListError against an *Error of the same code.
func (e *ListError) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewList returns a *ListError, or nil when violations is empty.
func NewList(code Code, violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ListError{Code: code, Violations: violations}
}

// Violations returns the violation list carried by err, or nil.
func Violations(err error) []string {
	var le *ListError
	if errors.As(err, &le) {
		return le.Violations
	}
	return nil
}
