package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrSource  = "SOURCE"  // data source unreachable or faulted (not "not found")
	ErrContent = "CONTENT" // telemetry file present but malformed
	ErrSSH     = "SSH"
	ErrAudio   = "AUDIO"
	ErrExec    = "EXEC"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Content builds a CONTENT error for a malformed telemetry file.
func Content(file string, cause error) *Error {
	return &Error{
		Code:       ErrContent,
		Message:    fmt.Sprintf("Can't parse %s", file),
		Suggestion: "Check the file's CSV header and values",
		Cause:      cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns a single-line form of the error ("message: cause"), used where
// the multi-line block does not fit, such as inside a dashboard card.
func (e *Error) Short() string {
	if e.Cause == nil {
		return e.Message
	}
	cause := e.Cause.Error()
	var inner *Error
	if errors.As(e.Cause, &inner) {
		cause = inner.Short()
	}
	return e.Message + ": " + cause
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var fmErr *Error
	if errors.As(err, &fmErr) {
		return fmErr.Code == code
	}
	return false
}

// Short returns the single-line form of any error.
func Short(err error) string {
	if err == nil {
		return ""
	}
	var fmErr *Error
	if errors.As(err, &fmErr) {
		return fmErr.Short()
	}
	return err.Error()
}
