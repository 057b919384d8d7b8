package errors

import (
	stderrors "errors"
	"fmt"
)

// IndError is the structured error type for indsearch.
// It carries enough context for logging, CLI display and the
// "search unavailable" state shown by the outer surfaces.
type IndError struct {
	// Code is the unique error code (e.g., "ERR_201_CATALOG_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IndError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IndError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *IndError) Is(target error) bool {
	if t, ok := target.(*IndError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *IndError) WithDetail(key, value string) *IndError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *IndError) WithSuggestion(suggestion string) *IndError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IndError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *IndError {
	return &IndError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an IndError from an existing error.
func Wrap(code string, err error) *IndError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinel returns a code-only error usable as an errors.Is target.
func Sentinel(code string) *IndError {
	return &IndError{Code: code}
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *IndError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a record validation error.
func ValidationError(message string, cause error) *IndError {
	return New(ErrCodeRecordInvalid, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IndError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var ie *IndError
	if stderrors.As(err, &ie) {
		return ie.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first IndError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ie *IndError
	if stderrors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// HasCategory reports whether the first IndError in the chain has category c.
func HasCategory(err error, c Category) bool {
	var ie *IndError
	if stderrors.As(err, &ie) {
		return ie.Category == c
	}
	return false
}
