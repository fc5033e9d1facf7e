// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific failure kind in the audit pipeline
type ErrorCode string

const (
	ErrCodeConfigMissing   ErrorCode = "CONFIG_MISSING"
	ErrCodeFetchFailed     ErrorCode = "FETCH_FAILED"
	ErrCodeIncompletePage  ErrorCode = "INCOMPLETE_PAGE"
	ErrCodeDownloadFailed  ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeNoAnalysis      ErrorCode = "NO_ANALYSIS"
	ErrCodeExtractionError ErrorCode = "EXTRACTION_ERROR"
)

// Sentinels usable with errors.Is; matching is by code
var (
	ErrConfigMissing   = &Error{Code: ErrCodeConfigMissing}
	ErrFetchFailed     = &Error{Code: ErrCodeFetchFailed}
	ErrIncompletePage  = &Error{Code: ErrCodeIncompletePage}
	ErrDownloadFailed  = &Error{Code: ErrCodeDownloadFailed}
	ErrNoAnalysis      = &Error{Code: ErrCodeNoAnalysis}
	ErrExtractionError = &Error{Code: ErrCodeExtractionError}
)

// Error wraps errors with a failure code and additional context
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a new Error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the failure code carried by err, or "" if it has none
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
