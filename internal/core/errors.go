// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Upstream errors
	ErrNetwork    = &Error{Code: "NETWORK_ERROR", Message: "network request failed"}
	ErrHTTPStatus = &Error{Code: "HTTP_STATUS", Message: "unexpected HTTP status"}
	ErrParse      = &Error{Code: "PARSE_ERROR", Message: "malformed response body"}

	// Dashboard errors
	ErrNotRunning         = &Error{Code: "NOT_RUNNING", Message: "dashboard not running"}
	ErrAlreadyRunning     = &Error{Code: "ALREADY_RUNNING", Message: "dashboard already running"}
	ErrRefreshInProgress  = &Error{Code: "REFRESH_IN_PROGRESS", Message: "refresh already in progress"}
	ErrRefreshRateLimited = &Error{Code: "REFRESH_RATE_LIMITED", Message: "refresh requested too often"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Auth errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
)
