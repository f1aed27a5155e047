package upstream

import (
	"fmt"

	"github.com/newthinker/pickboard/internal/core"
)

// Kind classifies a failed engine call.
type Kind string

const (
	// KindNetwork is a transport-level failure (dial, DNS, timeout, reset).
	KindNetwork Kind = "network"
	// KindHTTPStatus is a response with a status the caller does not accept.
	KindHTTPStatus Kind = "http_status"
	// KindParse is a response body that is not a valid recommendation set.
	KindParse Kind = "parse"
)

// Error is returned by every failed Client call.
type Error struct {
	Kind       Kind
	Op         string // "fetch" or "trigger"
	StatusCode int
	Cause      error
}

// Error returns the message shown to dashboard users.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
	case KindParse:
		if e.Cause != nil {
			return fmt.Sprintf("invalid response body: %v", e.Cause)
		}
		return "invalid response body"
	default:
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return "network request failed"
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the coded sentinel for the error's kind, so callers can use
// errors.Is(err, core.ErrHTTPStatus) without importing this package.
func (e *Error) Is(target error) bool {
	t, ok := target.(*core.Error)
	if !ok {
		return false
	}
	return t.Code == e.sentinel().Code
}

func (e *Error) sentinel() *core.Error {
	switch e.Kind {
	case KindHTTPStatus:
		return core.ErrHTTPStatus
	case KindParse:
		return core.ErrParse
	default:
		return core.ErrNetwork
	}
}

func networkError(op string, cause error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Cause: cause}
}

func statusError(op string, status int) *Error {
	return &Error{Kind: KindHTTPStatus, Op: op, StatusCode: status}
}

func parseError(op string, cause error) *Error {
	return &Error{Kind: KindParse, Op: op, Cause: cause}
}
