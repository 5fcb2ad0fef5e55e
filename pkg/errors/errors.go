// Package errors provides structured error types for the GitRanked application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - RATE_LIMITED / UPSTREAM_* / CONNECTION_*: Transport failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLocation, "empty location query")
//	if errors.Is(err, errors.ErrCodeInvalidLocation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeConnection, origErr, "failed to reach %s", url)
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidLocation Code = "INVALID_LOCATION"
	ErrCodeInvalidSort     Code = "INVALID_SORT"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeUserNotFound Code = "USER_NOT_FOUND"

	// Transport errors
	ErrCodeRateLimited     Code = "RATE_LIMITED"
	ErrCodeUpstream        Code = "UPSTREAM_ERROR"
	ErrCodeConnection      Code = "CONNECTION_ERROR"
	ErrCodeHydrationFailed Code = "HYDRATION_FAILED"

	// Configuration errors
	ErrCodeNoServerToken Code = "NO_SERVER_TOKEN"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if IsRateLimited(err) {
		return ErrCodeRateLimited
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

// UpstreamError carries the HTTP status of a non-2xx upstream response.
type UpstreamError struct {
	Status  int    // HTTP status code returned by the upstream API
	Message string // Upstream status text or error body
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.Status, e.Message)
}

// Code returns the error code for this error type.
func (e *UpstreamError) Code() Code {
	return ErrCodeUpstream
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	ResetAt time.Time // When the rate-limit window resets (zero when unknown)
	Message string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if !e.ResetAt.IsZero() {
		return fmt.Sprintf("rate limited: resets at %s", e.ResetAt.Format(time.RFC3339))
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// IsRateLimited reports whether err is a rate-limit signal, either a
// *RateLimitedError or an *Error carrying ErrCodeRateLimited.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRateLimited
}

// RateLimitReset extracts the reset instant from a rate-limit error.
// Returns the zero time when the error carries no reset information.
func RateLimitReset(err error) time.Time {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.ResetAt
	}
	return time.Time{}
}
