// Package errors provides coded domain errors for the league server.
//
// Usage:
//
//	// In the league container - return typed errors
//	if len(state.ActiveSessions) >= domain.MaxActiveSessions {
//	    return errors.CapacityExceeded("too many open tables")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrInvalidSessionReference) {
//	    ...
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeMalformedImport:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
	CodeRateLimited  Code = "RATE_LIMITED"

	// Storage failures. These are absorbed by the league container and logged.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeTransactionFailed  Code = "TRANSACTION_FAILED"

	// Failures surfaced to the operator.
	CodeMalformedImport         Code = "MALFORMED_IMPORT"
	CodeCapacityExceeded        Code = "CAPACITY_EXCEEDED"
	CodeInvalidSessionReference Code = "INVALID_SESSION_REFERENCE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeInvalidSessionReference:
		return http.StatusNotFound
	case CodeConflict, CodeCapacityExceeded:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeValidation, CodeMalformedImport:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound                = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized            = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation              = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict                = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal                = &Error{Code: CodeInternal, Message: "internal error"}
	ErrRateLimited             = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrStorageUnavailable      = &Error{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrTransactionFailed       = &Error{Code: CodeTransactionFailed, Message: "storage transaction failed"}
	ErrMalformedImport         = &Error{Code: CodeMalformedImport, Message: "malformed import document"}
	ErrCapacityExceeded        = &Error{Code: CodeCapacityExceeded, Message: "capacity exceeded"}
	ErrInvalidSessionReference = &Error{Code: CodeInvalidSessionReference, Message: "no such active session"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// RateLimited creates a rate limit error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// StorageUnavailable reports a backend that could not be opened at all.
func StorageUnavailable(backend string, err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: backend + " unavailable", cause: err}
}

// TransactionFailed reports a failed read or write against a backend.
func TransactionFailed(backend string, err error) *Error {
	return &Error{Code: CodeTransactionFailed, Message: backend + " transaction failed", cause: err}
}

// MalformedImport reports an import document that could not be decoded.
func MalformedImport(err error) *Error {
	return &Error{Code: CodeMalformedImport, Message: "import document is not a valid league state", cause: err}
}

// CapacityExceeded creates a capacity error.
func CapacityExceeded(msg string) *Error {
	return &Error{Code: CodeCapacityExceeded, Message: msg}
}

// InvalidSessionReference reports a session id with no matching open session.
func InvalidSessionReference(sessionID string) *Error {
	return &Error{
		Code:    CodeInvalidSessionReference,
		Message: fmt.Sprintf("session %q is not active", sessionID),
		Details: map[string]string{"session_id": sessionID},
	}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
