// Package common defines sentinel errors and constants shared by the gateway
// and the backend services. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal            = errors.New("internal error")
	ErrValidation          = errors.New("validation error")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUsernameTaken       = errors.New("username taken")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Shared cache errors.
	ErrCacheMiss         = errors.New("cache miss")
	ErrCacheInvalidation = errors.New("cache invalidation failed")
)

// Validation codes. They travel to the browser as the ?error= query parameter
// and to API clients as the "code" field, so they must stay stable.
const (
	CodeMissingFields     = "missing_fields"
	CodePasswordMismatch  = "password_mismatch"
	CodePasswordTooShort  = "password_too_short"
	CodeUsernameTooShort  = "username_too_short"
	CodeUsernameTooLong   = "username_too_long"
	CodePasswordTooLong   = "password_too_long"
	CodeInvalidRole       = "invalid_role"
	CodeUsernameTaken     = "username_taken"
	CodeLoginFailed       = "login_failed"
	CodeSignupFailed      = "signup_failed"
	CodeUnauthenticated   = "unauthenticated"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal"
	CodeCacheInvalidation = "cache_invalidation_failed"
)

// ValidationError is a local input rejection. It wraps ErrValidation and
// carries the code shown to the user.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Code)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns a *ValidationError for code.
func NewValidationError(code string) error {
	return &ValidationError{Code: code}
}

// ValidationCode extracts the code from a validation error, or "" when err
// is not one.
func ValidationCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
