package errors

import (
	"errors"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailAlreadyInUse  = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenMalformed     = errors.New("invalid token")
	ErrAccountNotFound    = errors.New("User does not exist")
	ErrWriteFailed        = errors.New("storage write failed")
)

// Unauthorized refinements; both match ErrUnauthorized with errors.Is.
var (
	ErrUserIDMismatch      = &kindError{msg: "Unauthorized: Invalid User ID for this refresh token", kind: ErrUnauthorized}
	ErrRefreshTokenRevoked = &kindError{msg: "Invalid or Expired refresh token", kind: ErrUnauthorized}
	ErrRefreshTokenMissing = &kindError{msg: "No refresh token found for this user", kind: ErrUnauthorized}
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError carries a caller-facing message for malformed input.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Code returns the stable machine-readable name of err's kind.
func Code(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrEmailAlreadyInUse):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenMalformed):
		return "TOKEN_MALFORMED"
	case errors.Is(err, ErrAccountNotFound):
		return "NOT_FOUND"
	default:
		return "WRITE_FAILED"
	}
}

// IsKnown reports whether err belongs to the taxonomy above.
func IsKnown(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrEmailAlreadyInUse, ErrInvalidCredentials, ErrUnauthorized,
		ErrTokenExpired, ErrTokenMalformed, ErrAccountNotFound, ErrWriteFailed,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
