package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrProfileNotFound    = errors.New("profile_not_found")
	ErrRecordNotFound     = errors.New("daily record not found")
	ErrDuplicateDate      = errors.New("duplicate_date")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
)

// Validation error codes
const (
	CodeUnique    = "unique"
	CodeMismatch  = "mismatch"
	CodeTooShort  = "too_short"
	CodeTooLong   = "too_long"
	CodeNoDigit   = "no_digit"
	CodeInvalid   = "invalid"
	CodeFuture    = "future_date"
	CodePrecision = "max_decimal_places"
)

// ValidationError reports a request field that failed a business rule
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}
