package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers classify with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrNotFound          = errors.New("not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrUnsupportedFilter = errors.New("unsupported filter")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Duplicatef wraps ErrDuplicateKey with the offending field and value.
func Duplicatef(field, value string) error {
	return fmt.Errorf("%w: %s %q already exists", ErrDuplicateKey, field, value)
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// InvalidIdentifierf wraps ErrInvalidIdentifier with the malformed token.
func InvalidIdentifierf(token string) error {
	return fmt.Errorf("%w: %q", ErrInvalidIdentifier, token)
}

// UnsupportedFilterf wraps ErrUnsupportedFilter with a formatted detail message.
func UnsupportedFilterf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFilter, fmt.Sprintf(format, args...))
}

// Store wraps a failed store call as ErrStoreUnavailable. Retry policy, if
// any, belongs to the caller.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
