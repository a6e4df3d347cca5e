package entity

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to API clients. Wrap them with context and match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrUnauthenticated = errors.New("authentication required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrConflict        = errors.New("conflict")

	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrProductUnavailable = fmt.Errorf("%w: product no longer available", ErrConflict)
)

// Invalid returns an ErrValidation carrying a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing record.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
