package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers. Handlers map these to HTTP statuses;
// anything else is an internal storage failure.
var (
	// ErrInvalidCredentials deliberately covers both unknown username and
	// wrong password so responses cannot be used for username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateSerial = errors.New("serial already exists")
	ErrValidation      = errors.New("validation failed")
)

// validationf wraps ErrValidation with a client-facing message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
