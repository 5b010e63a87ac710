package accounts

import "errors"

var (
	// ErrDuplicateEmail is returned when signup hits an existing email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStorage wraps unexpected credential store failures.
	ErrStorage = errors.New("storage error")
	// ErrInternal wraps hashing and signing failures.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
