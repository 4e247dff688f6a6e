package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the services. Handlers map these onto HTTP
// statuses; services never format transport-level responses themselves.
var (
	// Validation failures. Never partially applied: any of these aborts the
	// surrounding transaction before a single row is written.
	ErrDuplicateIngredient = errors.New("duplicate ingredient in payload")
	ErrInvalidAmount       = errors.New("ingredient amount must be positive")
	ErrInvalidCookingTime  = errors.New("cooking time must be at least one minute")
	ErrUnknownIngredient   = errors.New("ingredient does not exist")
	ErrUnknownTag          = errors.New("tag does not exist")

	// Conflicts, distinct from validation so callers can render the right
	// message. Unique-constraint violations lost to a concurrent writer are
	// folded into ErrAlreadyExists rather than surfacing as storage faults.
	ErrAlreadyExists = errors.New("relation already exists")
	ErrSelfFollow    = errors.New("users cannot follow themselves")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("operation not permitted for this user")
)

// FieldError attaches a field name to a sentinel error so handlers can
// produce field-level messages.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
