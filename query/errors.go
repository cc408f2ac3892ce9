package query

import (
	"errors"
	"fmt"

	"github.com/Konsultn-Engineering/registrar/schema"
)

// ErrValidation matches every *ValidationError. Validation errors come from
// caller input and are raised before any statement reaches the store.
var ErrValidation = errors.New("validation failed")

var (
	ErrUnknownAttribute  = schema.ErrUnknownAttribute
	ErrInvalidIdentifier = schema.ErrInvalidIdentifier
	ErrNoFields          = errors.New("no fields to update")
	ErrMissingKey        = errors.New("missing key")
	ErrNotUpdatable      = errors.New("attribute is not updatable")
	ErrNotNullable       = errors.New("attribute does not accept null")
	ErrRequired          = errors.New("attribute is required")
	ErrInvalidPage       = errors.New("invalid page request")
)

// Builder misuse. These indicate a bug in the calling code, not bad input.
var (
	ErrNotStarted  = errors.New("statement not started")
	ErrClauseOrder = errors.New("clause out of order")

	// ErrInvariant means the built text and the parameter list disagree.
	ErrInvariant = errors.New("placeholder and parameter mismatch")
)

// ValidationError ties a rejected input to the attribute it came from.
type ValidationError struct {
	Field string
	Err   error
}

// Invalid wraps err as a validation failure of field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Reason returns a short label for a validation error, suitable for metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownAttribute):
		return "unknown_attribute"
	case errors.Is(err, ErrNoFields):
		return "no_fields"
	case errors.Is(err, ErrMissingKey):
		return "missing_key"
	case errors.Is(err, ErrNotUpdatable):
		return "not_updatable"
	case errors.Is(err, ErrNotNullable):
		return "not_nullable"
	case errors.Is(err, ErrRequired):
		return "required"
	case errors.Is(err, ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, ErrInvalidPage):
		return "invalid_page"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "other"
	}
}
