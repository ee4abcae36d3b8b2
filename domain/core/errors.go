package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrResearchNotFound = fmt.Errorf("%w: research", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("%w: item", ErrNotFound)

	// Validation errors
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnknownSourceKind     = errors.New("unknown source kind")
	ErrUnknownUnit           = errors.New("unit not recognized")
	ErrMissingJustification  = errors.New("research problems require analyst justification")
	ErrResearchNotEvaluated  = errors.New("research has unevaluated items")
	ErrUnsupportedReportKind = errors.New("unsupported report kind for research type")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: validation failed for %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownSourceKind) ||
		errors.Is(err, ErrUnknownUnit)
}
