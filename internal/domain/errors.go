// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Lower layers wrap one of these so the
// API layer can map a failure to a status code with errors.Is.
var (
	// ErrValidation is returned when input is missing or malformed.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an entity is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller has no verified identity.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when the entity exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when an operation contradicts existing state,
	// such as copying one's own deck.
	ErrConflict = errors.New("conflict")

	// ErrExternalService is returned when the generative service is unreachable
	// or answers with a non-success status.
	ErrExternalService = errors.New("external service error")

	// ErrSerialization is returned when a payload cannot be decoded into the
	// expected schema.
	ErrSerialization = errors.New("serialization error")
)

// Flashcard-specific errors.
var (
	// ErrUnknownCardType is returned when a payload carries an unrecognized
	// "type" discriminator.
	ErrUnknownCardType = fmt.Errorf("%w: unknown flashcard type", ErrSerialization)

	// ErrUnsupportedCardType is returned when a caller requests a flashcard type
	// that does not exist.
	ErrUnsupportedCardType = fmt.Errorf("%w: unsupported flashcard type", ErrValidation)

	// ErrUnsupportedForCardType is returned when an operation is not available
	// for the variant of the flashcard it targets.
	ErrUnsupportedForCardType = fmt.Errorf("%w: operation unsupported for this card type", ErrValidation)

	// ErrEmptyContent is returned when a variant is missing its required fields.
	ErrEmptyContent = fmt.Errorf("%w: content cannot be empty", ErrValidation)
)

// ValidationError describes an invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error so errors.Is reaches ErrValidation.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
