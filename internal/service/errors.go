package service

import (
	"fmt"

	"github.com/phrazzld/deckmind/internal/domain"
)

// Service sentinels.
var (
	// ErrSelfCopy is returned when a user asks to copy a deck they own.
	ErrSelfCopy = fmt.Errorf("%w: cannot copy your own deck", domain.ErrConflict)

	// ErrMissingIdentifier is returned when a required id is blank.
	ErrMissingIdentifier = fmt.Errorf("%w: identifier is required", domain.ErrValidation)
)

// ServiceError records which operation failed and why.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
