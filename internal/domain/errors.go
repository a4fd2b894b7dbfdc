package domain

import (
	"errors"
	"fmt"
)

// Common domain errors for catalog and filter operations.
var (
	// ErrInvalidPolarity indicates an unrecognized polarity value.
	ErrInvalidPolarity = errors.New("invalid polarity")

	// ErrInvalidMedalTier indicates an unrecognized medal tier name.
	ErrInvalidMedalTier = errors.New("invalid medal tier")

	// ErrInvalidConfiguration indicates that configuration is invalid or
	// incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDuplicateSignal indicates that a catalog contains the same
	// signal ID more than once.
	ErrDuplicateSignal = errors.New("duplicate signal definition")
)

// CatalogError represents an error raised while building or consulting
// the signal catalog. It carries the signal ID involved.
type CatalogError struct {
	// SignalID is the catalog entry involved in the failed operation.
	SignalID string

	// Operation describes what was being done when the error occurred.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for CatalogError.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error: operation=%s, signal=%s, err=%v", e.Operation, e.SignalID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error { return e.Err }

// NewCatalogError creates a new CatalogError with the given details.
func NewCatalogError(signalID, operation string, err error) *CatalogError {
	return &CatalogError{
		SignalID:  signalID,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError collects one or more validation failures for an
// entity such as a catalog file or filter specification.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the individual validation failure messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new failure message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation failures.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
