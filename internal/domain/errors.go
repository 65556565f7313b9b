// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when profile data fails a business rule.
	// It is always wrapped by a ValidationError carrying the user-facing reason.
	ErrValidation = errors.New("validation failed")

	// ErrProfileNotFound is returned when a partial update or delete targets
	// the singleton profile row and no row exists.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileIncomplete is returned when display data is requested for a
	// profile that is missing its name or birthday.
	ErrProfileIncomplete = errors.New("profile is incomplete")
)

// ValidationError carries the user-facing reason for a failed business rule.
// The message is shown to the user verbatim, so it must never contain
// technical detail.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface. It returns only the user-facing
// message; the field is available to callers via the struct.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// DataOperation identifies the storage operation a DatabaseError wraps.
type DataOperation string

// Storage operations attached to DatabaseError for diagnostics.
const (
	OpGet     DataOperation = "get"
	OpSave    DataOperation = "save"
	OpUpdate  DataOperation = "update"
	OpExists  DataOperation = "exists"
	OpDelete  DataOperation = "delete"
	OpObserve DataOperation = "observe"
)

// DatabaseError wraps a storage fault together with the operation that was
// being attempted. It never reaches the user directly; the interactor layer
// maps it to a generic retry-suggesting message.
type DatabaseError struct {
	Operation DataOperation
	Err       error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped storage error.
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a DatabaseError for the given operation.
func NewDatabaseError(op DataOperation, err error) *DatabaseError {
	return &DatabaseError{
		Operation: op,
		Err:       err,
	}
}

// IsDatabaseError reports whether err is (or wraps) a DatabaseError.
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
