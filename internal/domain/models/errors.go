package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock indicates a decrement would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrForbidden indicates the caller's role does not allow the action.
	ErrForbidden = errors.New("access denied")
	// ErrUnauthenticated indicates no usable caller identity was supplied.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrConflict indicates the request clashes with the current state of a record.
	ErrConflict = errors.New("conflict")

	ErrAlreadySold  = fmt.Errorf("%w: cattle already sold", ErrConflict)
	ErrCattleSold   = fmt.Errorf("%w: cattle is sold", ErrConflict)
	ErrDuplicateTag = fmt.Errorf("%w: cattle tag already registered", ErrConflict)
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
