package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrUniquenessConflict     = errors.New("uniqueness conflict")
	ErrNotFound               = errors.New("not found")
	ErrSymbolTooLong          = errors.New("symbol too long")
	ErrMissingField           = errors.New("missing field")
	ErrInvalidField           = errors.New("invalid field")
	ErrInvalidCredentials     = errors.New("unable to authenticate with provided credentials")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidResetToken      = errors.New("invalid or expired password reset token")
)

// FieldError reports a user-correctable problem with one input field.
type FieldError struct {
	Field   string
	Message string
	Missing bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	if e.Missing {
		return target == ErrMissingField
	}
	return target == ErrInvalidField
}

// MissingField is a shorthand for a FieldError on an absent value.
func MissingField(field string) error {
	return &FieldError{Field: field, Message: "this field is required", Missing: true}
}

// InvalidField is a shorthand for a FieldError on a malformed value.
func InvalidField(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// ConflictError reports a unique constraint violation on Field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s already exists", e.Field)
	}
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error {
	return ErrUniquenessConflict
}

// InsufficientFundsError carries the balance that blocked an adjustment.
type InsufficientFundsError struct {
	Symbol    string
	Available string
	Requested string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: available %s, requested %s", e.Symbol, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
