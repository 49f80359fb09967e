package domain

import (
	"errors"
	"fmt"
)

// Sentinels classify every domain failure. Adapters map them to transport
// codes; nothing in this package knows about HTTP.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnavailable     = errors.New("unavailable")
	ErrInvalidPosition = errors.New("invalid spread position")
)

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool     { return errors.Is(err, ErrUnavailable) }
func IsInvalidPosition(err error) bool { return errors.Is(err, ErrInvalidPosition) }

// NotFoundError names the missing entity, e.g. a deck or a reading.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a uniqueness or state clash, such as a duplicate
// deck name or a second feedback for one reading.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
}

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func NewConflictErrorWithDetails(entity, reason, details string) error {
	return &ConflictError{Entity: entity, Reason: reason, Details: details}
}

func (e *ConflictError) Error() string {
	msg := e.Entity + " conflict: " + e.Reason
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}

	return msg
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError rejects caller input. Field is empty when the problem
// spans the whole request; Message is then shown as is.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ForbiddenError refuses an operation the caller's roles do not allow.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	msg := fmt.Sprintf("operation %q forbidden", e.Operation)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// UnavailableError reports a dependency that cannot serve right now, such
// as an open circuit in front of the generation provider.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q unavailable", e.Service)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// InvalidPositionError reports a 1-based position outside [1, Max]. It is
// also a validation error.
type InvalidPositionError struct {
	Position int
	Max      int
}

func NewInvalidPositionError(position, maxPosition int) error {
	return &InvalidPositionError{Position: position, Max: maxPosition}
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("position %d is outside spread range 1..%d", e.Position, e.Max)
}

func (e *InvalidPositionError) Unwrap() []error {
	return []error{ErrInvalidPosition, ErrValidation}
}
