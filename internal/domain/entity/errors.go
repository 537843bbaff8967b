package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrForbidden indicates that the caller's role does not permit the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated indicates that an operation requires an authenticated principal
	ErrUnauthenticated = errors.New("authentication required")

	// ErrConflict indicates a uniqueness violation such as a taken username
	ErrConflict = errors.New("conflict")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// AuthorizationError is returned when a principal attempts a write its role does not allow.
// It is always raised before any state is mutated.
type AuthorizationError struct {
	Role   Role
	Action string
}

func (e *AuthorizationError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("%s: authentication required", e.Action)
	}
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Action)
}

// Unwrap lets errors.Is match ErrForbidden or ErrUnauthenticated.
func (e *AuthorizationError) Unwrap() error {
	if e.Role == "" {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// NotificationDispatchError wraps an outbound notification transport failure.
// It is logged and recorded, never surfaced to the approving caller.
type NotificationDispatchError struct {
	Channel string
	Err     error
}

func (e *NotificationDispatchError) Error() string {
	return fmt.Sprintf("notification dispatch via %s failed: %v", e.Channel, e.Err)
}

func (e *NotificationDispatchError) Unwrap() error { return e.Err }

// ExternalPublishError wraps a failure of a third-party publish (social feed, newsroom desk).
type ExternalPublishError struct {
	Target string
	Err    error
}

func (e *ExternalPublishError) Error() string {
	return fmt.Sprintf("external publish to %s failed: %v", e.Target, e.Err)
}

func (e *ExternalPublishError) Unwrap() error { return e.Err }
