package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers outside the core.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION_ERROR"
	KindDatabase   Kind = "DATABASE_ERROR"
)

// Sentinel errors. Typed errors below match these through errors.Is.
var (
	// ErrNotFound indicates the record is absent from the currently visible state.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates a policy or input precondition failed.
	ErrValidation = errors.New("validation failed")

	// ErrDatabase indicates the store call itself failed.
	ErrDatabase = errors.New("database error")
)

// Validation errors
var (
	ErrTitleRequired             = errors.New("title is required")
	ErrTitleTooLong              = errors.New("title must be 255 characters or less")
	ErrDescriptionTooLong        = errors.New("description must be 1000 characters or less")
	ErrCompletionMessageRequired = errors.New("completion message is required")
	ErrInvalidStatus             = errors.New("invalid status")
	ErrInvalidID                 = errors.New("invalid ID format")
)

// ErrTransitionNotAllowed is returned by the state machine when a record's
// current status does not permit the requested change. Repositories report it
// to callers as a NotFoundError.
var ErrTransitionNotAllowed = errors.New("status transition not allowed")

// ResourceTodo is the resource name used in not-found errors.
const ResourceTodo = "Todo"

// NotFoundError reports that a resource/id pair is not visible.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a failed precondition, optionally tied to a field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError wraps err as a validation failure on field.
// The message defaults to err's text.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DatabaseError reports a failed store call. Op is a short, client-safe
// description; Err holds the driver error for logging only.
type DatabaseError struct {
	Op  string
	Err error
}

// NewDatabaseError wraps a store failure.
func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Is(target error) bool {
	return target == ErrDatabase
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Unrecognized errors are treated as database errors
// so that their detail is never shown to clients.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindDatabase
	}
}
