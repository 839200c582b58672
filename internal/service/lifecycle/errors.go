package lifecycle

import (
	"errors"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrEventNotFound   = errors.New("event not found")
	ErrConflict        = errors.New("operation not allowed in current state")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("organizer role required")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError is returned when an operation is illegal for the event's
// current status.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return e.Reason
}

func (e ConflictError) Unwrap() error {
	return ErrConflict
}

const (
	msgUpdatePublished = "cannot update a published event"
	msgDeletePublished = "event refuses to be deleted"
	msgPastDate        = "Cannot publish event with a past date"
	msgStatusChanged   = "Event status changed to "
)
