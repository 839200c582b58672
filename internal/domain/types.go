package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "DRAFT"
	StatusPublished EventStatus = "PUBLISHED"
	StatusCancelled EventStatus = "CANCELLED"
	StatusSoldOut   EventStatus = "SOLD_OUT"
	StatusCompleted EventStatus = "COMPLETED"
)

// PublicStatuses are visible to every caller, including anonymous ones.
var PublicStatuses = []EventStatus{StatusPublished, StatusCompleted}

func (s EventStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusSoldOut, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition to a different status is allowed.
func (s EventStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s EventStatus) Public() bool {
	for _, p := range PublicStatuses {
		if s == p {
			return true
		}
	}
	return false
}

type Event struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	EventDate   time.Time   `json:"event_date"`
	Location    string      `json:"location"`
	BasePrice   float64     `json:"base_price"`
	Status      EventStatus `json:"status"`
	UserID      uuid.UUID   `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateEventInput holds the organizer supplied fields of a new event.
// The owner is never part of it.
type CreateEventInput struct {
	Title       string
	Description string
	EventDate   *time.Time
	Location    string
	BasePrice   float64
}

// UpdateEventInput overwrites every non-nil field.
type UpdateEventInput struct {
	Title       *string
	Description *string
	EventDate   *time.Time
	Location    *string
	BasePrice   *float64
}

const RoleOrganizer = "Organizer"

// Caller is the identity resolved from a bearer token. The zero value is an
// anonymous caller.
type Caller struct {
	ID   uuid.UUID
	Role string
}

func Anonymous() Caller { return Caller{} }

func (c Caller) Authenticated() bool { return c.ID != uuid.Nil }

func (c Caller) IsOrganizer() bool { return c.Authenticated() && c.Role == RoleOrganizer }

// Result is an expected business outcome. A rejected operation has
// Success == false and a nil Data.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

func Ok[T any](msg string, data T) Result[T] {
	return Result[T]{Success: true, Message: msg, Data: &data}
}

func Fail[T any](msg string) Result[T] {
	return Result[T]{Success: false, Message: msg}
}

// StatusChanged is emitted after a committed status transition or delete.
type StatusChanged struct {
	EventID uuid.UUID   `json:"event_id"`
	From    EventStatus `json:"from"`
	To      EventStatus `json:"to"`
	Deleted bool        `json:"deleted,omitempty"`
	At      time.Time   `json:"at"`
}
