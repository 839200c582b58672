package httpgin

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirinyoku/tix-events/internal/domain"
)

// eventDateLayouts are tried in order. A timestamp without an offset is read
// as UTC.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type CreateEventRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=255"`
	Description string  `json:"description" binding:"max=4000"`
	EventDate   string  `json:"event_date" binding:"required"`
	Location    string  `json:"location" binding:"required,notblank,max=255"`
	BasePrice   float64 `json:"base_price" binding:"gte=0"`
}

func (r CreateEventRequest) toInput() (domain.CreateEventInput, error) {
	at, err := parseEventDate(r.EventDate)
	if err != nil {
		return domain.CreateEventInput{}, err
	}

	return domain.CreateEventInput{
		Title:       r.Title,
		Description: r.Description,
		EventDate:   &at,
		Location:    r.Location,
		BasePrice:   r.BasePrice,
	}, nil
}

// UpdateEventRequest overwrites only the fields that are present.
type UpdateEventRequest struct {
	Title       *string  `json:"title" binding:"omitempty,notblank,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=4000"`
	EventDate   *string  `json:"event_date"`
	Location    *string  `json:"location" binding:"omitempty,notblank,max=255"`
	BasePrice   *float64 `json:"base_price" binding:"omitempty,gte=0"`
}

func (r UpdateEventRequest) toInput() (domain.UpdateEventInput, error) {
	in := domain.UpdateEventInput{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		BasePrice:   r.BasePrice,
	}

	if r.EventDate != nil {
		at, err := parseEventDate(*r.EventDate)
		if err != nil {
			return domain.UpdateEventInput{}, err
		}
		in.EventDate = &at
	}

	return in, nil
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid event_date %q (RFC3339)", s)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResult is the wire form of a status transition outcome.
type StatusResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *domain.EventStatus `json:"data" swaggertype:"string"`
}

func toStatusResult(r domain.Result[domain.EventStatus]) StatusResult {
	return StatusResult{Success: r.Success, Message: r.Message, Data: r.Data}
}

type WhoAmIResponse struct {
	Authenticated bool   `json:"authenticated"`
	SubjectID     string `json:"subject_id,omitempty"`
	Role          string `json:"role,omitempty"`
	Organizer     bool   `json:"organizer"`
}
