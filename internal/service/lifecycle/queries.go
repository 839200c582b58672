package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
)

// Visible reports whether caller may see e in a listing. Anonymous callers
// only see public statuses; authenticated callers also see their own events.
func Visible(caller domain.Caller, e domain.Event) bool {
	if e.Status.Public() {
		return true
	}
	return caller.Authenticated() && e.UserID == caller.ID
}

// GetByID returns a single event regardless of its status. Reads go through
// the cache when one is configured; a cache failure falls back to the store.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "service.lifecycle.GetByID"

	load := func(ctx context.Context) (domain.Event, error) {
		e, err := s.events.FindByID(ctx, id)
		if err != nil {
			return domain.Event{}, err
		}
		return *e, nil
	}

	if s.cache != nil {
		e, err := s.cache.GetEvent(ctx, id, s.cfg.EventCacheTTL, load)
		if err == nil {
			return &e, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		s.logger.Warn("event cache read failed",
			slog.String("event_id", id.String()),
			slog.Any("error", err),
		)
	}

	e, err := load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &e, nil
}

// ListVisible returns every event the caller may see.
func (s *Service) ListVisible(ctx context.Context, caller domain.Caller) ([]domain.Event, error) {
	const op = "service.lifecycle.ListVisible"

	var (
		events []domain.Event
		err    error
	)
	if caller.Authenticated() {
		events, err = s.events.FindOwnOrPublished(ctx, caller.ID, domain.PublicStatuses)
	} else {
		events, err = s.events.FindByStatusIn(ctx, domain.PublicStatuses)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Event, error) {
	const op = "service.lifecycle.ListByOwner"

	events, err := s.events.FindByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// ListByDate returns events whose timestamp equals the start of date (UTC).
// Events at any other time of that day do not match.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]domain.Event, error) {
	const op = "service.lifecycle.ListByDate"

	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	events, err := s.events.FindByEventDate(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// ListUpcoming returns visible events dated after now.
func (s *Service) ListUpcoming(ctx context.Context, caller domain.Caller) ([]domain.Event, error) {
	const op = "service.lifecycle.ListUpcoming"

	all, err := s.events.FindByEventDateAfter(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if Visible(caller, e) {
			events = append(events, e)
		}
	}

	return events, nil
}

// ListByLocation returns visible events at the given location.
func (s *Service) ListByLocation(ctx context.Context, caller domain.Caller, location string) ([]domain.Event, error) {
	const op = "service.lifecycle.ListByLocation"

	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%s: %w", op, ValidationError{Field: "location", Reason: "must not be blank"})
	}

	all, err := s.events.FindByLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if Visible(caller, e) {
			events = append(events, e)
		}
	}

	return events, nil
}

// ListByStatus is the operator view used by the publish worker and tests.
func (s *Service) ListByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	const op = "service.lifecycle.ListByStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ValidationError{Field: "status", Reason: "is unknown"})
	}

	events, err := s.events.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}
