package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/clock"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	"github.com/kirinyoku/tix-events/internal/service/ports"
	"github.com/kirinyoku/tix-events/internal/worker"
)

type Config struct {
	// PublishLeadMonths is how far ahead an event must be to be published.
	PublishLeadMonths int
	EventCacheTTL     time.Duration
}

type Option func(*Service)

func WithCache(c ports.EventCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifiers(n ...ports.StatusNotifier) Option {
	return func(s *Service) { s.notifiers = append(s.notifiers, n...) }
}

// WithPublishPool runs Publish on the given pool instead of the caller's
// goroutine.
func WithPublishPool(p *worker.Pool) Option {
	return func(s *Service) { s.pool = p }
}

// Service is the lifecycle engine. It is the only component that changes an
// event's status or decides whether an edit or delete is legal.
type Service struct {
	events    ports.EventStore
	uow       ports.UnitOfWork
	clock     clock.Clock
	logger    *slog.Logger
	cache     ports.EventCache
	notifiers []ports.StatusNotifier
	pool      *worker.Pool
	cfg       Config
}

func New(
	events ports.EventStore,
	uow ports.UnitOfWork,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.PublishLeadMonths <= 0 {
		cfg.PublishLeadMonths = 3
	}

	if cfg.EventCacheTTL <= 0 {
		cfg.EventCacheTTL = 60 * time.Second
	}

	if clk == nil {
		clk = clock.NewSystem()
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		events: events,
		uow:    uow,
		clock:  clk,
		logger: logger,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates the input and stores a new DRAFT event owned by caller.
//
// Parameters:
//   - ctx: request-scoped context.
//   - caller: resolved identity; must be an Organizer.
//   - in: organizer supplied fields.
//
// Returns:
//   - *domain.Event: the stored event with its generated ID.
//   - error: lifecycle.ErrUnauthenticated / ErrForbidden for a non-organizer,
//     a ValidationError for blank title/location, missing date or a negative price.
func (s *Service) Create(ctx context.Context, caller domain.Caller, in domain.CreateEventInput) (*domain.Event, error) {
	const op = "service.lifecycle.Create"

	if err := authorize(caller); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateCreate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := &domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		EventDate:   in.EventDate.UTC(),
		Location:    strings.TrimSpace(in.Location),
		BasePrice:   in.BasePrice,
		Status:      domain.StatusDraft,
		UserID:      caller.ID,
	}

	saved, err := s.events.Save(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("event created",
		slog.String("event_id", saved.ID.String()),
		slog.String("owner_id", saved.UserID.String()),
	)

	return saved, nil
}

// Update overwrites the present fields of a non-published event. The status
// is never touched.
//
// Returns:
//   - *domain.Event: the updated event.
//   - error: lifecycle.ErrEventNotFound, a ConflictError when the event is
//     published, a ValidationError for a blank title/location or negative price.
func (s *Service) Update(
	ctx context.Context,
	caller domain.Caller,
	id uuid.UUID,
	in domain.UpdateEventInput,
) (*domain.Event, error) {
	const op = "service.lifecycle.Update"

	if err := authorize(caller); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateUpdate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var updated *domain.Event
	err := s.uow.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		e, err := s.load(ctx, events, id)
		if err != nil {
			return err
		}

		if e.Status == domain.StatusPublished {
			return ConflictError{Reason: msgUpdatePublished}
		}

		applyUpdate(e, in)

		updated, err = events.Save(ctx, e)
		if err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.invalidate(ctx, id)
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// Delete removes a non-published event.
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	const op = "service.lifecycle.Delete"

	if err := authorize(caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		e, err := s.load(ctx, events, id)
		if err != nil {
			return err
		}

		if e.Status == domain.StatusPublished {
			return ConflictError{Reason: msgDeletePublished}
		}

		if err := events.Delete(ctx, e); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		change := domain.StatusChanged{
			EventID: id,
			From:    e.Status,
			Deleted: true,
			At:      s.clock.Now(),
		}
		after(func(ctx context.Context) {
			s.invalidate(ctx, id)
			s.notify(ctx, change)
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("event deleted", slog.String("event_id", id.String()))

	return nil
}

// Publish moves the event to PUBLISHED when it is scheduled far enough
// ahead. A date that is in the past or inside the lead window is an expected
// rejection: the returned Result has Success == false and err is nil.
//
// Parameters:
//   - ctx: request-scoped context.
//   - caller: resolved identity; must be an Organizer.
//   - id: ID of the event to publish.
//
// Returns:
//   - domain.Result[domain.EventStatus]: outcome of the business rules.
//   - error: lifecycle.ErrEventNotFound, a ConflictError for a cancelled or
//     completed event, or a store failure.
func (s *Service) Publish(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Result[domain.EventStatus], error) {
	const op = "service.lifecycle.Publish"

	if err := authorize(caller); err != nil {
		return domain.Result[domain.EventStatus]{}, fmt.Errorf("%s: %w", op, err)
	}

	var res domain.Result[domain.EventStatus]
	run := func(ctx context.Context) error {
		var err error
		res, err = s.publish(ctx, id)
		return err
	}

	var err error
	if s.pool != nil {
		err = s.pool.Submit(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return domain.Result[domain.EventStatus]{}, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

func (s *Service) publish(ctx context.Context, id uuid.UUID) (domain.Result[domain.EventStatus], error) {
	var res domain.Result[domain.EventStatus]

	err := s.uow.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		e, err := s.load(ctx, events, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()

		if e.EventDate.Before(now) {
			res = domain.Fail[domain.EventStatus](msgPastDate)
			return nil
		}

		if e.EventDate.Before(AddMonths(now, s.cfg.PublishLeadMonths)) {
			res = domain.Fail[domain.EventStatus](leadWindowMessage(s.cfg.PublishLeadMonths))
			return nil
		}

		res, err = s.changeStatus(ctx, events, e, domain.StatusPublished, after)
		return err
	})
	if err != nil {
		return domain.Result[domain.EventStatus]{}, err
	}

	if !res.Success {
		s.logger.Debug("publish rejected",
			slog.String("event_id", id.String()),
			slog.String("reason", res.Message),
		)
	}

	return res, nil
}

// Cancel moves the event to CANCELLED regardless of its date.
func (s *Service) Cancel(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Result[domain.EventStatus], error) {
	return s.transition(ctx, "service.lifecycle.Cancel", caller, id, domain.StatusCancelled)
}

// Complete moves the event to COMPLETED regardless of its date.
func (s *Service) Complete(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Result[domain.EventStatus], error) {
	return s.transition(ctx, "service.lifecycle.Complete", caller, id, domain.StatusCompleted)
}

func (s *Service) transition(
	ctx context.Context,
	op string,
	caller domain.Caller,
	id uuid.UUID,
	to domain.EventStatus,
) (domain.Result[domain.EventStatus], error) {
	if err := authorize(caller); err != nil {
		return domain.Result[domain.EventStatus]{}, fmt.Errorf("%s: %w", op, err)
	}

	var res domain.Result[domain.EventStatus]
	err := s.uow.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		e, err := s.load(ctx, events, id)
		if err != nil {
			return err
		}

		res, err = s.changeStatus(ctx, events, e, to, after)
		return err
	})
	if err != nil {
		return domain.Result[domain.EventStatus]{}, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// changeStatus is the shared tail of every transition. Repeating the
// current status succeeds without a write; leaving a terminal status is a
// conflict.
func (s *Service) changeStatus(
	ctx context.Context,
	events ports.EventStore,
	e *domain.Event,
	to domain.EventStatus,
	after func(ports.AfterCommit),
) (domain.Result[domain.EventStatus], error) {
	from := e.Status

	if from == to {
		return domain.Ok(msgStatusChanged+string(to), to), nil
	}

	if from.Terminal() {
		return domain.Result[domain.EventStatus]{}, ConflictError{
			Reason: fmt.Sprintf("cannot change status of a %s event", strings.ToLower(string(from))),
		}
	}

	e.Status = to
	if _, err := events.Save(ctx, e); err != nil {
		return domain.Result[domain.EventStatus]{}, err
	}

	change := domain.StatusChanged{
		EventID: e.ID,
		From:    from,
		To:      to,
		At:      s.clock.Now(),
	}
	after(func(ctx context.Context) {
		s.invalidate(ctx, e.ID)
		s.notify(ctx, change)
		s.logger.Info("event status changed",
			slog.String("event_id", e.ID.String()),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
	})

	return domain.Ok(msgStatusChanged+string(to), to), nil
}

// load fetches the event for a read-modify-write inside a unit of work.
func (s *Service) load(ctx context.Context, events ports.EventStore, id uuid.UUID) (*domain.Event, error) {
	e, err := events.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvent(ctx, id); err != nil {
		s.logger.Warn("cache invalidation failed",
			slog.String("event_id", id.String()),
			slog.Any("error", err),
		)
	}
}

func (s *Service) notify(ctx context.Context, change domain.StatusChanged) {
	for _, n := range s.notifiers {
		if err := n.NotifyStatusChanged(ctx, change); err != nil {
			s.logger.Warn("status notification failed",
				slog.String("event_id", change.EventID.String()),
				slog.Any("error", err),
			)
		}
	}
}

func authorize(caller domain.Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if !caller.IsOrganizer() {
		return ErrForbidden
	}
	return nil
}

func validateCreate(in domain.CreateEventInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if in.EventDate == nil || in.EventDate.IsZero() {
		return ValidationError{Field: "event_date", Reason: "is required"}
	}
	if strings.TrimSpace(in.Location) == "" {
		return ValidationError{Field: "location", Reason: "must not be blank"}
	}
	return validatePrice(in.BasePrice)
}

func validateUpdate(in domain.UpdateEventInput) error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if in.EventDate != nil && in.EventDate.IsZero() {
		return ValidationError{Field: "event_date", Reason: "is required"}
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		return ValidationError{Field: "location", Reason: "must not be blank"}
	}
	if in.BasePrice != nil {
		return validatePrice(*in.BasePrice)
	}
	return nil
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return ValidationError{Field: "base_price", Reason: "must be a non-negative number"}
	}
	return nil
}

func applyUpdate(e *domain.Event, in domain.UpdateEventInput) {
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.EventDate != nil {
		e.EventDate = in.EventDate.UTC()
	}
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if in.BasePrice != nil {
		e.BasePrice = *in.BasePrice
	}
}

func leadWindowMessage(months int) string {
	return fmt.Sprintf("Event must be scheduled at least %d months from now to be published", months)
}

// AddMonths adds n calendar months to t, clamping the day to the last day of
// the target month (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
