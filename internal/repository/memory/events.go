package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	"github.com/kirinyoku/tix-events/internal/service/ports"
)

// EventStore keeps events in process memory. It backs STORAGE_DRIVER=memory
// and the engine tests.
type EventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]domain.Event
	now    func() time.Time

	// serializes units of work
	txMu sync.Mutex
}

func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[uuid.UUID]domain.Event),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventStore) Save(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	const op = "memory.EventStore.Save"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	now := s.now()
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if existing, ok := s.events[cp.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	s.events[cp.ID] = cp

	out := cp
	return &out, nil
}

func (s *EventStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "memory.EventStore.FindByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &e, nil
}

func (s *EventStore) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.FindByID(ctx, id)
}

func (s *EventStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const op = "memory.EventStore.DeleteByID"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	delete(s.events, id)

	return nil
}

func (s *EventStore) Delete(ctx context.Context, e *domain.Event) error {
	return s.DeleteByID(ctx, e.ID)
}

func (s *EventStore) FindByEventDate(ctx context.Context, at time.Time) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return e.EventDate.Equal(at) })
}

func (s *EventStore) FindByEventDateAfter(ctx context.Context, after time.Time) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return e.EventDate.After(after) })
}

func (s *EventStore) FindByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return e.Status == status })
}

func (s *EventStore) FindByStatusIn(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return slices.Contains(statuses, e.Status) })
}

func (s *EventStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return e.UserID == userID })
}

func (s *EventStore) FindByLocation(ctx context.Context, location string) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool { return e.Location == location })
}

func (s *EventStore) FindOwnOrPublished(
	ctx context.Context,
	userID uuid.UUID,
	statuses []domain.EventStatus,
) ([]domain.Event, error) {
	return s.filter(ctx, func(e domain.Event) bool {
		return e.UserID == userID || slices.Contains(statuses, e.Status)
	})
}

// Do runs fn while holding the store-wide unit of work lock. Writes inside fn
// are applied immediately; the engine performs at most one write per unit
// after all guards pass, so there is nothing to roll back.
func (s *EventStore) Do(
	ctx context.Context,
	fn func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error,
) error {
	var hooks []ports.AfterCommit

	s.txMu.Lock()
	err := fn(ctx, s, func(h ports.AfterCommit) {
		hooks = append(hooks, h)
	})
	s.txMu.Unlock()
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *EventStore) filter(ctx context.Context, keep func(domain.Event) bool) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("memory.EventStore: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}

	slices.SortFunc(out, func(a, b domain.Event) int {
		if c := a.EventDate.Compare(b.EventDate); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	return out, nil
}
