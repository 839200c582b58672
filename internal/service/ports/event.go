package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
)

// EventStore is the persistence contract of the lifecycle engine.
// Lookups of a missing id return repository.ErrNotFound.
type EventStore interface {
	Save(ctx context.Context, e *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	// FindByIDForUpdate loads the event and keeps it locked until the
	// surrounding unit of work ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, e *domain.Event) error

	FindByEventDate(ctx context.Context, at time.Time) ([]domain.Event, error)
	FindByEventDateAfter(ctx context.Context, after time.Time) ([]domain.Event, error)
	FindByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error)
	FindByStatusIn(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Event, error)
	FindByLocation(ctx context.Context, location string) ([]domain.Event, error)
	FindOwnOrPublished(ctx context.Context, userID uuid.UUID, statuses []domain.EventStatus) ([]domain.Event, error)
}

// AfterCommit runs once the unit of work has committed.
type AfterCommit func(ctx context.Context)

// UnitOfWork runs fn against a store bound to a single transaction.
// Hooks registered through after run only if fn returns nil and the
// transaction commits.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, events EventStore, after func(AfterCommit)) error) error
}
