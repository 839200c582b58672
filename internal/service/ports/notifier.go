package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
)

type EventCache interface {
	GetEvent(ctx context.Context, id uuid.UUID, ttl time.Duration, load func(ctx context.Context) (domain.Event, error)) (domain.Event, error)
	InvalidateEvent(ctx context.Context, id uuid.UUID) error
}

// StatusNotifier fans a committed change out to interested parties.
type StatusNotifier interface {
	NotifyStatusChanged(ctx context.Context, change domain.StatusChanged) error
}
