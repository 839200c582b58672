package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	"github.com/kirinyoku/tix-events/internal/service/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.EventStore = (*EventStore)(nil)
var _ ports.UnitOfWork = (*EventStore)(nil)

func TestSave_AssignsIDAndKeepsCreatedAt(t *testing.T) {
	s := NewEventStore()
	ctx := context.Background()

	e, err := s.Save(ctx, &domain.Event{Title: "T", Location: "L", Status: domain.StatusDraft})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, e.ID)

	created := e.CreatedAt
	e.Title = "T2"

	again, err := s.Save(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, again.ID)
	assert.Equal(t, created, again.CreatedAt)
	assert.Equal(t, "T2", again.Title)
	assert.Equal(t, 1, s.Len())
}

func TestFindByID_ReturnsCopy(t *testing.T) {
	s := NewEventStore()
	ctx := context.Background()

	e, err := s.Save(ctx, &domain.Event{Title: "T", Status: domain.StatusDraft})
	require.NoError(t, err)

	got, err := s.FindByID(ctx, e.ID)
	require.NoError(t, err)
	got.Status = domain.StatusPublished

	again, err := s.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, again.Status)
}

func TestDeleteByID_Missing(t *testing.T) {
	s := NewEventStore()

	err := s.DeleteByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFinders_OrderByDate(t *testing.T) {
	s := NewEventStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	owner := uuid.New()

	late, _ := s.Save(ctx, &domain.Event{EventDate: base.AddDate(0, 0, 2), Location: "A", Status: domain.StatusPublished})
	early, _ := s.Save(ctx, &domain.Event{EventDate: base, Location: "A", Status: domain.StatusDraft, UserID: owner})
	mid, _ := s.Save(ctx, &domain.Event{EventDate: base.AddDate(0, 0, 1), Location: "B", Status: domain.StatusCancelled})

	all, err := s.FindByEventDateAfter(ctx, base.Add(-time.Second))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{early.ID, mid.ID, late.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	atA, err := s.FindByLocation(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, atA, 2)

	exact, err := s.FindByEventDate(ctx, base)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, early.ID, exact[0].ID)

	own, err := s.FindOwnOrPublished(ctx, owner, domain.PublicStatuses)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	cancelled, err := s.FindByStatusIn(ctx, []domain.EventStatus{domain.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, mid.ID, cancelled[0].ID)
}

func TestDo_RunsHooksOnlyOnSuccess(t *testing.T) {
	s := NewEventStore()
	ctx := context.Background()
	ran := 0

	err := s.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		after(func(context.Context) { ran++ })
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Zero(t, ran)

	err = s.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		after(func(context.Context) { ran++ })
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ran)
}

func TestCanceledContext(t *testing.T) {
	s := NewEventStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindByStatus(ctx, domain.StatusDraft)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Save(ctx, &domain.Event{})
	assert.ErrorIs(t, err, context.Canceled)
}
