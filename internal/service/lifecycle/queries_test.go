package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ids(events []domain.Event) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestListVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))
	published := f.seed(t, domain.StatusPublished, now.AddDate(0, 6, 0))
	completed := f.seed(t, domain.StatusCompleted, now.AddDate(0, -1, 0))
	cancelled := f.seed(t, domain.StatusCancelled, now.AddDate(0, 7, 0))

	t.Run("anonymous sees public only", func(t *testing.T) {
		got, err := f.svc.ListVisible(ctx, domain.Anonymous())
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{published.ID, completed.ID}, ids(got))
	})

	t.Run("owner sees own drafts", func(t *testing.T) {
		got, err := f.svc.ListVisible(ctx, f.org)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{draft.ID, published.ID, completed.ID, cancelled.ID}, ids(got))
	})

	t.Run("other user sees public only", func(t *testing.T) {
		got, err := f.svc.ListVisible(ctx, domain.Caller{ID: uuid.New(), Role: "Customer"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{published.ID, completed.ID}, ids(got))
	})
}

func TestListByDate_MatchesStartOfDayOnly(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	midnight := f.seed(t, domain.StatusDraft, day)
	f.seed(t, domain.StatusDraft, day.Add(19*time.Hour))

	got, err := f.svc.ListByDate(context.Background(), day.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{midnight.ID}, ids(got))
}

func TestListByOwner(t *testing.T) {
	f := newFixture(t)
	mine := f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))

	_, err := f.store.Save(context.Background(), &domain.Event{
		Title: "Other", Location: "L", EventDate: now, Status: domain.StatusDraft, UserID: uuid.New(),
	})
	require.NoError(t, err)

	got, err := f.svc.ListByOwner(context.Background(), f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mine.ID}, ids(got))
}

func TestListUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, domain.StatusPublished, now.AddDate(0, 0, -1))
	soon := f.seed(t, domain.StatusPublished, now.AddDate(0, 0, 1))
	later := f.seed(t, domain.StatusPublished, now.AddDate(0, 2, 0))
	draft := f.seed(t, domain.StatusDraft, now.AddDate(0, 1, 0))

	got, err := f.svc.ListUpcoming(ctx, domain.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{soon.ID, later.ID}, ids(got))

	got, err = f.svc.ListUpcoming(ctx, f.org)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{soon.ID, draft.ID, later.ID}, ids(got))
}

func TestListByLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pub := f.seed(t, domain.StatusPublished, now.AddDate(0, 4, 0))
	f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))

	got, err := f.svc.ListByLocation(ctx, domain.Anonymous(), "Hall A")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pub.ID}, ids(got))

	_, err = f.svc.ListByLocation(ctx, domain.Anonymous(), " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListByStatus_RejectsUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByStatus(context.Background(), domain.EventStatus("ARCHIVED"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	e := f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))

	got, err := f.svc.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, *got)

	_, err = f.svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetByID_ThroughCache(t *testing.T) {
	c := &mockCache{}
	f := newFixture(t, WithCache(c))
	e := f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))
	missing := uuid.New()

	c.On("GetEvent", mock.Anything, e.ID, 60*time.Second).Return(true, nil).Once()
	c.On("GetEvent", mock.Anything, missing, mock.Anything).Return(false, repository.ErrNotFound).Once()

	got, err := f.svc.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = f.svc.GetByID(context.Background(), missing)
	assert.ErrorIs(t, err, ErrEventNotFound)

	c.AssertExpectations(t)
}

func TestGetByID_CacheFailureFallsBackToStore(t *testing.T) {
	c := &mockCache{}
	f := newFixture(t, WithCache(c))
	e := f.seed(t, domain.StatusDraft, now.AddDate(0, 5, 0))

	c.On("GetEvent", mock.Anything, e.ID, mock.Anything).Return(false, errors.New("connection refused")).Once()

	got, err := f.svc.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}
