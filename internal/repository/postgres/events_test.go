package postgresrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	"github.com/kirinyoku/tix-events/internal/repository"
	postgresrepo "github.com/kirinyoku/tix-events/internal/repository/postgres"
	"github.com/kirinyoku/tix-events/internal/service/ports"
	"github.com/kirinyoku/tix-events/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.EventStore = (*postgresrepo.EventRepo)(nil)

func newEvent(owner uuid.UUID, status domain.EventStatus, at time.Time) *domain.Event {
	return &domain.Event{
		Title:       "Concert",
		Description: "Open air",
		EventDate:   at,
		Location:    "Hall A",
		BasePrice:   12.5,
		Status:      status,
		UserID:      owner,
	}
}

func TestEventRepo_SaveAndFind(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := postgresrepo.NewStore(pool).Events()
	ctx := context.Background()
	at := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	owner := uuid.New()

	saved, err := repo.Save(ctx, newEvent(owner, domain.StatusDraft, at))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, 12.5, saved.BasePrice)

	got, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Open air", got.Description)
	assert.True(t, at.Equal(got.EventDate))

	got.Status = domain.StatusPublished
	got.Title = "Opera"
	updated, err := repo.Save(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, updated.Status)
	assert.Equal(t, "Opera", updated.Title)
	assert.True(t, saved.CreatedAt.Equal(updated.CreatedAt))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventRepo_Finders(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := postgresrepo.NewStore(pool).Events()
	ctx := context.Background()
	day := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	owner := uuid.New()

	draft, err := repo.Save(ctx, newEvent(owner, domain.StatusDraft, day))
	require.NoError(t, err)
	pub, err := repo.Save(ctx, newEvent(uuid.New(), domain.StatusPublished, day.Add(20*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newEvent(uuid.New(), domain.StatusCancelled, day.AddDate(0, 0, 2)))
	require.NoError(t, err)

	exact, err := repo.FindByEventDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, draft.ID, exact[0].ID)

	after, err := repo.FindByEventDateAfter(ctx, day)
	require.NoError(t, err)
	assert.Len(t, after, 2)

	public, err := repo.FindByStatusIn(ctx, domain.PublicStatuses)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, pub.ID, public[0].ID)

	own, err := repo.FindOwnOrPublished(ctx, owner, domain.PublicStatuses)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	byOwner, err := repo.FindByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	atHall, err := repo.FindByLocation(ctx, "Hall A")
	require.NoError(t, err)
	assert.Len(t, atHall, 3)
}

func TestEventRepo_DeleteByID(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := postgresrepo.NewStore(pool).Events()
	ctx := context.Background()

	e, err := repo.Save(ctx, newEvent(uuid.New(), domain.StatusDraft, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, e.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, e.ID), repository.ErrNotFound)
}

func TestEventRepo_RejectsBlankTitle(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := postgresrepo.NewStore(pool).Events()

	e := newEvent(uuid.New(), domain.StatusDraft, time.Now())
	e.Title = "  "

	_, err := repo.Save(context.Background(), e)
	assert.Error(t, err)
}
