package uow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/clock"
	"github.com/kirinyoku/tix-events/internal/domain"
	postgresrepo "github.com/kirinyoku/tix-events/internal/repository/postgres"
	"github.com/kirinyoku/tix-events/internal/service/lifecycle"
	"github.com/kirinyoku/tix-events/internal/service/ports"
	"github.com/kirinyoku/tix-events/internal/testutil"
	"github.com/kirinyoku/tix-events/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.UnitOfWork = (*uow.UoW)(nil)

func TestUoW_RollsBackAndSkipsHooks(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	u := uow.NewUoW(store)
	ctx := context.Background()

	hookRan := false
	var id uuid.UUID

	err := u.Do(ctx, func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error {
		e, err := events.Save(ctx, &domain.Event{
			Title: "T", Location: "L", EventDate: time.Now(), Status: domain.StatusDraft, UserID: uuid.New(),
		})
		if err != nil {
			return err
		}
		id = e.ID
		after(func(context.Context) { hookRan = true })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.False(t, hookRan)

	_, err = store.Events().FindByID(ctx, id)
	assert.Error(t, err)
}

func TestLifecycleOnPostgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := postgresrepo.NewStore(pool)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := lifecycle.New(store.Events(), uow.NewUoW(store), clock.NewFixed(now), nil, lifecycle.Config{})
	org := domain.Caller{ID: uuid.New(), Role: domain.RoleOrganizer}
	ctx := context.Background()
	date := now.AddDate(0, 6, 0)

	e, err := svc.Create(ctx, org, domain.CreateEventInput{
		Title: "Festival", EventDate: &date, Location: "Park", BasePrice: 40,
	})
	require.NoError(t, err)

	res, err := svc.Publish(ctx, org, e.ID)
	require.NoError(t, err)
	require.True(t, res.Success)

	require.ErrorIs(t, svc.Delete(ctx, org, e.ID), lifecycle.ErrConflict)

	res, err = svc.Cancel(ctx, org, e.ID)
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = svc.Publish(ctx, org, e.ID)
	require.ErrorIs(t, err, lifecycle.ErrConflict)

	require.NoError(t, svc.Delete(ctx, org, e.ID))

	_, err = svc.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, lifecycle.ErrEventNotFound)
}
