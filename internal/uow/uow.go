package uow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/kirinyoku/tix-events/internal/repository/postgres"
	"github.com/kirinyoku/tix-events/internal/service/ports"
)

const defaultAttempts = 3

// UoW runs lifecycle mutations inside a single postgres transaction.
type UoW struct {
	store    *postgresrepo.Store
	attempts int
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store, attempts: defaultAttempts}
}

// Do runs fn against a transaction-scoped event store. Hooks registered
// through after fire once, in order, only when the commit succeeds.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts is Do with explicit transaction options. Serialization
// failures are retried with a fresh transaction; hooks from a failed
// attempt are discarded.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, events ports.EventStore, after func(ports.AfterCommit)) error,
) error {
	const op = "uow.UoW.Do"

	var hooks []ports.AfterCommit
	var err error

	for attempt := 1; attempt <= u.attempts; attempt++ {
		hooks = hooks[:0]

		err = u.store.InTx(ctx, opts, func(ctx context.Context, tx postgresrepo.DB) error {
			return fn(ctx, u.store.Events().With(tx), func(h ports.AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgresrepo.IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		if postgresrepo.IsRetryable(err) {
			return fmt.Errorf("%s: gave up after %d attempts: %w", op, u.attempts, err)
		}
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
