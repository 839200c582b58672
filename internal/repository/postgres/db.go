package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface shared by the pool and an open transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DB = (*pgxpool.Pool)(nil)
	_ DB = (pgx.Tx)(nil)
)

// lifecycleTx serializes read-check-write status changes against each other.
var lifecycleTx = pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Events() *EventRepo { return &EventRepo{pool: s.pool} }

// InTx commits when fn returns nil and rolls back otherwise. A nil opts
// means serializable read-write.
func (s *Store) InTx(ctx context.Context, opts *pgx.TxOptions, fn func(ctx context.Context, tx DB) error) error {
	const op = "postgresrepo.Store.InTx"

	txOpts := lifecycleTx
	if opts != nil {
		txOpts = *opts
	}

	err := pgx.BeginTxFunc(ctx, s.pool, txOpts, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	const op = "postgresrepo.Store.Ping"

	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
