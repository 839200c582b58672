package postgresrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/tix-events/internal/repository"
)

// SQLSTATE codes the event store cares about.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsRetryable reports whether a fresh transaction may succeed where this one
// failed.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// wrapDBErr tags err with op, mapping missing rows and duplicate keys onto
// the repository sentinels.
func wrapDBErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		err = repository.ErrNotFound
	case pgCode(err) == codeUniqueViolation:
		err = repository.ErrConflict
	}

	return fmt.Errorf("%s: %w", op, err)
}
