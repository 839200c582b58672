package postgresrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-events/internal/domain"
)

const eventColumns = `id, title, COALESCE(description, ''), event_date, location,
	base_price, status, user_id, created_at, updated_at`

type EventRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Save inserts the event, or overwrites every mutable column when a row with
// the same id exists. A nil id is replaced by a new random one.
func (r *EventRepo) Save(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.Save"

	db := r.handle()

	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := db.QueryRow(ctx,
		`INSERT INTO events(id, title, description, event_date, location, base_price, status, user_id)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
			title       = EXCLUDED.title,
			description = EXCLUDED.description,
			event_date  = EXCLUDED.event_date,
			location    = EXCLUDED.location,
			base_price  = EXCLUDED.base_price,
			status      = EXCLUDED.status,
			updated_at  = now()
		 RETURNING `+eventColumns,
		id, e.Title, e.Description, e.EventDate, e.Location, e.BasePrice, string(e.Status), e.UserID,
	)

	saved, err := scanEvent(row)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return saved, nil
}

// FindByID retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.FindByID"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

// FindByIDForUpdate is FindByID with a row lock held until the transaction
// ends. It only makes sense on a repo bound to a transaction via With.
func (r *EventRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgresrepo.EventRepo.FindByIDForUpdate"

	e, err := scanEvent(r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return e, nil
}

func (r *EventRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const op = "postgresrepo.EventRepo.DeleteByID"

	tag, err := r.handle().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, pgx.ErrNoRows)
	}

	return nil
}

func (r *EventRepo) Delete(ctx context.Context, e *domain.Event) error {
	return r.DeleteByID(ctx, e.ID)
}

// FindByEventDate matches event_date exactly.
func (r *EventRepo) FindByEventDate(ctx context.Context, at time.Time) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByEventDate",
		`WHERE event_date = $1`, at)
}

func (r *EventRepo) FindByEventDateAfter(ctx context.Context, after time.Time) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByEventDateAfter",
		`WHERE event_date > $1`, after)
}

func (r *EventRepo) FindByStatus(ctx context.Context, status domain.EventStatus) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByStatus",
		`WHERE status = $1`, string(status))
}

func (r *EventRepo) FindByStatusIn(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByStatusIn",
		`WHERE status = ANY($1)`, statusStrings(statuses))
}

func (r *EventRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByUserID",
		`WHERE user_id = $1`, userID)
}

func (r *EventRepo) FindByLocation(ctx context.Context, location string) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindByLocation",
		`WHERE location = $1`, location)
}

// FindOwnOrPublished returns the events owned by userID together with every
// event whose status is in statuses.
func (r *EventRepo) FindOwnOrPublished(
	ctx context.Context,
	userID uuid.UUID,
	statuses []domain.EventStatus,
) ([]domain.Event, error) {
	return r.list(ctx, "postgresrepo.EventRepo.FindOwnOrPublished",
		`WHERE user_id = $1 OR status = ANY($2)`, userID, statusStrings(statuses))
}

func (r *EventRepo) list(ctx context.Context, op, where string, args ...any) ([]domain.Event, error) {
	rows, err := r.handle().Query(ctx,
		`SELECT `+eventColumns+` FROM events `+where+` ORDER BY event_date, id`,
		args...,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}

		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var status string

	if err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.EventDate,
		&e.Location,
		&e.BasePrice,
		&status,
		&e.UserID,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Status = domain.EventStatus(status)
	e.EventDate = e.EventDate.UTC()

	return &e, nil
}

func statusStrings(statuses []domain.EventStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
