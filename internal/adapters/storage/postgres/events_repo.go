package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `id, pet_id, kind, occurred_on, detail, next_due, last_notified, recorded_at`

func (r *EventsRepo) Create(ctx context.Context, e health.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_events (
			id, pet_id, kind, occurred_on, detail, next_due, last_notified, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.PetID,
		string(e.Kind),
		e.OccurredOn,
		e.Detail,
		toNullDate(e.NextDue),
		toNullDate(e.LastNotified),
		e.RecordedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert event", goerr.T(apperr.TagStore), goerr.V("event_id", e.ID))
	}
	return nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (health.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return health.Event{}, goerr.New("event not found", goerr.T(apperr.TagNotFound))
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM health_events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return health.Event{}, goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
		}
		return health.Event{}, goerr.Wrap(err, "failed to read event", goerr.T(apperr.TagStore), goerr.V("event_id", id))
	}
	return e, nil
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string) ([]health.Event, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM health_events
		WHERE pet_id = $1
		ORDER BY occurred_on ASC, recorded_at ASC
	`, petID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list events", goerr.T(apperr.TagStore), goerr.V("pet_id", petID))
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_events WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete event", goerr.T(apperr.TagStore), goerr.V("event_id", id))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
	}
	return nil
}

func (r *EventsRepo) ListDue(ctx context.Context, until time.Time) ([]health.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM health_events
		WHERE next_due IS NOT NULL
		  AND next_due <= $1
		  AND (last_notified IS NULL OR last_notified < next_due)
		ORDER BY next_due ASC
	`, until)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list due events", goerr.T(apperr.TagStore))
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventsRepo) UpdateLastNotified(ctx context.Context, id string, ts time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE health_events SET last_notified = $2 WHERE id = $1`, id, ts)
	if err != nil {
		return goerr.Wrap(err, "failed to update last_notified", goerr.T(apperr.TagStore), goerr.V("event_id", id))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]health.Event, error) {
	out := make([]health.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan event", goerr.T(apperr.TagStore))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate events", goerr.T(apperr.TagStore))
	}
	return out, nil
}

func scanEvent(row rowScanner) (health.Event, error) {
	var e health.Event
	var kind string
	var nextDue, lastNotified sql.NullTime
	if err := row.Scan(
		&e.ID,
		&e.PetID,
		&kind,
		&e.OccurredOn,
		&e.Detail,
		&nextDue,
		&lastNotified,
		&e.RecordedAt,
	); err != nil {
		return health.Event{}, err
	}
	e.Kind = health.Kind(kind)
	if nextDue.Valid {
		t := nextDue.Time
		e.NextDue = &t
	}
	if lastNotified.Valid {
		t := lastNotified.Time
		e.LastNotified = &t
	}
	return e, nil
}
