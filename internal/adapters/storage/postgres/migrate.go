package postgres

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
)

// Migrate creates the schema when missing. health_events.pet_id cascades
// on pet deletion, so removing a pet and its history is one statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pets (
			id         UUID PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			species    TEXT NOT NULL,
			birth_date DATE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pets_owner ON pets(owner_id)`,
		`CREATE TABLE IF NOT EXISTS health_events (
			id            UUID PRIMARY KEY,
			pet_id        UUID NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			kind          TEXT NOT NULL,
			occurred_on   DATE NOT NULL,
			detail        TEXT NOT NULL,
			next_due      DATE,
			last_notified TIMESTAMPTZ,
			recorded_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_health_events_pet ON health_events(pet_id)`,
		`CREATE INDEX IF NOT EXISTS idx_health_events_due ON health_events(next_due) WHERE next_due IS NOT NULL`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "migration failed", goerr.T(apperr.TagStore), goerr.V("stmt", stmt))
		}
	}
	return nil
}
