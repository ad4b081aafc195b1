package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, owner_id, name, species, birth_date,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		string(p.Species),
		toNullDate(p.BirthDate),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert pet", goerr.T(apperr.TagStore), goerr.V("pet_id", p.ID))
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, goerr.New("pet not found", goerr.T(apperr.TagNotFound))
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, species, birth_date, created_at, updated_at
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", id))
		}
		return pets.Pet{}, goerr.Wrap(err, "failed to read pet", goerr.T(apperr.TagStore), goerr.V("pet_id", id))
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, species, birth_date, created_at, updated_at
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pets", goerr.T(apperr.TagStore), goerr.V("owner_id", ownerID))
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan pet", goerr.T(apperr.TagStore))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to list pets", goerr.T(apperr.TagStore))
	}
	return out, nil
}

// Delete removes the pet; health_events rows follow via ON DELETE CASCADE.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete pet", goerr.T(apperr.TagStore), goerr.V("pet_id", id))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var species string
	var bd sql.NullTime
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&species,
		&bd,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Species = pets.Species(species)
	if bd.Valid {
		// birth_date is DATE; pgx maps it to midnight UTC.
		t := bd.Time
		p.BirthDate = &t
	}
	return p, nil
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
