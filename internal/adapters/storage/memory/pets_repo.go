package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/pets"
)

type petRepo struct {
	store *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if p.ID == "" {
		return goerr.New("pet id required", goerr.T(apperr.TagStore))
	}
	if _, exists := r.store.pets[p.ID]; exists {
		return goerr.New("pet already exists", goerr.T(apperr.TagStore), goerr.V("pet_id", p.ID))
	}
	r.store.pets[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.pets[id]
	if !ok {
		return pets.Pet{}, goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", id))
	}
	return p, nil
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.store.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	// Stable order by created_at asc, matching the SQL adapter.
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// Delete removes the pet and all its events in one critical section.
func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.pets[id]; !ok {
		return goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", id))
	}
	delete(r.store.pets, id)
	for eid, e := range r.store.events {
		if e.PetID == id {
			delete(r.store.events, eid)
		}
	}
	return nil
}
