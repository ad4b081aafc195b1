package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
)

type eventRepo struct {
	store *Store
}

func (r *eventRepo) Create(ctx context.Context, e health.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e.ID == "" {
		return goerr.New("event id required", goerr.T(apperr.TagStore))
	}
	if _, exists := r.store.events[e.ID]; exists {
		return goerr.New("event already exists", goerr.T(apperr.TagStore), goerr.V("event_id", e.ID))
	}
	// Same critical section as the pet cascade delete: the owning pet
	// must still exist when the row lands.
	if _, ok := r.store.pets[e.PetID]; !ok {
		return goerr.New("owning pet does not exist", goerr.T(apperr.TagValidation), goerr.V("pet_id", e.PetID))
	}

	r.store.events[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (health.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[id]
	if !ok {
		return health.Event{}, goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
	}
	return e, nil
}

func (r *eventRepo) ListByPet(ctx context.Context, petID string) ([]health.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]health.Event, 0)
	for _, e := range r.store.events {
		if e.PetID == petID {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].OccurredOn.Before(out[j].OccurredOn)
	})

	return out, nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[id]; !ok {
		return goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
	}
	delete(r.store.events, id)
	return nil
}

func (r *eventRepo) ListDue(ctx context.Context, until time.Time) ([]health.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]health.Event, 0)
	for _, e := range r.store.events {
		if e.NextDue == nil || e.NextDue.After(until) {
			continue
		}
		if e.LastNotified != nil && !e.LastNotified.Before(*e.NextDue) {
			continue // already notified for this due cycle
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].NextDue.Before(*out[j].NextDue)
	})

	return out, nil
}

func (r *eventRepo) UpdateLastNotified(ctx context.Context, id string, ts time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.events[id]
	if !ok {
		return goerr.New("event not found", goerr.T(apperr.TagNotFound), goerr.V("event_id", id))
	}
	e.LastNotified = &ts
	r.store.events[id] = e
	return nil
}
