package health

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	// ListByPet returns the pet's events ordered by occurred-on ascending.
	ListByPet(ctx context.Context, petID string) ([]Event, error)
	Delete(ctx context.Context, id string) error

	// ListDue returns events whose next-due date is on or before `until`
	// and which have not yet been notified for the current due cycle
	// (last_notified absent or older than next_due).
	ListDue(ctx context.Context, until time.Time) ([]Event, error)
	UpdateLastNotified(ctx context.Context, id string, ts time.Time) error
}
