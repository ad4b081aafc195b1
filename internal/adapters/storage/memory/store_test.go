package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"pet-health-bot/internal/adapters/storage/memory"
	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPet(id, owner, name string, createdAt time.Time) pets.Pet {
	return pets.Pet{
		ID:        id,
		OwnerID:   owner,
		Name:      name,
		Species:   pets.SpeciesCat,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func newEvent(id, petID string, occurred time.Time) health.Event {
	return health.Event{
		ID:         id,
		PetID:      petID,
		Kind:       health.KindNote,
		OccurredOn: occurred,
		RecordedAt: occurred.Add(9 * time.Hour),
		Detail:     "note " + id,
	}
}

func TestPetRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	p := newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1))
	gt.NoError(t, store.Pets().Create(ctx, p)).Required()

	got, err := store.Pets().GetByID(ctx, "pet-1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("Luna")

	// Duplicate IDs are a store fault, not a silent overwrite.
	err = store.Pets().Create(ctx, p)
	gt.Error(t, err)
	gt.Bool(t, apperr.IsStore(err)).True()
}

func TestPetRepo_GetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.Pets().GetByID(ctx, "nope")
	gt.Error(t, err)
	gt.Bool(t, apperr.IsNotFound(err)).True()
}

func TestPetRepo_ListByOwner_ScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-2", "owner-a", "Rex", day(2025, 2, 1)))).Required()
	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1)))).Required()
	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-3", "owner-b", "Mila", day(2025, 1, 15)))).Required()

	list, err := store.Pets().ListByOwner(ctx, "owner-a")
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(2)
	gt.Value(t, list[0].Name).Equal("Luna")
	gt.Value(t, list[1].Name).Equal("Rex")

	other, err := store.Pets().ListByOwner(ctx, "owner-c")
	gt.NoError(t, err).Required()
	gt.Array(t, other).Length(0)
}

func TestPetRepo_DeleteCascadesEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1)))).Required()
	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-2", "owner-a", "Rex", day(2025, 1, 2)))).Required()
	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-1", "pet-1", day(2025, 3, 1)))).Required()
	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-2", "pet-1", day(2025, 3, 2)))).Required()
	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-3", "pet-2", day(2025, 3, 3)))).Required()

	gt.NoError(t, store.Pets().Delete(ctx, "pet-1")).Required()

	_, err := store.Pets().GetByID(ctx, "pet-1")
	gt.Bool(t, apperr.IsNotFound(err)).True()

	gone, err := store.Events().ListByPet(ctx, "pet-1")
	gt.NoError(t, err).Required()
	gt.Array(t, gone).Length(0)

	// The sibling's history is untouched.
	kept, err := store.Events().ListByPet(ctx, "pet-2")
	gt.NoError(t, err).Required()
	gt.Array(t, kept).Length(1)
}

func TestEventRepo_CreateRequiresOwningPet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Events().Create(ctx, newEvent("ev-1", "ghost", day(2025, 3, 1)))
	gt.Error(t, err)
	gt.Bool(t, apperr.IsValidation(err)).True()
}

func TestEventRepo_ListByPet_ChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1)))).Required()

	// Same occurred-on day: recorded-at breaks the tie.
	early := newEvent("ev-same-early", "pet-1", day(2025, 3, 5))
	early.RecordedAt = day(2025, 3, 5).Add(8 * time.Hour)
	late := newEvent("ev-same-late", "pet-1", day(2025, 3, 5))
	late.RecordedAt = day(2025, 3, 5).Add(20 * time.Hour)

	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-new", "pet-1", day(2025, 4, 1)))).Required()
	gt.NoError(t, store.Events().Create(ctx, late)).Required()
	gt.NoError(t, store.Events().Create(ctx, early)).Required()
	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-old", "pet-1", day(2025, 2, 1)))).Required()

	list, err := store.Events().ListByPet(ctx, "pet-1")
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(4)
	gt.Value(t, list[0].ID).Equal("ev-old")
	gt.Value(t, list[1].ID).Equal("ev-same-early")
	gt.Value(t, list[2].ID).Equal("ev-same-late")
	gt.Value(t, list[3].ID).Equal("ev-new")
}

func TestEventRepo_ListDueAndLastNotified(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1)))).Required()

	dueSoon := newEvent("ev-due", "pet-1", day(2024, 1, 10))
	d1 := day(2025, 1, 10)
	dueSoon.NextDue = &d1
	dueSoon.Kind = health.KindVaccination

	dueLater := newEvent("ev-later", "pet-1", day(2024, 6, 1))
	d2 := day(2025, 6, 1)
	dueLater.NextDue = &d2

	noDue := newEvent("ev-nodue", "pet-1", day(2024, 3, 1))

	gt.NoError(t, store.Events().Create(ctx, dueSoon)).Required()
	gt.NoError(t, store.Events().Create(ctx, dueLater)).Required()
	gt.NoError(t, store.Events().Create(ctx, noDue)).Required()

	until := day(2025, 1, 12)
	due, err := store.Events().ListDue(ctx, until)
	gt.NoError(t, err).Required()
	gt.Array(t, due).Length(1)
	gt.Value(t, due[0].ID).Equal("ev-due")

	// After the delivery write-back the cycle is spent.
	gt.NoError(t, store.Events().UpdateLastNotified(ctx, "ev-due", day(2025, 1, 11))).Required()
	due, err = store.Events().ListDue(ctx, until)
	gt.NoError(t, err).Required()
	gt.Array(t, due).Length(0)

	// A write-back older than next-due does not spend the cycle.
	gt.NoError(t, store.Events().UpdateLastNotified(ctx, "ev-due", day(2025, 1, 2))).Required()
	due, err = store.Events().ListDue(ctx, until)
	gt.NoError(t, err).Required()
	gt.Array(t, due).Length(1)
}

func TestEventRepo_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	gt.NoError(t, store.Pets().Create(ctx, newPet("pet-1", "owner-a", "Luna", day(2025, 1, 1)))).Required()
	gt.NoError(t, store.Events().Create(ctx, newEvent("ev-1", "pet-1", day(2025, 3, 1)))).Required()

	gt.NoError(t, store.Events().Delete(ctx, "ev-1")).Required()

	err := store.Events().Delete(ctx, "ev-1")
	gt.Error(t, err)
	gt.Bool(t, apperr.IsNotFound(err)).True()
}
