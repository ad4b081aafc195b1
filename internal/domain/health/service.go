package health

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
)

// PetOwnership resolves a pet's owner. Satisfied by *pets.Service.
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

type Service struct {
	repo Repository
	pets PetOwnership
	now  func() time.Time
}

func NewService(repo Repository, pets PetOwnership) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		now:  time.Now,
	}
}

type CreateInput struct {
	Kind       Kind
	OccurredOn time.Time
	Detail     string
	NextDue    *time.Time
}

// Create validates and persists one event for ownerID's pet. The owning
// pet must exist and belong to ownerID, occurred-on must not be in the
// future, and next-due (if set) must be after occurred-on.
func (s *Service) Create(ctx context.Context, ownerID, petID string, in CreateInput) (Event, error) {
	if strings.TrimSpace(petID) == "" {
		return Event{}, goerr.New("pet id is required", goerr.T(apperr.TagValidation))
	}
	owner, err := s.pets.OwnerOf(ctx, petID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return Event{}, goerr.New("owning pet does not exist", goerr.T(apperr.TagValidation), goerr.V("pet_id", petID))
		}
		return Event{}, err
	}
	if owner != ownerID {
		// Fail closed: another owner's pet looks like a missing one.
		return Event{}, goerr.New("owning pet does not exist", goerr.T(apperr.TagValidation), goerr.V("pet_id", petID))
	}

	if _, ok := ParseKind(string(in.Kind)); !ok {
		return Event{}, goerr.New("unknown event kind", goerr.T(apperr.TagValidation), goerr.V("kind", in.Kind))
	}
	if in.OccurredOn.IsZero() {
		return Event{}, goerr.New("occurred-on date is required", goerr.T(apperr.TagValidation))
	}

	now := s.now()
	if DateOf(in.OccurredOn).After(DateOf(now)) {
		return Event{}, goerr.New("occurred-on date is in the future",
			goerr.T(apperr.TagValidation), goerr.V("occurred_on", in.OccurredOn))
	}
	if in.NextDue != nil && !DateOf(*in.NextDue).After(DateOf(in.OccurredOn)) {
		return Event{}, goerr.New("next-due date must be after the occurred-on date",
			goerr.T(apperr.TagValidation), goerr.V("occurred_on", in.OccurredOn), goerr.V("next_due", *in.NextDue))
	}
	if strings.TrimSpace(in.Detail) == "" {
		return Event{}, goerr.New("detail text is required", goerr.T(apperr.TagValidation))
	}

	e := Event{
		ID:         uuid.NewString(),
		PetID:      petID,
		Kind:       in.Kind,
		OccurredOn: DateOf(in.OccurredOn),
		RecordedAt: now,
		Detail:     strings.TrimSpace(in.Detail),
	}
	if in.NextDue != nil {
		d := DateOf(*in.NextDue)
		e.NextDue = &d
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// ListByPet returns ownerID's pet history, occurred-on ascending.
func (s *Service) ListByPet(ctx context.Context, ownerID, petID string) ([]Event, error) {
	if err := s.checkOwner(ctx, ownerID, petID); err != nil {
		return nil, err
	}
	return s.repo.ListByPet(ctx, petID)
}

// Delete removes a single event after checking it belongs to ownerID.
func (s *Service) Delete(ctx context.Context, ownerID, eventID string) error {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.checkOwner(ctx, ownerID, e.PetID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, eventID)
}

func (s *Service) checkOwner(ctx context.Context, ownerID, petID string) error {
	owner, err := s.pets.OwnerOf(ctx, petID)
	if err != nil {
		return err
	}
	if owner != ownerID {
		return goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", petID))
	}
	return nil
}

// DateOf truncates a timestamp to its calendar day in UTC. All occurred-on
// and next-due comparisons happen at day granularity.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
