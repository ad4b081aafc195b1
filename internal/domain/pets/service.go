package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"pet-health-bot/internal/domain/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   Species
	BirthDate *time.Time
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Pet{}, goerr.New("owner id is required", goerr.T(apperr.TagValidation))
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, goerr.New("pet name is required", goerr.T(apperr.TagValidation))
	}
	if _, ok := ParseSpecies(string(in.Species)); !ok {
		return Pet{}, goerr.New("unknown species", goerr.T(apperr.TagValidation), goerr.V("species", in.Species))
	}
	now := s.now()
	if in.BirthDate != nil && in.BirthDate.After(now) {
		return Pet{}, goerr.New("birth date is in the future", goerr.T(apperr.TagValidation), goerr.V("birth_date", *in.BirthDate))
	}

	p := Pet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(in.Name),
		Species:   in.Species,
		BirthDate: in.BirthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Get returns the pet only when it belongs to ownerID. Another owner's
// pet is reported as not found, never leaked.
func (s *Service) Get(ctx context.Context, ownerID, petID string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != ownerID {
		return Pet{}, goerr.New("pet not found", goerr.T(apperr.TagNotFound), goerr.V("pet_id", petID))
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, nil
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes the pet and all its health events. Scoped to the owner.
func (s *Service) Delete(ctx context.Context, ownerID, petID string) error {
	if _, err := s.Get(ctx, ownerID, petID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, petID)
}
