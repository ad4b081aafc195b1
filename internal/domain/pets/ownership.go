package pets

import "context"

// OwnerOf exposes a pet's owner ID. Used by the health module to validate
// event creation without an import cycle between the two domains.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}
