package report

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

// Service turns a pet's record set into a PDF document. FontDir points at
// the provisioned TrueType assets (DejaVuSans.ttf / DejaVuSans-Bold.ttf);
// when empty the built-in core font is used, which is only safe for
// Latin-script dev data.
type Service struct {
	pets    *pets.Service
	health  *health.Service
	fontDir string
	now     func() time.Time
}

func NewService(petsSvc *pets.Service, healthSvc *health.Service, fontDir string) *Service {
	return &Service{
		pets:    petsSvc,
		health:  healthSvc,
		fontDir: fontDir,
		now:     time.Now,
	}
}

// Generate builds the full chronological history for ownerID's pet.
// Fails closed with a not-found error when the pet is absent or belongs
// to someone else. No partial document is ever returned.
func (s *Service) Generate(ctx context.Context, ownerID, petID string) (string, []byte, error) {
	pet, err := s.pets.Get(ctx, ownerID, petID)
	if err != nil {
		return "", nil, err
	}
	events, err := s.health.ListByPet(ctx, ownerID, petID)
	if err != nil {
		return "", nil, err
	}

	data, err := render(pet, events, s.fontDir, s.now())
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s-health-history-%s.pdf", slug(pet.Name), s.now().Format("20060102"))
	return filename, data, nil
}

// slug keeps filenames transport-safe regardless of the pet name's script.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "pet"
	}
	return out
}
