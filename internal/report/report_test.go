package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"pet-health-bot/internal/adapters/storage/memory"
	"pet-health-bot/internal/domain/apperr"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

func newTestService(t *testing.T) (*Service, *pets.Service, *health.Service) {
	t.Helper()

	store := memory.NewStore()
	petsSvc := pets.NewService(store.Pets())
	healthSvc := health.NewService(store.Events(), petsSvc)

	// Empty font dir: the built-in core font is enough for test data.
	svc := NewService(petsSvc, healthSvc, "")
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc, petsSvc, healthSvc
}

func TestBuildRows(t *testing.T) {
	due := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	events := []health.Event{
		{
			Kind:       health.KindVaccination,
			OccurredOn: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Detail:     "rabies booster",
			NextDue:    &due,
		},
		{
			Kind:       health.KindNote,
			OccurredOn: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Detail:     "sneezing in the morning",
		},
	}

	rows := buildRows(events)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Heading != "2025-01-10 — vaccination" {
		t.Fatalf("unexpected heading: %q", rows[0].Heading)
	}
	if !strings.Contains(rows[0].Body, "rabies booster") || !strings.Contains(rows[0].Body, "Next due: 2026-01-10") {
		t.Fatalf("unexpected body: %q", rows[0].Body)
	}
	if strings.Contains(rows[1].Body, "Next due") {
		t.Fatalf("a note must not carry a next-due line: %q", rows[1].Body)
	}
}

func TestGenerate_ProducesPDF(t *testing.T) {
	svc, petsSvc, healthSvc := newTestService(t)

	p, err := petsSvc.Create(context.Background(), "owner-1", pets.CreateInput{Name: "Luna", Species: pets.SpeciesCat})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	if _, err := healthSvc.Create(context.Background(), "owner-1", p.ID, health.CreateInput{
		Kind:       health.KindNote,
		OccurredOn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Detail:     "ate well, very playful",
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	filename, data, err := svc.Generate(context.Background(), "owner-1", p.ID)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if filename != "luna-health-history-20250615.pdf" {
		t.Fatalf("unexpected filename: %q", filename)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("output is not a PDF document")
	}
}

func TestGenerate_EmptyHistoryStillRenders(t *testing.T) {
	svc, petsSvc, _ := newTestService(t)

	p, err := petsSvc.Create(context.Background(), "owner-1", pets.CreateInput{Name: "Rex", Species: pets.SpeciesDog})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	_, data, err := svc.Generate(context.Background(), "owner-1", p.ID)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("output is not a PDF document")
	}
}

func TestGenerate_ForeignOwnerIsNotFound(t *testing.T) {
	svc, petsSvc, _ := newTestService(t)

	p, err := petsSvc.Create(context.Background(), "owner-1", pets.CreateInput{Name: "Luna", Species: pets.SpeciesCat})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	_, _, err = svc.Generate(context.Background(), "owner-2", p.ID)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGenerate_MissingFontIsRenderError(t *testing.T) {
	store := memory.NewStore()
	petsSvc := pets.NewService(store.Pets())
	healthSvc := health.NewService(store.Events(), petsSvc)
	svc := NewService(petsSvc, healthSvc, t.TempDir())

	p, err := petsSvc.Create(context.Background(), "owner-1", pets.CreateInput{Name: "Luna", Species: pets.SpeciesCat})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	_, _, err = svc.Generate(context.Background(), "owner-1", p.ID)
	if !apperr.IsRender(err) {
		t.Fatalf("expected render error for a missing font asset, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Luna", "luna"},
		{"Mr. Whiskers Jr", "mr-whiskers-jr"},
		{"Мурка", "pet"}, // non-Latin names fall back to a safe stub
	}
	for _, tc := range cases {
		if got := slug(tc.in); got != tc.want {
			t.Fatalf("slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
