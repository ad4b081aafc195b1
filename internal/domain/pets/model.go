package pets

import (
	"strings"
	"time"
)

// Species defines the supported species.
type Species string

const (
	SpeciesCat   Species = "cat"
	SpeciesDog   Species = "dog"
	SpeciesOther Species = "other"
)

// ParseSpecies maps a free-form answer to a Species.
func ParseSpecies(s string) (Species, bool) {
	switch Species(strings.ToLower(strings.TrimSpace(s))) {
	case SpeciesCat:
		return SpeciesCat, true
	case SpeciesDog:
		return SpeciesDog, true
	case SpeciesOther:
		return SpeciesOther, true
	}
	return "", false
}

// Pet is the basic profile of a registered pet. OwnerID is the chat user
// the pet belongs to; every read and write is scoped to it.
type Pet struct {
	ID      string
	OwnerID string

	Name    string
	Species Species

	BirthDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
