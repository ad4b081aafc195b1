package memory

import (
	"sync"

	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
)

// Store is the in-memory record store used in dev mode and tests. One
// RWMutex covers both tables so a pet cascade delete and a concurrent
// event insert for the same pet serialize against each other.
type Store struct {
	mu     sync.RWMutex
	pets   map[string]pets.Pet
	events map[string]health.Event
}

func NewStore() *Store {
	return &Store{
		pets:   make(map[string]pets.Pet),
		events: make(map[string]health.Event),
	}
}

func (s *Store) Pets() pets.Repository {
	return &petRepo{store: s}
}

func (s *Store) Events() health.Repository {
	return &eventRepo{store: s}
}
