// Package memory is an in-process store with the same uniqueness, foreign
// key and cascade rules as the Postgres schema.
package memory

import (
	"sync"

	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
)

type Store struct {
	mu     sync.RWMutex
	units  map[string]unit.Unit
	users  map[string]user.User
	events map[string]event.Event
}

func NewStore() *Store {
	return &Store{
		units:  make(map[string]unit.Unit),
		users:  make(map[string]user.User),
		events: make(map[string]event.Event),
	}
}

func (s *Store) Units() *UnitsRepo   { return &UnitsRepo{s: s} }
func (s *Store) Users() *UsersRepo   { return &UsersRepo{s: s} }
func (s *Store) Events() *EventsRepo { return &EventsRepo{s: s} }

// unitName must be called with the lock held.
func (s *Store) unitName(id *string) *string {
	if id == nil {
		return nil
	}
	u, ok := s.units[*id]
	if !ok {
		return nil
	}
	name := u.Name
	return &name
}
