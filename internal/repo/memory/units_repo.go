package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/geocoder89/agenda/internal/domain/unit"
)

type UnitsRepo struct {
	s *Store
}

func (r *UnitsRepo) List(ctx context.Context) ([]unit.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]unit.Unit, 0, len(r.s.units))
	for _, u := range r.s.units {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UnitsRepo) GetByID(ctx context.Context, id string) (unit.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.units[id]
	if !ok {
		return unit.Unit{}, unit.ErrNotFound
	}
	return u, nil
}

func (r *UnitsRepo) Create(ctx context.Context, u unit.Unit) (unit.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(u.Name, "") {
		return unit.Unit{}, unit.ErrNameTaken
	}

	r.s.units[u.ID] = u
	return u, nil
}

func (r *UnitsRepo) Rename(ctx context.Context, id, name string) (unit.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.units[id]
	if !ok {
		return unit.Unit{}, unit.ErrNotFound
	}

	if r.nameTaken(name, id) {
		return unit.Unit{}, unit.ErrNameTaken
	}

	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	r.s.units[id] = u
	return u, nil
}

// Delete refuses while users reference the unit and cascades to its events.
func (r *UnitsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[id]; !ok {
		return unit.ErrNotFound
	}

	for _, u := range r.s.users {
		if u.UnitID != nil && *u.UnitID == id {
			return unit.ErrInUse
		}
	}

	for eid, e := range r.s.events {
		if e.UnitID == id {
			delete(r.s.events, eid)
		}
	}

	delete(r.s.units, id)
	return nil
}

func (r *UnitsRepo) nameTaken(name, excludeID string) bool {
	for _, u := range r.s.units {
		if u.ID != excludeID && strings.EqualFold(u.Name, name) {
			return true
		}
	}
	return false
}
