package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/geocoder89/agenda/internal/domain/event"
)

type EventsRepo struct {
	s *Store
}

// List applies the same half-open overlap rule as the SQL query.
func (r *EventsRepo) List(ctx context.Context, f event.ListFilter) ([]event.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, e := range r.s.events {
		if f.UnitID != nil && e.UnitID != *f.UnitID {
			continue
		}
		if !daterange.Overlaps(e.Range, f.Window) {
			continue
		}
		out = append(out, r.withUnitName(e))
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Range.Start.Compare(out[j].Range.Start); c != 0 {
			return c < 0
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime.Minutes() < out[j].StartTime.Minutes()
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	return r.withUnitName(e), nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[e.UnitID]; !ok {
		return event.Event{}, event.ErrUnitNotFound
	}

	e.UnitName = ""
	r.s.events[e.ID] = e
	return r.withUnitName(e), nil
}

func (r *EventsRepo) Update(ctx context.Context, e event.Event) (event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.events[e.ID]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	if _, ok := r.s.units[e.UnitID]; !ok {
		return event.Event{}, event.ErrUnitNotFound
	}

	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	e.UnitName = ""
	r.s.events[e.ID] = e
	return r.withUnitName(e), nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return event.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *EventsRepo) withUnitName(e event.Event) event.Event {
	if name := r.s.unitName(&e.UnitID); name != nil {
		e.UnitName = *name
	}
	return e
}
