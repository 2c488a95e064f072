package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/policy"
)

type Events struct {
	store EventStore
}

func NewEvents(store EventStore) *Events {
	return &Events{store: store}
}

// ListQuery carries the raw query-string values. Empty dates leave that side
// of the window open.
type ListQuery struct {
	StartDate string
	EndDate   string
	UnitID    *string
}

func (s *Events) List(ctx context.Context, a policy.Actor, q ListQuery) ([]event.Event, error) {
	scope, err := policy.EventScope(a, q.UnitID)
	if err != nil {
		return nil, err
	}

	w, err := parseWindow(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	events, err := s.store.List(ctx, event.ListFilter{Window: w, UnitID: scope})
	if err != nil {
		return nil, apperr.Internal("Failed to list events", err)
	}
	return events, nil
}

func (s *Events) Get(ctx context.Context, a policy.Actor, id string) (event.Event, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return event.Event{}, err
	}

	if err := policy.ReadEvent(a, e); err != nil {
		return event.Event{}, err
	}
	return *e, nil
}

func (s *Events) Create(ctx context.Context, a policy.Actor, req event.EventRequest) (event.Event, error) {
	unitID, err := policy.ResolveEventUnit(a, req.UnitID)
	if err != nil {
		return event.Event{}, err
	}

	sched, err := parseSchedule(req)
	if err != nil {
		return event.Event{}, err
	}

	created, err := s.store.Create(ctx, event.NewFromRequest(req, unitID, sched))
	if err != nil {
		return event.Event{}, mapEventErr(err, "Failed to create event")
	}
	return created, nil
}

// Update replaces every editable field. Only a global admin can move an
// event to another unit.
func (s *Events) Update(ctx context.Context, a policy.Actor, id string, req event.EventRequest) (event.Event, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return event.Event{}, err
	}

	if err := policy.MutateEvent(a, policy.OpUpdate, existing); err != nil {
		return event.Event{}, err
	}

	sched, err := parseSchedule(req)
	if err != nil {
		return event.Event{}, err
	}

	next := existing.Apply(req, sched)
	if a.IsGlobal() && req.UnitID != nil && *req.UnitID != "" {
		next.UnitID = *req.UnitID
	}

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return event.Event{}, mapEventErr(err, "Failed to update event")
	}
	return updated, nil
}

func (s *Events) Delete(ctx context.Context, a policy.Actor, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.MutateEvent(a, policy.OpDelete, existing); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return mapEventErr(err, "Failed to delete event")
	}
	return nil
}

// load returns nil without error when the event does not exist, leaving the
// not-found outcome to the policy.
func (s *Events) load(ctx context.Context, id string) (*event.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("Failed to load event", err)
	}
	return &e, nil
}

func parseSchedule(req event.EventRequest) (event.Schedule, error) {
	var (
		s   event.Schedule
		err error
	)

	if s.StartDate, err = daterange.ParseDate(req.StartDate); err != nil {
		return s, apperr.InvalidField("start_date", "start_date must be a date in YYYY-MM-DD format")
	}
	if s.EndDate, err = daterange.ParseDate(req.EndDate); err != nil {
		return s, apperr.InvalidField("end_date", "end_date must be a date in YYYY-MM-DD format")
	}
	if s.StartTime, err = daterange.ParseClock(req.StartTime); err != nil {
		return s, apperr.InvalidField("start_time", "start_time must be a time in HH:MM format")
	}
	if s.EndTime, err = daterange.ParseClock(req.EndTime); err != nil {
		return s, apperr.InvalidField("end_time", "end_time must be a time in HH:MM format")
	}

	if err := daterange.ValidateRange(s.StartDate, s.EndDate); err != nil {
		return s, apperr.InvalidField("end_date", err.Error())
	}
	if err := daterange.ValidateTimeOrdering(s.StartDate, s.EndDate, s.StartTime, s.EndTime); err != nil {
		return s, apperr.InvalidField("end_time", err.Error())
	}

	if strings.TrimSpace(req.Title) == "" {
		return s, apperr.InvalidField("title", "Title is required")
	}

	return s, nil
}

func parseWindow(from, to string) (daterange.Window, error) {
	var (
		w   daterange.Window
		err error
	)

	if from != "" {
		if w.From, err = daterange.ParseDate(from); err != nil {
			return w, apperr.InvalidField("start_date", "start_date must be a date in YYYY-MM-DD format")
		}
	}
	if to != "" {
		if w.To, err = daterange.ParseDate(to); err != nil {
			return w, apperr.InvalidField("end_date", "end_date must be a date in YYYY-MM-DD format")
		}
	}

	if err := w.Validate(); err != nil {
		return w, apperr.InvalidField("end_date", "end_date cannot be before start_date")
	}
	return w, nil
}

func mapEventErr(err error, msg string) error {
	switch {
	case errors.Is(err, event.ErrNotFound):
		return apperr.NotFound("Event not found")
	case errors.Is(err, event.ErrUnitNotFound):
		return apperr.InvalidField("unitId", "The selected unit does not exist")
	default:
		return apperr.Internal(msg, err)
	}
}
