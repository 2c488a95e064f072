package event

import (
	"strings"
	"time"

	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/google/uuid"
)

// Schedule is the parsed user-facing timing of a request.
type Schedule struct {
	StartDate daterange.Date
	EndDate   daterange.Date
	StartTime daterange.Clock
	EndTime   daterange.Clock
}

func NewFromRequest(req EventRequest, unitID string, s Schedule) Event {
	now := time.Now().UTC()

	e := Event{
		ID:        uuid.NewString(),
		UnitID:    unitID,
		CreatedAt: now,
	}

	return e.Apply(req, s)
}

// Apply overwrites the editable fields. ID, UnitID and CreatedAt are kept.
func (e Event) Apply(req EventRequest, s Schedule) Event {
	e.Title = strings.TrimSpace(req.Title)
	e.Description = trimmedOrNil(req.Description)
	e.Range = daterange.ToStorage(s.StartDate, s.EndDate)
	e.StartTime = s.StartTime
	e.EndTime = s.EndTime
	e.Category = trimmedOrNil(req.Category)
	e.Location = strings.TrimSpace(req.Location)
	e.Organizer = strings.TrimSpace(req.Organizer)
	e.Attendees = strings.TrimSpace(req.Attendees)
	e.Color = req.Color
	if e.Color == "" {
		e.Color = DefaultColor
	}
	e.UpdatedAt = time.Now().UTC()

	return e
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
