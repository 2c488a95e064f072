package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/agenda/internal/daterange"
)

const DefaultColor = "#00b1e1"

// Event keeps its day range in stored form. Range.End is exclusive and is
// only turned back into a user-facing date when the event is rendered.
type Event struct {
	ID          string
	Title       string
	Description *string
	Range       daterange.Stored
	StartTime   daterange.Clock
	EndTime     daterange.Clock
	UnitID      string
	UnitName    string
	Category    *string
	Location    string
	Organizer   string
	Attendees   string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type eventJSON struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      *string         `json:"description"`
	StartDate        daterange.Date  `json:"start_date"`
	EndDate          daterange.Date  `json:"end_date"`
	EndDateExclusive daterange.Date  `json:"end_date_exclusive"`
	StartTime        daterange.Clock `json:"start_time"`
	EndTime          daterange.Clock `json:"end_time"`
	UnitID           string          `json:"unitId"`
	UnitName         string          `json:"unitName,omitempty"`
	Category         *string         `json:"category"`
	Location         string          `json:"location"`
	Organizer        string          `json:"organizer"`
	Attendees        string          `json:"attendees"`
	Color            string          `json:"color"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Display returns the inclusive day range shown to users.
func (e Event) Display() daterange.Display {
	return daterange.ToDisplay(e.Range)
}

func (e Event) MarshalJSON() ([]byte, error) {
	d := e.Display()

	return json.Marshal(eventJSON{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		StartDate:        d.Start,
		EndDate:          d.End,
		EndDateExclusive: e.Range.End,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		UnitID:           e.UnitID,
		UnitName:         e.UnitName,
		Category:         e.Category,
		Location:         e.Location,
		Organizer:        e.Organizer,
		Attendees:        e.Attendees,
		Color:            e.Color,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	})
}

// ListFilter narrows a listing. A nil UnitID means every unit.
type ListFilter struct {
	Window daterange.Window
	UnitID *string
}

var (
	ErrNotFound     = errors.New("event not found")
	ErrUnitNotFound = errors.New("event unit does not exist")
)

// EventRequest is used for both create and full update. Dates are the
// user-facing inclusive range.
type EventRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	UnitID      *string `json:"unitId" binding:"omitempty,uuid"`
	Category    *string `json:"category" binding:"omitempty,max=80"`
	Location    string  `json:"location" binding:"max=255"`
	Organizer   string  `json:"organizer" binding:"max=255"`
	Attendees   string  `json:"attendees" binding:"max=2000"`
	Color       string  `json:"color" binding:"omitempty,hexcolor"`
}
