package export

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/geocoder89/agenda/internal/domain/event"
)

func TestCalendar_UsesInclusiveLastDay(t *testing.T) {
	loc := time.FixedZone("BOT", -4*3600)
	cat := "Cultura"

	e := event.Event{
		ID:        "ev-1",
		Title:     "Feria del libro",
		Range:     daterange.ToStorage(daterange.NewDate(2025, 3, 10), daterange.NewDate(2025, 3, 12)),
		StartTime: daterange.ClockOf(9, 0),
		EndTime:   daterange.ClockOf(18, 30),
		UnitName:  "Cultura",
		Category:  &cat,
		Location:  "Plaza principal",
		Organizer: "Dirección de Cultura",
		Color:     "#00b1e1",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	out := Calendar("Agenda", []event.Event{e}, loc, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ve := events[0]

	if got := ve.GetProperty(ical.ComponentPropertySummary).Value; got != "Feria del libro" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := ve.GetProperty(ical.ComponentPropertyUniqueId).Value; got != "ev-1@agenda" {
		t.Fatalf("unexpected uid %q", got)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		t.Fatalf("end: %v", err)
	}

	// 09:00 and 18:30 in UTC-4
	if want := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, start)
	}
	if want := time.Date(2025, 3, 12, 22, 30, 0, 0, time.UTC); !end.Equal(want) {
		t.Fatalf("expected end on the last included day %v, got %v", want, end)
	}

	desc := ve.GetProperty(ical.ComponentPropertyDescription).Value
	if !strings.Contains(desc, "Cultura") {
		t.Fatalf("expected unit in description, got %q", desc)
	}
}

func TestCalendar_Empty(t *testing.T) {
	out := Calendar("", nil, nil, time.Now())
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Fatalf("unexpected calendar:\n%s", out)
	}
}
