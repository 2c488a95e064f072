package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/agenda/internal/daterange"
	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
)

func seedUnit(t *testing.T, s *Store, name string) unit.Unit {
	t.Helper()
	u, err := s.Units().Create(context.Background(), unit.New(name))
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}
	return u
}

func seedEvent(t *testing.T, s *Store, unitID, start, end string) event.Event {
	t.Helper()

	sd, _ := daterange.ParseDate(start)
	ed, _ := daterange.ParseDate(end)
	e := event.NewFromRequest(event.EventRequest{Title: "e"}, unitID, event.Schedule{
		StartDate: sd,
		EndDate:   ed,
		StartTime: daterange.ClockOf(9, 0),
		EndTime:   daterange.ClockOf(10, 0),
	})

	created, err := s.Events().Create(context.Background(), e)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return created
}

func TestUnits_NameUnique(t *testing.T) {
	s := NewStore()
	seedUnit(t, s, "Cultura")

	if _, err := s.Units().Create(context.Background(), unit.New("cultura")); !errors.Is(err, unit.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestUnits_DeleteCascadesEventsAndRestrictsUsers(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := seedUnit(t, s, "A")
	b := seedUnit(t, s, "B")

	seedEvent(t, s, a.ID, "2025-03-10", "2025-03-10")
	kept := seedEvent(t, s, b.ID, "2025-03-10", "2025-03-10")

	if err := s.Units().Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events, _ := s.Events().List(ctx, event.ListFilter{})
	if len(events) != 1 || events[0].ID != kept.ID {
		t.Fatalf("expected only unit B's event to survive, got %+v", events)
	}

	v := user.New("1", "V", "v@x.bo", "h", user.RoleViewer, &b.ID)
	if _, err := s.Users().Create(ctx, v); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.Units().Delete(ctx, b.ID); !errors.Is(err, unit.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
}

func TestUsers_Constraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := seedUnit(t, s, "A")
	missing := "nope"

	first := user.New("100", "One", "one@x.bo", "h", user.RoleViewer, &a.ID)
	if _, err := s.Users().Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		u    user.User
		want error
	}{
		{"duplicate email", user.New("101", "Two", "one@x.bo", "h", user.RoleViewer, &a.ID), user.ErrEmailTaken},
		{"duplicate external id", user.New("100", "Two", "two@x.bo", "h", user.RoleViewer, &a.ID), user.ErrExternalIDTaken},
		{"unknown unit", user.New("102", "Two", "two@x.bo", "h", user.RoleViewer, &missing), user.ErrUnitNotFound},
		{"global with unit", user.New("103", "G", "g@x.bo", "h", user.RoleGlobalAdmin, &a.ID), user.ErrRoleUnitMismatch},
		{"viewer without unit", user.New("104", "V", "v@x.bo", "h", user.RoleViewer, nil), user.ErrRoleUnitMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Users().Create(ctx, tc.u); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	got, err := s.Users().GetByEmail(ctx, "one@x.bo")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.UnitName == nil || *got.UnitName != "A" {
		t.Fatalf("expected unit name A, got %v", got.UnitName)
	}

	taken, _ := s.Users().ExternalIDTaken(ctx, "100", first.ID)
	if taken {
		t.Fatal("external id must not collide with the excluded account")
	}
}

func TestEvents_ListUsesStoredExclusiveEnd(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := seedUnit(t, s, "A")

	multi := seedEvent(t, s, a.ID, "2025-03-10", "2025-03-12")
	seedEvent(t, s, a.ID, "2025-03-13", "2025-03-13")

	day, _ := daterange.ParseDate("2025-03-12")
	got, err := s.Events().List(ctx, event.ListFilter{Window: daterange.Window{From: day, To: day}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(got) != 1 || got[0].ID != multi.ID {
		t.Fatalf("expected only the 03-10..03-12 event, got %+v", got)
	}
	if got[0].Range.End.String() != "2025-03-13" {
		t.Fatalf("expected stored end 2025-03-13, got %s", got[0].Range.End)
	}
	if got[0].UnitName != "A" {
		t.Fatalf("expected unit name, got %q", got[0].UnitName)
	}
}
