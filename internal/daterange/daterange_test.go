package daterange

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestToStorageAddsOneCalendarDay(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
	}{
		{name: "single_day", start: "2025-03-10", end: "2025-03-10", wantStart: "2025-03-10", wantEnd: "2025-03-11"},
		{name: "multi_day", start: "2025-03-10", end: "2025-03-12", wantStart: "2025-03-10", wantEnd: "2025-03-13"},
		{name: "month_boundary", start: "2025-01-30", end: "2025-01-31", wantStart: "2025-01-30", wantEnd: "2025-02-01"},
		{name: "year_boundary", start: "2024-12-30", end: "2024-12-31", wantStart: "2024-12-30", wantEnd: "2025-01-01"},
		{name: "leap_day", start: "2024-02-28", end: "2024-02-29", wantStart: "2024-02-28", wantEnd: "2024-03-01"},
		{name: "non_leap_february", start: "2025-02-28", end: "2025-02-28", wantStart: "2025-02-28", wantEnd: "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToStorage(mustDate(t, tt.start), mustDate(t, tt.end))

			if got.Start.String() != tt.wantStart || got.End.String() != tt.wantEnd {
				t.Fatalf("ToStorage() = [%s, %s), want [%s, %s)", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	start := NewDate(2023, time.November, 25)

	// walk across month and year boundaries for every span up to ten days
	for offset := 0; offset < 60; offset++ {
		for span := 0; span <= 10; span++ {
			s := start.AddDays(offset)
			e := s.AddDays(span)

			got := ToDisplay(ToStorage(s, e))
			if !got.Start.Equal(s) || !got.End.Equal(e) {
				t.Fatalf("round trip of [%s, %s] gave [%s, %s]", s, e, got.Start, got.End)
			}
		}
	}
}

func TestOverlaps(t *testing.T) {
	singleDay := ToStorage(mustDate(t, "2025-01-31"), mustDate(t, "2025-01-31"))
	threeDays := ToStorage(mustDate(t, "2025-03-10"), mustDate(t, "2025-03-12"))

	tests := []struct {
		name   string
		stored Stored
		window Window
		want   bool
	}{
		{name: "single_day_same_window", stored: singleDay, window: Window{From: mustDate(t, "2025-01-31"), To: mustDate(t, "2025-01-31")}, want: true},
		{name: "single_day_next_day_window", stored: singleDay, window: Window{From: mustDate(t, "2025-02-01"), To: mustDate(t, "2025-02-01")}, want: false},
		{name: "single_day_previous_day_window", stored: singleDay, window: Window{From: mustDate(t, "2025-01-30"), To: mustDate(t, "2025-01-30")}, want: false},
		{name: "last_included_day", stored: threeDays, window: Window{From: mustDate(t, "2025-03-12"), To: mustDate(t, "2025-03-12")}, want: true},
		{name: "exclusive_end_day", stored: threeDays, window: Window{From: mustDate(t, "2025-03-13"), To: mustDate(t, "2025-03-20")}, want: false},
		{name: "window_inside_event", stored: threeDays, window: Window{From: mustDate(t, "2025-03-11"), To: mustDate(t, "2025-03-11")}, want: true},
		{name: "event_inside_window", stored: threeDays, window: Window{From: mustDate(t, "2025-03-01"), To: mustDate(t, "2025-03-31")}, want: true},
		{name: "open_from", stored: threeDays, window: Window{To: mustDate(t, "2025-03-10")}, want: true},
		{name: "open_to", stored: threeDays, window: Window{From: mustDate(t, "2025-03-12")}, want: true},
		{name: "unbounded", stored: threeDays, window: Window{}, want: true},
		{name: "window_before_event", stored: threeDays, window: Window{To: mustDate(t, "2025-03-09")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.stored, tt.window); got != tt.want {
				t.Fatalf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTimeOrdering(t *testing.T) {
	day := mustDate(t, "2025-03-10")
	nextDay := day.AddDays(1)

	tests := []struct {
		name    string
		end     Date
		start   Clock
		stop    Clock
		wantErr bool
	}{
		{name: "same_day_end_before_start", end: day, start: ClockOf(9, 0), stop: ClockOf(8, 0), wantErr: true},
		{name: "same_day_equal_times", end: day, start: ClockOf(9, 0), stop: ClockOf(9, 0), wantErr: true},
		{name: "same_day_end_after_start", end: day, start: ClockOf(9, 0), stop: ClockOf(9, 1), wantErr: false},
		{name: "multi_day_any_times", end: nextDay, start: ClockOf(18, 0), stop: ClockOf(8, 0), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeOrdering(day, tt.end, tt.start, tt.stop)
			if tt.wantErr && !errors.Is(err, ErrEndTimeNotAfterStart) {
				t.Fatalf("expected ErrEndTimeNotAfterStart, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(mustDate(t, "2025-03-10"), mustDate(t, "2025-03-10")); err != nil {
		t.Fatalf("single-day range rejected: %v", err)
	}
	if err := ValidateRange(mustDate(t, "2025-03-10"), mustDate(t, "2025-03-09")); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-11T00:00:00.000Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-10-11" {
		t.Fatalf("got %s", d)
	}

	for _, bad := range []string{"", "2025-13-01", "10/11/2025", "2025-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateOfIgnoresZoneOffset(t *testing.T) {
	laPaz := time.FixedZone("BOT", -4*60*60)
	late := time.Date(2025, time.January, 31, 22, 30, 0, 0, laPaz) // already Feb 1st in UTC

	if got := DateOf(late).String(); got != "2025-01-31" {
		t.Fatalf("DateOf() = %s, want 2025-01-31", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "23:59", want: 1439},
		{in: "08:30:00", want: 510},
		{in: "24:00", wantErr: true},
		{in: "9", wantErr: true},
		{in: "09:5", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidClock) {
					t.Fatalf("expected ErrInvalidClock, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Minutes() != tt.want {
				t.Fatalf("Minutes() = %d, want %d", c.Minutes(), tt.want)
			}
		})
	}
}

func TestJSONEncoding(t *testing.T) {
	payload := struct {
		Day  Date  `json:"day"`
		From Clock `json:"from"`
	}{Day: NewDate(2025, time.March, 13), From: ClockOf(8, 5)}

	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if string(b) != `{"day":"2025-03-13","from":"08:05"}` {
		t.Fatalf("unexpected json %s", b)
	}
}
