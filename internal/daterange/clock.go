package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidClock = errors.New("time must use the HH:MM format")

// Clock is a time of day with minute precision.
type Clock struct {
	minutes int
}

func ClockOf(hour, minute int) Clock {
	return Clock{minutes: hour*60 + minute}
}

// ClockFromMinutes builds a Clock from minutes since midnight.
func ClockFromMinutes(m int) Clock {
	return Clock{minutes: m}
}

// ParseClock accepts "09:00" and the "09:00:00" form Postgres TIME renders.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}

	return ClockOf(h, m), nil
}

// Minutes since midnight.
func (c Clock) Minutes() int { return c.minutes }

func (c Clock) Hour() int { return c.minutes / 60 }

func (c Clock) Minute() int { return c.minutes % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}
