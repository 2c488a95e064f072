// Package daterange owns the translation between the inclusive day range
// users pick ("from the 9th to the 10th") and the half-open range the store
// keeps ([9th, 11th)). No other package adds or subtracts the extra day.
package daterange

import "errors"

var (
	ErrEndBeforeStart       = errors.New("end date cannot be before start date")
	ErrEndTimeNotAfterStart = errors.New("end time must be after start time")
)

// Stored is the persisted half-open range [Start, End).
type Stored struct {
	Start Date
	End   Date
}

// Display is the user-facing inclusive range [Start, End].
type Display struct {
	Start Date
	End   Date
}

// Window is an inclusive query window. A zero bound leaves that side open.
type Window struct {
	From Date
	To   Date
}

func ToStorage(start, end Date) Stored {
	return Stored{Start: start, End: end.AddDays(1)}
}

func ToDisplay(s Stored) Display {
	return Display{Start: s.Start, End: s.End.AddDays(-1)}
}

// ValidateRange checks the user-facing dates. A single-day range is valid.
func ValidateRange(start, end Date) error {
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// Overlaps reports whether the stored range shares at least one day with w.
// The stored end is exclusive, so an event ending on w.From does not match.
func Overlaps(s Stored, w Window) bool {
	if !w.From.IsZero() && !s.End.After(w.From) {
		return false
	}
	if !w.To.IsZero() && s.Start.After(w.To) {
		return false
	}
	return true
}

// ValidateTimeOrdering applies to the user-facing dates: on a single-day
// event the end time must be strictly after the start time.
func ValidateTimeOrdering(startDate, endDate Date, startTime, endTime Clock) error {
	if startDate.Equal(endDate) && endTime.Minutes() <= startTime.Minutes() {
		return ErrEndTimeNotAfterStart
	}
	return nil
}

// Validate runs the window sanity check used by list queries.
func (w Window) Validate() error {
	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return ErrEndBeforeStart
	}
	return nil
}
