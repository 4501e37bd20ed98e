package valueobject

import (
	"fmt"
	"time"
)

// DateRange is a value object for an inclusive calendar-day range.
// Both bounds are normalized to midnight UTC so containment checks
// compare dates, not instants.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a DateRange from start to end, inclusive.
// Returns error if start is after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	s := truncateToDay(start)
	e := truncateToDay(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("invalid date range: start %s is after end %s", s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return DateRange{start: s, end: e}, nil
}

// SingleDay returns a DateRange covering exactly one calendar day.
func SingleDay(day time.Time) DateRange {
	d := truncateToDay(day)
	return DateRange{start: d, end: d}
}

// Start returns the first day of the range
func (r DateRange) Start() time.Time {
	return r.start
}

// End returns the last day of the range
func (r DateRange) End() time.Time {
	return r.end
}

// Contains reports whether t falls on a day inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateToDay(t)
	return !d.Before(r.start) && !d.After(r.end)
}

// Days returns the number of calendar days covered, at least 1.
func (r DateRange) Days() int {
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

// String returns "YYYY-MM-DD..YYYY-MM-DD"
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.start.Format(time.DateOnly), r.end.Format(time.DateOnly))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
