package model

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	minutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock time in the studio timezone, stored as minutes
// since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay is ParseTimeOfDay for literals.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// Duration returns the offset from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

// TimeOfDayFromDuration converts an offset from midnight (as stored in a
// Postgres TIME column) back to minutes, dropping seconds.
func TimeOfDayFromDuration(d time.Duration) TimeOfDay {
	return TimeOfDay(d / time.Minute)
}

// Interval is the half-open range [Start, End) within a single date.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewInterval(start, end string) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// Validate enforces Start < End.
func (i Interval) Validate() error {
	if !i.Start.Valid() || !i.End.Valid() {
		return NewValidationError("time is outside of the day", nil)
	}
	if i.Start == i.End {
		return NewValidationError("start time and end time must differ", nil)
	}
	if i.End < i.Start {
		return NewValidationError("end time must be after start time", nil)
	}
	return nil
}

// Overlaps applies half-open semantics: touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return max(i.Start, other.Start) < min(i.End, other.End)
}

func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// ParseDate parses "YYYY-MM-DD" into a zone-less calendar date (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// NormalizeDate drops the clock part and zone of t.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
