// Package availability computes reserved intervals of a studio date and
// checks candidate bookings against them. Everything here is a pure function
// of the snapshot passed in; loading the snapshot is the caller's job.
package availability

import (
	"bytes"
	"sort"
	"time"

	"wavehouse-backend/internal/domains/booking/model"
)

// Snapshot is the bookings and blocked slots of one date, read together.
type Snapshot struct {
	Date         time.Time
	Bookings     []model.Booking
	BlockedSlots []model.BlockedSlot
}

// ComputeUnavailableIntervals tags every reserving booking as "booking" and
// every blocked slot as "blocked". Intervals are not merged. Output is sorted
// by start, then type, then id, so equal inputs give equal outputs.
// Cancelled bookings are skipped.
func ComputeUnavailableIntervals(bookings []model.Booking, blocked []model.BlockedSlot) []model.UnavailableInterval {
	out := make([]model.UnavailableInterval, 0, len(bookings)+len(blocked))

	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Reserves() {
			continue
		}
		out = append(out, model.UnavailableInterval{
			Start: b.StartTime,
			End:   b.EndTime,
			Type:  model.UnavailableBooking,
			ID:    b.ID,
		})
	}
	for i := range blocked {
		s := &blocked[i]
		out = append(out, model.UnavailableInterval{
			Start: s.StartTime,
			End:   s.EndTime,
			Type:  model.UnavailableBlocked,
			ID:    s.ID,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})

	return out
}

// ValidateNewBooking fails with a validation error for an empty or inverted
// candidate, and with a conflict error naming the first (in sorted order)
// reserved interval that overlaps it. Records dated other than date are
// ignored. Only pending and confirmed bookings reserve; a cancelled booking
// frees its interval.
func ValidateNewBooking(candidate model.Interval, date time.Time, bookings []model.Booking, blocked []model.BlockedSlot) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	day := model.NormalizeDate(date)
	sameDay := func(t time.Time) bool { return model.NormalizeDate(t).Equal(day) }

	onDate := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if sameDay(b.Date) {
			onDate = append(onDate, b)
		}
	}
	blockedOnDate := make([]model.BlockedSlot, 0, len(blocked))
	for _, s := range blocked {
		if sameDay(s.Date) {
			blockedOnDate = append(blockedOnDate, s)
		}
	}

	for _, u := range ComputeUnavailableIntervals(onDate, blockedOnDate) {
		if candidate.Overlaps(model.Interval{Start: u.Start, End: u.End}) {
			return model.NewConflictError(u)
		}
	}
	return nil
}

// Validate is ValidateNewBooking over a Snapshot.
func (s Snapshot) Validate(candidate model.Interval) error {
	return ValidateNewBooking(candidate, s.Date, s.Bookings, s.BlockedSlots)
}

// Unavailable is ComputeUnavailableIntervals over a Snapshot.
func (s Snapshot) Unavailable() []model.UnavailableInterval {
	return ComputeUnavailableIntervals(s.Bookings, s.BlockedSlots)
}
