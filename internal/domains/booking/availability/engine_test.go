package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavehouse-backend/internal/domains/booking/model"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func booking(start, end string, status model.BookingStatus) model.Booking {
	return model.Booking{
		ID:        uuid.New(),
		Date:      testDate,
		StartTime: model.MustTimeOfDay(start),
		EndTime:   model.MustTimeOfDay(end),
		Status:    status,
	}
}

func blocked(start, end string) model.BlockedSlot {
	return model.BlockedSlot{
		ID:        uuid.New(),
		Date:      testDate,
		StartTime: model.MustTimeOfDay(start),
		EndTime:   model.MustTimeOfDay(end),
	}
}

func interval(start, end string) model.Interval {
	return model.Interval{Start: model.MustTimeOfDay(start), End: model.MustTimeOfDay(end)}
}

func TestComputeUnavailableIntervals_TagsAndSorts(t *testing.T) {
	b1 := booking("14:00", "15:00", model.StatusPending)
	b2 := booking("09:00", "10:00", model.StatusConfirmed)
	s1 := blocked("12:00", "13:00")
	s2 := blocked("14:00", "16:00")

	got := ComputeUnavailableIntervals(
		[]model.Booking{b1, b2},
		[]model.BlockedSlot{s1, s2},
	)

	require.Len(t, got, 4)
	assert.Equal(t, "09:00", got[0].Start.String())
	assert.Equal(t, model.UnavailableBooking, got[0].Type)
	assert.Equal(t, "12:00", got[1].Start.String())
	assert.Equal(t, model.UnavailableBlocked, got[1].Type)
	// equal start: "blocked" sorts before "booking"
	assert.Equal(t, s2.ID, got[2].ID)
	assert.Equal(t, b1.ID, got[3].ID)
}

func TestComputeUnavailableIntervals_SkipsCancelled(t *testing.T) {
	got := ComputeUnavailableIntervals(
		[]model.Booking{booking("10:00", "11:00", model.StatusCancelled)},
		nil,
	)
	assert.Empty(t, got)
}

func TestComputeUnavailableIntervals_DoesNotMerge(t *testing.T) {
	got := ComputeUnavailableIntervals(
		[]model.Booking{
			booking("10:00", "11:00", model.StatusPending),
			booking("11:00", "12:00", model.StatusPending),
		},
		nil,
	)
	require.Len(t, got, 2)
	assert.Equal(t, "11:00", got[0].End.String())
	assert.Equal(t, "11:00", got[1].Start.String())
}

func TestComputeUnavailableIntervals_Deterministic(t *testing.T) {
	bookings := []model.Booking{
		booking("10:00", "11:00", model.StatusPending),
		booking("10:00", "10:30", model.StatusPending),
		booking("08:00", "09:00", model.StatusConfirmed),
	}
	slots := []model.BlockedSlot{blocked("10:00", "12:00")}

	first := ComputeUnavailableIntervals(bookings, slots)
	reversed := []model.Booking{bookings[2], bookings[1], bookings[0]}
	second := ComputeUnavailableIntervals(reversed, slots)

	assert.Equal(t, first, second)
}

func TestValidateNewBooking(t *testing.T) {
	existing := []model.Booking{booking("14:00", "15:00", model.StatusPending)}
	slots := []model.BlockedSlot{blocked("09:00", "10:00")}

	tests := []struct {
		name      string
		candidate model.Interval
		wantErr   error
		wantType  model.UnavailableType
	}{
		{name: "free", candidate: interval("11:00", "12:00")},
		{name: "touching end of booking", candidate: interval("15:00", "16:00")},
		{name: "touching start of booking", candidate: interval("13:00", "14:00")},
		{name: "touching blocked", candidate: interval("10:00", "11:00")},
		{name: "overlaps booking", candidate: interval("14:30", "15:30"), wantErr: model.ErrConflict, wantType: model.UnavailableBooking},
		{name: "contains booking", candidate: interval("13:00", "16:00"), wantErr: model.ErrConflict, wantType: model.UnavailableBooking},
		{name: "inside blocked", candidate: interval("09:15", "09:45"), wantErr: model.ErrConflict, wantType: model.UnavailableBlocked},
		{name: "zero length", candidate: interval("12:00", "12:00"), wantErr: model.ErrValidation},
		{name: "inverted", candidate: interval("12:00", "11:00"), wantErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNewBooking(tt.candidate, testDate, existing, slots)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			if tt.wantType != "" {
				var be *model.BookingError
				require.True(t, errors.As(err, &be))
				require.NotNil(t, be.Conflict)
				assert.Equal(t, tt.wantType, be.Conflict.Type)
			}
		})
	}
}

func TestValidateNewBooking_CancelledDoesNotReserve(t *testing.T) {
	existing := []model.Booking{booking("14:00", "15:00", model.StatusCancelled)}
	err := ValidateNewBooking(interval("14:00", "15:00"), testDate, existing, nil)
	assert.NoError(t, err)
}

func TestValidateNewBooking_IgnoresOtherDates(t *testing.T) {
	other := booking("14:00", "15:00", model.StatusConfirmed)
	other.Date = testDate.AddDate(0, 0, 1)

	err := ValidateNewBooking(interval("14:00", "15:00"), testDate, []model.Booking{other}, nil)
	assert.NoError(t, err)
}

func TestSnapshot(t *testing.T) {
	s := Snapshot{
		Date:     testDate,
		Bookings: []model.Booking{booking("14:00", "15:00", model.StatusPending)},
	}
	assert.Len(t, s.Unavailable(), 1)
	assert.ErrorIs(t, s.Validate(interval("14:00", "15:00")), model.ErrConflict)
	assert.NoError(t, s.Validate(interval("15:00", "16:00")))
}
