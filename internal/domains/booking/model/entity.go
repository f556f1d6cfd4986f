package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Reserves reports whether a booking in this status holds its interval.
func (s BookingStatus) Reserves() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo allows pending->confirmed, pending->cancelled and
// confirmed->cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Booking is a client's reservation of a studio interval on one date.
type Booking struct {
	ID             uuid.UUID       `db:"id"`
	Reference      string          `db:"reference"`
	ClientID       uuid.UUID       `db:"client_id"`
	ServiceType    ServiceType     `db:"service_type"`
	Date           time.Time       `db:"date"`
	StartTime      TimeOfDay       `db:"start_time"`
	EndTime        TimeOfDay       `db:"end_time"`
	Status         BookingStatus   `db:"status"`
	Notes          string          `db:"notes"`
	EstimatedPrice decimal.Decimal `db:"estimated_price"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// BookingWithClient is a booking joined with its owner, for admin views.
type BookingWithClient struct {
	Booking
	ClientName  string `db:"client_name"`
	ClientEmail string `db:"client_email"`
	ClientPhone string `db:"client_phone"`
}

// BlockedSlot is studio-initiated unavailability (maintenance, holidays).
type BlockedSlot struct {
	ID        uuid.UUID `db:"id"`
	Date      time.Time `db:"date"`
	StartTime TimeOfDay `db:"start_time"`
	EndTime   TimeOfDay `db:"end_time"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *BlockedSlot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

type UnavailableType string

const (
	UnavailableBlocked UnavailableType = "blocked"
	UnavailableBooking UnavailableType = "booking"
)

// UnavailableInterval is one reserved range of a date, tagged by source.
type UnavailableInterval struct {
	Start TimeOfDay
	End   TimeOfDay
	Type  UnavailableType
	ID    uuid.UUID
}

// Stats is the admin dashboard projection.
type Stats struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	Confirmed        int `json:"confirmed"`
	Cancelled        int `json:"cancelled"`
	BlockedSlotCount int `json:"blockedSlotCount"`
}
