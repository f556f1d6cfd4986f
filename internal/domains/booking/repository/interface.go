package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wavehouse-backend/internal/domains/booking/model"
	clientrepo "wavehouse-backend/internal/domains/client/repository"
)

// SnapshotReader reads the reserved intervals of one date.
type SnapshotReader interface {
	ListBookingsForDate(ctx context.Context, date time.Time) ([]model.Booking, error)
	ListBlockedSlotsForDate(ctx context.Context, date time.Time) ([]model.BlockedSlot, error)
}

// TxRepository is the write side available inside WithinDateLock.
// Reads through it see the transaction's own writes.
type TxRepository interface {
	SnapshotReader

	// CreateBooking inserts b. A duplicate reference is reported as a
	// conflict the caller may retry with a new reference.
	CreateBooking(ctx context.Context, b *model.Booking) error
	CreateBlockedSlot(ctx context.Context, s *model.BlockedSlot) error
}

// TxRepos are the repositories bound to one date-locked transaction.
type TxRepos struct {
	Clients  clientrepo.Repository
	Bookings TxRepository
}

// Store is the booking persistence boundary.
type Store interface {
	SnapshotReader

	// WithinDateLock runs fn in a single transaction that holds the write
	// lock of date. Writes of two calls for the same date never interleave;
	// calls for different dates run in parallel. fn's error rolls back.
	WithinDateLock(ctx context.Context, date time.Time, fn func(repos TxRepos) error) error

	// ReadDate loads bookings and blocked slots of date from one consistent
	// read, without taking the date lock.
	ReadDate(ctx context.Context, date time.Time) ([]model.Booking, []model.BlockedSlot, error)

	GetBookingByID(ctx context.Context, id uuid.UUID) (*model.BookingWithClient, error)

	// ListRecentBookings returns the newest bookings first.
	ListRecentBookings(ctx context.Context, limit int) ([]model.BookingWithClient, error)

	// ListBookingsBetween returns bookings dated within [from, to], by date then start.
	ListBookingsBetween(ctx context.Context, from, to time.Time) ([]model.BookingWithClient, error)

	GetStats(ctx context.Context) (*model.Stats, error)

	// UpdateStatus moves booking id from one status to another only if it
	// is still in from. Returns model.ErrNotFound when id is unknown and
	// false when the current status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error)

	// DeleteBlockedSlot returns the deleted slot, or model.ErrNotFound.
	DeleteBlockedSlot(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error)

	Ping(ctx context.Context) error
}
