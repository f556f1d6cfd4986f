package service

import (
	"context"

	"github.com/google/uuid"

	"wavehouse-backend/internal/domains/booking/model"
)

// =====================================================
// BOOKING SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// PUBLIC OPERATIONS
	// ========================================

	// SubmitBooking validates, resolves the client, checks availability and
	// persists a pending booking as one unit, then requests a notification.
	SubmitBooking(ctx context.Context, req model.SubmitBookingRequest) (*model.SubmitBookingResponse, error)

	// GetAvailability lists the unavailable intervals of date (YYYY-MM-DD).
	GetAvailability(ctx context.Context, date string) (*model.AvailabilityResponse, error)

	// ========================================
	// ADMIN OPERATIONS
	// ========================================

	// BlockSlot reserves an interval for the studio itself.
	BlockSlot(ctx context.Context, req model.BlockSlotRequest) (*model.BlockedSlotResponse, error)

	// UnblockSlot deletes a blocked slot.
	UnblockSlot(ctx context.Context, id uuid.UUID) error

	// ChangeStatus applies an administrative status transition.
	ChangeStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.BookingResponse, error)

	// Drain waits for in-flight notifications, or until ctx is done.
	Drain(ctx context.Context) error
}
