package service

import (
	"context"

	"wavehouse-backend/internal/domains/admin/model"
	bookingmodel "wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/pkg/jwt"
)

// =====================================================
// ADMIN SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// SESSIONS
	// ========================================

	// Login checks the admin password and opens a session for ip.
	Login(ctx context.Context, req model.LoginRequest, ip string) (*model.LoginResponse, error)

	// Logout ends the session; unknown sessions are not an error.
	Logout(ctx context.Context, sessionID string) error

	// LogoutAll revokes every admin session.
	LogoutAll(ctx context.Context) error

	// ValidateSession accepts a token only while its session record lives.
	ValidateSession(ctx context.Context, token string) (*jwt.Claims, error)

	// ========================================
	// READ PROJECTIONS
	// ========================================

	GetStats(ctx context.Context) (*bookingmodel.Stats, error)

	// ListRecent returns the newest bookings, limit clamped to [1, 100].
	ListRecent(ctx context.Context, limit int) ([]bookingmodel.BookingResponse, error)

	Dashboard(ctx context.Context) (*model.Dashboard, error)

	// ExportBookings renders bookings dated within the range as XLSX.
	ExportBookings(ctx context.Context, req model.ExportRequest) (*model.ExportFile, error)
}
