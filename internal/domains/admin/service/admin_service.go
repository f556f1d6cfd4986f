package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wavehouse-backend/internal/domains/admin/model"
	bookingmodel "wavehouse-backend/internal/domains/booking/model"
	bookingrepo "wavehouse-backend/internal/domains/booking/repository"
	"wavehouse-backend/pkg/cache"
	"wavehouse-backend/pkg/jwt"
	"wavehouse-backend/pkg/logger"
)

const (
	sessionKeyPrefix     = "admin:session:"
	failedLoginKeyPrefix = "admin:login_failed:"
)

// Config tunes sessions and login throttling.
type Config struct {
	PasswordHash     []byte
	SessionTTL       time.Duration
	MaxLoginAttempts int
	LoginWindow      time.Duration
	StoreTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 8 * time.Hour
	}
	if c.MaxLoginAttempts <= 0 {
		c.MaxLoginAttempts = 5
	}
	if c.LoginWindow <= 0 {
		c.LoginWindow = 15 * time.Minute
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	return c
}

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type adminService struct {
	store  bookingrepo.Store
	cache  cache.Cache
	tokens *jwt.Manager
	cfg    Config
	now    func() time.Time
}

func NewAdminService(
	store bookingrepo.Store,
	c cache.Cache,
	tokens *jwt.Manager,
	cfg Config,
) ServiceInterface {
	return &adminService{
		store:  store,
		cache:  c,
		tokens: tokens,
		cfg:    cfg.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// =====================================================
// SESSIONS
// =====================================================

func (s *adminService) Login(ctx context.Context, req model.LoginRequest, ip string) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Claim an attempt for this IP before checking anything
	failedKey := failedLoginKeyPrefix + ip
	attempt, err := s.claimLoginAttempt(ctx, failedKey)
	if err != nil {
		return nil, err
	}
	if attempt > int64(s.cfg.MaxLoginAttempts) {
		return nil, model.NewTooManyAttemptsError(s.retryAfterMinutes(ctx, failedKey))
	}

	// Step 2: Check password
	if err := bcrypt.CompareHashAndPassword(s.cfg.PasswordHash, []byte(req.Password)); err != nil {
		logger.Warn("Admin login failed", map[string]interface{}{
			"ip":       ip,
			"attempts": attempt,
		})
		return nil, model.NewInvalidCredentialsError()
	}
	if err := s.cache.Delete(ctx, failedKey); err != nil {
		logger.Error("Failed to reset login counter", err)
	}

	// Step 3: Issue token + session record
	token, claims, err := s.tokens.GenerateAdminSessionToken(s.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	session := model.Session{
		ID:        claims.SessionID(),
		IP:        ip,
		CreatedAt: claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+session.ID, session, s.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("store admin session: %w", err)
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"session_id": session.ID,
		"ip":         ip,
	})

	return &model.LoginResponse{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// claimLoginAttempt counts the attempt and returns its number within the
// window. A successful login clears the counter.
func (s *adminService) claimLoginAttempt(ctx context.Context, key string) (int64, error) {
	n, err := s.cache.Increment(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("count login attempt: %w", err)
	}
	if n == 1 {
		if err := s.cache.Expire(ctx, key, s.cfg.LoginWindow); err != nil {
			logger.Error("Failed to set login counter window", err)
		}
	}
	return n, nil
}

func (s *adminService) retryAfterMinutes(ctx context.Context, key string) int {
	ttl, err := s.cache.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		return int(s.cfg.LoginWindow / time.Minute)
	}
	return int((ttl + time.Minute - 1) / time.Minute)
}

func (s *adminService) Logout(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	logger.Info("Admin logged out", map[string]interface{}{"session_id": sessionID})
	return nil
}

func (s *adminService) LogoutAll(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, sessionKeyPrefix+"*"); err != nil {
		return fmt.Errorf("delete admin sessions: %w", err)
	}
	logger.Info("All admin sessions revoked", nil)
	return nil
}

func (s *adminService) ValidateSession(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateAdminSessionToken(token)
	if err != nil {
		return nil, model.NewSessionInvalidError()
	}

	exists, err := s.cache.Exists(ctx, sessionKeyPrefix+claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("check admin session: %w", err)
	}
	if !exists {
		return nil, model.NewSessionInvalidError()
	}
	return claims, nil
}

// =====================================================
// READ PROJECTIONS
// =====================================================

func (s *adminService) GetStats(ctx context.Context) (*bookingmodel.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, bookingmodel.AsPersistence("get stats", err)
	}
	return stats, nil
}

func (s *adminService) ListRecent(ctx context.Context, limit int) ([]bookingmodel.BookingResponse, error) {
	switch {
	case limit <= 0:
		limit = model.DefaultRecentLimit
	case limit > model.MaxRecentLimit:
		limit = model.MaxRecentLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	bookings, err := s.store.ListRecentBookings(ctx, limit)
	if err != nil {
		return nil, bookingmodel.AsPersistence("list recent bookings", err)
	}

	out := make([]bookingmodel.BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = bookingmodel.NewBookingResponse(&bookings[i])
	}
	return out, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	stats, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.ListRecent(ctx, model.DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	return &model.Dashboard{
		Stats:       *stats,
		Recent:      recent,
		GeneratedAt: s.now(),
	}, nil
}

func (s *adminService) ExportBookings(ctx context.Context, req model.ExportRequest) (*model.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, _ := bookingmodel.ParseDate(req.From)
	to, _ := bookingmodel.ParseDate(req.To)
	if to.Before(from) {
		return nil, model.NewInvalidRequestError("to must not be before from")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	bookings, err := s.store.ListBookingsBetween(storeCtx, from, to)
	if err != nil {
		return nil, bookingmodel.AsPersistence("list bookings", err)
	}

	content, err := buildBookingsWorkbook(bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}

	logger.Info("Bookings exported", map[string]interface{}{
		"from": req.From,
		"to":   req.To,
		"rows": len(bookings),
	})

	return &model.ExportFile{
		Filename: fmt.Sprintf("bookings_%s_%s.xlsx", req.From, req.To),
		Content:  content,
		Rows:     len(bookings),
	}, nil
}

// IsAdminError reports whether err came from this domain.
func IsAdminError(err error) bool {
	var ae *model.AdminError
	return errors.As(err, &ae)
}
