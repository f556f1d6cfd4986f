package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"wavehouse-backend/internal/domains/admin/model"
	bookingmodel "wavehouse-backend/internal/domains/booking/model"
	bookingrepo "wavehouse-backend/internal/domains/booking/repository"
	clientmodel "wavehouse-backend/internal/domains/client/model"
	infraCache "wavehouse-backend/internal/infrastructure/cache"
	"wavehouse-backend/pkg/jwt"
)

const testPassword = "studio-secret"

type fixture struct {
	svc   *adminService
	store *bookingrepo.MemoryStore
	cache *infraCache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := bookingrepo.NewMemoryStore()
	c := infraCache.NewMemoryCache()
	svc := NewAdminService(store, c, jwt.NewManager("test-secret"), Config{
		PasswordHash: hash,
		SessionTTL:   time.Hour,
	}).(*adminService)

	return &fixture{svc: svc, store: store, cache: c}
}

func (f *fixture) seed(t *testing.T, date, start, end, ref string, status bookingmodel.BookingStatus) {
	t.Helper()
	d, err := bookingmodel.ParseDate(date)
	require.NoError(t, err)

	err = f.store.WithinDateLock(context.Background(), d, func(repos bookingrepo.TxRepos) error {
		c, err := clientmodel.NewClient("Ada", "ada@example.com", "555-0100")
		if err != nil {
			return err
		}
		client, _, err := repos.Clients.FindOrCreate(context.Background(), c)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return repos.Bookings.CreateBooking(context.Background(), &bookingmodel.Booking{
			ID:             uuid.New(),
			Reference:      ref,
			ClientID:       client.ID,
			ServiceType:    bookingmodel.ServiceStudioAccess,
			Date:           d,
			StartTime:      bookingmodel.MustTimeOfDay(start),
			EndTime:        bookingmodel.MustTimeOfDay(end),
			Status:         status,
			EstimatedPrice: decimal.NewFromInt(75),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	require.NoError(t, err)
}

func TestLogin_IssuesSessionThatValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	claims, err := f.svc.ValidateSession(ctx, resp.Token)
	require.NoError(t, err)

	var session model.Session
	found, err := f.cache.Get(ctx, sessionKeyPrefix+claims.SessionID(), &session)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10.0.0.1", session.IP)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), model.LoginRequest{Password: "nope"}, "10.0.0.1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLogin_EmptyPasswordIsInvalidRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), model.LoginRequest{}, "10.0.0.1")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestLogin_ThrottlesPerIP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, model.LoginRequest{Password: "nope"}, "10.0.0.1")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	}

	// even the right password is refused while throttled
	_, err := f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.1")
	assert.ErrorIs(t, err, model.ErrTooManyAttempts)

	ttl, err := f.cache.TTL(ctx, failedLoginKeyPrefix+"10.0.0.1")
	require.NoError(t, err)
	assert.Greater(t, ttl, 14*time.Minute)

	// other addresses are unaffected
	_, err = f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.2")
	assert.NoError(t, err)
}

func TestLogin_ParallelGuessesStayWithinLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		rejected  int
		throttled int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Login(ctx, model.LoginRequest{Password: "nope"}, "10.0.0.1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, model.ErrInvalidCredentials):
				rejected++
			case errors.Is(err, model.ErrTooManyAttempts):
				throttled++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, rejected)
	assert.Equal(t, 15, throttled)
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, model.LoginRequest{Password: "nope"}, "10.0.0.1")
	require.Error(t, err)
	_, err = f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)

	exists, err := f.cache.Exists(ctx, failedLoginKeyPrefix+"10.0.0.1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)
	claims, err := f.svc.ValidateSession(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims.SessionID()))

	_, err = f.svc.ValidateSession(ctx, resp.Token)
	assert.ErrorIs(t, err, model.ErrSessionInvalid)
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.1")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, model.LoginRequest{Password: testPassword}, "10.0.0.2")
	require.NoError(t, err)

	require.NoError(t, f.svc.LogoutAll(ctx))

	for _, token := range []string{first.Token, second.Token} {
		_, err = f.svc.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, model.ErrSessionInvalid)
	}
}

func TestValidateSession_RejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ValidateSession(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, model.ErrSessionInvalid)
}

func TestValidateSession_RejectsTokenFromOtherSecret(t *testing.T) {
	f := newFixture(t)
	token, _, err := jwt.NewManager("other").GenerateAdminSessionToken(time.Hour)
	require.NoError(t, err)

	_, err = f.svc.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, model.ErrSessionInvalid)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "2025-06-01", "10:00", "11:00", "WH-00000001", bookingmodel.StatusPending)
	f.seed(t, "2025-06-02", "10:00", "11:00", "WH-00000002", bookingmodel.StatusConfirmed)
	f.seed(t, "2025-06-03", "10:00", "11:00", "WH-00000003", bookingmodel.StatusCancelled)

	d, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.Total)
	assert.Equal(t, 1, d.Stats.Pending)
	assert.Equal(t, 1, d.Stats.Confirmed)
	assert.Equal(t, 1, d.Stats.Cancelled)
	assert.Len(t, d.Recent, 3)
	assert.False(t, d.GeneratedAt.IsZero())
}

func TestListRecent_ClampsLimit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.seed(t, "2025-06-01", bookingmodel.TimeOfDay(i*60).String(), bookingmodel.TimeOfDay(i*60+30).String(),
			"WH-0000000"+string(rune('A'+i)), bookingmodel.StatusPending)
	}

	got, err := f.svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, model.DefaultRecentLimit)

	got, err = f.svc.ListRecent(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestExportBookings_WritesWorkbook(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "2025-06-01", "10:00", "11:00", "WH-00000001", bookingmodel.StatusPending)
	f.seed(t, "2025-06-05", "12:00", "14:00", "WH-00000002", bookingmodel.StatusConfirmed)
	f.seed(t, "2025-07-01", "10:00", "11:00", "WH-00000003", bookingmodel.StatusPending)

	file, err := f.svc.ExportBookings(context.Background(), model.ExportRequest{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "bookings_2025-06-01_2025-06-30.xlsx", file.Filename)
	assert.Equal(t, 2, file.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, "WH-00000001", rows[1][0])
	assert.Equal(t, "2025-06-05", rows[2][1])
	assert.Equal(t, "12:00", rows[2][2])
	assert.Equal(t, "ada@example.com", rows[2][7])
}

func TestExportBookings_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ExportBookings(context.Background(), model.ExportRequest{From: "2025-06-30", To: "2025-06-01"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = f.svc.ExportBookings(context.Background(), model.ExportRequest{From: "junk", To: "2025-06-01"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}
