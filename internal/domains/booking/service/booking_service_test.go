package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/domains/booking/repository"
	clientmodel "wavehouse-backend/internal/domains/client/model"
	infraCache "wavehouse-backend/internal/infrastructure/cache"
)

// =====================================================
// FAKES
// =====================================================

type recordingNotifier struct {
	mu    sync.Mutex
	calls []*model.Booking
	err   error
}

func (n *recordingNotifier) NotifyBookingCreated(_ context.Context, b *model.Booking, _ *clientmodel.Client) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, b)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// slowStore blocks every date-locked write until ctx expires.
type slowStore struct {
	repository.Store
}

func (s slowStore) WithinDateLock(ctx context.Context, _ time.Time, _ func(repository.TxRepos) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// failingStore fails every date-locked write with a storage error.
type failingStore struct {
	repository.Store
}

func (failingStore) WithinDateLock(context.Context, time.Time, func(repository.TxRepos) error) error {
	return errors.New("connection refused")
}

// gatedStore holds the first ReadDate after its snapshot is taken until
// release is closed.
type gatedStore struct {
	repository.Store
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(inner repository.Store) *gatedStore {
	return &gatedStore{Store: inner, read: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedStore) ReadDate(ctx context.Context, date time.Time) ([]model.Booking, []model.BlockedSlot, error) {
	bookings, blocked, err := s.Store.ReadDate(ctx, date)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return bookings, blocked, err
}

type fixture struct {
	svc      *bookingService
	store    *repository.MemoryStore
	notifier *recordingNotifier
	cache    *infraCache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	n := &recordingNotifier{}
	c := infraCache.NewMemoryCache()
	svc := NewBookingService(store, n, c, Config{StoreTimeout: time.Second}).(*bookingService)
	return &fixture{svc: svc, store: store, notifier: n, cache: c}
}

func request(email, start, end string) model.SubmitBookingRequest {
	return model.SubmitBookingRequest{
		Name:        "Test Client",
		Email:       email,
		Phone:       "555-0100",
		ServiceType: string(model.ServiceStudioAccess),
		Date:        "2025-05-20",
		StartTime:   start,
		EndTime:     end,
	}
}

func drain(t *testing.T, svc ServiceInterface) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Drain(ctx))
}

// =====================================================
// SUBMIT BOOKING
// =====================================================

func TestSubmitBooking_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.SubmitBooking(context.Background(), request("Ada@Example.com ", "10:00", "12:00"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEqual(t, uuid.Nil, resp.BookingID)
	assert.Regexp(t, `^WH-[0-9A-Z]{8}$`, resp.Reference)
	assert.Equal(t, model.StatusPending, resp.Status)
	assert.Equal(t, "300", resp.EstimatedPrice.String())

	stored, err := f.store.GetBookingByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.ClientEmail)

	drain(t, f.svc)
	assert.Equal(t, 1, f.notifier.count())
}

func TestSubmitBooking_TouchingIntervalsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitBooking(ctx, request("a@example.com", "10:00", "11:00"))
	require.NoError(t, err)
	_, err = f.svc.SubmitBooking(ctx, request("b@example.com", "11:00", "12:00"))
	require.NoError(t, err)

	_, err = f.svc.SubmitBooking(ctx, request("c@example.com", "10:30", "11:30"))
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestSubmitBooking_BlockedSlotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BlockSlot(ctx, model.BlockSlotRequest{
		Date: "2025-05-20", StartTime: "09:00", EndTime: "13:00", Reason: "maintenance",
	})
	require.NoError(t, err)

	_, err = f.svc.SubmitBooking(ctx, request("a@example.com", "10:00", "11:00"))
	require.ErrorIs(t, err, model.ErrConflict)

	var be *model.BookingError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, model.UnavailableBlocked, be.Conflict.Type)

	stats, err := f.store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestSubmitBooking_ConcurrentOverlapOnlyOneWins(t *testing.T) {
	f := newFixture(t)

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := uuid.NewString() + "@example.com"
			_, err := f.svc.SubmitBooking(context.Background(), request(email, "14:00", "15:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	drain(t, f.svc)
	assert.Equal(t, 1, f.notifier.count())
}

func TestSubmitBooking_ConcurrentSameNewEmailCreatesOneClient(t *testing.T) {
	f := newFixture(t)

	slots := [][2]string{{"08:00", "09:00"}, {"09:00", "10:00"}, {"10:00", "11:00"}, {"11:00", "12:00"}}
	ids := make(chan uuid.UUID, len(slots))

	var wg sync.WaitGroup
	for _, s := range slots {
		wg.Add(1)
		go func(start, end string) {
			defer wg.Done()
			resp, err := f.svc.SubmitBooking(context.Background(), request("same@example.com", start, end))
			if assert.NoError(t, err) {
				ids <- resp.BookingID
			}
		}(s[0], s[1])
	}
	wg.Wait()
	close(ids)

	clientIDs := make(map[uuid.UUID]struct{})
	for id := range ids {
		b, err := f.store.GetBookingByID(context.Background(), id)
		require.NoError(t, err)
		clientIDs[b.ClientID] = struct{}{}
	}
	assert.Len(t, clientIDs, 1)
}

func TestSubmitBooking_ReusesClientAcrossBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.SubmitBooking(ctx, request("repeat@example.com", "10:00", "11:00"))
	require.NoError(t, err)

	second := request("REPEAT@example.com", "12:00", "13:00")
	second.Date = "2025-05-21"
	resp, err := f.svc.SubmitBooking(ctx, second)
	require.NoError(t, err)

	a, err := f.store.GetBookingByID(ctx, first.BookingID)
	require.NoError(t, err)
	b, err := f.store.GetBookingByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, a.ClientID, b.ClientID)
}

func TestSubmitBooking_ValidationBeforeStoreAccess(t *testing.T) {
	store := failingStore{Store: repository.NewMemoryStore()}
	svc := NewBookingService(store, &recordingNotifier{}, nil, Config{})

	tests := []struct {
		name string
		req  model.SubmitBookingRequest
	}{
		{name: "end before start", req: request("a@example.com", "12:00", "11:00")},
		{name: "zero length", req: request("a@example.com", "12:00", "12:00")},
		{name: "missing email", req: request("", "10:00", "11:00")},
		{name: "bad email", req: request("not-an-email", "10:00", "11:00")},
		{name: "bad date", req: func() model.SubmitBookingRequest {
			r := request("a@example.com", "10:00", "11:00")
			r.Date = "20/05/2025"
			return r
		}()},
		{name: "unknown service", req: func() model.SubmitBookingRequest {
			r := request("a@example.com", "10:00", "11:00")
			r.ServiceType = "karaoke"
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitBooking(context.Background(), tt.req)
			// the failing store was never reached
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.NotErrorIs(t, err, model.ErrPersistence)
		})
	}
}

func TestSubmitBooking_StoreFailureIsPersistenceError(t *testing.T) {
	n := &recordingNotifier{}
	svc := NewBookingService(failingStore{Store: repository.NewMemoryStore()}, n, nil, Config{})

	_, err := svc.SubmitBooking(context.Background(), request("a@example.com", "10:00", "11:00"))
	require.ErrorIs(t, err, model.ErrPersistence)

	status, msg, code := model.GetErrorResponse(err)
	assert.Equal(t, 503, status)
	assert.Equal(t, model.ErrCodePersistence, code)
	assert.NotContains(t, msg, "connection refused")

	drain(t, svc)
	assert.Equal(t, 0, n.count())
}

func TestSubmitBooking_StoreTimeout(t *testing.T) {
	svc := NewBookingService(slowStore{Store: repository.NewMemoryStore()}, &recordingNotifier{}, nil,
		Config{StoreTimeout: 20 * time.Millisecond})

	_, err := svc.SubmitBooking(context.Background(), request("a@example.com", "10:00", "11:00"))
	require.ErrorIs(t, err, model.ErrPersistence)

	var be *model.BookingError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, model.ErrCodeTimeout, be.Code)
}

func TestSubmitBooking_NotifierFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	resp, err := f.svc.SubmitBooking(context.Background(), request("a@example.com", "10:00", "11:00"))
	require.NoError(t, err)
	assert.True(t, resp.Success)

	drain(t, f.svc)
	assert.Equal(t, 1, f.notifier.count())

	_, err = f.store.GetBookingByID(context.Background(), resp.BookingID)
	assert.NoError(t, err)
}

func TestSubmitBooking_RetriesReferenceCollision(t *testing.T) {
	f := newFixture(t)
	refs := []string{"WH-SAME0001", "WH-SAME0001", "WH-OTHER002"}
	f.svc.newReference = func() (string, error) {
		r := refs[0]
		refs = refs[1:]
		return r, nil
	}

	_, err := f.svc.SubmitBooking(context.Background(), request("a@example.com", "10:00", "11:00"))
	require.NoError(t, err)
	resp, err := f.svc.SubmitBooking(context.Background(), request("b@example.com", "11:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, "WH-OTHER002", resp.Reference)
}

// =====================================================
// AVAILABILITY
// =====================================================

func TestGetAvailability_ListsBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitBooking(ctx, request("a@example.com", "14:00", "15:00"))
	require.NoError(t, err)

	resp, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-20", resp.Date)
	require.Len(t, resp.UnavailableSlots, 1)
	assert.Equal(t, model.SlotResponse{Start: "14:00", End: "15:00", Type: model.UnavailableBooking}, resp.UnavailableSlots[0])
}

func TestGetAvailability_EmptyDate(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetAvailability(context.Background(), "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, resp.UnavailableSlots)
	assert.Empty(t, resp.UnavailableSlots)
}

func TestGetAvailability_InvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetAvailability(context.Background(), "tomorrow")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestGetAvailability_CacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	assert.Empty(t, empty.UnavailableSlots)

	exists, err := f.cache.Exists(ctx, "availability:2025-05-20")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = f.svc.SubmitBooking(ctx, request("a@example.com", "14:00", "15:00"))
	require.NoError(t, err)

	resp, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	assert.Len(t, resp.UnavailableSlots, 1)
}

func TestGetAvailability_StaleFillDoesNotHideCommittedBooking(t *testing.T) {
	store := newGatedStore(repository.NewMemoryStore())
	c := infraCache.NewMemoryCache()
	svc := NewBookingService(store, &recordingNotifier{}, c, Config{StoreTimeout: 5 * time.Second})
	ctx := context.Background()

	stale := make(chan *model.AvailabilityResponse, 1)
	go func() {
		resp, err := svc.GetAvailability(ctx, "2025-05-20")
		assert.NoError(t, err)
		stale <- resp
	}()
	<-store.read

	_, err := svc.SubmitBooking(ctx, request("a@example.com", "14:00", "15:00"))
	require.NoError(t, err)

	close(store.release)
	assert.Empty(t, (<-stale).UnavailableSlots)

	resp, err := svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	require.Len(t, resp.UnavailableSlots, 1)
	assert.Equal(t, "14:00", resp.UnavailableSlots[0].Start)
	drain(t, svc)
}

func TestGetAvailability_ServesSnapshotUntilNextWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)

	// a write that bypasses the service is not seen while the snapshot lives
	insertDirect(t, f.store, "2025-05-20", "10:00", "11:00")
	cached, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	assert.Empty(t, cached.UnavailableSlots)

	_, err = f.svc.BlockSlot(ctx, model.BlockSlotRequest{Date: "2025-05-20", StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)

	var generation int64
	found, err := f.cache.Get(ctx, "availability_gen:2025-05-20", &generation)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), generation)

	fresh, err := f.svc.GetAvailability(ctx, "2025-05-20")
	require.NoError(t, err)
	assert.Len(t, fresh.UnavailableSlots, 2)
}

func insertDirect(t *testing.T, store repository.Store, date, start, end string) {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	err = store.WithinDateLock(context.Background(), d, func(repos repository.TxRepos) error {
		return repos.Bookings.CreateBlockedSlot(context.Background(), &model.BlockedSlot{
			ID:        uuid.New(),
			Date:      d,
			StartTime: model.MustTimeOfDay(start),
			EndTime:   model.MustTimeOfDay(end),
			CreatedAt: time.Now().UTC(),
		})
	})
	require.NoError(t, err)
}

// =====================================================
// ADMIN OPERATIONS
// =====================================================

func TestBlockSlot_RejectsOverlapWithBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitBooking(ctx, request("a@example.com", "14:00", "15:00"))
	require.NoError(t, err)

	_, err = f.svc.BlockSlot(ctx, model.BlockSlotRequest{Date: "2025-05-20", StartTime: "13:00", EndTime: "18:00"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.BlockSlot(ctx, model.BlockSlotRequest{Date: "2025-05-20", StartTime: "15:00", EndTime: "18:00"})
	assert.NoError(t, err)
}

func TestUnblockSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.svc.BlockSlot(ctx, model.BlockSlotRequest{Date: "2025-05-20", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)

	require.NoError(t, f.svc.UnblockSlot(ctx, slot.ID))
	assert.ErrorIs(t, f.svc.UnblockSlot(ctx, slot.ID), model.ErrNotFound)

	_, err = f.svc.SubmitBooking(ctx, request("a@example.com", "09:00", "10:00"))
	assert.NoError(t, err)
}

func TestChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.SubmitBooking(ctx, request("a@example.com", "14:00", "15:00"))
	require.NoError(t, err)

	resp, err := f.svc.ChangeStatus(ctx, created.BookingID, model.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, resp.Status)

	_, err = f.svc.ChangeStatus(ctx, created.BookingID, model.UpdateStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.svc.ChangeStatus(ctx, created.BookingID, model.UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	// a cancelled booking frees its interval
	_, err = f.svc.SubmitBooking(ctx, request("b@example.com", "14:00", "15:00"))
	assert.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, uuid.New(), model.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.ChangeStatus(ctx, created.BookingID, model.UpdateStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, model.ErrValidation)
}
