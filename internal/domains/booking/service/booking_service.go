package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wavehouse-backend/internal/domains/booking/availability"
	"wavehouse-backend/internal/domains/booking/model"
	"wavehouse-backend/internal/domains/booking/notifier"
	"wavehouse-backend/internal/domains/booking/repository"
	clientmodel "wavehouse-backend/internal/domains/client/model"
	"wavehouse-backend/internal/shared/utils"
	"wavehouse-backend/pkg/cache"
	"wavehouse-backend/pkg/logger"
)

const (
	availabilityCachePrefix      = "availability:"
	availabilityGenerationPrefix = "availability_gen:"

	// outlives every snapshot stamped with it
	availabilityGenerationTTL = 24 * time.Hour

	// lost create races (reference or new-client email) are retried this often
	maxCreateAttempts = 3
)

// Config tunes the booking service.
type Config struct {
	StoreTimeout    time.Duration
	NotifyTimeout   time.Duration
	AvailabilityTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 30 * time.Second
	}
	if c.AvailabilityTTL <= 0 {
		c.AvailabilityTTL = time.Minute
	}
	return c
}

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type bookingService struct {
	store    repository.Store
	notifier notifier.Notifier
	cache    cache.Cache
	cfg      Config

	newReference func() (string, error)
	now          func() time.Time

	inflight sync.WaitGroup
}

// NewBookingService wires the booking use cases. cache may be nil.
func NewBookingService(
	store repository.Store,
	n notifier.Notifier,
	c cache.Cache,
	cfg Config,
) ServiceInterface {
	return &bookingService{
		store:        store,
		notifier:     n,
		cache:        c,
		cfg:          cfg.withDefaults(),
		newReference: utils.GenerateBookingReference,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// =====================================================
// SUBMIT BOOKING
// =====================================================

func (s *bookingService) SubmitBooking(ctx context.Context, req model.SubmitBookingRequest) (*model.SubmitBookingResponse, error) {
	// Step 1: Validate shape before touching the store
	input, err := req.Parse()
	if err != nil {
		return nil, err
	}
	svc, _ := model.LookupService(input.ServiceType)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	// Step 2-4: resolve client, check availability, persist (one unit)
	var (
		booking *model.Booking
		client  *clientmodel.Client
	)
	for attempt := 1; ; attempt++ {
		booking, client, err = s.createBooking(storeCtx, input, svc)
		if err == nil {
			break
		}
		if !isLostCreateRace(err) || attempt >= maxCreateAttempts {
			return nil, s.storeError(storeCtx, "submit booking", err)
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("date", model.FormatDate(input.Date)).
			Msg("Booking create race lost, retrying")
	}

	// Persisted: the booking stands regardless of what follows
	s.invalidateAvailability(ctx, booking.Date)

	logger.Info("Booking created", map[string]interface{}{
		"booking_id": booking.ID.String(),
		"reference":  booking.Reference,
		"client_id":  client.ID.String(),
		"date":       model.FormatDate(booking.Date),
		"interval":   booking.Interval().String(),
	})

	// Step 6: notification, off the request path
	s.notifyAsync(booking, client)

	return &model.SubmitBookingResponse{
		Success:        true,
		Message:        "Booking request received",
		BookingID:      booking.ID,
		Reference:      booking.Reference,
		Status:         booking.Status,
		EstimatedPrice: booking.EstimatedPrice,
	}, nil
}

func (s *bookingService) createBooking(
	ctx context.Context,
	input *model.BookingInput,
	svc model.Service,
) (*model.Booking, *clientmodel.Client, error) {
	reference, err := s.newReference()
	if err != nil {
		return nil, nil, fmt.Errorf("generate booking reference: %w", err)
	}

	var (
		booking *model.Booking
		client  *clientmodel.Client
	)
	err = s.store.WithinDateLock(ctx, input.Date, func(repos repository.TxRepos) error {
		candidate, err := clientmodel.NewClient(input.Name, input.Email, input.Phone)
		if err != nil {
			return model.NewValidationError(err.Error(), nil)
		}

		client, _, err = repos.Clients.FindOrCreate(ctx, candidate)
		if err != nil {
			switch {
			case errors.Is(err, clientmodel.ErrInvalidClient):
				return model.NewValidationError(err.Error(), nil)
			case errors.Is(err, clientmodel.ErrDuplicateEmail):
				return model.NewDuplicateError("Client was created concurrently", err)
			}
			return err
		}

		bookings, err := repos.Bookings.ListBookingsForDate(ctx, input.Date)
		if err != nil {
			return err
		}
		blocked, err := repos.Bookings.ListBlockedSlotsForDate(ctx, input.Date)
		if err != nil {
			return err
		}
		if err := availability.ValidateNewBooking(input.Interval, input.Date, bookings, blocked); err != nil {
			return err
		}

		now := s.now()
		booking = &model.Booking{
			ID:             uuid.New(),
			Reference:      reference,
			ClientID:       client.ID,
			ServiceType:    input.ServiceType,
			Date:           input.Date,
			StartTime:      input.Interval.Start,
			EndTime:        input.Interval.End,
			Status:         model.StatusPending,
			Notes:          input.Notes,
			EstimatedPrice: svc.EstimatePrice(input.Interval),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return repos.Bookings.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, client, nil
}

// isLostCreateRace reports a duplicate-create conflict, as opposed to an
// interval overlap.
func isLostCreateRace(err error) bool {
	var be *model.BookingError
	return errors.As(err, &be) && errors.Is(be.Err, model.ErrConflict) && be.Conflict == nil
}

func (s *bookingService) notifyAsync(booking *model.Booking, client *clientmodel.Client) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyBookingCreated(ctx, booking, client); err != nil {
			var be *model.BookingError
			if !errors.As(err, &be) {
				err = model.NewNotificationError(err)
			}
			log.Error().
				Err(err).
				Str("booking_id", booking.ID.String()).
				Msg("Booking notification failed")
		}
	}()
}

func (s *bookingService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =====================================================
// AVAILABILITY
// =====================================================

// availabilitySnapshot is a cached response stamped with the date's write
// generation at the time its read started.
type availabilitySnapshot struct {
	Generation int64                      `json:"generation"`
	Response   model.AvailabilityResponse `json:"response"`
}

func (s *bookingService) GetAvailability(ctx context.Context, dateStr string) (*model.AvailabilityResponse, error) {
	date, err := model.ParseDate(dateStr)
	if err != nil {
		return nil, model.NewValidationError(err.Error(), map[string]string{"date": err.Error()})
	}

	// A snapshot only counts when no write bumped the generation since it
	// was read, so a fill racing a commit never hides the new booking.
	useCache := s.cache != nil
	var generation int64
	if useCache {
		generation, err = s.availabilityGeneration(ctx, date)
		if err != nil {
			logger.Error("Availability generation read failed", err)
			useCache = false
		}
	}

	key := availabilityCacheKey(date)
	if useCache {
		var cached availabilitySnapshot
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Error("Availability cache read failed", err)
		} else if found && cached.Generation == generation {
			return &cached.Response, nil
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	bookings, blocked, err := s.store.ReadDate(storeCtx, date)
	if err != nil {
		return nil, s.storeError(storeCtx, "load availability", err)
	}

	resp := model.NewAvailabilityResponse(date, availability.ComputeUnavailableIntervals(bookings, blocked))

	if useCache {
		snapshot := availabilitySnapshot{Generation: generation, Response: *resp}
		if err := s.cache.Set(ctx, key, snapshot, s.cfg.AvailabilityTTL); err != nil {
			logger.Error("Availability cache write failed", err)
		}
	}
	return resp, nil
}

func availabilityCacheKey(date time.Time) string {
	return availabilityCachePrefix + model.FormatDate(date)
}

func availabilityGenerationKey(date time.Time) string {
	return availabilityGenerationPrefix + model.FormatDate(date)
}

// availabilityGeneration is 0 until the first write of date.
func (s *bookingService) availabilityGeneration(ctx context.Context, date time.Time) (int64, error) {
	var generation int64
	if _, err := s.cache.Get(ctx, availabilityGenerationKey(date), &generation); err != nil {
		return 0, err
	}
	return generation, nil
}

// invalidateAvailability bumps the generation before dropping the snapshot,
// which retires any snapshot a concurrent reader is about to store.
func (s *bookingService) invalidateAvailability(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	genKey := availabilityGenerationKey(date)
	if _, err := s.cache.Increment(ctx, genKey); err != nil {
		logger.Error("Availability generation bump failed", err)
	} else if err := s.cache.Expire(ctx, genKey, availabilityGenerationTTL); err != nil {
		logger.Error("Availability generation expiry failed", err)
	}

	if err := s.cache.Delete(ctx, availabilityCacheKey(date)); err != nil {
		logger.Error("Availability cache invalidation failed", err)
	}
}

// =====================================================
// ADMIN OPERATIONS
// =====================================================

func (s *bookingService) BlockSlot(ctx context.Context, req model.BlockSlotRequest) (*model.BlockedSlotResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, model.NewValidationError(err.Error(), nil)
	}
	interval, err := model.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, model.NewValidationError(err.Error(), nil)
	}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	slot := &model.BlockedSlot{
		ID:        uuid.New(),
		Date:      date,
		StartTime: interval.Start,
		EndTime:   interval.End,
		Reason:    req.Reason,
		CreatedAt: s.now(),
	}
	err = s.store.WithinDateLock(storeCtx, date, func(repos repository.TxRepos) error {
		bookings, err := repos.Bookings.ListBookingsForDate(storeCtx, date)
		if err != nil {
			return err
		}
		blocked, err := repos.Bookings.ListBlockedSlotsForDate(storeCtx, date)
		if err != nil {
			return err
		}
		if err := availability.ValidateNewBooking(interval, date, bookings, blocked); err != nil {
			return err
		}
		return repos.Bookings.CreateBlockedSlot(storeCtx, slot)
	})
	if err != nil {
		return nil, s.storeError(storeCtx, "block slot", err)
	}

	s.invalidateAvailability(ctx, date)

	logger.Info("Slot blocked", map[string]interface{}{
		"slot_id":  slot.ID.String(),
		"date":     model.FormatDate(date),
		"interval": interval.String(),
	})

	resp := model.NewBlockedSlotResponse(slot)
	return &resp, nil
}

func (s *bookingService) UnblockSlot(ctx context.Context, id uuid.UUID) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	slot, err := s.store.DeleteBlockedSlot(storeCtx, id)
	if err != nil {
		return s.storeError(storeCtx, "unblock slot", err)
	}

	s.invalidateAvailability(ctx, slot.Date)

	logger.Info("Slot unblocked", map[string]interface{}{
		"slot_id": id.String(),
		"date":    model.FormatDate(slot.Date),
	})
	return nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest) (*model.BookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	next := model.BookingStatus(req.Status)

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	current, err := s.store.GetBookingByID(storeCtx, id)
	if err != nil {
		return nil, s.storeError(storeCtx, "get booking", err)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, model.NewInvalidTransitionError(current.Status, next)
	}

	ok, err := s.store.UpdateStatus(storeCtx, id, current.Status, next)
	if err != nil {
		return nil, s.storeError(storeCtx, "update booking status", err)
	}
	if !ok {
		// changed underneath us; report against the status that won
		latest, err := s.store.GetBookingByID(storeCtx, id)
		if err != nil {
			return nil, s.storeError(storeCtx, "get booking", err)
		}
		return nil, model.NewInvalidTransitionError(latest.Status, next)
	}

	s.invalidateAvailability(ctx, current.Date)

	logger.Info("Booking status changed", map[string]interface{}{
		"booking_id": id.String(),
		"from":       string(current.Status),
		"to":         string(next),
	})

	current.Status = next
	current.UpdatedAt = s.now()
	resp := model.NewBookingResponse(current)
	return &resp, nil
}

// storeError keeps typed booking errors and turns everything else into a
// PersistenceError, tagging expiry of the store deadline as a timeout.
func (s *bookingService) storeError(storeCtx context.Context, op string, err error) error {
	var be *model.BookingError
	if errors.As(err, &be) {
		return err
	}
	if errors.Is(storeCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	logger.Error(op+" failed", err)
	return model.NewPersistenceError(op, err)
}
