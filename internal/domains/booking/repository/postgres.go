package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"wavehouse-backend/internal/domains/booking/model"
	clientrepo "wavehouse-backend/internal/domains/client/repository"
	"wavehouse-backend/pkg/database"
)

// dateLockClass namespaces the per-date advisory locks ("WH").
const dateLockClass int32 = 0x5748

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// dateLockKey is the day number of date, unique per calendar date.
func dateLockKey(date time.Time) int32 {
	return int32(model.NormalizeDate(date).Sub(epoch).Hours() / 24)
}

// =====================================================
// POSTGRES STORE
// =====================================================

type postgresStore struct {
	pool *pgxpool.Pool
	q    queries
}

func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{
		pool: pool,
		q:    queries{db: pool},
	}
}

func (s *postgresStore) WithinDateLock(ctx context.Context, date time.Time, fn func(repos TxRepos) error) error {
	return database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		if err := database.AdvisoryXactLock(ctx, tx, dateLockClass, dateLockKey(date)); err != nil {
			return err
		}
		return fn(TxRepos{
			Clients:  clientrepo.NewPostgresRepository(tx),
			Bookings: queries{db: tx},
		})
	})
}

func (s *postgresStore) ReadDate(ctx context.Context, date time.Time) ([]model.Booking, []model.BlockedSlot, error) {
	var (
		bookings []model.Booking
		slots    []model.BlockedSlot
	)
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := database.WithTransactionOptions(ctx, s.pool, opts, func(tx pgx.Tx) error {
		q := queries{db: tx}
		var err error
		if bookings, err = q.ListBookingsForDate(ctx, date); err != nil {
			return err
		}
		slots, err = q.ListBlockedSlotsForDate(ctx, date)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return bookings, slots, nil
}

func (s *postgresStore) ListBookingsForDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	return s.q.ListBookingsForDate(ctx, date)
}

func (s *postgresStore) ListBlockedSlotsForDate(ctx context.Context, date time.Time) ([]model.BlockedSlot, error) {
	return s.q.ListBlockedSlotsForDate(ctx, date)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// =====================================================
// ADMIN READS
// =====================================================

const bookingWithClientSelect = `
	SELECT b.id, b.reference, b.client_id, b.service_type, b.date,
	       b.start_time, b.end_time, b.status, b.notes, b.estimated_price,
	       b.created_at, b.updated_at,
	       c.name, c.email, c.phone
	FROM bookings b
	JOIN clients c ON c.id = b.client_id
`

func (s *postgresStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*model.BookingWithClient, error) {
	query := bookingWithClientSelect + ` WHERE b.id = $1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	list, err := collectBookingsWithClient(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if len(list) == 0 {
		return nil, model.NewNotFoundError("Booking")
	}
	return &list[0], nil
}

func (s *postgresStore) ListRecentBookings(ctx context.Context, limit int) ([]model.BookingWithClient, error) {
	query := bookingWithClientSelect + ` ORDER BY b.created_at DESC, b.id LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent bookings: %w", err)
	}
	list, err := collectBookingsWithClient(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent bookings: %w", err)
	}
	return list, nil
}

func (s *postgresStore) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]model.BookingWithClient, error) {
	query := bookingWithClientSelect + `
		WHERE b.date BETWEEN $1 AND $2
		ORDER BY b.date, b.start_time, b.id
	`

	rows, err := s.pool.Query(ctx, query, model.NormalizeDate(from), model.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	list, err := collectBookingsWithClient(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

func (s *postgresStore) GetStats(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			(SELECT COUNT(*) FROM blocked_slots)
		FROM bookings
	`

	var stats model.Stats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Cancelled,
		&stats.BlockedSlotCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	return &stats, nil
}

// =====================================================
// ADMIN WRITES
// =====================================================

func (s *postgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := s.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	if !exists {
		return false, model.NewNotFoundError("Booking")
	}
	return false, nil
}

func (s *postgresStore) DeleteBlockedSlot(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error) {
	query := `
		DELETE FROM blocked_slots
		WHERE id = $1
		RETURNING id, date, start_time, end_time, reason, created_at
	`

	slot, err := scanBlockedSlot(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("Blocked slot")
		}
		return nil, fmt.Errorf("failed to delete blocked slot: %w", err)
	}
	return slot, nil
}

// =====================================================
// DATE QUERIES (pool or tx)
// =====================================================

type queries struct {
	db database.DBTX
}

func (q queries) ListBookingsForDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	query := `
		SELECT id, reference, client_id, service_type, date, start_time, end_time,
		       status, notes, estimated_price, created_at, updated_at
		FROM bookings
		WHERE date = $1
		ORDER BY start_time, id
	`

	rows, err := q.db.Query(ctx, query, model.NormalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for date: %w", err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bookings for date: %w", err)
	}
	return bookings, nil
}

func (q queries) ListBlockedSlotsForDate(ctx context.Context, date time.Time) ([]model.BlockedSlot, error) {
	query := `
		SELECT id, date, start_time, end_time, reason, created_at
		FROM blocked_slots
		WHERE date = $1
		ORDER BY start_time, id
	`

	rows, err := q.db.Query(ctx, query, model.NormalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked slots: %w", err)
	}
	defer rows.Close()

	slots := make([]model.BlockedSlot, 0)
	for rows.Next() {
		s, err := scanBlockedSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blocked slot: %w", err)
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list blocked slots: %w", err)
	}
	return slots, nil
}

func (q queries) CreateBooking(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, client_id, service_type, date, start_time, end_time,
			status, notes, estimated_price, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12
		)
	`

	_, err := q.db.Exec(ctx, query,
		b.ID,
		b.Reference,
		b.ClientID,
		b.ServiceType,
		model.NormalizeDate(b.Date),
		toPgTime(b.StartTime),
		toPgTime(b.EndTime),
		b.Status,
		b.Notes,
		b.EstimatedPrice,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.NewDuplicateError("Booking reference already exists", err)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (q queries) CreateBlockedSlot(ctx context.Context, s *model.BlockedSlot) error {
	query := `
		INSERT INTO blocked_slots (id, date, start_time, end_time, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.db.Exec(ctx, query,
		s.ID,
		model.NormalizeDate(s.Date),
		toPgTime(s.StartTime),
		toPgTime(s.EndTime),
		s.Reason,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blocked slot: %w", err)
	}
	return nil
}

// =====================================================
// HELPERS
// =====================================================

func toPgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDayFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b          model.Booking
		start, end pgtype.Time
	)
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ClientID,
		&b.ServiceType,
		&b.Date,
		&start,
		&end,
		&b.Status,
		&b.Notes,
		&b.EstimatedPrice,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.StartTime = fromPgTime(start)
	b.EndTime = fromPgTime(end)
	return &b, nil
}

func scanBlockedSlot(row pgx.Row) (*model.BlockedSlot, error) {
	var (
		s          model.BlockedSlot
		start, end pgtype.Time
	)
	if err := row.Scan(&s.ID, &s.Date, &start, &end, &s.Reason, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.StartTime = fromPgTime(start)
	s.EndTime = fromPgTime(end)
	return &s, nil
}

func collectBookingsWithClient(rows pgx.Rows) ([]model.BookingWithClient, error) {
	defer rows.Close()

	list := make([]model.BookingWithClient, 0)
	for rows.Next() {
		var (
			b          model.BookingWithClient
			start, end pgtype.Time
		)
		err := rows.Scan(
			&b.ID,
			&b.Reference,
			&b.ClientID,
			&b.ServiceType,
			&b.Date,
			&start,
			&end,
			&b.Status,
			&b.Notes,
			&b.EstimatedPrice,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.ClientName,
			&b.ClientEmail,
			&b.ClientPhone,
		)
		if err != nil {
			return nil, err
		}
		b.StartTime = fromPgTime(start)
		b.EndTime = fromPgTime(end)
		list = append(list, b)
	}
	return list, rows.Err()
}
