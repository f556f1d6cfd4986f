package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wavehouse-backend/internal/domains/booking/model"
	clientmodel "wavehouse-backend/internal/domains/client/model"
	clientrepo "wavehouse-backend/internal/domains/client/repository"
)

// MemoryStore is a process-local Store used by tests and by
// BOOKING_STORE_DRIVER=memory. Writes of a WithinDateLock call are staged
// and only become visible when fn returns nil.
type MemoryStore struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]clientmodel.Client
	emails   map[string]uuid.UUID
	bookings map[uuid.UUID]model.Booking
	slots    map[uuid.UUID]model.BlockedSlot
	refs     map[string]uuid.UUID

	locksMu   sync.Mutex
	dateLocks map[string]*dateLock
}

// dateLock is a one-slot semaphore, so waiting honours ctx. refs counts the
// holder and waiters; the entry is dropped when it reaches zero.
type dateLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:   make(map[uuid.UUID]clientmodel.Client),
		emails:    make(map[string]uuid.UUID),
		bookings:  make(map[uuid.UUID]model.Booking),
		slots:     make(map[uuid.UUID]model.BlockedSlot),
		refs:      make(map[string]uuid.UUID),
		dateLocks: make(map[string]*dateLock),
	}
}

func (m *MemoryStore) acquireDateLock(date time.Time) (string, *dateLock) {
	key := model.FormatDate(date)

	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.dateLocks[key]
	if !ok {
		l = &dateLock{sem: make(chan struct{}, 1)}
		m.dateLocks[key] = l
	}
	l.refs++
	return key, l
}

func (m *MemoryStore) releaseDateLock(key string, l *dateLock) {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.dateLocks, key)
	}
}

func (m *MemoryStore) WithinDateLock(ctx context.Context, date time.Time, fn func(repos TxRepos) error) error {
	key, lock := m.acquireDateLock(date)
	defer m.releaseDateLock(key, lock)

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock.sem }()

	tx := &memoryTx{store: m, date: model.NormalizeDate(date)}
	if err := fn(TxRepos{Clients: &memoryClients{tx: tx}, Bookings: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (m *MemoryStore) ReadDate(ctx context.Context, date time.Time) ([]model.Booking, []model.BlockedSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	date = model.NormalizeDate(date)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookingsForDateLocked(date), m.slotsForDateLocked(date), nil
}

func (m *MemoryStore) ListBookingsForDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookingsForDateLocked(model.NormalizeDate(date)), nil
}

func (m *MemoryStore) ListBlockedSlotsForDate(ctx context.Context, date time.Time) ([]model.BlockedSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slotsForDateLocked(model.NormalizeDate(date)), nil
}

func (m *MemoryStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*model.BookingWithClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, model.NewNotFoundError("Booking")
	}
	bc := m.withClientLocked(b)
	return &bc, nil
}

func (m *MemoryStore) ListRecentBookings(ctx context.Context, limit int) ([]model.BookingWithClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]model.BookingWithClient, 0, len(m.bookings))
	for _, b := range m.bookings {
		list = append(list, m.withClientLocked(b))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	if limit >= 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MemoryStore) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]model.BookingWithClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, to = model.NormalizeDate(from), model.NormalizeDate(to)

	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]model.BookingWithClient, 0)
	for _, b := range m.bookings {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		list = append(list, m.withClientLocked(b))
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID.String() < b.ID.String()
	})
	return list, nil
}

func (m *MemoryStore) GetStats(ctx context.Context) (*model.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &model.Stats{
		Total:            len(m.bookings),
		BlockedSlotCount: len(m.slots),
	}
	for _, b := range m.bookings {
		switch b.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusConfirmed:
			stats.Confirmed++
		case model.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return false, model.NewNotFoundError("Booking")
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	m.bookings[id] = b
	return true, nil
}

func (m *MemoryStore) DeleteBlockedSlot(ctx context.Context, id uuid.UUID) (*model.BlockedSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return nil, model.NewNotFoundError("Blocked slot")
	}
	delete(m.slots, id)
	return &s, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) bookingsForDateLocked(date time.Time) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range m.bookings {
		if b.Date.Equal(date) {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

func (m *MemoryStore) slotsForDateLocked(date time.Time) []model.BlockedSlot {
	out := make([]model.BlockedSlot, 0)
	for _, s := range m.slots {
		if s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *MemoryStore) withClientLocked(b model.Booking) model.BookingWithClient {
	bc := model.BookingWithClient{Booking: b}
	if c, ok := m.clients[b.ClientID]; ok {
		bc.ClientName = c.Name
		bc.ClientEmail = c.Email
		bc.ClientPhone = c.Phone
	}
	return bc
}

func sortBookings(list []model.Booking) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartTime != list[j].StartTime {
			return list[i].StartTime < list[j].StartTime
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}

// =====================================================
// STAGED TRANSACTION
// =====================================================

type memoryTx struct {
	store *MemoryStore
	date  time.Time

	clients  []*clientmodel.Client
	bookings []*model.Booking
	slots    []*model.BlockedSlot
}

func (tx *memoryTx) ListBookingsForDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	out, err := tx.store.ListBookingsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	date = model.NormalizeDate(date)
	for _, b := range tx.bookings {
		if b.Date.Equal(date) {
			out = append(out, *b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (tx *memoryTx) ListBlockedSlotsForDate(ctx context.Context, date time.Time) ([]model.BlockedSlot, error) {
	out, err := tx.store.ListBlockedSlotsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	date = model.NormalizeDate(date)
	for _, s := range tx.slots {
		if s.Date.Equal(date) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (tx *memoryTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.store.mu.RLock()
	_, taken := tx.store.refs[b.Reference]
	tx.store.mu.RUnlock()
	for _, staged := range tx.bookings {
		if staged.Reference == b.Reference {
			taken = true
		}
	}
	if taken {
		return model.NewDuplicateError("Booking reference already exists", nil)
	}

	b.Date = model.NormalizeDate(b.Date)
	tx.bookings = append(tx.bookings, b)
	return nil
}

func (tx *memoryTx) CreateBlockedSlot(ctx context.Context, s *model.BlockedSlot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Date = model.NormalizeDate(s.Date)
	tx.slots = append(tx.slots, s)
	return nil
}

// commit publishes staged writes. A client staged here may have been
// committed meanwhile by a transaction on another date; its bookings are
// then re-pointed at the committed client.
func (tx *memoryTx) commit() error {
	m := tx.store
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range tx.bookings {
		if _, taken := m.refs[b.Reference]; taken {
			return model.NewDuplicateError("Booking reference already exists", nil)
		}
	}

	remap := make(map[uuid.UUID]uuid.UUID)
	for _, c := range tx.clients {
		if existing, ok := m.emails[c.Email]; ok {
			remap[c.ID] = existing
			*c = m.clients[existing]
			continue
		}
		m.clients[c.ID] = *c
		m.emails[c.Email] = c.ID
	}

	for _, b := range tx.bookings {
		if to, ok := remap[b.ClientID]; ok {
			b.ClientID = to
		}
		m.bookings[b.ID] = *b
		m.refs[b.Reference] = b.ID
	}
	for _, s := range tx.slots {
		m.slots[s.ID] = *s
	}
	return nil
}

// memoryClients is the client repository view of a memoryTx.
type memoryClients struct {
	tx *memoryTx
}

var _ clientrepo.Repository = (*memoryClients)(nil)

func (r *memoryClients) FindByEmail(ctx context.Context, email string) (*clientmodel.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range r.tx.clients {
		if c.Email == email {
			found := *c
			return &found, nil
		}
	}

	m := r.tx.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.emails[email]; ok {
		found := m.clients[id]
		return &found, nil
	}
	return nil, nil
}

func (r *memoryClients) GetByID(ctx context.Context, id uuid.UUID) (*clientmodel.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range r.tx.clients {
		if c.ID == id {
			found := *c
			return &found, nil
		}
	}

	m := r.tx.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return &c, nil
	}
	return nil, clientmodel.ErrClientNotFound
}

func (r *memoryClients) Create(ctx context.Context, client *clientmodel.Client) error {
	if err := client.Validate(); err != nil {
		return err
	}
	existing, err := r.FindByEmail(ctx, client.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return clientmodel.ErrDuplicateEmail
	}
	staged := *client
	r.tx.clients = append(r.tx.clients, &staged)
	return nil
}

func (r *memoryClients) FindOrCreate(ctx context.Context, client *clientmodel.Client) (*clientmodel.Client, bool, error) {
	if err := client.Validate(); err != nil {
		return nil, false, err
	}
	existing, err := r.FindByEmail(ctx, client.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	if err := r.Create(ctx, client); err != nil {
		return nil, false, err
	}
	// commit rewrites the staged record when another date committed the email first
	return r.tx.clients[len(r.tx.clients)-1], true, nil
}
