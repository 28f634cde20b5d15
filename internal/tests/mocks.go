package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// MOCK ACTOR REPOSITORY
// ──────────────────────────────────────────────

// MockActorRepository is a mock implementation of ActorRepository.
type MockActorRepository struct {
	mu     sync.RWMutex
	actors map[string]*domain.Actor

	CreateCallCount int32
	CreateError     error
}

// NewMockActorRepository creates a new mock actor repository.
func NewMockActorRepository() *MockActorRepository {
	return &MockActorRepository{actors: make(map[string]*domain.Actor)}
}

// AddActor adds an actor to the mock repository.
func (m *MockActorRepository) AddActor(actor *domain.Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = actor
}

func (m *MockActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = actor
	return nil
}

func (m *MockActorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actor, ok := m.actors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *actor
	return &copy, nil
}

func (m *MockActorRepository) GetByPhone(ctx context.Context, phone string) (*domain.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.actors {
		if a.Phone == phone {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockActorRepository) GetAll(ctx context.Context) ([]*domain.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Actor, 0, len(m.actors))
	for _, a := range m.actors {
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	CreateCallCount      int32
	UpdateCallCount      int32
	AdjustSeatsCallCount int32
	DeleteCallCount      int32

	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{trips: make(map[string]*domain.Trip)}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) Search(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.Status != domain.TripStatusScheduled {
			continue
		}
		if filter.Origin != "" && t.Origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && t.Destination != filter.Destination {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.DriverID == driverID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) AdjustSeats(ctx context.Context, id string, delta int) error {
	atomic.AddInt32(&m.AdjustSeatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := trip.AvailableSeats + delta
	if next < 0 || next > trip.Seats {
		return repository.ErrConflict
	}
	trip.AvailableSeats = next
	return nil
}

func (m *MockTripRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	CreateCallCount       int32
	UpdateStatusCallCount int32

	CreateError       error
	UpdateStatusError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[string]*domain.Booking)}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.TripID == tripID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) GetByPassengerID(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) CountAcceptedByTripID(ctx context.Context, tripID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.TripID == tripID && b.Status == domain.BookingStatusAccepted {
			count++
		}
	}
	return count, nil
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	return nil
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork runs the transactional function directly against the
// given mock repositories. BeforeTx, when set, runs between the
// caller's reads and the transactional function, standing in for a
// concurrent writer committing in that window.
type MockUnitOfWork struct {
	Bookings *MockBookingRepository
	Trips    *MockTripRepository

	WithinTxCallCount int32
	BeginError        error
	BeforeTx          func()
}

// NewMockUnitOfWork creates a mock unit of work over the given repos.
func NewMockUnitOfWork(bookings *MockBookingRepository, trips *MockTripRepository) *MockUnitOfWork {
	return &MockUnitOfWork{Bookings: bookings, Trips: trips}
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(bookings repository.BookingRepository, trips repository.TripRepository) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	if m.BeforeTx != nil {
		m.BeforeTx()
	}
	return fn(m.Bookings, m.Trips)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory mock of CacheStoreInterface.
type MockCacheStore struct {
	mu     sync.RWMutex
	trips  map[string]*redis.CachedTrip
	actors map[string]*redis.CachedActor

	GetTripCallCount  int32
	SetTripCallCount  int32
	GetActorCallCount int32
	SetActorCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		trips:  make(map[string]*redis.CachedTrip),
		actors: make(map[string]*redis.CachedActor),
	}
}

// AddTrip seeds the cache with a trip entry.
func (m *MockCacheStore) AddTrip(trip *redis.CachedTrip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// AddActor seeds the cache with an actor entry.
func (m *MockCacheStore) AddActor(actor *redis.CachedActor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = actor
}

// HasTrip reports whether a trip entry is cached.
func (m *MockCacheStore) HasTrip(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.trips[tripID]
	return ok
}

func (m *MockCacheStore) GetTrip(ctx context.Context, tripID string) (*redis.CachedTrip, error) {
	atomic.AddInt32(&m.GetTripCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[tripID], nil
}

func (m *MockCacheStore) SetTrip(ctx context.Context, trip *redis.CachedTrip) error {
	atomic.AddInt32(&m.SetTripCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockCacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}

func (m *MockCacheStore) GetActor(ctx context.Context, actorID string) (*redis.CachedActor, error) {
	atomic.AddInt32(&m.GetActorCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.actors[actorID], nil
}

func (m *MockCacheStore) SetActor(ctx context.Context, actor *redis.CachedActor) error {
	atomic.AddInt32(&m.SetActorCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = actor
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION REPOSITORY
// ──────────────────────────────────────────────

// MockLocationRepository is a mock implementation of LocationRepository.
type MockLocationRepository struct {
	mu      sync.RWMutex
	samples []*domain.LocationSample

	InsertCallCount         int32
	LatestPerActorCallCount int32

	InsertError error
	LatestError error
}

// NewMockLocationRepository creates a new mock location repository.
func NewMockLocationRepository() *MockLocationRepository {
	return &MockLocationRepository{}
}

// AddSample stores a sample directly, bypassing Insert counters.
func (m *MockLocationRepository) AddSample(sample *domain.LocationSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
}

// CountSamples returns the number of stored samples.
func (m *MockLocationRepository) CountSamples() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

func (m *MockLocationRepository) Insert(ctx context.Context, sample *domain.LocationSample) error {
	atomic.AddInt32(&m.InsertCallCount, 1)
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	return nil
}

func (m *MockLocationRepository) LatestPerActor(ctx context.Context, filter repository.LocationFilter) ([]*domain.LocationSample, error) {
	atomic.AddInt32(&m.LatestPerActorCallCount, 1)
	if m.LatestError != nil {
		return nil, m.LatestError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	filtered := make([]*domain.LocationSample, 0, len(m.samples))
	for _, s := range m.samples {
		if filter.TripID != "" && s.TripID != filter.TripID {
			continue
		}
		filtered = append(filtered, s)
	}

	latest := domain.LatestPerActor(filtered)
	result := make([]*domain.LocationSample, 0, len(latest))
	for _, s := range latest {
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockLocationRepository) HistoryByActor(ctx context.Context, actorID string, limit int) ([]*domain.LocationSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LocationSample
	for _, s := range m.samples {
		if s.ActorID == actorID {
			copy := *s
			result = append(result, &copy)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32
	AcquireError     error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

// HoldLock marks an actor's lock as already held.
func (m *MockLockStore) HoldLock(actorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[actorID] = true
}

func (m *MockLockStore) AcquireActorLock(ctx context.Context, actorID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[actorID] {
		return false, nil
	}
	m.held[actorID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseActorLock(ctx context.Context, actorID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, actorID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CHANGE NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier is a mock implementation of NotifierInterface. Events
// published to it are recorded; Emit delivers an event to all handlers
// subscribed to its kind.
type MockNotifier struct {
	mu        sync.Mutex
	published []redis.ChangeEvent
	handlers  map[redis.RecordKind][]*MockSubscription

	PublishError   error
	SubscribeError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{handlers: make(map[redis.RecordKind][]*MockSubscription)}
}

func (m *MockNotifier) Publish(ctx context.Context, event redis.ChangeEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	m.published = append(m.published, event)
	m.mu.Unlock()
	return nil
}

func (m *MockNotifier) Subscribe(ctx context.Context, kind redis.RecordKind, handler func(redis.ChangeEvent)) (redis.SubscriptionHandle, error) {
	if m.SubscribeError != nil {
		return nil, m.SubscribeError
	}
	sub := &MockSubscription{handler: handler}
	m.mu.Lock()
	m.handlers[kind] = append(m.handlers[kind], sub)
	m.mu.Unlock()
	return sub, nil
}

// Emit synchronously delivers an event to all live subscriptions of its kind.
func (m *MockNotifier) Emit(event redis.ChangeEvent) {
	m.mu.Lock()
	subs := append([]*MockSubscription(nil), m.handlers[event.Kind]...)
	m.mu.Unlock()
	for _, sub := range subs {
		if !sub.Unsubscribed() {
			sub.handler(event)
		}
	}
}

// Published returns a copy of the recorded events.
func (m *MockNotifier) Published() []redis.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]redis.ChangeEvent(nil), m.published...)
}

// ActiveSubscriptions counts subscriptions not yet unsubscribed.
func (m *MockNotifier) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, subs := range m.handlers {
		for _, sub := range subs {
			if !sub.Unsubscribed() {
				count++
			}
		}
	}
	return count
}

// MockSubscription is a mock SubscriptionHandle.
type MockSubscription struct {
	handler func(redis.ChangeEvent)

	UnsubscribeCallCount int32
	unsubscribed         int32
}

func (s *MockSubscription) Unsubscribe() {
	atomic.AddInt32(&s.UnsubscribeCallCount, 1)
	atomic.StoreInt32(&s.unsubscribed, 1)
}

// Unsubscribed reports whether Unsubscribe has been called.
func (s *MockSubscription) Unsubscribed() bool {
	return atomic.LoadInt32(&s.unsubscribed) == 1
}

// ──────────────────────────────────────────────
// MOCK MAILER AND BROADCASTER
// ──────────────────────────────────────────────

// MockMailer records dispatched notifications.
type MockMailer struct {
	mu   sync.Mutex
	sent []service.Notification

	SendError error
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(ctx context.Context, n service.Notification) error {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	if m.SendError != nil {
		return m.SendError
	}
	return nil
}

// Sent returns a copy of the dispatched notifications.
func (m *MockMailer) Sent() []service.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Notification(nil), m.sent...)
}

// MockBroadcaster records marker snapshots pushed by the presenter.
type MockBroadcaster struct {
	mu        sync.Mutex
	snapshots [][]service.Marker
}

// NewMockBroadcaster creates a new mock broadcaster.
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) BroadcastMarkers(markers []service.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, markers)
}

// Snapshots returns the recorded broadcasts.
func (m *MockBroadcaster) Snapshots() [][]service.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]service.Marker(nil), m.snapshots...)
}
