package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// TripService handles the trip directory.
type TripService struct {
	tripRepo    repository.TripRepository
	bookingRepo repository.BookingRepository
	actorRepo   repository.ActorRepository
	cacheStore  redis.CacheStoreInterface
	notifier    redis.NotifierInterface
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	bookingRepo repository.BookingRepository,
	actorRepo repository.ActorRepository,
	cacheStore redis.CacheStoreInterface,
	notifier redis.NotifierInterface,
) *TripService {
	return &TripService{
		tripRepo:    tripRepo,
		bookingRepo: bookingRepo,
		actorRepo:   actorRepo,
		cacheStore:  cacheStore,
		notifier:    notifier,
	}
}

// CreateTripRequest contains the parameters for posting a trip.
type CreateTripRequest struct {
	DriverID      string
	Origin        string
	Destination   string
	OriginCoords  *domain.Coordinates
	DestCoords    *domain.Coordinates
	DepartureTime time.Time
	Seats         int
	PricePerSeat  float64
}

// CreateTrip posts a new trip. Only drivers may post.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidActorID
	}

	if req.Seats <= 0 {
		return nil, ErrInvalidSeats
	}

	if req.DepartureTime.Before(time.Now()) {
		return nil, ErrDepartureInPast
	}

	role, err := s.actorRole(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if role != domain.RoleDriver {
		return nil, ErrNotADriver
	}

	trip := &domain.Trip{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		OriginCoords:   req.OriginCoords,
		DestCoords:     req.DestCoords,
		DepartureTime:  req.DepartureTime,
		Seats:          req.Seats,
		AvailableSeats: req.Seats,
		PricePerSeat:   req.PricePerSeat,
		Status:         domain.TripStatusScheduled,
		CreatedAt:      time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.publish(ctx, redis.OpInsert, trip.ID)

	return trip, nil
}

// GetTrip retrieves a trip by ID, trying the cache first. A hit is
// served without a store read; a miss populates the cache on the way
// out. Cache errors degrade to a plain store read.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetTrip(ctx, tripID); err == nil && cached != nil {
			return tripFromCache(cached), nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetTrip(ctx, cachedTrip(trip))
	}

	return trip, nil
}

// actorRole resolves an actor's role, trying the cache first. Roles
// never change after registration, so there is no invalidation path.
func (s *TripService) actorRole(ctx context.Context, actorID string) (domain.ActorRole, error) {
	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetActor(ctx, actorID); err == nil && cached != nil {
			return domain.ActorRole(cached.Role), nil
		}
	}

	actor, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return "", err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetActor(ctx, &redis.CachedActor{
			ID:    actor.ID,
			Name:  actor.Name,
			Phone: actor.Phone,
			Role:  string(actor.Role),
		})
	}

	return actor.Role, nil
}

func cachedTrip(trip *domain.Trip) *redis.CachedTrip {
	cached := &redis.CachedTrip{
		ID:             trip.ID,
		DriverID:       trip.DriverID,
		Origin:         trip.Origin,
		Destination:    trip.Destination,
		DepartureTime:  trip.DepartureTime,
		Seats:          trip.Seats,
		AvailableSeats: trip.AvailableSeats,
		PricePerSeat:   trip.PricePerSeat,
		Status:         string(trip.Status),
		CreatedAt:      trip.CreatedAt,
	}
	if trip.OriginCoords != nil {
		cached.OriginLat, cached.OriginLng = &trip.OriginCoords.Lat, &trip.OriginCoords.Lng
	}
	if trip.DestCoords != nil {
		cached.DestLat, cached.DestLng = &trip.DestCoords.Lat, &trip.DestCoords.Lng
	}
	return cached
}

func tripFromCache(cached *redis.CachedTrip) *domain.Trip {
	trip := &domain.Trip{
		ID:             cached.ID,
		DriverID:       cached.DriverID,
		Origin:         cached.Origin,
		Destination:    cached.Destination,
		DepartureTime:  cached.DepartureTime,
		Seats:          cached.Seats,
		AvailableSeats: cached.AvailableSeats,
		PricePerSeat:   cached.PricePerSeat,
		Status:         domain.TripStatus(cached.Status),
		CreatedAt:      cached.CreatedAt,
	}
	if cached.OriginLat != nil && cached.OriginLng != nil {
		trip.OriginCoords = &domain.Coordinates{Lat: *cached.OriginLat, Lng: *cached.OriginLng}
	}
	if cached.DestLat != nil && cached.DestLng != nil {
		trip.DestCoords = &domain.Coordinates{Lat: *cached.DestLat, Lng: *cached.DestLng}
	}
	return trip
}

// SearchTrips retrieves scheduled trips matching the filter.
func (s *TripService) SearchTrips(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	return s.tripRepo.Search(ctx, filter)
}

// TripsByDriver retrieves the trips posted by one driver.
func (s *TripService) TripsByDriver(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidActorID
	}
	return s.tripRepo.GetByDriverID(ctx, driverID)
}

// ChangeStatusRequest contains the parameters for a trip status change.
type ChangeStatusRequest struct {
	TripID  string
	ActorID string
	Status  domain.TripStatus
}

// tripTransitions lists the allowed driver-initiated status changes.
var tripTransitions = map[domain.TripStatus][]domain.TripStatus{
	domain.TripStatusScheduled: {domain.TripStatusActive, domain.TripStatusCancelled},
	domain.TripStatusActive:    {domain.TripStatusCompleted, domain.TripStatusCancelled},
}

// ChangeStatus applies a driver-initiated trip status transition.
func (s *TripService) ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != req.ActorID {
		return nil, ErrNotTripDriver
	}

	allowed := false
	for _, next := range tripTransitions[trip.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTripTransition
	}

	trip.Status = req.Status
	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	s.invalidate(ctx, trip.ID)
	s.publish(ctx, redis.OpUpdate, trip.ID)

	return trip, nil
}

// DeleteTrip removes a trip. Only the posting driver may delete, and
// only while no booking has been accepted.
func (s *TripService) DeleteTrip(ctx context.Context, tripID, actorID string) error {
	if tripID == "" {
		return ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}

	if trip.DriverID != actorID {
		return ErrNotTripDriver
	}

	accepted, err := s.bookingRepo.CountAcceptedByTripID(ctx, tripID)
	if err != nil {
		return err
	}
	if accepted > 0 {
		return ErrTripHasAcceptedBookings
	}

	if err := s.tripRepo.Delete(ctx, tripID); err != nil {
		return err
	}

	s.invalidate(ctx, tripID)
	s.publish(ctx, redis.OpDelete, tripID)

	return nil
}

func (s *TripService) invalidate(ctx context.Context, tripID string) {
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, tripID)
	}
}

func (s *TripService) publish(ctx context.Context, op redis.ChangeOp, tripID string) {
	if s.notifier != nil {
		_ = s.notifier.Publish(ctx, redis.ChangeEvent{
			Kind:     redis.KindTrips,
			Op:       op,
			RecordID: tripID,
		})
	}
}
