package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// submitLockTTL bounds how long a crashed submission can block an
// actor's next sample.
const submitLockTTL = 5 * time.Second

// LocationService handles location sample ingest.
type LocationService struct {
	locationRepo repository.LocationRepository
	lockStore    redis.LockStoreInterface
	notifier     redis.NotifierInterface
}

// NewLocationService creates a new LocationService.
func NewLocationService(
	locationRepo repository.LocationRepository,
	lockStore redis.LockStoreInterface,
	notifier redis.NotifierInterface,
) *LocationService {
	return &LocationService{
		locationRepo: locationRepo,
		lockStore:    lockStore,
		notifier:     notifier,
	}
}

// SubmitSampleRequest contains the parameters for submitting a location sample.
type SubmitSampleRequest struct {
	ActorID    string
	TripID     string // optional
	Lat        float64
	Lng        float64
	Heading    *float64
	Speed      *float64
	RecordedAt time.Time // zero value means now
	Secure     bool      // whether the request arrived over a secure transport
}

// SubmitSample appends one location sample row. It never updates an
// existing row. A store rejection surfaces as ErrLocationWriteRejected
// so the caller can stop its sharing stream; there is no retry here.
func (s *LocationService) SubmitSample(ctx context.Context, req SubmitSampleRequest) (*domain.LocationSample, error) {
	if !req.Secure {
		return nil, ErrInsecureContext
	}

	if req.ActorID == "" {
		return nil, ErrInvalidActorID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return nil, ErrInvalidLocation
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	// Serialize submissions per actor so two in-flight samples cannot
	// land in the store out of order.
	if s.lockStore != nil {
		acquired, err := s.lockStore.AcquireActorLock(ctx, req.ActorID, submitLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrSampleInFlight
		}
		defer func() {
			_ = s.lockStore.ReleaseActorLock(ctx, req.ActorID)
		}()
	}

	sample := &domain.LocationSample{
		ID:         uuid.New().String(),
		ActorID:    req.ActorID,
		TripID:     req.TripID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Heading:    req.Heading,
		Speed:      req.Speed,
		RecordedAt: recordedAt,
	}

	if err := s.locationRepo.Insert(ctx, sample); err != nil {
		if errors.Is(err, repository.ErrWriteRejected) {
			return nil, ErrLocationWriteRejected
		}
		return nil, err
	}

	// Best effort: subscribers also do a full fetch on start, so a
	// dropped notification only delays the next refresh.
	if s.notifier != nil {
		_ = s.notifier.Publish(ctx, redis.ChangeEvent{
			Kind:     redis.KindLocations,
			Op:       redis.OpInsert,
			RecordID: sample.ID,
			ActorID:  sample.ActorID,
		})
	}

	return sample, nil
}

// LatestPositions returns the most recent sample per actor matching the filter.
func (s *LocationService) LatestPositions(ctx context.Context, filter repository.LocationFilter) ([]*domain.LocationSample, error) {
	return s.locationRepo.LatestPerActor(ctx, filter)
}

// History returns an actor's recent samples, newest first.
func (s *LocationService) History(ctx context.Context, actorID string, limit int) ([]*domain.LocationSample, error) {
	if actorID == "" {
		return nil, ErrInvalidActorID
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.locationRepo.HistoryByActor(ctx, actorID, limit)
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
