package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 7. TRIP AND ACTOR CACHE READ-THROUGH
// ──────────────────────────────────────────────

func TestTrip_GetTrip_CacheHitSkipsStore(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo := newTripFixture()
	cacheStore := NewMockCacheStore()

	// The trip exists only in the cache; a store read would 404.
	lat, lng := 12.9716, 77.5946
	cacheStore.AddTrip(&redis.CachedTrip{
		ID:             "trip-1",
		DriverID:       "driver-1",
		Origin:         "Bangalore",
		Destination:    "Mysore",
		OriginLat:      &lat,
		OriginLng:      &lng,
		DepartureTime:  time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Seats:          3,
		AvailableSeats: 2,
		PricePerSeat:   250,
		Status:         string(domain.TripStatusScheduled),
	})

	tripService := service.NewTripService(tripRepo, bookingRepo, actorRepo, cacheStore, nil)

	trip, err := tripService.GetTrip(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Origin != "Bangalore" || trip.AvailableSeats != 2 {
		t.Errorf("expected the cached record, got %+v", trip)
	}
	if trip.OriginCoords == nil || trip.OriginCoords.Lat != lat {
		t.Error("expected cached coordinates to survive the round trip")
	}
	if trip.Status != domain.TripStatusScheduled {
		t.Errorf("expected status SCHEDULED, got %s", trip.Status)
	}
}

func TestTrip_GetTrip_CacheMissPopulates(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo := newTripFixture()
	cacheStore := NewMockCacheStore()

	tripRepo.AddTrip(&domain.Trip{
		ID:             "trip-1",
		DriverID:       "driver-1",
		Origin:         "Bangalore",
		Destination:    "Mysore",
		DepartureTime:  time.Now().Add(24 * time.Hour),
		Seats:          3,
		AvailableSeats: 3,
		Status:         domain.TripStatusScheduled,
	})

	tripService := service.NewTripService(tripRepo, bookingRepo, actorRepo, cacheStore, nil)

	if _, err := tripService.GetTrip(context.Background(), "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cacheStore.GetTripCallCount != 1 {
		t.Errorf("expected the cache to be consulted first, GetTrip called %d times", cacheStore.GetTripCallCount)
	}
	if !cacheStore.HasTrip("trip-1") {
		t.Error("expected the miss to populate the cache")
	}

	// The second read is served from the cache.
	if _, err := tripService.GetTrip(context.Background(), "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cacheStore.SetTripCallCount != 1 {
		t.Errorf("expected no second cache write on a hit, SetTrip called %d times", cacheStore.SetTripCallCount)
	}
}

func TestTrip_CreateTrip_DriverRoleFromCache(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo := newTripFixture()
	cacheStore := NewMockCacheStore()

	// The role check is answered entirely from the cache; the actor
	// repository holds no matching record.
	cacheStore.AddActor(&redis.CachedActor{ID: "cached-driver", Name: "Cached", Phone: "333", Role: string(domain.RoleDriver)})

	tripService := service.NewTripService(tripRepo, bookingRepo, actorRepo, cacheStore, nil)

	trip, err := tripService.CreateTrip(context.Background(), service.CreateTripRequest{
		DriverID:      "cached-driver",
		Origin:        "Bangalore",
		Destination:   "Mysore",
		DepartureTime: time.Now().Add(24 * time.Hour),
		Seats:         3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.DriverID != "cached-driver" {
		t.Errorf("expected cached-driver, got %s", trip.DriverID)
	}
	if cacheStore.GetActorCallCount != 1 {
		t.Errorf("expected 1 actor cache read, got %d", cacheStore.GetActorCallCount)
	}
}

func TestTrip_CreateTrip_ActorCachePopulatedOnMiss(t *testing.T) {
	t.Parallel()

	tripRepo, bookingRepo, actorRepo := newTripFixture()
	cacheStore := NewMockCacheStore()
	tripService := service.NewTripService(tripRepo, bookingRepo, actorRepo, cacheStore, nil)

	if _, err := tripService.CreateTrip(context.Background(), service.CreateTripRequest{
		DriverID:      "driver-1",
		Origin:        "Bangalore",
		Destination:   "Mysore",
		DepartureTime: time.Now().Add(24 * time.Hour),
		Seats:         3,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cacheStore.SetActorCallCount != 1 {
		t.Errorf("expected the miss to cache the actor, SetActor called %d times", cacheStore.SetActorCallCount)
	}

	// A passenger role served from the cache still fails the gate.
	cacheStore.AddActor(&redis.CachedActor{ID: "passenger-1", Role: string(domain.RolePassenger)})
	_, err := tripService.CreateTrip(context.Background(), service.CreateTripRequest{
		DriverID:      "passenger-1",
		Origin:        "Bangalore",
		Destination:   "Mysore",
		DepartureTime: time.Now().Add(24 * time.Hour),
		Seats:         3,
	})
	if !errors.Is(err, service.ErrNotADriver) {
		t.Fatalf("expected ErrNotADriver, got %v", err)
	}
}
