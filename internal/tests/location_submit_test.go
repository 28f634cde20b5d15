package tests

import (
	"context"
	"errors"
	"testing"

	"carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 1. LOCATION SAMPLE SUBMISSION EDGE CASES
// ──────────────────────────────────────────────

func TestSubmitSample_InsecureContext_NothingPersisted(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	lockStore := NewMockLockStore()
	notifier := NewMockNotifier()

	locationService := service.NewLocationService(locationRepo, lockStore, notifier)

	_, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
		ActorID: "actor-1",
		Lat:     12.9716,
		Lng:     77.5946,
		Secure:  false,
	})
	if !errors.Is(err, service.ErrInsecureContext) {
		t.Fatalf("expected ErrInsecureContext, got %v", err)
	}

	// The operation must not start at all: no lock, no row, no event.
	if lockStore.AcquireCallCount != 0 {
		t.Error("expected no lock acquisition over an insecure transport")
	}
	if locationRepo.CountSamples() != 0 {
		t.Error("expected no sample to be persisted")
	}
	if len(notifier.Published()) != 0 {
		t.Error("expected no change event to be published")
	}
}

func TestSubmitSample_InvalidCoordinates_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"latitude above range", 91.0, 77.5946},
		{"latitude below range", -91.0, 77.5946},
		{"longitude above range", 12.9716, 181.0},
		{"longitude below range", 12.9716, -181.0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			locationRepo := NewMockLocationRepository()
			locationService := service.NewLocationService(locationRepo, NewMockLockStore(), NewMockNotifier())

			_, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
				ActorID: "actor-1",
				Lat:     tc.lat,
				Lng:     tc.lng,
				Secure:  true,
			})
			if !errors.Is(err, service.ErrInvalidLocation) {
				t.Fatalf("expected ErrInvalidLocation, got %v", err)
			}
			if locationRepo.CountSamples() != 0 {
				t.Error("expected no sample to be persisted")
			}
		})
	}
}

func TestSubmitSample_ActorLockHeld_Conflict(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	lockStore := NewMockLockStore()
	lockStore.HoldLock("actor-1")

	locationService := service.NewLocationService(locationRepo, lockStore, NewMockNotifier())

	_, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
		ActorID: "actor-1",
		Lat:     12.9716,
		Lng:     77.5946,
		Secure:  true,
	})
	if !errors.Is(err, service.ErrSampleInFlight) {
		t.Fatalf("expected ErrSampleInFlight, got %v", err)
	}
	if locationRepo.CountSamples() != 0 {
		t.Error("expected no sample to be persisted while a submission is in flight")
	}
}

func TestSubmitSample_StoreRejection_SurfacesWriteRejected(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	locationRepo.InsertError = repository.ErrWriteRejected
	notifier := NewMockNotifier()

	locationService := service.NewLocationService(locationRepo, NewMockLockStore(), notifier)

	_, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
		ActorID: "actor-1",
		Lat:     12.9716,
		Lng:     77.5946,
		Secure:  true,
	})
	if !errors.Is(err, service.ErrLocationWriteRejected) {
		t.Fatalf("expected ErrLocationWriteRejected, got %v", err)
	}
	if len(notifier.Published()) != 0 {
		t.Error("expected no change event after a rejected write")
	}
}

func TestSubmitSample_Success_AppendsAndPublishes(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	lockStore := NewMockLockStore()
	notifier := NewMockNotifier()

	locationService := service.NewLocationService(locationRepo, lockStore, notifier)

	sample, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
		ActorID: "actor-1",
		TripID:  "trip-1",
		Lat:     12.9716,
		Lng:     77.5946,
		Secure:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sample.ID == "" {
		t.Error("expected sample to be assigned an id")
	}
	if sample.RecordedAt.IsZero() {
		t.Error("expected a recorded_at timestamp to be assigned")
	}
	if locationRepo.CountSamples() != 1 {
		t.Errorf("expected 1 persisted sample, got %d", locationRepo.CountSamples())
	}

	// Lock held for the duration of the write and released after.
	if lockStore.AcquireCallCount != 1 {
		t.Errorf("expected 1 lock acquisition, got %d", lockStore.AcquireCallCount)
	}
	if lockStore.ReleaseCallCount != 1 {
		t.Errorf("expected 1 lock release, got %d", lockStore.ReleaseCallCount)
	}

	events := notifier.Published()
	if len(events) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(events))
	}
	if events[0].Kind != redis.KindLocations {
		t.Errorf("expected event kind %s, got %s", redis.KindLocations, events[0].Kind)
	}
	if events[0].ActorID != "actor-1" {
		t.Errorf("expected event actor actor-1, got %s", events[0].ActorID)
	}
}

func TestSubmitSample_SecondSampleIsNewRow(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	locationService := service.NewLocationService(locationRepo, NewMockLockStore(), NewMockNotifier())

	for _, lat := range []float64{12.9716, 12.9720} {
		_, err := locationService.SubmitSample(context.Background(), service.SubmitSampleRequest{
			ActorID: "actor-1",
			Lat:     lat,
			Lng:     77.5946,
			Secure:  true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Append-only: a newer position never overwrites the older row.
	if locationRepo.CountSamples() != 2 {
		t.Errorf("expected 2 rows after 2 submissions, got %d", locationRepo.CountSamples())
	}
}
