package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// 3. LIVE MAP PRESENTER EDGE CASES
// ──────────────────────────────────────────────

func TestLiveMapPresenter_StartFetchesAndSubscribes(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	notifier := NewMockNotifier()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	locationRepo.AddSample(&domain.LocationSample{ID: "s1", ActorID: "actor-1", Lat: 1, Lng: 1, RecordedAt: base})

	presenter := service.NewLiveMapPresenter(locationRepo, notifier, nil, repository.LocationFilter{})

	if presenter.Subscribed() {
		t.Error("expected presenter to start idle")
	}
	if len(presenter.Markers()) != 0 {
		t.Error("expected no markers before start")
	}

	if err := presenter.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !presenter.Subscribed() {
		t.Error("expected presenter to be subscribed after start")
	}
	if len(presenter.Markers()) != 1 {
		t.Errorf("expected 1 marker after the initial fetch, got %d", len(presenter.Markers()))
	}
}

func TestLiveMapPresenter_ChangeEventTriggersRefetch(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	notifier := NewMockNotifier()
	broadcaster := NewMockBroadcaster()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	locationRepo.AddSample(&domain.LocationSample{ID: "s1", ActorID: "actor-1", Lat: 1, Lng: 1, RecordedAt: base})

	presenter := service.NewLiveMapPresenter(locationRepo, notifier, broadcaster, repository.LocationFilter{})
	if err := presenter.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A newer sample lands and the change event arrives.
	locationRepo.AddSample(&domain.LocationSample{ID: "s2", ActorID: "actor-1", Lat: 2, Lng: 2, RecordedAt: base.Add(time.Second)})
	notifier.Emit(redis.ChangeEvent{Kind: redis.KindLocations, Op: redis.OpInsert, RecordID: "s2", ActorID: "actor-1"})

	markers := presenter.Markers()
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	if markers[0].Lat != 2 || markers[0].Lng != 2 {
		t.Errorf("expected marker to move to (2,2), got (%v,%v)", markers[0].Lat, markers[0].Lng)
	}

	// Each refresh pushed a full snapshot to connected clients.
	if len(broadcaster.Snapshots()) != 2 {
		t.Errorf("expected 2 broadcasts (initial fetch plus refetch), got %d", len(broadcaster.Snapshots()))
	}
}

func TestLiveMapPresenter_RefreshReplacesWholeSet(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	locationRepo.AddSample(&domain.LocationSample{ID: "s1", ActorID: "actor-1", TripID: "trip-1", Lat: 1, Lng: 1, RecordedAt: base})
	locationRepo.AddSample(&domain.LocationSample{ID: "s2", ActorID: "actor-2", TripID: "trip-2", Lat: 2, Lng: 2, RecordedAt: base})

	// The filter scopes the presenter to trip-1 only; actor-2 must never
	// leak into the marker set.
	presenter := service.NewLiveMapPresenter(locationRepo, NewMockNotifier(), nil, repository.LocationFilter{TripID: "trip-1"})
	if err := presenter.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	markers := presenter.Markers()
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	if markers[0].ActorID != "actor-1" {
		t.Errorf("expected only actor-1, got %s", markers[0].ActorID)
	}
}

func TestLiveMapPresenter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	locationRepo := NewMockLocationRepository()
	notifier := NewMockNotifier()

	presenter := service.NewLiveMapPresenter(locationRepo, notifier, nil, repository.LocationFilter{})
	if err := presenter.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.ActiveSubscriptions() != 1 {
		t.Fatalf("expected 1 active subscription, got %d", notifier.ActiveSubscriptions())
	}

	presenter.Stop()
	presenter.Stop()
	presenter.Stop()

	if presenter.Subscribed() {
		t.Error("expected presenter to be idle after stop")
	}
	if notifier.ActiveSubscriptions() != 0 {
		t.Errorf("expected 0 active subscriptions after stop, got %d", notifier.ActiveSubscriptions())
	}
}

func TestLiveMapPresenter_ConcurrentStart_SingleSubscription(t *testing.T) {
	t.Parallel()

	notifier := NewMockNotifier()
	presenter := service.NewLiveMapPresenter(NewMockLocationRepository(), notifier, nil, repository.LocationFilter{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := presenter.Start(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if notifier.ActiveSubscriptions() != 1 {
		t.Fatalf("expected exactly 1 live subscription, got %d", notifier.ActiveSubscriptions())
	}

	// A single stop retires the only subscription; none leaked.
	presenter.Stop()
	if notifier.ActiveSubscriptions() != 0 {
		t.Errorf("expected 0 subscriptions after stop, got %d", notifier.ActiveSubscriptions())
	}
}

func TestLiveMapPresenter_RestartAfterStop(t *testing.T) {
	t.Parallel()

	presenter := service.NewLiveMapPresenter(NewMockLocationRepository(), NewMockNotifier(), nil, repository.LocationFilter{})

	if err := presenter.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	presenter.Stop()

	if err := presenter.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error on restart: %v", err)
	}
	if !presenter.Subscribed() {
		t.Error("expected presenter to be subscribed after restart")
	}
}

// ──────────────────────────────────────────────
// 4. VIEWPORT SELECTION
// ──────────────────────────────────────────────

func TestViewportFor_TripRouteFitsBounds(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{
		OriginCoords: &domain.Coordinates{Lat: 12.9716, Lng: 77.5946},
		DestCoords:   &domain.Coordinates{Lat: 13.1986, Lng: 77.7066},
	}

	viewport, ok := service.ViewportFor(trip, nil)
	if !ok {
		t.Fatal("expected a viewport for a trip with both endpoints")
	}

	wantLat := (12.9716 + 13.1986) / 2
	wantLng := (77.5946 + 77.7066) / 2
	if viewport.CenterLat != wantLat || viewport.CenterLng != wantLng {
		t.Errorf("expected center (%v,%v), got (%v,%v)", wantLat, wantLng, viewport.CenterLat, viewport.CenterLng)
	}
	if viewport.Zoom <= 0 || viewport.Zoom > 16 {
		t.Errorf("expected zoom in (0,16], got %v", viewport.Zoom)
	}
}

func TestViewportFor_IdenticalEndpoints_MaxZoom(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{
		OriginCoords: &domain.Coordinates{Lat: 12.9716, Lng: 77.5946},
		DestCoords:   &domain.Coordinates{Lat: 12.9716, Lng: 77.5946},
	}

	viewport, ok := service.ViewportFor(trip, nil)
	if !ok {
		t.Fatal("expected a viewport")
	}
	if viewport.Zoom != 16 {
		t.Errorf("expected the zoom cap for a zero-span route, got %v", viewport.Zoom)
	}
}

func TestViewportFor_SelfPositionFallback(t *testing.T) {
	t.Parallel()

	// Without route coordinates, the viewer's own position is centered.
	trip := &domain.Trip{OriginCoords: &domain.Coordinates{Lat: 1, Lng: 1}}
	self := &domain.Coordinates{Lat: 12.9716, Lng: 77.5946}

	viewport, ok := service.ViewportFor(trip, self)
	if !ok {
		t.Fatal("expected a viewport from the self position")
	}
	if viewport.CenterLat != self.Lat || viewport.CenterLng != self.Lng {
		t.Errorf("expected center on self position, got (%v,%v)", viewport.CenterLat, viewport.CenterLng)
	}
	if viewport.Zoom != 15 {
		t.Errorf("expected the self-center zoom, got %v", viewport.Zoom)
	}
}

func TestViewportFor_NoInputs_KeepsPrevious(t *testing.T) {
	t.Parallel()

	_, ok := service.ViewportFor(nil, nil)
	if ok {
		t.Error("expected ok=false with neither a route nor a self position")
	}
}
