package service

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// Marker is one rendered actor position on the live map.
type Marker struct {
	ActorID    string           `json:"actor_id"`
	Role       domain.ActorRole `json:"role,omitempty"`
	Lat        float64          `json:"lat"`
	Lng        float64          `json:"lng"`
	Heading    *float64         `json:"heading,omitempty"`
	Moving     bool             `json:"moving"` // styling only
	RecordedAt time.Time        `json:"recorded_at"`
}

// Viewport describes where the map should look.
type Viewport struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	Zoom      float64 `json:"zoom"`
}

const (
	selfCenterZoom  = 15.0
	fitMaxZoom      = 16.0
	fitPaddingRatio = 1.25
)

// Broadcaster pushes a fresh marker snapshot to connected clients.
type Broadcaster interface {
	BroadcastMarkers(markers []Marker)
}

// LiveMapPresenter maintains the in-memory latest-position view for one
// map screen. It is Idle until Start subscribes it to location change
// events; every event triggers a refetch and an atomic swap of the
// marker set. Stop returns it to Idle and is idempotent.
type LiveMapPresenter struct {
	locationRepo repository.LocationRepository
	notifier     redis.NotifierInterface
	broadcaster  Broadcaster
	filter       repository.LocationFilter

	// lifecycleMu serializes Start and Stop; mu alone would not help
	// because Start must not hold it across the subscribe call.
	lifecycleMu sync.Mutex

	mu      sync.RWMutex
	markers map[string]Marker
	sub     redis.SubscriptionHandle
}

// NewLiveMapPresenter creates a presenter over the given filter. The
// broadcaster may be nil.
func NewLiveMapPresenter(
	locationRepo repository.LocationRepository,
	notifier redis.NotifierInterface,
	broadcaster Broadcaster,
	filter repository.LocationFilter,
) *LiveMapPresenter {
	return &LiveMapPresenter{
		locationRepo: locationRepo,
		notifier:     notifier,
		broadcaster:  broadcaster,
		filter:       filter,
		markers:      make(map[string]Marker),
	}
}

// Start does the initial full fetch and subscribes to location change
// events. Missed notifications are tolerated because of this initial
// fetch. Calling Start while already subscribed is a no-op.
func (p *LiveMapPresenter) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.mu.RLock()
	started := p.sub != nil
	p.mu.RUnlock()
	if started {
		return nil
	}

	if err := p.Refresh(ctx); err != nil {
		return err
	}

	sub, err := p.notifier.Subscribe(ctx, redis.KindLocations, func(redis.ChangeEvent) {
		// Events carry no ordering guarantee; each one just triggers a
		// refetch. Overlapping refreshes are last-completed-wins.
		if err := p.Refresh(context.Background()); err != nil {
			log.Printf("livemap: refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()

	return nil
}

// Stop unsubscribes and returns the presenter to Idle. Safe to call
// repeatedly and concurrently.
func (p *LiveMapPresenter) Stop() {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// Subscribed reports whether the presenter currently holds a subscription.
func (p *LiveMapPresenter) Subscribed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sub != nil
}

// Refresh re-runs the latest-per-actor query and replaces the marker
// set in one swap, so no stale marker survives past the refresh.
func (p *LiveMapPresenter) Refresh(ctx context.Context) error {
	samples, err := p.locationRepo.LatestPerActor(ctx, p.filter)
	if err != nil {
		return err
	}

	// The repo already deduplicates, but input ordering is not part of
	// its contract; reduce again by greatest timestamp to be safe.
	latest := domain.LatestPerActor(samples)

	markers := make(map[string]Marker, len(latest))
	for actorID, s := range latest {
		markers[actorID] = Marker{
			ActorID:    actorID,
			Role:       p.filter.Role,
			Lat:        s.Lat,
			Lng:        s.Lng,
			Heading:    s.Heading,
			Moving:     s.Moving(),
			RecordedAt: s.RecordedAt,
		}
	}

	p.mu.Lock()
	p.markers = markers
	p.mu.Unlock()

	if p.broadcaster != nil {
		p.broadcaster.BroadcastMarkers(snapshot(markers))
	}

	return nil
}

// Markers returns the current marker snapshot.
func (p *LiveMapPresenter) Markers() []Marker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return snapshot(p.markers)
}

func snapshot(m map[string]Marker) []Marker {
	out := make([]Marker, 0, len(m))
	for _, marker := range m {
		out = append(out, marker)
	}
	return out
}

// ViewportFor picks the viewport for the current screen: a selected
// trip with both endpoints fits the route with padding capped at the
// maximum zoom, otherwise the viewer's own position is centered at a
// fixed zoom. Recentering is best-effort; with neither input available
// the previous viewport simply stays (ok is false).
func ViewportFor(trip *domain.Trip, selfPos *domain.Coordinates) (Viewport, bool) {
	if trip != nil && trip.HasRoute() {
		return fitBounds(*trip.OriginCoords, *trip.DestCoords), true
	}

	if selfPos != nil {
		return Viewport{CenterLat: selfPos.Lat, CenterLng: selfPos.Lng, Zoom: selfCenterZoom}, true
	}

	return Viewport{}, false
}

// fitBounds centers between the two points and picks the largest zoom
// that keeps both in view with padding, capped at fitMaxZoom.
func fitBounds(a, b domain.Coordinates) Viewport {
	center := Viewport{
		CenterLat: (a.Lat + b.Lat) / 2,
		CenterLng: (a.Lng + b.Lng) / 2,
	}

	latSpan := math.Abs(a.Lat-b.Lat) * fitPaddingRatio
	lngSpan := math.Abs(a.Lng-b.Lng) * fitPaddingRatio

	zoom := fitMaxZoom
	if latSpan > 0 {
		zoom = math.Min(zoom, math.Log2(180/latSpan))
	}
	if lngSpan > 0 {
		zoom = math.Min(zoom, math.Log2(360/lngSpan))
	}
	if zoom < 1 {
		zoom = 1
	}

	center.Zoom = math.Floor(zoom*10) / 10
	return center
}
