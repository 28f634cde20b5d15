package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	TripCacheTTL  = 30 * time.Second // seats change on every accept/cancel
	ActorCacheTTL = 5 * time.Minute  // directory records rarely change
)

// Key prefixes
const (
	tripCachePrefix  = "cache:trip:"
	actorCachePrefix = "cache:actor:"
)

// CachedTrip represents a cached trip entity. It carries the full
// record so a cache hit can be served without touching the store.
type CachedTrip struct {
	ID             string    `json:"id"`
	DriverID       string    `json:"driver_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	OriginLat      *float64  `json:"origin_lat,omitempty"`
	OriginLng      *float64  `json:"origin_lng,omitempty"`
	DestLat        *float64  `json:"dest_lat,omitempty"`
	DestLng        *float64  `json:"dest_lng,omitempty"`
	DepartureTime  time.Time `json:"departure_time"`
	Seats          int       `json:"seats"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   float64   `json:"price_per_seat"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CachedActor represents a cached actor entity.
type CachedActor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// GetTrip retrieves a trip from cache.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*CachedTrip, error) {
	key := tripCachePrefix + tripID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedTrip
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// SetTrip stores a trip in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *CachedTrip) error {
	key := tripCachePrefix + trip.ID
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID).Err()
}

// GetActor retrieves an actor from cache.
func (s *CacheStore) GetActor(ctx context.Context, actorID string) (*CachedActor, error) {
	key := actorCachePrefix + actorID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedActor
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// SetActor stores an actor in cache.
func (s *CacheStore) SetActor(ctx context.Context, actor *CachedActor) error {
	key := actorCachePrefix + actor.ID
	data, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ActorCacheTTL).Err()
}

