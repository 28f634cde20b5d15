package redis

import (
	"context"
	"time"
)

// NotifierInterface defines the change-notification operations the
// services depend on.
type NotifierInterface interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context, kind RecordKind, handler func(ChangeEvent)) (SubscriptionHandle, error)
}

// CacheStoreInterface defines the read-through cache operations the
// services depend on. A miss is (nil, nil).
type CacheStoreInterface interface {
	GetTrip(ctx context.Context, tripID string) (*CachedTrip, error)
	SetTrip(ctx context.Context, trip *CachedTrip) error
	InvalidateTrip(ctx context.Context, tripID string) error
	GetActor(ctx context.Context, actorID string) (*CachedActor, error)
	SetActor(ctx context.Context, actor *CachedActor) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireActorLock(ctx context.Context, actorID string, ttl time.Duration) (bool, error)
	ReleaseActorLock(ctx context.Context, actorID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ NotifierInterface   = (*Notifier)(nil)
	_ SubscriptionHandle  = (*Subscription)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
