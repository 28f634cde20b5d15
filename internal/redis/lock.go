package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis. The location ingest
// path locks per actor so two submissions for the same actor cannot
// race each other into the store out of order.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireActorLock attempts to acquire the submit lock for the given actor.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireActorLock(ctx context.Context, actorID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:actor:%s", actorID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseActorLock releases the submit lock for the given actor.
func (s *LockStore) ReleaseActorLock(ctx context.Context, actorID string) error {
	key := fmt.Sprintf("lock:actor:%s", actorID)

	return s.client.Del(ctx, key).Err()
}
