package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func tripLockKey(tripID, day string) string {
	return fmt.Sprintf("lock:trip:%s:%s", tripID, day)
}

// AcquireTripLock attempts to lock seat booking for one trip departure day.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireTripLock(ctx context.Context, tripID, day string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, tripLockKey(tripID, day), "1", ttl).Result()
}

// ReleaseTripLock releases the lock for a trip departure day.
func (s *LockStore) ReleaseTripLock(ctx context.Context, tripID, day string) error {
	return s.client.Del(ctx, tripLockKey(tripID, day)).Err()
}
