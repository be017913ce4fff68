package redis

import (
	"context"
	"time"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
)

// LocationStoreInterface defines the interface for user location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, userID string, c domain.Coordinates) error
	SearchRadius(ctx context.Context, center domain.Coordinates, radiusMeters float64) ([]UserLocation, error)
	RemoveLocation(ctx context.Context, userID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID, day string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID, day string) error
}

// BusLocationsCache defines the endpoint picker cache.
type BusLocationsCache interface {
	GetBusLocations(ctx context.Context) (*domain.BusLocations, error)
	SetBusLocations(ctx context.Context, locations *domain.BusLocations) error
	InvalidateBusLocations(ctx context.Context) error
}

// IdempotencyStore stores responses replayed for repeated mutating requests.
type IdempotencyStore interface {
	GetResponse(ctx context.Context, key string) (*IdempotentResponse, error)
	SetResponse(ctx context.Context, key string, response *IdempotentResponse, ttl time.Duration) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ BusLocationsCache      = (*CacheStore)(nil)
	_ IdempotencyStore       = (*CacheStore)(nil)
	_ maps.TravelCache       = (*CacheStore)(nil)
)
