package maps

import (
	"context"
	"time"
)

// TravelCache stores travel estimates by place pair.
type TravelCache interface {
	GetTravel(ctx context.Context, key string) (*TravelInfo, error)
	SetTravel(ctx context.Context, key string, info TravelInfo, ttl time.Duration) error
}

// CachedClient serves repeated travel lookups from a cache. Geocoding
// passes through to the wrapped client.
type CachedClient struct {
	ClientInterface
	cache TravelCache
	ttl   time.Duration
}

// NewCachedClient wraps next with a travel cache.
func NewCachedClient(next ClientInterface, cache TravelCache, ttl time.Duration) *CachedClient {
	return &CachedClient{ClientInterface: next, cache: cache, ttl: ttl}
}

// TravelInfo returns a cached estimate or asks the wrapped client.
// Empty estimates are not cached.
func (c *CachedClient) TravelInfo(ctx context.Context, from, to Place) TravelInfo {
	key := from.CacheKey() + "|" + to.CacheKey()

	if cached, err := c.cache.GetTravel(ctx, key); err == nil && cached != nil {
		return *cached
	}

	info := c.ClientInterface.TravelInfo(ctx, from, to)
	if info != (TravelInfo{}) {
		_ = c.cache.SetTravel(ctx, key, info, c.ttl)
	}

	return info
}
