package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
)

// BusLocationsCacheTTL bounds how stale the endpoint picker can be.
const BusLocationsCacheTTL = 60 * time.Second

// Key prefixes
const (
	travelCachePrefix = "cache:travel:"
	busLocationsKey   = "cache:bus:locations"
	idempotencyPrefix = "idempotency:"
)

// IdempotentResponse is a stored response replayed for a repeated request.
type IdempotentResponse struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// CacheStore handles short-lived caches in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// GetTravel retrieves a travel estimate. Returns nil on a cache miss.
func (s *CacheStore) GetTravel(ctx context.Context, key string) (*maps.TravelInfo, error) {
	var info maps.TravelInfo
	found, err := s.getJSON(ctx, travelCachePrefix+key, &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// SetTravel stores a travel estimate.
func (s *CacheStore) SetTravel(ctx context.Context, key string, info maps.TravelInfo, ttl time.Duration) error {
	return s.setJSON(ctx, travelCachePrefix+key, info, ttl)
}

// GetBusLocations retrieves the cached endpoint picker. Returns nil on a cache miss.
func (s *CacheStore) GetBusLocations(ctx context.Context) (*domain.BusLocations, error) {
	var locations domain.BusLocations
	found, err := s.getJSON(ctx, busLocationsKey, &locations)
	if err != nil || !found {
		return nil, err
	}
	return &locations, nil
}

// SetBusLocations stores the endpoint picker.
func (s *CacheStore) SetBusLocations(ctx context.Context, locations *domain.BusLocations) error {
	return s.setJSON(ctx, busLocationsKey, locations, BusLocationsCacheTTL)
}

// InvalidateBusLocations drops the endpoint picker after a template change.
func (s *CacheStore) InvalidateBusLocations(ctx context.Context) error {
	return s.client.Del(ctx, busLocationsKey).Err()
}

// GetResponse retrieves a stored response. Returns nil when none exists.
func (s *CacheStore) GetResponse(ctx context.Context, key string) (*IdempotentResponse, error) {
	var response IdempotentResponse
	found, err := s.getJSON(ctx, idempotencyPrefix+key, &response)
	if err != nil || !found {
		return nil, err
	}
	return &response, nil
}

// SetResponse stores a response for replay.
func (s *CacheStore) SetResponse(ctx context.Context, key string, response *IdempotentResponse, ttl time.Duration) error {
	return s.setJSON(ctx, idempotencyPrefix+key, response, ttl)
}

func (s *CacheStore) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // Cache miss
		}
		return false, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}
