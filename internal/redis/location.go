package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

const userLocationKey = "users:locations"

// UserLocation is a user's indexed position and its distance from a search center.
type UserLocation struct {
	UserID      string
	Coordinates domain.Coordinates
	DistanceKm  float64
}

// LocationStore is the geospatial index of user positions.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a user's position using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, userID string, c domain.Coordinates) error {
	return s.client.GeoAdd(ctx, userLocationKey, &redis.GeoLocation{
		Name:      userID,
		Longitude: c.Longitude,
		Latitude:  c.Latitude,
	}).Err()
}

// SearchRadius returns users within radiusMeters of center, farthest first.
func (s *LocationStore) SearchRadius(ctx context.Context, center domain.Coordinates, radiusMeters float64) ([]UserLocation, error) {
	results, err := s.client.GeoSearchLocation(ctx, userLocationKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  center.Longitude,
			Latitude:   center.Latitude,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "DESC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]UserLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, UserLocation{
			UserID: r.Name,
			Coordinates: domain.Coordinates{
				Longitude: r.Longitude,
				Latitude:  r.Latitude,
			},
			DistanceKm: r.Dist / 1000,
		})
	}

	return locations, nil
}

// RemoveLocation removes a user from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, userID string) error {
	return s.client.ZRem(ctx, userLocationKey, userID).Err()
}
