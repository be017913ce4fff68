package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// earthRadiusMeters matches the radius the Redis GEO commands use, so
// distances computed here agree with the index at the radius boundary.
const earthRadiusMeters = 6372797.560856

// cellPrecision of 7 characters is a cell of roughly 150m x 150m.
const cellPrecision = 7

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b domain.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether p lies within radiusMeters of center.
func WithinRadius(center, p domain.Coordinates, radiusMeters float64) bool {
	return DistanceMeters(center, p) <= radiusMeters
}

// Cell returns the geohash cell containing c.
func Cell(c domain.Coordinates) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, cellPrecision)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
