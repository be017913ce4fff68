package maps

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	gmaps "googlemaps.github.io/maps"

	"github.com/bugsbunnee/clickride-backend/internal/config"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/geo"
)

const statusOK = "OK"

// Place is either a free-text address or a coordinate pair.
type Place struct {
	Address     string
	Coordinates *domain.Coordinates
}

// AddressPlace builds a place from an address.
func AddressPlace(address string) Place {
	return Place{Address: address}
}

// PointPlace builds a place from coordinates.
func PointPlace(c domain.Coordinates) Place {
	return Place{Coordinates: &c}
}

func (p Place) query() string {
	if p.Coordinates != nil {
		return strconv.FormatFloat(p.Coordinates.Latitude, 'f', -1, 64) + "," +
			strconv.FormatFloat(p.Coordinates.Longitude, 'f', -1, 64)
	}
	return p.Address
}

// CacheKey identifies the place for caching. Points collapse to their geohash cell.
func (p Place) CacheKey() string {
	if p.Coordinates != nil {
		return "cell:" + geo.Cell(*p.Coordinates)
	}
	return "addr:" + strings.ToLower(strings.TrimSpace(p.Address))
}

// TravelInfo is the travel estimate between two places. The zero value
// is returned whenever the estimate is unavailable.
type TravelInfo struct {
	DurationText    string `json:"timeToLocationText"`
	DurationSeconds int    `json:"timeToLocationInSeconds"`
	DistanceText    string `json:"distanceToLocation"`
}

// GeocodedLocation is one geocoding match.
type GeocodedLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ClientInterface defines the travel and geocoding lookups. Implementations
// never fail: errors yield a zero TravelInfo or a nil slice.
type ClientInterface interface {
	TravelInfo(ctx context.Context, from, to Place) TravelInfo
	Geocode(ctx context.Context, addresses []string) []GeocodedLocation
}

// Client calls the Google distance matrix and geocoding APIs.
type Client struct {
	api     *gmaps.Client // nil when the client could not be configured
	timeout time.Duration
}

// NewClient creates a new Client. Outgoing calls are reported to New Relic
// as external segments when the request context carries a transaction.
// Without an API key every lookup yields the zero value.
func NewClient(cfg config.MapsConfig) *Client {
	opts := []gmaps.ClientOption{
		gmaps.WithAPIKey(cfg.APIKey),
		gmaps.WithHTTPClient(&http.Client{
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		}),
	}
	// The library appends /maps/api/... itself.
	if base := strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/maps/api"); base != "" {
		opts = append(opts, gmaps.WithBaseURL(base))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, gmaps.WithRateLimit(cfg.RateLimit))
	}

	api, err := gmaps.NewClient(opts...)
	if err != nil {
		log.Printf("[MAPS] travel and geocoding lookups disabled: %v", err)
	}
	return &Client{api: api, timeout: cfg.Timeout}
}

// TravelInfo returns the fastest route estimate from one place to another.
func (c *Client) TravelInfo(ctx context.Context, from, to Place) TravelInfo {
	if c.api == nil {
		return TravelInfo{}
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.DistanceMatrix(ctx, &gmaps.DistanceMatrixRequest{
		Origins:      []string{from.query()},
		Destinations: []string{to.query()},
	})
	if err != nil {
		log.Printf("[MAPS] distance matrix failed: %v", err)
		return TravelInfo{}
	}
	if len(resp.Rows) == 0 {
		return TravelInfo{}
	}

	var fastest *gmaps.DistanceMatrixElement
	for _, element := range resp.Rows[0].Elements {
		if element == nil || element.Status != statusOK {
			continue
		}
		if fastest == nil || element.Duration < fastest.Duration {
			fastest = element
		}
	}
	if fastest == nil {
		return TravelInfo{}
	}

	return TravelInfo{
		DurationText:    durationText(fastest.Duration),
		DurationSeconds: int(fastest.Duration / time.Second),
		DistanceText:    fastest.Distance.HumanReadable,
	}
}

// Geocode resolves the comma-joined addresses. It returns nil when the
// lookup fails or yields no match.
func (c *Client) Geocode(ctx context.Context, addresses []string) []GeocodedLocation {
	if c.api == nil {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	results, err := c.api.Geocode(ctx, &gmaps.GeocodingRequest{Address: strings.Join(addresses, ",")})
	if err != nil {
		log.Printf("[MAPS] geocode failed: %v", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	locations := make([]GeocodedLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, GeocodedLocation{
			Address:   r.FormattedAddress,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		})
	}

	return locations
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

// durationText renders a duration the way the distance matrix API labels
// it: "1 min", "18 mins", "1 hour 5 mins", "2 days 3 hours".
func durationText(d time.Duration) string {
	mins := int(d.Round(time.Minute) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	days, hours := mins/(24*60), mins/60%24
	mins %= 60

	switch {
	case days > 0 && hours > 0:
		return plural(days, "day") + " " + plural(hours, "hour")
	case days > 0:
		return plural(days, "day")
	case hours > 0 && mins > 0:
		return plural(hours, "hour") + " " + plural(mins, "min")
	case hours > 0:
		return plural(hours, "hour")
	default:
		return plural(mins, "min")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

var _ ClientInterface = (*Client)(nil)
