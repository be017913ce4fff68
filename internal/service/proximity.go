package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/config"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/geo"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// Filter is one predicate of a proximity query. All filters must hold.
type Filter func(d *domain.DriverDetails) bool

// HasProfileKind keeps drivers whose profile is of the given kind.
func HasProfileKind(kind domain.ProfileKind) Filter {
	return func(d *domain.DriverDetails) bool {
		return d.HasProfile() && d.Profile.Kind() == kind
	}
}

// HasServiceCode keeps drivers operating the given service.
func HasServiceCode(code domain.ServiceCode) Filter {
	return func(d *domain.DriverDetails) bool {
		return d.Service.Code == code
	}
}

// HasRideType keeps local riders of the given ride type.
func HasRideType(rideTypeID string) Filter {
	return func(d *domain.DriverDetails) bool {
		p, ok := d.Profile.(*domain.LocalProfile)
		return ok && p.RideType.ID == rideTypeID
	}
}

// HasRoutes keeps local riders with at least one route.
func HasRoutes() Filter {
	return func(d *domain.DriverDetails) bool {
		p, ok := d.Profile.(*domain.LocalProfile)
		return ok && len(p.Routes) > 0
	}
}

// HasRoute keeps local riders offering the named route.
func HasRoute(route string) Filter {
	return func(d *domain.DriverDetails) bool {
		p, ok := d.Profile.(*domain.LocalProfile)
		if !ok {
			return false
		}
		for _, r := range p.Routes {
			if r.Route == route {
				return true
			}
		}
		return false
	}
}

// Projection derives the per-service display fields of a candidate.
type Projection struct {
	Price        func(domain.Profile) float64
	DisplayImage func(domain.Profile) string
	IncludeLocal bool
}

var (
	// CarProjection prices with the route, cheapest trip, zero chain and
	// shows the vehicle photo.
	CarProjection = Projection{Price: domain.Price, DisplayImage: domain.DisplayImage}

	// LocalProjection adds contact details, counts and routes.
	LocalProjection = Projection{Price: domain.Price, DisplayImage: domain.DisplayImage, IncludeLocal: true}
)

// ProximityQuery describes one radius search.
type ProximityQuery struct {
	Center       domain.Coordinates
	RadiusMeters float64
	Filters      []Filter
	Projection   Projection
}

// RiderCoordinates is a candidate position with its distance in kilometers.
type RiderCoordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  float64 `json:"distance"`
}

// LocalRiderDetails are the extra fields shown for local riders.
type LocalRiderDetails struct {
	PhoneNumber  string               `json:"phoneNumber"`
	RideType     domain.LocalRideType `json:"rideType"`
	RideCount    int                  `json:"rideCount"`
	ReviewCount  int                  `json:"reviewCount"`
	ContactCount int                  `json:"contactCount"`
	Routes       []domain.Route       `json:"routes"`
}

// TravelEstimate is the travel time and distance from a candidate to a point.
type TravelEstimate struct {
	TimeToLocation     string `json:"timeToLocation"`
	DistanceToLocation string `json:"distanceToLocation"`
}

// RiderForMap is the service-agnostic view of a nearby driver.
type RiderForMap struct {
	ID                  string           `json:"id"`
	FirstName           string           `json:"firstName"`
	LastName            string           `json:"lastName"`
	Rating              float64          `json:"rating"`
	ServiceDisplayImage string           `json:"serviceDisplayImage"`
	Price               float64          `json:"price"`
	ProfileDisplayImage string           `json:"profileDisplayImage"`
	Coordinates         RiderCoordinates `json:"coordinates"`

	*LocalRiderDetails
	*TravelEstimate
}

// AvailableRiders is the local rider map payload.
type AvailableRiders struct {
	AvailableRiders  []RiderForMap            `json:"availableRiders"`
	PopularLocations []domain.PopularLocation `json:"popularLocations"`
}

// RouteRiders lists the local riders serving a route and the routes they offer.
type RouteRiders struct {
	RidersInLocation []RiderForMap  `json:"ridersInLocation"`
	RouteLocations   []domain.Route `json:"routeLocations"`
}

// ProximityService finds drivers around a point.
type ProximityService struct {
	locations redis.LocationStoreInterface
	drivers   repository.DriverRepository
	rides     repository.RideRepository
	users     repository.UserRepository
	routes    repository.RouteRepository
	maps      maps.ClientInterface
	cfg       config.GeoConfig
}

// NewProximityService creates a new ProximityService.
func NewProximityService(
	locations redis.LocationStoreInterface,
	drivers repository.DriverRepository,
	rides repository.RideRepository,
	users repository.UserRepository,
	routes repository.RouteRepository,
	mapsClient maps.ClientInterface,
	cfg config.GeoConfig,
) *ProximityService {
	return &ProximityService{
		locations: locations,
		drivers:   drivers,
		rides:     rides,
		users:     users,
		routes:    routes,
		maps:      mapsClient,
		cfg:       cfg,
	}
}

type candidate struct {
	hit     redis.UserLocation
	details *domain.DriverDetails
}

// FindNearby runs a proximity query. Results are ordered farthest first.
func (s *ProximityService) FindNearby(ctx context.Context, q ProximityQuery) ([]RiderForMap, error) {
	if !q.Center.Valid() {
		return nil, &ValidationError{Field: "coordinates", Message: "longitude must be within [-180, 180] and latitude within [-90, 90]"}
	}

	hits, err := s.locations.SearchRadius(ctx, q.Center, q.RadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}

	userIDs := make([]string, 0, len(hits))
	inRange := make([]redis.UserLocation, 0, len(hits))
	for _, hit := range hits {
		if !geo.WithinRadius(q.Center, hit.Coordinates, q.RadiusMeters) {
			continue
		}
		inRange = append(inRange, hit)
		userIDs = append(userIDs, hit.UserID)
	}
	if len(inRange) == 0 {
		return []RiderForMap{}, nil
	}

	details, err := s.drivers.GetDetailsByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}

	limit := s.cfg.ResultLimit
	if limit <= 0 {
		limit = 10
	}

	var candidates []candidate
	for _, hit := range inRange {
		d, ok := details[hit.UserID]
		if !ok || !matchesAll(d, q.Filters) {
			continue
		}
		candidates = append(candidates, candidate{hit: hit, details: d})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hit.DistanceKm > candidates[j].hit.DistanceKm
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var rideCounts, reviewCounts map[string]int
	if q.Projection.IncludeLocal && len(candidates) > 0 {
		rideCounts, reviewCounts, err = s.localCounts(ctx, candidates)
		if err != nil {
			return nil, err
		}
	}

	riders := make([]RiderForMap, 0, len(candidates))
	for _, c := range candidates {
		riders = append(riders, project(c, q.Projection, rideCounts, reviewCounts))
	}
	return riders, nil
}

// FindNearbyCars returns car drivers around center. Only signed-in
// callers may see the car map.
func (s *ProximityService) FindNearbyCars(ctx context.Context, principal auth.Principal, center domain.Coordinates) ([]RiderForMap, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return s.FindNearby(ctx, ProximityQuery{
		Center:       center,
		RadiusMeters: s.cfg.CarRadiusMeters,
		Filters:      []Filter{HasProfileKind(domain.ProfileKindCar)},
		Projection:   CarProjection,
	})
}

// PrepareTrip returns the car drivers around from, each with the travel
// time from the driver to from. Adapter failures leave the estimate empty.
func (s *ProximityService) PrepareTrip(ctx context.Context, principal auth.Principal, from, to domain.Coordinates) ([]RiderForMap, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !to.Valid() {
		return nil, &ValidationError{Field: "to", Message: "longitude must be within [-180, 180] and latitude within [-90, 90]"}
	}

	riders, err := s.FindNearbyCars(ctx, principal, from)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for i := range riders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			origin := domain.Coordinates{
				Longitude: riders[i].Coordinates.Longitude,
				Latitude:  riders[i].Coordinates.Latitude,
			}
			info := s.maps.TravelInfo(ctx, maps.PointPlace(origin), maps.PointPlace(from))
			riders[i].TravelEstimate = &TravelEstimate{
				TimeToLocation:     info.DurationText,
				DistanceToLocation: info.DistanceText,
			}
		}(i)
	}
	wg.Wait()

	return riders, nil
}

func (s *ProximityService) localFilters(rideTypeID string, extra ...Filter) []Filter {
	filters := []Filter{
		HasServiceCode(domain.ServiceCodeLocal),
		HasProfileKind(domain.ProfileKindLocal),
	}
	if rideTypeID != "" {
		filters = append(filters, HasRideType(rideTypeID))
	}
	filters = append(filters, HasRoutes())
	return append(filters, extra...)
}

// AvailableLocalRiders returns the local riders around center together
// with the most viewed routes.
func (s *ProximityService) AvailableLocalRiders(ctx context.Context, center domain.Coordinates, rideTypeID string) (*AvailableRiders, error) {
	var (
		wg        sync.WaitGroup
		result    AvailableRiders
		ridersErr error
		routesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.AvailableRiders, ridersErr = s.FindNearby(ctx, ProximityQuery{
			Center:       center,
			RadiusMeters: s.cfg.LocalRadiusMeters,
			Filters:      s.localFilters(rideTypeID),
			Projection:   LocalProjection,
		})
	}()
	go func() {
		defer wg.Done()
		result.PopularLocations, routesErr = s.routes.ListPopular(ctx, rideTypeID)
	}()
	wg.Wait()

	if ridersErr != nil {
		return nil, ridersErr
	}
	if routesErr != nil {
		return nil, fmt.Errorf("list popular routes: %w", routesErr)
	}
	return &result, nil
}

// LocalRidersOnRoute geocodes the route and returns the local riders
// offering it together with every route those riders offer.
func (s *ProximityService) LocalRidersOnRoute(ctx context.Context, route, rideTypeID string) (*RouteRiders, error) {
	if route == "" {
		return nil, &ValidationError{Field: "route", Message: "route is required"}
	}

	places := s.maps.Geocode(ctx, []string{route})
	if len(places) == 0 {
		log.Printf("[PROXIMITY] route %q could not be geocoded", route)
		return nil, ErrLocationUnresolved
	}
	center := domain.Coordinates{Longitude: places[0].Longitude, Latitude: places[0].Latitude}

	var (
		wg        sync.WaitGroup
		result    RouteRiders
		ridersErr error
		routesErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.RidersInLocation, ridersErr = s.FindNearby(ctx, ProximityQuery{
			Center:       center,
			RadiusMeters: s.cfg.LocalRadiusMeters,
			Filters:      s.localFilters(rideTypeID, HasRoute(route)),
			Projection:   LocalProjection,
		})
	}()
	go func() {
		defer wg.Done()
		result.RouteLocations, routesErr = s.routes.ListByName(ctx, route)
	}()
	wg.Wait()

	if ridersErr != nil {
		return nil, ridersErr
	}
	if routesErr != nil {
		return nil, fmt.Errorf("list route locations: %w", routesErr)
	}
	return &result, nil
}

func (s *ProximityService) localCounts(ctx context.Context, candidates []candidate) (map[string]int, map[string]int, error) {
	driverIDs := make([]string, len(candidates))
	userIDs := make([]string, len(candidates))
	for i, c := range candidates {
		driverIDs[i] = c.details.Driver.ID
		userIDs[i] = c.details.User.ID
	}

	rides, err := s.rides.CountByDriverIDs(ctx, driverIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("count rides: %w", err)
	}
	reviews, err := s.users.CountReviewsByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("count reviews: %w", err)
	}
	return rides, reviews, nil
}

func matchesAll(d *domain.DriverDetails, filters []Filter) bool {
	for _, f := range filters {
		if !f(d) {
			return false
		}
	}
	return true
}

func project(c candidate, p Projection, rideCounts, reviewCounts map[string]int) RiderForMap {
	d := c.details
	rider := RiderForMap{
		ID:                  d.Driver.ID,
		FirstName:           d.User.FirstName,
		LastName:            d.User.LastName,
		Rating:              d.User.Rating,
		ServiceDisplayImage: d.Service.Image,
		Price:               p.Price(d.Profile),
		ProfileDisplayImage: p.DisplayImage(d.Profile),
		Coordinates: RiderCoordinates{
			Longitude: c.hit.Coordinates.Longitude,
			Latitude:  c.hit.Coordinates.Latitude,
			Distance:  c.hit.DistanceKm,
		},
	}

	if p.IncludeLocal {
		local := &LocalRiderDetails{
			PhoneNumber: d.User.PhoneNumber,
			RideCount:   rideCounts[d.Driver.ID],
			ReviewCount: reviewCounts[d.User.ID],
			Routes:      []domain.Route{},
		}
		if lp, ok := d.Profile.(*domain.LocalProfile); ok {
			local.RideType = lp.RideType
			local.Routes = lp.Routes
		}
		rider.LocalRiderDetails = local
	}
	return rider
}
