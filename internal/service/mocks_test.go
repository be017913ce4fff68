package service_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/geo"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore answers radius searches with haversine distances,
// farthest first, like the Redis index.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]domain.Coordinates

	// Raw, when set, is returned verbatim by SearchRadius.
	Raw []redis.UserLocation

	SearchCallCount int32
	SearchError     error
	UpdateError     error
}

func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]domain.Coordinates)}
}

func (m *MockLocationStore) Set(userID string, c domain.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[userID] = c
}

func (m *MockLocationStore) Get(userID string) (domain.Coordinates, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.locations[userID]
	return c, ok
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, userID string, c domain.Coordinates) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Set(userID, c)
	return nil
}

func (m *MockLocationStore) SearchRadius(ctx context.Context, center domain.Coordinates, radiusMeters float64) ([]redis.UserLocation, error) {
	atomic.AddInt32(&m.SearchCallCount, 1)
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	if m.Raw != nil {
		return m.Raw, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []redis.UserLocation
	for id, c := range m.locations {
		d := geo.DistanceMeters(center, c)
		if d <= radiusMeters {
			result = append(result, redis.UserLocation{UserID: id, Coordinates: c, DistanceKm: d / 1000})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DistanceKm > result[j].DistanceKm })
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, userID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32
	AcquireError     error
}

func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID, day string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tripID + ":" + day
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID, day string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, tripID+":"+day)
	return nil
}

func (m *MockLockStore) IsLocked(tripID, day string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[tripID+":"+day]
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverDetails

	AppendTripCallCount  int32
	AppendRouteCallCount int32
	UpsertCallCount      int32
	GetError             error
	UpsertError          error
}

func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.DriverDetails)}
}

func (m *MockDriverRepository) AddDriver(d *domain.DriverDetails) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.Driver.ID] = d
}

func (m *MockDriverRepository) GetDetailsByID(ctx context.Context, id string) (*domain.DriverDetails, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockDriverRepository) GetDetailsByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.DriverDetails, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*domain.DriverDetails)
	for _, d := range m.drivers {
		if slices.Contains(userIDs, d.User.ID) {
			cp := *d
			result[d.User.ID] = &cp
		}
	}
	return result, nil
}

func (m *MockDriverRepository) AppendTripTemplate(ctx context.Context, driverID string, trip *domain.TripTemplate) error {
	atomic.AddInt32(&m.AppendTripCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	bus, ok := d.Profile.(*domain.BusProfile)
	if !ok {
		bus = &domain.BusProfile{}
		d.Profile = bus
	}
	bus.Trips = append(bus.Trips, *trip)
	return nil
}

func (m *MockDriverRepository) AppendRoute(ctx context.Context, driverID string, route *domain.Route) error {
	atomic.AddInt32(&m.AppendRouteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	local, ok := d.Profile.(*domain.LocalProfile)
	if !ok {
		return repository.ErrNotFound
	}
	local.Routes = append(local.Routes, *route)
	return nil
}

func (m *MockDriverRepository) UpsertCarProfile(ctx context.Context, driverID string, profile *domain.CarProfile) error {
	return m.upsert(driverID, func(d *domain.DriverDetails) {
		cp := *profile
		d.Profile = &cp
	})
}

func (m *MockDriverRepository) UpsertBusProfile(ctx context.Context, driverID string, profile *domain.BusProfile) error {
	return m.upsert(driverID, func(d *domain.DriverDetails) {
		cp := *profile
		if existing, ok := d.Profile.(*domain.BusProfile); ok {
			cp.Trips = existing.Trips
		}
		d.Profile = &cp
	})
}

func (m *MockDriverRepository) UpsertLocalProfile(ctx context.Context, driverID string, profile *domain.LocalProfile) error {
	return m.upsert(driverID, func(d *domain.DriverDetails) {
		cp := *profile
		if existing, ok := d.Profile.(*domain.LocalProfile); ok {
			cp.Routes = existing.Routes
		}
		d.Profile = &cp
	})
}

func (m *MockDriverRepository) upsert(driverID string, apply func(d *domain.DriverDetails)) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	apply(d)
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

type MockTripRepository struct {
	mu       sync.RWMutex
	listings []*domain.TripListing

	Locations *domain.BusLocations

	SearchCallCount        int32
	ListLocationsCallCount int32
	SearchError            error
}

func NewMockTripRepository(listings ...*domain.TripListing) *MockTripRepository {
	return &MockTripRepository{listings: listings}
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.TripListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listings {
		if l.Trip.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Search returns every listing with enough capacity; callers refine with Matches.
func (m *MockTripRepository) Search(ctx context.Context, query domain.TicketQuery) ([]*domain.TripListing, error) {
	atomic.AddInt32(&m.SearchCallCount, 1)
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.TripListing
	for _, l := range m.listings {
		if l.Trip.BusCapacity >= query.NumberOfSeats {
			cp := *l
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockTripRepository) ListAll(ctx context.Context) ([]*domain.TripListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.TripListing, 0, len(m.listings))
	for _, l := range m.listings {
		cp := *l
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockTripRepository) ListLocations(ctx context.Context) (*domain.BusLocations, error) {
	atomic.AddInt32(&m.ListLocationsCallCount, 1)
	if m.Locations == nil {
		return &domain.BusLocations{Origins: []domain.PickerOption{}, Destinations: []domain.PickerOption{}}, nil
	}
	return m.Locations, nil
}

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository enforces the (trip, day, seat) uniqueness of the
// ride_seats table.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
	seats map[string]map[int]string

	// Summaries is returned by ListByUser.
	Summaries []*domain.RideSummary

	CreateCallCount int32
	CreateError     error
	SeatsError      error
}

func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
		seats: make(map[string]map[int]string),
	}
}

func seatKey(tripID, day string) string {
	return tripID + "|" + day
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if ride.IsBusBooking() {
		key := seatKey(ride.BusTripID, ride.DepartureDate.Format(time.DateOnly))
		taken := m.seats[key]
		for _, s := range ride.BookedSeats {
			if _, ok := taken[s]; ok {
				return repository.ErrSeatTaken
			}
		}
		if taken == nil {
			taken = make(map[int]string)
			m.seats[key] = taken
		}
		for _, s := range ride.BookedSeats {
			taken[s] = ride.ID
		}
	}

	cp := *ride
	m.rides[ride.ID] = &cp
	return nil
}

// BookSeats records seats as taken without a ride row.
func (m *MockRideRepository) BookSeats(tripID, day string, seats ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seatKey(tripID, day)
	if m.seats[key] == nil {
		m.seats[key] = make(map[int]string)
	}
	for _, s := range seats {
		m.seats[key][s] = "seeded"
	}
}

func (m *MockRideRepository) GetBookedSeats(ctx context.Context, tripID, day string) ([]int, error) {
	if m.SeatsError != nil {
		return nil, m.SeatsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seats := []int{}
	for s := range m.seats[seatKey(tripID, day)] {
		seats = append(seats, s)
	}
	sort.Ints(seats)
	return seats, nil
}

func (m *MockRideRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRideRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RideSummary, error) {
	return m.Summaries, nil
}

func (m *MockRideRepository) CountByDriverIDs(ctx context.Context, driverIDs []string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, r := range m.rides {
		if slices.Contains(driverIDs, r.DriverID) {
			counts[r.DriverID]++
		}
	}
	return counts, nil
}

// Rides returns every stored ride for assertions.
func (m *MockRideRepository) Rides() []*domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		result = append(result, r)
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs fn against the shared ride repository. Serialize
// makes transactions run one at a time.
type MockTransactor struct {
	mu        sync.Mutex
	rides     *MockRideRepository
	Serialize bool

	CallCount int32
}

func NewMockTransactor(rides *MockRideRepository) *MockTransactor {
	return &MockTransactor{rides: rides}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(rides repository.RideRepository) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Serialize {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	return fn(m.rides)
}

// ──────────────────────────────────────────────
// MOCK USER / ROUTE REPOSITORIES
// ──────────────────────────────────────────────

type MockUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	reviews map[string]int

	UpdateLocationError error
	UpdateNamesError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User), reviews: make(map[string]int)}
}

func (m *MockUserRepository) AddUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MockUserRepository) SetReviews(userID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[userID] = n
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) UpdateLocation(ctx context.Context, id string, c domain.Coordinates) error {
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Location = &c
	return nil
}

func (m *MockUserRepository) UpdateNames(ctx context.Context, id, firstName, lastName string) error {
	if m.UpdateNamesError != nil {
		return m.UpdateNamesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	return nil
}

func (m *MockUserRepository) UpdateDeviceToken(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.DeviceToken = token
	return nil
}

func (m *MockUserRepository) CountReviewsByUserIDs(ctx context.Context, userIDs []string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, id := range userIDs {
		if n, ok := m.reviews[id]; ok {
			counts[id] = n
		}
	}
	return counts, nil
}

type MockRouteRepository struct {
	Popular []domain.PopularLocation
	Routes  []domain.Route

	PopularRideType string
	ListError       error
}

func (m *MockRouteRepository) ListPopular(ctx context.Context, rideTypeID string) ([]domain.PopularLocation, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.PopularRideType = rideTypeID
	return m.Popular, nil
}

func (m *MockRouteRepository) ListByName(ctx context.Context, route string) ([]domain.Route, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Routes, nil
}

type MockRideTypeRepository struct {
	Types     []domain.LocalRideType
	ListError error
}

func (m *MockRideTypeRepository) List(ctx context.Context) ([]domain.LocalRideType, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Types, nil
}

func (m *MockRideTypeRepository) GetByID(ctx context.Context, id string) (*domain.LocalRideType, error) {
	for _, t := range m.Types {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK MAPS CLIENT
// ──────────────────────────────────────────────

// MockMapsClient returns Travel for every lookup, or the zero value when
// Fail is set.
type MockMapsClient struct {
	Travel   maps.TravelInfo
	Places   []maps.GeocodedLocation
	Fail     bool
	Delay    time.Duration
	ByOrigin map[string]maps.TravelInfo

	TravelCallCount  int32
	GeocodeCallCount int32

	inFlight int32
	peak     int32
}

func (m *MockMapsClient) TravelInfo(ctx context.Context, from, to maps.Place) maps.TravelInfo {
	atomic.AddInt32(&m.TravelCallCount, 1)
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		p := atomic.LoadInt32(&m.peak)
		if n <= p || atomic.CompareAndSwapInt32(&m.peak, p, n) {
			break
		}
	}

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.Fail {
		return maps.TravelInfo{}
	}
	if info, ok := m.ByOrigin[from.CacheKey()]; ok {
		return info
	}
	return m.Travel
}

func (m *MockMapsClient) Geocode(ctx context.Context, addresses []string) []maps.GeocodedLocation {
	atomic.AddInt32(&m.GeocodeCallCount, 1)
	if m.Fail {
		return nil
	}
	return m.Places
}

// PeakConcurrency reports the highest number of simultaneous TravelInfo calls.
func (m *MockMapsClient) PeakConcurrency() int32 {
	return atomic.LoadInt32(&m.peak)
}

// ──────────────────────────────────────────────
// MOCK CACHE / PUBLISHER
// ──────────────────────────────────────────────

type MockBusLocationsCache struct {
	mu        sync.Mutex
	locations *domain.BusLocations

	InvalidateCallCount int32
	GetError            error
}

func (m *MockBusLocationsCache) GetBusLocations(ctx context.Context) (*domain.BusLocations, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locations, nil
}

func (m *MockBusLocationsCache) SetBusLocations(ctx context.Context, locations *domain.BusLocations) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = locations
	return nil
}

func (m *MockBusLocationsCache) InvalidateBusLocations(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = nil
	return nil
}

type publishedMessage struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

type MockPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage

	PublishError error
}

func (m *MockPublisher) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMessage{Exchange: exchange, RoutingKey: routingKey, Body: body})
	return nil
}

func (m *MockPublisher) Messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// Ensure mocks implement interfaces.
var (
	_ redis.LocationStoreInterface = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ redis.BusLocationsCache      = (*MockBusLocationsCache)(nil)
	_ repository.DriverRepository  = (*MockDriverRepository)(nil)
	_ repository.TripRepository    = (*MockTripRepository)(nil)
	_ repository.RideRepository    = (*MockRideRepository)(nil)
	_ repository.Transactor        = (*MockTransactor)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.RouteRepository   = (*MockRouteRepository)(nil)
	_ maps.ClientInterface         = (*MockMapsClient)(nil)
)
