package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// DriverService handles driver profile operations.
type DriverService struct {
	drivers   repository.DriverRepository
	users     repository.UserRepository
	rideTypes repository.LocalRideTypeRepository
	cache     redis.BusLocationsCache
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	drivers repository.DriverRepository,
	users repository.UserRepository,
	rideTypes repository.LocalRideTypeRepository,
	cache redis.BusLocationsCache,
) *DriverService {
	return &DriverService{drivers: drivers, users: users, rideTypes: rideTypes, cache: cache}
}

// AddTripTemplate appends a weekly trip to the calling bus operator's profile.
func (s *DriverService) AddTripTemplate(ctx context.Context, principal auth.Principal, trip domain.TripTemplate) (*domain.TripTemplate, error) {
	driver, err := s.driverFor(ctx, principal, domain.ServiceCodeBus)
	if err != nil {
		return nil, err
	}
	if err := validateTripTemplate(&trip); err != nil {
		return nil, err
	}

	if bus, ok := driver.Profile.(*domain.BusProfile); ok {
		for _, existing := range bus.Trips {
			if existing.SameEndpoints(trip.Origin, trip.Destination) {
				return nil, &DuplicateTripError{Origin: trip.Origin, Destination: trip.Destination}
			}
		}
	}

	trip.ID = uuid.NewString()
	trip.DriverID = driver.Driver.ID
	if err := s.drivers.AppendTripTemplate(ctx, driver.Driver.ID, &trip); err != nil {
		return nil, fmt.Errorf("append trip: %w", err)
	}

	if err := s.cache.InvalidateBusLocations(ctx); err != nil {
		log.Printf("[DRIVER] failed to invalidate bus locations: %v", err)
	}
	return &trip, nil
}

// AddRoute appends a priced route to the calling local rider's profile.
func (s *DriverService) AddRoute(ctx context.Context, principal auth.Principal, route domain.Route) (*domain.Route, error) {
	driver, err := s.driverFor(ctx, principal, domain.ServiceCodeLocal)
	if err != nil {
		return nil, err
	}
	if !driver.HasProfile() {
		return nil, ErrProfileIncomplete
	}

	route.Route = strings.TrimSpace(route.Route)
	if route.Route == "" {
		return nil, &ValidationError{Field: "route", Message: "is required"}
	}
	if route.Price <= 0 {
		return nil, &ValidationError{Field: "price", Message: "must be a positive number"}
	}

	route.ID = uuid.NewString()
	route.Views = 0
	if err := s.drivers.AppendRoute(ctx, driver.Driver.ID, &route); err != nil {
		return nil, fmt.Errorf("append route: %w", err)
	}
	return &route, nil
}

// driverFor loads the caller's driver record and checks its service.
func (s *DriverService) driverFor(ctx context.Context, principal auth.Principal, code domain.ServiceCode) (*domain.DriverDetails, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !principal.IsDriver() {
		return nil, ErrNotADriver
	}

	driver, err := s.drivers.GetDetailsByID(ctx, principal.DriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("load driver: %w", err)
	}
	if driver.Driver.UserID != principal.UserID {
		return nil, ErrNotADriver
	}
	if driver.Service.Code != code {
		return nil, &WrongServiceError{Required: code}
	}
	return driver, nil
}

func validateTripTemplate(t *domain.TripTemplate) error {
	fields := []struct{ name, value string }{
		{"origin", t.Origin},
		{"originCity", t.OriginCity},
		{"destination", t.Destination},
		{"destinationCity", t.DestinationCity},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Message: "is required"}
		}
	}

	if t.Price <= 0 {
		return &ValidationError{Field: "price", Message: "must be a positive number"}
	}
	if t.BusCapacity <= 0 {
		return &ValidationError{Field: "busCapacity", Message: "must be a positive number"}
	}

	if len(t.DepartureDates) == 0 {
		return &ValidationError{Field: "departureDates", Message: "At least one departure date required"}
	}
	if !validWeekdays(t.DepartureDates) {
		return &ValidationError{Field: "departureDates", Message: "weekdays must be between 0 (Sunday) and 6 (Saturday)"}
	}
	departs, err := time.Parse(domain.ClockLayout, strings.TrimSpace(t.DepartureTime))
	if err != nil {
		return &ValidationError{Field: "departureTime", Message: "Expected a time in HH:MM format"}
	}
	// Bookings compare against the stored clock verbatim, so keep it zero-padded.
	t.DepartureTime = departs.Format(domain.ClockLayout)

	if t.IsRoundTrip {
		if len(t.ReturnDates) == 0 {
			return &ValidationError{Field: "returnDates", Message: "At least one return date required"}
		}
		returns, err := time.Parse(domain.ClockLayout, strings.TrimSpace(t.ReturnTime))
		if err != nil {
			return &ValidationError{Field: "returnTime", Message: "Expected a time in HH:MM format"}
		}
		t.ReturnTime = returns.Format(domain.ClockLayout)
	}
	if !validWeekdays(t.ReturnDates) {
		return &ValidationError{Field: "returnDates", Message: "weekdays must be between 0 (Sunday) and 6 (Saturday)"}
	}

	t.DepartureDates = slices.Compact(slices.Sorted(slices.Values(t.DepartureDates)))
	return nil
}

func validWeekdays(days []time.Weekday) bool {
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return false
		}
	}
	return true
}
