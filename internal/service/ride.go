package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// BookCarRideRequest contains the parameters for booking a car ride.
type BookCarRideRequest struct {
	DriverID string
	From     domain.Location
	To       domain.Location
}

// TrackedDriver is the driver section of a tracked ride.
type TrackedDriver struct {
	FirstName    string              `json:"firstName"`
	LastName     string              `json:"lastName"`
	ProfilePhoto string              `json:"profilePhoto"`
	Coordinates  *domain.Coordinates `json:"coordinates"`
}

// TrackedRide is a ride with its driver and the driver's travel time to pickup.
type TrackedRide struct {
	ID      string          `json:"id"`
	From    domain.Location `json:"from"`
	To      domain.Location `json:"to"`
	Service domain.Service  `json:"service"`
	Driver  TrackedDriver   `json:"driver"`

	maps.TravelInfo
}

// RideService handles car bookings and the rider's ride history.
type RideService struct {
	rides    repository.RideRepository
	drivers  repository.DriverRepository
	users    repository.UserRepository
	maps     maps.ClientInterface
	notifier *NotificationService
	now      func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(
	rides repository.RideRepository,
	drivers repository.DriverRepository,
	users repository.UserRepository,
	mapsClient maps.ClientInterface,
	notifier *NotificationService,
) *RideService {
	return &RideService{
		rides:    rides,
		drivers:  drivers,
		users:    users,
		maps:     mapsClient,
		notifier: notifier,
		now:      time.Now,
	}
}

// BookCarRide books the given driver from one location to another. The
// ride is priced like the driver's map listing and departs immediately.
func (s *RideService) BookCarRide(ctx context.Context, principal auth.Principal, req BookCarRideRequest) (*domain.Ride, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateCarRide(req); err != nil {
		return nil, err
	}

	driver, err := s.drivers.GetDetailsByID(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("load driver: %w", err)
	}
	if !driver.HasProfile() {
		return nil, ErrDriverNotFound
	}

	now := s.now()
	ride := &domain.Ride{
		ID:            uuid.NewString(),
		ServiceID:     driver.Service.ID,
		DriverID:      driver.Driver.ID,
		UserID:        principal.UserID,
		PaymentStatus: domain.PaymentStatusPending,
		RideStatus:    domain.RideStatusPending,
		From:          req.From,
		To:            req.To,
		DepartureDate: now,
		Price:         domain.Price(driver.Profile),
		CreatedAt:     now,
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	if s.notifier != nil {
		if user, err := s.users.GetByID(ctx, principal.UserID); err != nil {
			log.Printf("[BOOKING] could not load user %s for notification: %v", principal.UserID, err)
		} else {
			s.notifier.NotifyCarRideBooked(ctx, user, ride)
		}
	}

	return ride, nil
}

// History returns the caller's rides, newest first.
func (s *RideService) History(ctx context.Context, principal auth.Principal) ([]*domain.RideSummary, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return s.rides.ListByUser(ctx, principal.UserID)
}

// Track returns one of the caller's rides with the driver's current
// position and travel time to the pickup point.
func (s *RideService) Track(ctx context.Context, principal auth.Principal, rideID string) (*TrackedRide, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(rideID); err != nil {
		return nil, &ValidationError{Field: "id", Message: "Invalid ride id"}
	}

	ride, err := s.rides.GetByIDForUser(ctx, rideID, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("load ride: %w", err)
	}

	driver, err := s.drivers.GetDetailsByID(ctx, ride.DriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("load driver: %w", err)
	}

	tracked := &TrackedRide{
		ID:      ride.ID,
		From:    ride.From,
		To:      ride.To,
		Service: driver.Service,
		Driver: TrackedDriver{
			FirstName:    driver.User.FirstName,
			LastName:     driver.User.LastName,
			ProfilePhoto: domain.DisplayImage(driver.Profile),
			Coordinates:  driver.User.Location,
		},
	}

	if driver.User.Location != nil {
		tracked.TravelInfo = s.maps.TravelInfo(ctx, maps.PointPlace(*driver.User.Location), pickupPlace(ride.From))
	}
	return tracked, nil
}

// pickupPlace prefers coordinates and falls back to the address.
func pickupPlace(l domain.Location) maps.Place {
	c := l.Coordinates()
	if c.Latitude == 0 && c.Longitude == 0 && l.Address != "" {
		return maps.AddressPlace(l.Address)
	}
	return maps.PointPlace(c)
}

func validateCarRide(req BookCarRideRequest) error {
	if _, err := uuid.Parse(req.DriverID); err != nil {
		return &ValidationError{Field: "driver", Message: "Invalid driver id"}
	}
	if !req.From.Coordinates().Valid() {
		return &ValidationError{Field: "from", Message: "longitude must be within [-180, 180] and latitude within [-90, 90]"}
	}
	if !req.To.Coordinates().Valid() {
		return &ValidationError{Field: "to", Message: "longitude must be within [-180, 180] and latitude within [-90, 90]"}
	}
	return nil
}
