package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

const (
	minVehicleYear   = 1990
	minVehicleSeats  = 2
	licensePlateSize = 6
)

var genders = []string{"Male", "Female"}

// PersonalDetails are the names submitted with every profile form.
type PersonalDetails struct {
	FirstName string
	LastName  string
}

func (p *PersonalDetails) normalize() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" {
		return &ValidationError{Field: "firstName", Message: "is required"}
	}
	if p.LastName == "" {
		return &ValidationError{Field: "lastName", Message: "is required"}
	}
	return nil
}

// SaveCarProfile creates or replaces the calling car driver's vehicle
// information and returns the updated driver.
func (s *DriverService) SaveCarProfile(ctx context.Context, principal auth.Principal, names PersonalDetails, profile domain.CarProfile) (*domain.DriverDetails, error) {
	driver, err := s.driverFor(ctx, principal, domain.ServiceCodeCar)
	if err != nil {
		return nil, err
	}
	if err := names.normalize(); err != nil {
		return nil, err
	}
	if err := validateCarProfile(&profile); err != nil {
		return nil, err
	}

	if err := s.drivers.UpsertCarProfile(ctx, driver.Driver.ID, &profile); err != nil {
		return nil, fmt.Errorf("save car profile: %w", err)
	}
	return s.finishProfile(ctx, driver, names)
}

// SaveBusProfile creates or replaces the calling operator's company details.
// Trip templates already on the profile are kept.
func (s *DriverService) SaveBusProfile(ctx context.Context, principal auth.Principal, names PersonalDetails, profile domain.BusProfile) (*domain.DriverDetails, error) {
	driver, err := s.driverFor(ctx, principal, domain.ServiceCodeBus)
	if err != nil {
		return nil, err
	}
	if err := names.normalize(); err != nil {
		return nil, err
	}

	profile.CompanyName = strings.TrimSpace(profile.CompanyName)
	if profile.CompanyName == "" {
		return nil, &ValidationError{Field: "companyName", Message: "is required"}
	}
	profile.Trips = nil

	if err := s.drivers.UpsertBusProfile(ctx, driver.Driver.ID, &profile); err != nil {
		return nil, fmt.Errorf("save bus profile: %w", err)
	}
	return s.finishProfile(ctx, driver, names)
}

// SaveLocalProfile creates or replaces the calling local rider's ride type
// and photo. Routes already on the profile are kept.
func (s *DriverService) SaveLocalProfile(ctx context.Context, principal auth.Principal, names PersonalDetails, profile domain.LocalProfile) (*domain.DriverDetails, error) {
	driver, err := s.driverFor(ctx, principal, domain.ServiceCodeLocal)
	if err != nil {
		return nil, err
	}
	if err := names.normalize(); err != nil {
		return nil, err
	}

	rideType, err := s.rideTypes.GetByID(ctx, strings.TrimSpace(profile.RideType.ID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ValidationError{Field: "localRideType", Message: "Invalid local ride type"}
		}
		return nil, fmt.Errorf("load ride type: %w", err)
	}
	profile.RideType = *rideType
	profile.Routes = nil

	if err := s.drivers.UpsertLocalProfile(ctx, driver.Driver.ID, &profile); err != nil {
		return nil, fmt.Errorf("save local profile: %w", err)
	}
	return s.finishProfile(ctx, driver, names)
}

// ListRideTypes returns the local ride types a rider can pick from.
func (s *DriverService) ListRideTypes(ctx context.Context) ([]domain.LocalRideType, error) {
	types, err := s.rideTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ride types: %w", err)
	}
	return types, nil
}

// finishProfile stores the submitted names and reloads the driver.
func (s *DriverService) finishProfile(ctx context.Context, driver *domain.DriverDetails, names PersonalDetails) (*domain.DriverDetails, error) {
	if err := s.users.UpdateNames(ctx, driver.User.ID, names.FirstName, names.LastName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("update names: %w", err)
	}

	updated, err := s.drivers.GetDetailsByID(ctx, driver.Driver.ID)
	if err != nil {
		return nil, fmt.Errorf("reload driver: %w", err)
	}
	updated.User.FirstName, updated.User.LastName = names.FirstName, names.LastName

	log.Printf("[DRIVER] profile saved driver=%s service=%s", driver.Driver.ID, driver.Service.Code)
	return updated, nil
}

func validateCarProfile(p *domain.CarProfile) error {
	p.VehicleManufacturer = strings.TrimSpace(p.VehicleManufacturer)
	p.VehicleColor = strings.TrimSpace(p.VehicleColor)
	p.VehicleLicensePlate = strings.ToUpper(strings.TrimSpace(p.VehicleLicensePlate))

	switch {
	case !slices.Contains(genders, p.Gender):
		return &ValidationError{Field: "gender", Message: "must be one of " + strings.Join(genders, ", ")}
	case p.NumberOfSeats < minVehicleSeats:
		return &ValidationError{Field: "numberOfSeats", Message: "Car capacity must be at least 2. The driver and passenger"}
	case p.VehicleManufacturer == "":
		return &ValidationError{Field: "vehicleManufacturer", Message: "is required"}
	case p.VehicleYear < minVehicleYear:
		return &ValidationError{Field: "vehicleYear", Message: fmt.Sprintf("Vehicle must be at least %d model", minVehicleYear)}
	case p.VehicleColor == "":
		return &ValidationError{Field: "vehicleColor", Message: "is required"}
	case len(p.VehicleLicensePlate) != licensePlateSize:
		return &ValidationError{Field: "vehicleLicensePlate", Message: "License plate must be exactly 6 characters"}
	}
	return nil
}
