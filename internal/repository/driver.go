package repository

import (
	"context"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// DriverRepository defines the persistence operations for drivers and their profiles.
type DriverRepository interface {
	// GetDetailsByID retrieves a driver with user, service and profile.
	GetDetailsByID(ctx context.Context, id string) (*domain.DriverDetails, error)

	// GetDetailsByUserIDs retrieves drivers keyed by user ID.
	// Users without a driver record are absent from the map.
	GetDetailsByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.DriverDetails, error)

	// AppendTripTemplate adds a trip template to a bus profile, creating
	// the profile on the first template.
	AppendTripTemplate(ctx context.Context, driverID string, trip *domain.TripTemplate) error

	// AppendRoute adds a priced route to a local profile.
	AppendRoute(ctx context.Context, driverID string, route *domain.Route) error

	// UpsertCarProfile creates or replaces the vehicle information of a car driver.
	UpsertCarProfile(ctx context.Context, driverID string, profile *domain.CarProfile) error

	// UpsertBusProfile creates or replaces the operator identity of a bus
	// driver. Existing trip templates are kept.
	UpsertBusProfile(ctx context.Context, driverID string, profile *domain.BusProfile) error

	// UpsertLocalProfile creates or replaces the ride type and photo of a
	// local rider. Existing routes are kept.
	UpsertLocalProfile(ctx context.Context, driverID string, profile *domain.LocalProfile) error
}
