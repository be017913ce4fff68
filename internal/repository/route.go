package repository

import (
	"context"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// RouteRepository defines the read operations over local rider routes.
type RouteRepository interface {
	// ListPopular groups routes by name, most viewed first. An empty
	// rideTypeID includes every ride type.
	ListPopular(ctx context.Context, rideTypeID string) ([]domain.PopularLocation, error)

	// ListByName returns every route of the riders that offer the given route.
	ListByName(ctx context.Context, route string) ([]domain.Route, error)
}

// LocalRideTypeRepository defines the read operations over local ride types.
type LocalRideTypeRepository interface {
	// List returns every ride type ordered by name.
	List(ctx context.Context) ([]domain.LocalRideType, error)

	// GetByID retrieves a ride type, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.LocalRideType, error)
}
