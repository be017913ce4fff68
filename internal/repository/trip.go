package repository

import (
	"context"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// TripRepository defines the read operations over bus trip templates.
type TripRepository interface {
	// GetByID retrieves a template by ID.
	GetByID(ctx context.Context, id string) (*domain.TripListing, error)

	// Search returns templates that may match the query. Callers still
	// apply domain.TicketQuery.Matches to the result.
	Search(ctx context.Context, query domain.TicketQuery) ([]*domain.TripListing, error)

	// ListAll returns every template of every bus operator.
	ListAll(ctx context.Context) ([]*domain.TripListing, error)

	// ListLocations returns the distinct origins and destinations.
	ListLocations(ctx context.Context) (*domain.BusLocations, error)
}
