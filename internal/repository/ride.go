package repository

import (
	"context"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// RideRepository defines the persistence operations for the booking ledger.
type RideRepository interface {
	// Create persists a new ride. Bus rides also claim one seat row per
	// booked seat; a claimed seat yields ErrSeatTaken.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetBookedSeats returns the seats taken on a trip for one departure day (YYYY-MM-DD).
	GetBookedSeats(ctx context.Context, tripID, day string) ([]int, error)

	// GetByIDForUser retrieves a ride owned by the given user.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Ride, error)

	// ListByUser returns a user's rides, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.RideSummary, error)

	// CountByDriverIDs returns the number of rides per driver.
	CountByDriverIDs(ctx context.Context, driverIDs []string) (map[string]int, error)
}

// Transactor runs fn with a ride repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(rides RideRepository) error) error
}
