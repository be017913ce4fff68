package repository

import (
	"context"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateLocation sets the user's current position.
	UpdateLocation(ctx context.Context, id string, c domain.Coordinates) error

	// UpdateNames sets the user's first and last name.
	UpdateNames(ctx context.Context, id, firstName, lastName string) error

	// UpdateDeviceToken sets the push notification token of the user.
	UpdateDeviceToken(ctx context.Context, id, token string) error

	// CountReviewsByUserIDs returns the number of reviews received per user.
	CountReviewsByUserIDs(ctx context.Context, userIDs []string) (map[string]int, error)
}

// ServiceRepository defines the read operations over the service catalog.
type ServiceRepository interface {
	// List returns every service.
	List(ctx context.Context) ([]*domain.Service, error)
}
