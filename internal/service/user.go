package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// UserService handles the caller's account state.
type UserService struct {
	users     repository.UserRepository
	locations redis.LocationStoreInterface
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, locations redis.LocationStoreInterface) *UserService {
	return &UserService{users: users, locations: locations}
}

// UpdateLocation records the caller's position in the user row and the
// geo index used by proximity search.
func (s *UserService) UpdateLocation(ctx context.Context, principal auth.Principal, c domain.Coordinates) error {
	if principal.UserID == "" {
		return ErrUnauthenticated
	}
	if !c.Valid() {
		return &ValidationError{Field: "coordinates", Message: "longitude must be within [-180, 180] and latitude within [-90, 90]"}
	}

	if err := s.users.UpdateLocation(ctx, principal.UserID, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("update user location: %w", err)
	}

	if err := s.locations.UpdateLocation(ctx, principal.UserID, c); err != nil {
		return fmt.Errorf("index user location: %w", err)
	}
	return nil
}

// UpdateDeviceToken stores the push notification token of the caller.
// An empty token turns push notifications off.
func (s *UserService) UpdateDeviceToken(ctx context.Context, principal auth.Principal, token string) error {
	if principal.UserID == "" {
		return ErrUnauthenticated
	}

	if err := s.users.UpdateDeviceToken(ctx, principal.UserID, strings.TrimSpace(token)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("update device token: %w", err)
	}
	return nil
}
