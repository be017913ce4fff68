package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, device_token, rating, longitude, latitude, created_at
		FROM users WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	var longitude, latitude sql.NullFloat64
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PhoneNumber,
		&user.DeviceToken,
		&user.Rating,
		&longitude,
		&latitude,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if longitude.Valid && latitude.Valid {
		user.Location = &domain.Coordinates{Longitude: longitude.Float64, Latitude: latitude.Float64}
	}
	return &user, nil
}

// UpdateLocation sets the user's current position.
func (r *UserRepository) UpdateLocation(ctx context.Context, id string, c domain.Coordinates) error {
	query := `UPDATE users SET longitude = $2, latitude = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, c.Longitude, c.Latitude)
}

// UpdateNames sets the user's first and last name.
func (r *UserRepository) UpdateNames(ctx context.Context, id, firstName, lastName string) error {
	query := `UPDATE users SET first_name = $2, last_name = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, firstName, lastName)
}

// UpdateDeviceToken sets the push notification token of the user.
func (r *UserRepository) UpdateDeviceToken(ctx context.Context, id, token string) error {
	return r.execOne(ctx, `UPDATE users SET device_token = $2 WHERE id = $1`, id, token)
}

// execOne runs an update that must touch exactly one user.
func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountReviewsByUserIDs returns the number of reviews received per user.
func (r *UserRepository) CountReviewsByUserIDs(ctx context.Context, userIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	query := `SELECT user_id, COUNT(*) FROM reviews WHERE user_id = ANY($1::uuid[]) GROUP BY user_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ServiceRepository implements repository.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// List returns every service in catalog order.
func (r *ServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	query := `SELECT id, code, name, description, color, image FROM services ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []*domain.Service{}
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.Color, &s.Image); err != nil {
			return nil, err
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ServiceRepository = (*ServiceRepository)(nil)
)
