package postgres

import (
	"context"
	"database/sql"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// RouteRepository implements repository.RouteRepository using PostgreSQL.
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new RouteRepository.
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// ListPopular groups routes by name with their total views and lowest price.
func (r *RouteRepository) ListPopular(ctx context.Context, rideTypeID string) ([]domain.PopularLocation, error) {
	query := `
		SELECT rd.route, SUM(rd.views), MIN(rd.price)
		FROM route_details rd
		JOIN local_profiles lp ON lp.driver_id = rd.driver_id
		WHERE $1 = '' OR lp.local_ride_type_id::text = $1
		GROUP BY rd.route
		ORDER BY SUM(rd.views) DESC, rd.route
	`
	rows, err := r.db.QueryContext(ctx, query, rideTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []domain.PopularLocation{}
	for rows.Next() {
		var l domain.PopularLocation
		if err := rows.Scan(&l.Route, &l.Views, &l.Price); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// ListByName returns every route of the riders that offer the given route.
func (r *RouteRepository) ListByName(ctx context.Context, route string) ([]domain.Route, error) {
	query := `
		SELECT id, route, price, views FROM route_details
		WHERE driver_id IN (SELECT driver_id FROM route_details WHERE route = $1)
		ORDER BY driver_id, position
	`
	rows, err := r.db.QueryContext(ctx, query, route)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := []domain.Route{}
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.ID, &rt.Route, &rt.Price, &rt.Views); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

// LocalRideTypeRepository implements repository.LocalRideTypeRepository using PostgreSQL.
type LocalRideTypeRepository struct {
	db *sql.DB
}

// NewLocalRideTypeRepository creates a new LocalRideTypeRepository.
func NewLocalRideTypeRepository(db *sql.DB) *LocalRideTypeRepository {
	return &LocalRideTypeRepository{db: db}
}

// List returns every ride type ordered by name.
func (r *LocalRideTypeRepository) List(ctx context.Context) ([]domain.LocalRideType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM local_ride_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []domain.LocalRideType{}
	for rows.Next() {
		var t domain.LocalRideType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// GetByID retrieves a ride type. Malformed ids are reported as not found.
func (r *LocalRideTypeRepository) GetByID(ctx context.Context, id string) (*domain.LocalRideType, error) {
	var t domain.LocalRideType
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM local_ride_types WHERE id::text = $1`, id).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var (
	_ repository.RouteRepository         = (*RouteRepository)(nil)
	_ repository.LocalRideTypeRepository = (*LocalRideTypeRepository)(nil)
)
