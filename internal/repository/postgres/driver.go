package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

const driverDetailsQuery = `
	SELECT d.id, d.user_id, d.service_id,
		u.first_name, u.last_name, u.email, u.phone_number, u.device_token, u.rating, u.longitude, u.latitude, u.created_at,
		s.code, s.name, s.description, s.color, s.image,
		cp.driver_id IS NOT NULL, COALESCE(cp.gender, ''), COALESCE(cp.is_vehicle_owner, false),
		COALESCE(cp.number_of_seats, 0), COALESCE(cp.vehicle_manufacturer, ''), COALESCE(cp.vehicle_year, 0),
		COALESCE(cp.vehicle_color, ''), COALESCE(cp.vehicle_license_plate, ''), COALESCE(cp.display_image, ''),
		bp.driver_id IS NOT NULL, COALESCE(bp.company_name, ''), COALESCE(bp.company_logo, ''),
		lp.driver_id IS NOT NULL, COALESCE(lp.profile_photo_url, ''), COALESCE(lt.id::text, ''), COALESCE(lt.name, '')
	FROM drivers d
	JOIN users u ON u.id = d.user_id
	JOIN services s ON s.id = d.service_id
	LEFT JOIN car_profiles cp ON cp.driver_id = d.id
	LEFT JOIN bus_profiles bp ON bp.driver_id = d.id
	LEFT JOIN local_profiles lp ON lp.driver_id = d.id
	LEFT JOIN local_ride_types lt ON lt.id = lp.local_ride_type_id
`

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// GetDetailsByID retrieves a driver with user, service and profile.
func (r *DriverRepository) GetDetailsByID(ctx context.Context, id string) (*domain.DriverDetails, error) {
	details, err := r.queryDetails(ctx, driverDetailsQuery+` WHERE d.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, repository.ErrNotFound
	}
	return details[0], nil
}

// GetDetailsByUserIDs retrieves drivers keyed by user ID.
func (r *DriverRepository) GetDetailsByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.DriverDetails, error) {
	result := make(map[string]*domain.DriverDetails, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	details, err := r.queryDetails(ctx, driverDetailsQuery+` WHERE d.user_id = ANY($1::uuid[])`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}

	for _, d := range details {
		result[d.User.ID] = d
	}
	return result, nil
}

// AppendTripTemplate adds a trip template to a bus profile, creating the
// profile on the first template.
func (r *DriverRepository) AppendTripTemplate(ctx context.Context, driverID string, trip *domain.TripTemplate) error {
	ensure := `INSERT INTO bus_profiles (driver_id, company_name) VALUES ($1, '') ON CONFLICT (driver_id) DO NOTHING`
	if _, err := r.q.ExecContext(ctx, ensure, driverID); err != nil {
		return err
	}

	query := `
		INSERT INTO trip_templates (id, driver_id, origin, origin_city, destination, destination_city, price,
			is_round_trip, departure_dates, departure_time, return_dates, return_time, bus_type, bus_capacity, air_conditioning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		driverID,
		trip.Origin,
		trip.OriginCity,
		trip.Destination,
		trip.DestinationCity,
		trip.Price,
		trip.IsRoundTrip,
		weekdayArray(trip.DepartureDates),
		trip.DepartureTime,
		weekdayArray(trip.ReturnDates),
		trip.ReturnTime,
		trip.BusType,
		trip.BusCapacity,
		trip.AirConditioning,
	)
	return err
}

// AppendRoute adds a priced route to a local profile.
func (r *DriverRepository) AppendRoute(ctx context.Context, driverID string, route *domain.Route) error {
	query := `INSERT INTO route_details (id, driver_id, route, price, views) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query, route.ID, driverID, route.Route, route.Price, route.Views)
	return err
}

// UpsertCarProfile creates or replaces the vehicle information of a car driver.
func (r *DriverRepository) UpsertCarProfile(ctx context.Context, driverID string, p *domain.CarProfile) error {
	query := `
		INSERT INTO car_profiles (driver_id, gender, is_vehicle_owner, number_of_seats, vehicle_manufacturer,
			vehicle_year, vehicle_color, vehicle_license_plate, display_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (driver_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			is_vehicle_owner = EXCLUDED.is_vehicle_owner,
			number_of_seats = EXCLUDED.number_of_seats,
			vehicle_manufacturer = EXCLUDED.vehicle_manufacturer,
			vehicle_year = EXCLUDED.vehicle_year,
			vehicle_color = EXCLUDED.vehicle_color,
			vehicle_license_plate = EXCLUDED.vehicle_license_plate,
			display_image = EXCLUDED.display_image
	`
	_, err := r.q.ExecContext(ctx, query,
		driverID,
		p.Gender,
		p.IsVehicleOwner,
		p.NumberOfSeats,
		p.VehicleManufacturer,
		p.VehicleYear,
		p.VehicleColor,
		p.VehicleLicensePlate,
		p.DisplayImage,
	)
	return err
}

// UpsertBusProfile creates or replaces the operator identity of a bus driver.
func (r *DriverRepository) UpsertBusProfile(ctx context.Context, driverID string, p *domain.BusProfile) error {
	query := `
		INSERT INTO bus_profiles (driver_id, company_name, company_logo) VALUES ($1, $2, $3)
		ON CONFLICT (driver_id) DO UPDATE SET company_name = EXCLUDED.company_name, company_logo = EXCLUDED.company_logo
	`
	_, err := r.q.ExecContext(ctx, query, driverID, p.CompanyName, p.CompanyLogo)
	return err
}

// UpsertLocalProfile creates or replaces the ride type and photo of a local rider.
func (r *DriverRepository) UpsertLocalProfile(ctx context.Context, driverID string, p *domain.LocalProfile) error {
	query := `
		INSERT INTO local_profiles (driver_id, local_ride_type_id, profile_photo_url) VALUES ($1, $2, $3)
		ON CONFLICT (driver_id) DO UPDATE SET
			local_ride_type_id = EXCLUDED.local_ride_type_id,
			profile_photo_url = EXCLUDED.profile_photo_url
	`
	_, err := r.q.ExecContext(ctx, query, driverID, p.RideType.ID, p.ProfilePhotoURL)
	return err
}

func (r *DriverRepository) queryDetails(ctx context.Context, query string, args ...any) ([]*domain.DriverDetails, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*domain.DriverDetails
	busByID := map[string]*domain.BusProfile{}
	localByID := map[string]*domain.LocalProfile{}
	for rows.Next() {
		var row driverRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		d := row.driverDetails()
		switch p := d.Profile.(type) {
		case *domain.BusProfile:
			busByID[d.Driver.ID] = p
		case *domain.LocalProfile:
			localByID[d.Driver.ID] = p
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTrips(ctx, busByID); err != nil {
		return nil, err
	}
	if err := r.loadRoutes(ctx, localByID); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *DriverRepository) loadTrips(ctx context.Context, profiles map[string]*domain.BusProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	query := `SELECT ` + tripColumns + ` FROM trip_templates t WHERE t.driver_id = ANY($1::uuid[]) ORDER BY t.position`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(keys(profiles)))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row tripRow
		if err := rows.Scan(row.dest()...); err != nil {
			return err
		}
		trip := row.template()
		p := profiles[trip.DriverID]
		p.Trips = append(p.Trips, trip)
	}
	return rows.Err()
}

func (r *DriverRepository) loadRoutes(ctx context.Context, profiles map[string]*domain.LocalProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	query := `SELECT driver_id, id, route, price, views FROM route_details WHERE driver_id = ANY($1::uuid[]) ORDER BY position`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(keys(profiles)))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var driverID string
		var route domain.Route
		if err := rows.Scan(&driverID, &route.ID, &route.Route, &route.Price, &route.Views); err != nil {
			return err
		}
		p := profiles[driverID]
		p.Routes = append(p.Routes, route)
	}
	return rows.Err()
}

// driverRow holds the scan targets of driverDetailsQuery.
type driverRow struct {
	details   domain.DriverDetails
	longitude sql.NullFloat64
	latitude  sql.NullFloat64
	car       domain.CarProfile
	bus       domain.BusProfile
	local     domain.LocalProfile
	hasCar    bool
	hasBus    bool
	hasLocal  bool
}

func (r *driverRow) dest() []any {
	d, u, s := &r.details.Driver, &r.details.User, &r.details.Service
	return []any{
		&d.ID, &d.UserID, &d.ServiceID,
		&u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.DeviceToken, &u.Rating, &r.longitude, &r.latitude, &u.CreatedAt,
		&s.Code, &s.Name, &s.Description, &s.Color, &s.Image,
		&r.hasCar, &r.car.Gender, &r.car.IsVehicleOwner,
		&r.car.NumberOfSeats, &r.car.VehicleManufacturer, &r.car.VehicleYear,
		&r.car.VehicleColor, &r.car.VehicleLicensePlate, &r.car.DisplayImage,
		&r.hasBus, &r.bus.CompanyName, &r.bus.CompanyLogo,
		&r.hasLocal, &r.local.ProfilePhotoURL, &r.local.RideType.ID, &r.local.RideType.Name,
	}
}

// driverDetails picks the profile matching the driver's service.
func (r *driverRow) driverDetails() *domain.DriverDetails {
	d := r.details
	d.User.ID = d.Driver.UserID
	d.Service.ID = d.Driver.ServiceID
	if r.longitude.Valid && r.latitude.Valid {
		d.User.Location = &domain.Coordinates{Longitude: r.longitude.Float64, Latitude: r.latitude.Float64}
	}

	switch d.Service.Code {
	case domain.ServiceCodeCar:
		if r.hasCar {
			car := r.car
			d.Profile = &car
		}
	case domain.ServiceCodeBus:
		if r.hasBus {
			bus := r.bus
			d.Profile = &bus
		}
	case domain.ServiceCodeLocal:
		if r.hasLocal {
			local := r.local
			d.Profile = &local
		}
	}
	return &d
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

var _ repository.DriverRepository = (*DriverRepository)(nil)
