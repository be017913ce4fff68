package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

const rideColumns = `id, service_id, driver_id, user_id, payment_status, ride_status,
	from_address, from_latitude, from_longitude, to_address, to_latitude, to_longitude,
	bus_trip_id, departure_date, booked_seats, price, created_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride and, for bus bookings, its seat rows.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	var busTripID sql.NullString
	if ride.IsBusBooking() {
		busTripID = sql.NullString{String: ride.BusTripID, Valid: true}
	}

	seats := make(pq.Int64Array, 0, len(ride.BookedSeats))
	for _, s := range ride.BookedSeats {
		seats = append(seats, int64(s))
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.ServiceID,
		ride.DriverID,
		ride.UserID,
		ride.PaymentStatus,
		ride.RideStatus,
		ride.From.Address,
		ride.From.Latitude,
		ride.From.Longitude,
		ride.To.Address,
		ride.To.Latitude,
		ride.To.Longitude,
		busTripID,
		ride.DepartureDate,
		seats,
		ride.Price,
		ride.CreatedAt,
	)
	if err != nil {
		return err
	}

	if !ride.IsBusBooking() || len(seats) == 0 {
		return nil
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO ride_seats (bus_trip_id, departure_day, seat_number, ride_id)
		SELECT $1, $2::date, seat, $3 FROM unnest($4::int[]) AS seat
	`, ride.BusTripID, ride.DepartureDate.Format(time.DateOnly), ride.ID, seats)
	if isUniqueViolation(err, "ride_seats_pkey") {
		return repository.ErrSeatTaken
	}
	return err
}

// GetBookedSeats returns the seats taken on a trip for one departure day.
func (r *RideRepository) GetBookedSeats(ctx context.Context, tripID, day string) ([]int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT seat_number FROM ride_seats
		WHERE bus_trip_id = $1 AND departure_day = $2::date
		ORDER BY seat_number
	`, tripID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []int{}
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// GetByIDForUser retrieves a ride owned by the given user.
func (r *RideRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 AND user_id = $2`

	var ride domain.Ride
	var busTripID sql.NullString
	var seats pq.Int64Array

	err := r.q.QueryRowContext(ctx, query, id, userID).Scan(
		&ride.ID,
		&ride.ServiceID,
		&ride.DriverID,
		&ride.UserID,
		&ride.PaymentStatus,
		&ride.RideStatus,
		&ride.From.Address,
		&ride.From.Latitude,
		&ride.From.Longitude,
		&ride.To.Address,
		&ride.To.Latitude,
		&ride.To.Longitude,
		&busTripID,
		&ride.DepartureDate,
		&seats,
		&ride.Price,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	ride.BusTripID = busTripID.String
	for _, s := range seats {
		ride.BookedSeats = append(ride.BookedSeats, int(s))
	}
	return &ride, nil
}

// ListByUser returns a user's rides, newest first.
func (r *RideRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RideSummary, error) {
	query := `
		SELECT r.id, u.first_name, s.code, r.from_address, r.from_latitude, r.from_longitude,
			r.to_address, r.to_latitude, r.to_longitude, r.ride_status, r.payment_status, r.price, r.created_at
		FROM rides r
		JOIN drivers d ON d.id = r.driver_id
		JOIN users u ON u.id = d.user_id
		JOIN services s ON s.id = r.service_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*domain.RideSummary{}
	for rows.Next() {
		var s domain.RideSummary
		if err := rows.Scan(
			&s.ID,
			&s.DriverFirstName,
			&s.ServiceCode,
			&s.From.Address,
			&s.From.Latitude,
			&s.From.Longitude,
			&s.To.Address,
			&s.To.Latitude,
			&s.To.Longitude,
			&s.RideStatus,
			&s.PaymentStatus,
			&s.Price,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// CountByDriverIDs returns the number of rides per driver.
func (r *RideRepository) CountByDriverIDs(ctx context.Context, driverIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(driverIDs))
	if len(driverIDs) == 0 {
		return counts, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT driver_id, COUNT(*) FROM rides
		WHERE driver_id = ANY($1::uuid[])
		GROUP BY driver_id
	`, pq.Array(driverIDs))
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

var _ repository.RideRepository = (*RideRepository)(nil)
