package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

const tripColumns = `t.id, t.driver_id, t.origin, t.origin_city, t.destination, t.destination_city, t.price,
	t.is_round_trip, t.departure_dates, t.departure_time, t.return_dates, t.return_time,
	t.bus_type, t.bus_capacity, t.air_conditioning`

const listingQuery = `
	SELECT ` + tripColumns + `, d.service_id, bp.company_logo
	FROM trip_templates t
	JOIN bus_profiles bp ON bp.driver_id = t.driver_id
	JOIN drivers d ON d.id = t.driver_id
`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// GetByID retrieves a template by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.TripListing, error) {
	rows, err := r.q.QueryContext(ctx, listingQuery+` WHERE t.id = $1`, id)
	if err != nil {
		return nil, err
	}
	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, repository.ErrNotFound
	}
	return listings[0], nil
}

// Search returns templates serving the queried endpoints in either
// direction with enough capacity.
func (r *TripRepository) Search(ctx context.Context, query domain.TicketQuery) ([]*domain.TripListing, error) {
	origin, originCity := likePattern(query.Origin), likePattern(query.OriginCity)
	destination, destinationCity := likePattern(query.Destination), likePattern(query.DestinationCity)

	rows, err := r.q.QueryContext(ctx, listingQuery+`
		WHERE t.bus_capacity >= $1 AND (
			(t.origin ILIKE $2 AND t.origin_city ILIKE $3 AND t.destination ILIKE $4 AND t.destination_city ILIKE $5)
			OR (t.origin ILIKE $4 AND t.origin_city ILIKE $5 AND t.destination ILIKE $2 AND t.destination_city ILIKE $3)
		)
		ORDER BY t.driver_id, t.position`,
		query.NumberOfSeats, origin, originCity, destination, destinationCity,
	)
	if err != nil {
		return nil, err
	}
	return scanListings(rows)
}

// ListAll returns every template of every bus operator.
func (r *TripRepository) ListAll(ctx context.Context) ([]*domain.TripListing, error) {
	rows, err := r.q.QueryContext(ctx, listingQuery+` ORDER BY t.driver_id, t.position`)
	if err != nil {
		return nil, err
	}
	return scanListings(rows)
}

// ListLocations returns the distinct origins and destinations sorted by label.
func (r *TripRepository) ListLocations(ctx context.Context) (*domain.BusLocations, error) {
	origins, err := r.listEndpoints(ctx, "origin", "origin_city")
	if err != nil {
		return nil, err
	}
	destinations, err := r.listEndpoints(ctx, "destination", "destination_city")
	if err != nil {
		return nil, err
	}
	return &domain.BusLocations{Origins: origins, Destinations: destinations}, nil
}

func (r *TripRepository) listEndpoints(ctx context.Context, place, city string) ([]domain.PickerOption, error) {
	query := `
		SELECT DISTINCT t.` + place + ` || ' -- ' || t.` + city + ` AS label, t.` + city + `
		FROM trip_templates t
		JOIN drivers d ON d.id = t.driver_id
		JOIN services s ON s.id = d.service_id AND s.code = 'bus'
		ORDER BY label
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []domain.PickerOption{}
	for rows.Next() {
		var option domain.PickerOption
		if err := rows.Scan(&option.Label, &option.Value); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, rows.Err()
}

func scanListings(rows *sql.Rows) ([]*domain.TripListing, error) {
	defer rows.Close()

	var listings []*domain.TripListing
	for rows.Next() {
		var row tripRow
		var listing domain.TripListing
		if err := rows.Scan(append(row.dest(), &listing.ServiceID, &listing.CompanyLogo)...); err != nil {
			return nil, err
		}
		listing.Trip = row.template()
		listings = append(listings, &listing)
	}
	return listings, rows.Err()
}

// tripRow holds the scan targets for tripColumns.
type tripRow struct {
	trip           domain.TripTemplate
	departureDates pq.Int64Array
	returnDates    pq.Int64Array
}

func (r *tripRow) dest() []any {
	t := &r.trip
	return []any{
		&t.ID, &t.DriverID, &t.Origin, &t.OriginCity, &t.Destination, &t.DestinationCity, &t.Price,
		&t.IsRoundTrip, &r.departureDates, &t.DepartureTime, &r.returnDates, &t.ReturnTime,
		&t.BusType, &t.BusCapacity, &t.AirConditioning,
	}
}

func (r *tripRow) template() domain.TripTemplate {
	t := r.trip
	t.DepartureDates = weekdays(r.departureDates)
	t.ReturnDates = weekdays(r.returnDates)
	return t
}

func weekdays(values pq.Int64Array) []time.Weekday {
	days := make([]time.Weekday, 0, len(values))
	for _, v := range values {
		days = append(days, time.Weekday(v))
	}
	return days
}

func weekdayArray(days []time.Weekday) pq.Int64Array {
	values := make(pq.Int64Array, 0, len(days))
	for _, d := range days {
		values = append(values, int64(d))
	}
	return values
}

// likePattern builds a case-insensitive substring pattern, escaping the
// LIKE wildcards in s.
func likePattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + escaped + "%"
}

var _ repository.TripRepository = (*TripRepository)(nil)
