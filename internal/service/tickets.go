package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

// TicketDetails is one dated departure of a trip template.
type TicketDetails struct {
	TicketID        string                  `json:"ticketId"`
	Logo            string                  `json:"logo"`
	SeatCount       int                     `json:"seatCount"`
	Price           float64                 `json:"price"`
	BusType         string                  `json:"busType"`
	AirConditioning bool                    `json:"airConditioning"`
	DepartureDate   string                  `json:"departureDate"`
	DepartureTime   string                  `json:"departureTime"`
	ReturnDate      []time.Weekday          `json:"returnDate"`
	ReturnTime      string                  `json:"returnTime"`
	BookedSeats     []int                   `json:"bookedSeats"`
	ArrivalTime     time.Time               `json:"arrivalTime"`
	Location        maps.TravelInfo         `json:"location"`
	Coordinates     []maps.GeocodedLocation `json:"coordinates"`
}

// Ticket is a bus ticket search result.
type Ticket struct {
	Origin          string        `json:"origin"`
	OriginCity      string        `json:"originCity"`
	Destination     string        `json:"destination"`
	DestinationCity string        `json:"destinationCity"`
	Details         TicketDetails `json:"details"`

	departure time.Time
}

// TicketService expands trip templates into dated, priced tickets.
type TicketService struct {
	trips repository.TripRepository
	rides repository.RideRepository
	maps  maps.ClientInterface
	cache redis.BusLocationsCache
	loc   *time.Location
	now   func() time.Time
}

// NewTicketService creates a new TicketService. Weekdays resolve in loc.
func NewTicketService(
	trips repository.TripRepository,
	rides repository.RideRepository,
	mapsClient maps.ClientInterface,
	cache redis.BusLocationsCache,
	loc *time.Location,
) *TicketService {
	return &TicketService{
		trips: trips,
		rides: rides,
		maps:  mapsClient,
		cache: cache,
		loc:   loc,
		now:   time.Now,
	}
}

// WithClock replaces the clock used to resolve departure dates.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// Search returns the tickets matching the query, earliest departure first.
func (s *TicketService) Search(ctx context.Context, query domain.TicketQuery) ([]Ticket, error) {
	if query.NumberOfSeats <= 0 {
		return nil, &ValidationError{Field: "numberOfSeats", Message: "must be a positive number"}
	}
	if query.DepartureDate.IsZero() {
		return nil, &ValidationError{Field: "departureDate", Message: "is required"}
	}

	listings, err := s.trips.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search trips: %w", err)
	}

	matching := listings[:0]
	for _, l := range listings {
		if query.Matches(&l.Trip) {
			matching = append(matching, l)
		}
	}

	return s.expand(ctx, matching)
}

// ListAll returns a ticket for every departure of every template.
func (s *TicketService) ListAll(ctx context.Context) ([]Ticket, error) {
	listings, err := s.trips.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return s.expand(ctx, listings)
}

// Locations returns the bus origin and destination pickers.
func (s *TicketService) Locations(ctx context.Context) (*domain.BusLocations, error) {
	if cached, err := s.cache.GetBusLocations(ctx); err != nil {
		log.Printf("[TICKETS] bus locations cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	locations, err := s.trips.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bus locations: %w", err)
	}

	if err := s.cache.SetBusLocations(ctx, locations); err != nil {
		log.Printf("[TICKETS] bus locations cache write failed: %v", err)
	}
	return locations, nil
}

// expand flattens listings into one ticket per departure weekday and
// enriches every ticket concurrently.
func (s *TicketService) expand(ctx context.Context, listings []*domain.TripListing) ([]Ticket, error) {
	today := s.now().In(s.loc)

	var tickets []Ticket
	for _, l := range listings {
		for _, weekday := range l.Trip.DepartureDates {
			tickets = append(tickets, newTicket(l, NextDepartureDateTime(today, weekday, l.Trip.DepartureTime)))
		}
	}

	errs := make([]error, len(tickets))
	var wg sync.WaitGroup
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.enrich(ctx, &tickets[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].departure.Before(tickets[j].departure)
	})
	if tickets == nil {
		tickets = []Ticket{}
	}
	return tickets, nil
}

func (s *TicketService) enrich(ctx context.Context, t *Ticket) error {
	from := t.OriginCity + ", " + t.Origin
	to := t.DestinationCity + ", " + t.Destination

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.Details.Location = s.maps.TravelInfo(ctx, maps.AddressPlace(from), maps.AddressPlace(to))
	}()
	go func() {
		defer wg.Done()
		t.Details.Coordinates = s.maps.Geocode(ctx, []string{from, to})
	}()

	seats, err := s.rides.GetBookedSeats(ctx, t.Details.TicketID, t.Details.DepartureDate)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("booked seats for trip %s: %w", t.Details.TicketID, err)
	}

	t.Details.BookedSeats = seats
	t.Details.ArrivalTime = t.departure.Add(time.Duration(t.Details.Location.DurationSeconds) * time.Second)
	return nil
}

func newTicket(l *domain.TripListing, departure time.Time) Ticket {
	trip := l.Trip
	return Ticket{
		Origin:          trip.Origin,
		OriginCity:      trip.OriginCity,
		Destination:     trip.Destination,
		DestinationCity: trip.DestinationCity,
		Details: TicketDetails{
			TicketID:        trip.ID,
			Logo:            l.CompanyLogo,
			SeatCount:       trip.BusCapacity,
			Price:           trip.OneWayPrice(),
			BusType:         trip.BusType,
			AirConditioning: trip.AirConditioning,
			DepartureDate:   departure.Format(time.DateOnly),
			DepartureTime:   trip.DepartureTime,
			ReturnDate:      trip.ReturnDates,
			ReturnTime:      trip.ReturnTime,
			BookedSeats:     []int{},
		},
		departure: departure,
	}
}

// NextDepartureDateTime resolves weekday to its next date after today and
// sets the template's HH:MM clock time. An unparsable clock keeps midnight.
func NextDepartureDateTime(today time.Time, weekday time.Weekday, clock string) time.Time {
	date := domain.NextDepartureDate(today, weekday)
	t, err := time.Parse(domain.ClockLayout, clock)
	if err != nil {
		return date
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}
