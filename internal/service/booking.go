package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/config"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
)

const lockPollInterval = 50 * time.Millisecond

// BookBusSeatsRequest contains the parameters for booking bus seats.
type BookBusSeatsRequest struct {
	TicketID      string
	SeatNumbers   []int
	DepartureDate string // YYYY-MM-DD
	DepartureTime string // HH:MM or HH:MM:SS
}

// BookingService books seats on bus trips.
type BookingService struct {
	trips    repository.TripRepository
	rides    repository.RideRepository
	tx       repository.Transactor
	locks    redis.LockStoreInterface
	users    repository.UserRepository
	notifier *NotificationService
	cfg      config.BookingConfig
	loc      *time.Location
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	trips repository.TripRepository,
	rides repository.RideRepository,
	tx repository.Transactor,
	locks redis.LockStoreInterface,
	users repository.UserRepository,
	notifier *NotificationService,
	cfg config.BookingConfig,
	loc *time.Location,
) *BookingService {
	return &BookingService{
		trips:    trips,
		rides:    rides,
		tx:       tx,
		locks:    locks,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to reject past departures.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// BookBusSeats reserves seats on one dated departure of a trip template.
//
// The template must depart on the requested weekday at the requested
// time, on a day after today. Seats already booked for the same trip and day fail with a
// *SeatConflictError; the ride_seats primary key closes the window
// between the availability read and the insert.
func (s *BookingService) BookBusSeats(ctx context.Context, principal auth.Principal, req BookBusSeatsRequest) (*domain.Ride, error) {
	if principal.UserID == "" {
		return nil, ErrUnauthenticated
	}

	departure, err := s.validateBookingRequest(req)
	if err != nil {
		return nil, err
	}

	listing, err := s.trips.GetByID(ctx, req.TicketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("load trip: %w", err)
	}
	trip := &listing.Trip

	for _, seat := range req.SeatNumbers {
		if seat > trip.BusCapacity {
			return nil, &ValidationError{
				Field:   "seatNumbers",
				Message: fmt.Sprintf("Seat: %d does not exist on this bus", seat),
			}
		}
	}

	if !s.afterToday(departure) || !trip.DepartsOn(departure.Weekday()) || departure.Format(domain.ClockLayout) != trip.DepartureTime {
		return nil, &ScheduleMismatchError{Date: req.DepartureDate, Time: departure.Format(domain.ClockLayout)}
	}

	day := departure.Format(time.DateOnly)
	release, err := s.acquireTripLock(ctx, trip.ID, day)
	if err != nil {
		return nil, err
	}
	defer release()

	ride := &domain.Ride{
		ID:            uuid.NewString(),
		ServiceID:     listing.ServiceID,
		DriverID:      trip.DriverID,
		UserID:        principal.UserID,
		PaymentStatus: domain.PaymentStatusPending,
		RideStatus:    domain.RideStatusPending,
		From:          domain.Location{Address: trip.OriginCity + ", " + trip.Origin},
		To:            domain.Location{Address: trip.DestinationCity + ", " + trip.Destination},
		BusTripID:     trip.ID,
		DepartureDate: departure,
		BookedSeats:   slices.Clone(req.SeatNumbers),
		Price:         trip.OneWayPrice() * float64(len(req.SeatNumbers)),
		CreatedAt:     s.now(),
	}

	err = s.tx.WithinTx(ctx, func(rides repository.RideRepository) error {
		booked, err := rides.GetBookedSeats(ctx, trip.ID, day)
		if err != nil {
			return fmt.Errorf("booked seats: %w", err)
		}

		if err := CheckUniqueSeats(req.SeatNumbers, booked); err != nil {
			return err
		}

		if trip.BusCapacity-len(booked) < 0 {
			return ErrCapacityExceeded
		}

		return rides.Create(ctx, ride)
	})
	if errors.Is(err, repository.ErrSeatTaken) {
		return nil, s.seatConflict(ctx, trip.ID, day, req.SeatNumbers)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[BOOKING] ride=%s trip=%s day=%s seats=%v", ride.ID, trip.ID, day, ride.BookedSeats)

	s.notify(ctx, principal, ride)
	return ride, nil
}

// validateBookingRequest parses the requested departure in the configured location.
func (s *BookingService) validateBookingRequest(req BookBusSeatsRequest) (time.Time, error) {
	if _, err := uuid.Parse(req.TicketID); err != nil {
		return time.Time{}, &ValidationError{Field: "ticketId", Message: "Invalid ticket id"}
	}

	if len(req.SeatNumbers) == 0 {
		return time.Time{}, &ValidationError{Field: "seatNumbers", Message: "Please provide at least 1 seat"}
	}
	for i, seat := range req.SeatNumbers {
		if seat <= 0 {
			return time.Time{}, &ValidationError{Field: "seatNumbers", Message: "Seat numbers must be positive"}
		}
		if slices.Contains(req.SeatNumbers[:i], seat) {
			return time.Time{}, &ValidationError{Field: "seatNumbers", Message: fmt.Sprintf("Seat: %d is listed more than once", seat)}
		}
	}

	date, err := time.ParseInLocation(time.DateOnly, req.DepartureDate, s.loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "departureDate", Message: "Expected a date in YYYY-MM-DD format"}
	}

	clock, err := parseClock(req.DepartureTime)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "departureTime", Message: "Expected a time in HH:MM format"}
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, s.loc), nil
}

// afterToday reports whether departure falls on a later calendar day than
// now. Listings never offer today, so same-day bookings are refused too.
func (s *BookingService) afterToday(departure time.Time) bool {
	y, m, d := s.now().In(s.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	dy, dm, dd := departure.In(s.loc).Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, s.loc).After(today)
}

// acquireTripLock serializes bookings of one trip departure day. The
// lock is best effort: when Redis fails the booking proceeds and the
// seat constraint still holds.
func (s *BookingService) acquireTripLock(ctx context.Context, tripID, day string) (func(), error) {
	noop := func() {}
	deadline := time.Now().Add(s.cfg.LockWait)

	for {
		ok, err := s.locks.AcquireTripLock(ctx, tripID, day, s.cfg.LockTTL)
		if err != nil {
			log.Printf("[BOOKING] trip lock unavailable, continuing without it: %v", err)
			return noop, nil
		}
		if ok {
			return func() {
				if err := s.locks.ReleaseTripLock(context.WithoutCancel(ctx), tripID, day); err != nil {
					log.Printf("[BOOKING] failed to release trip lock %s/%s: %v", tripID, day, err)
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrBookingInProgress
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// seatConflict builds the conflict for a booking that lost the seat
// constraint race.
func (s *BookingService) seatConflict(ctx context.Context, tripID, day string, requested []int) error {
	booked, err := s.rides.GetBookedSeats(ctx, tripID, day)
	if err == nil {
		if conflict := CheckUniqueSeats(requested, booked); conflict != nil {
			return conflict
		}
	}
	return &SeatConflictError{Seats: slices.Clone(requested)}
}

func (s *BookingService) notify(ctx context.Context, principal auth.Principal, ride *domain.Ride) {
	if s.notifier == nil {
		return
	}

	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		log.Printf("[BOOKING] could not load user %s for notification: %v", principal.UserID, err)
		return
	}
	s.notifier.NotifyBusTripBooked(ctx, user, ride)
}

func parseClock(value string) (time.Time, error) {
	if t, err := time.Parse(time.TimeOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(domain.ClockLayout, value)
}
