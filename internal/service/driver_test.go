package service_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/config"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

func newDriverService() (*service.DriverService, *MockDriverRepository, *MockBusLocationsCache) {
	drivers := NewMockDriverRepository()
	cache := &MockBusLocationsCache{}
	rideTypes := &MockRideTypeRepository{Types: []domain.LocalRideType{keke, okada}}
	return service.NewDriverService(drivers, NewMockUserRepository(), rideTypes, cache), drivers, cache
}

func TestAddTripTemplate_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, drivers, cache := newDriverService()

	operator := busDriver()
	drivers.AddDriver(operator)

	input := lagosToAbuja(time.Friday, time.Wednesday, time.Friday)
	input.ID = "client-supplied"

	trip, err := svc.AddTripTemplate(ctx, principalFor(operator), input)
	if err != nil {
		t.Fatalf("AddTripTemplate failed: %v", err)
	}

	if _, err := uuid.Parse(trip.ID); err != nil {
		t.Errorf("expected generated id, got %q", trip.ID)
	}
	if trip.DriverID != operator.Driver.ID {
		t.Errorf("expected driver %s, got %s", operator.Driver.ID, trip.DriverID)
	}
	if !slices.Equal(trip.DepartureDates, []time.Weekday{time.Wednesday, time.Friday}) {
		t.Errorf("expected sorted unique weekdays, got %v", trip.DepartureDates)
	}

	stored, _ := drivers.GetDetailsByID(ctx, operator.Driver.ID)
	bus := stored.Profile.(*domain.BusProfile)
	if len(bus.Trips) != 1 || bus.Trips[0].ID != trip.ID {
		t.Fatalf("expected trip appended to profile, got %+v", bus.Trips)
	}
	if cache.InvalidateCallCount != 1 {
		t.Errorf("expected bus locations invalidated once, got %d", cache.InvalidateCallCount)
	}
}

func TestAddTripTemplate_Duplicate(t *testing.T) {
	t.Parallel()
	svc, drivers, cache := newDriverService()

	operator := busDriver(lagosToAbuja(time.Monday))
	drivers.AddDriver(operator)

	dup := lagosToAbuja(time.Tuesday)
	dup.Origin = "jibowu park"
	dup.Destination = "UTAKO PARK"

	_, err := svc.AddTripTemplate(context.Background(), principalFor(operator), dup)
	if !errors.Is(err, service.ErrDuplicateTrip) {
		t.Fatalf("expected ErrDuplicateTrip, got %v", err)
	}
	want := "Matching trip with Origin: jibowu park & Destination: UTAKO PARK already exists!"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if drivers.AppendTripCallCount != 0 || cache.InvalidateCallCount != 0 {
		t.Error("duplicate must not be stored")
	}
}

func TestAddTripTemplate_CallerChecks(t *testing.T) {
	t.Parallel()

	operator := busDriver()
	rider := localDriver(keke)
	stranger := auth.Principal{UserID: uuid.NewString(), DriverID: operator.Driver.ID, Role: auth.RoleDriver}

	tests := []struct {
		name      string
		principal auth.Principal
		wantErr   error
		wantMsg   string
	}{
		{name: "anonymous", wantErr: service.ErrUnauthenticated},
		{name: "not a driver", principal: riderPrincipal(), wantErr: service.ErrNotADriver},
		{name: "driver id of another user", principal: stranger, wantErr: service.ErrNotADriver},
		{name: "unknown driver", principal: auth.Principal{UserID: uuid.NewString(), DriverID: uuid.NewString()}, wantErr: service.ErrDriverNotFound},
		{name: "local rider", principal: principalFor(rider), wantErr: service.ErrWrongService, wantMsg: "Driver must be on bus to update this information"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, drivers, _ := newDriverService()
			drivers.AddDriver(operator)
			drivers.AddDriver(rider)

			_, err := svc.AddTripTemplate(context.Background(), tt.principal, lagosToAbuja(time.Monday))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestAddTripTemplate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		field  string
		mutate func(trip *domain.TripTemplate)
	}{
		{"missing origin", "origin", func(trip *domain.TripTemplate) { trip.Origin = " " }},
		{"missing destination city", "destinationCity", func(trip *domain.TripTemplate) { trip.DestinationCity = "" }},
		{"zero price", "price", func(trip *domain.TripTemplate) { trip.Price = 0 }},
		{"zero capacity", "busCapacity", func(trip *domain.TripTemplate) { trip.BusCapacity = 0 }},
		{"no departure days", "departureDates", func(trip *domain.TripTemplate) { trip.DepartureDates = nil }},
		{"weekday out of range", "departureDates", func(trip *domain.TripTemplate) { trip.DepartureDates = []time.Weekday{7} }},
		{"bad departure time", "departureTime", func(trip *domain.TripTemplate) { trip.DepartureTime = "25:00" }},
		{"round trip without return days", "returnDates", func(trip *domain.TripTemplate) {
			trip.IsRoundTrip = true
			trip.ReturnTime = "14:00"
		}},
		{"round trip with bad return time", "returnTime", func(trip *domain.TripTemplate) {
			trip.IsRoundTrip = true
			trip.ReturnDates = []time.Weekday{time.Sunday}
			trip.ReturnTime = "2pm"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, drivers, _ := newDriverService()
			operator := busDriver()
			drivers.AddDriver(operator)

			trip := lagosToAbuja(time.Monday)
			tt.mutate(&trip)

			_, err := svc.AddTripTemplate(context.Background(), principalFor(operator), trip)
			var verr *service.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestAddTripTemplate_NormalizesClock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, drivers, _ := newDriverService()
	operator := busDriver()
	drivers.AddDriver(operator)

	input := lagosToAbuja(time.Friday)
	input.DepartureTime = " 8:30"
	input.IsRoundTrip = true
	input.ReturnDates = []time.Weekday{time.Sunday}
	input.ReturnTime = "9:05"

	trip, err := svc.AddTripTemplate(ctx, principalFor(operator), input)
	if err != nil {
		t.Fatalf("AddTripTemplate failed: %v", err)
	}
	if trip.DepartureTime != "08:30" || trip.ReturnTime != "09:05" {
		t.Fatalf("expected zero-padded clocks, got %q/%q", trip.DepartureTime, trip.ReturnTime)
	}

	// The stored template must be bookable with the canonical clock.
	rides := NewMockRideRepository()
	booking := service.NewBookingService(
		NewMockTripRepository(listing(*trip)),
		rides,
		NewMockTransactor(rides),
		NewMockLockStore(),
		NewMockUserRepository(),
		service.NewNotificationService(&MockPublisher{}, "booking"),
		config.BookingConfig{LockTTL: time.Second, LockWait: time.Second},
		lagos,
	).WithClock(func() time.Time { return wednesday })

	req := service.BookBusSeatsRequest{TicketID: trip.ID, SeatNumbers: []int{1}, DepartureDate: "2024-05-17", DepartureTime: "08:30"}
	if _, err := booking.BookBusSeats(ctx, riderPrincipal(), req); err != nil {
		t.Fatalf("BookBusSeats on normalized template failed: %v", err)
	}
}

func TestAddRoute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, drivers, _ := newDriverService()
		rider := localDriver(keke)
		drivers.AddDriver(rider)

		route, err := svc.AddRoute(ctx, principalFor(rider), domain.Route{ID: "x", Route: "  Ikeja - Yaba ", Price: 700, Views: 99})
		if err != nil {
			t.Fatalf("AddRoute failed: %v", err)
		}
		if route.Route != "Ikeja - Yaba" || route.Views != 0 || route.ID == "x" {
			t.Errorf("unexpected route %+v", route)
		}

		stored, _ := drivers.GetDetailsByID(ctx, rider.Driver.ID)
		if routes := stored.Profile.(*domain.LocalProfile).Routes; len(routes) != 1 {
			t.Errorf("expected 1 stored route, got %d", len(routes))
		}
	})

	t.Run("profile incomplete", func(t *testing.T) {
		t.Parallel()
		svc, drivers, _ := newDriverService()
		rider := newDriver(localService, nil)
		drivers.AddDriver(rider)

		_, err := svc.AddRoute(ctx, principalFor(rider), domain.Route{Route: "Ikeja - Yaba", Price: 700})
		if !errors.Is(err, service.ErrProfileIncomplete) {
			t.Fatalf("expected ErrProfileIncomplete, got %v", err)
		}
	})

	t.Run("bus operator", func(t *testing.T) {
		t.Parallel()
		svc, drivers, _ := newDriverService()
		operator := busDriver()
		drivers.AddDriver(operator)

		_, err := svc.AddRoute(ctx, principalFor(operator), domain.Route{Route: "Ikeja - Yaba", Price: 700})
		if !errors.Is(err, service.ErrWrongService) {
			t.Fatalf("expected ErrWrongService, got %v", err)
		}
		if err.Error() != "Driver must be on local to update this information" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("invalid route", func(t *testing.T) {
		t.Parallel()
		svc, drivers, _ := newDriverService()
		rider := localDriver(okada)
		drivers.AddDriver(rider)

		for _, r := range []domain.Route{{Route: "", Price: 100}, {Route: "Yaba", Price: 0}} {
			if _, err := svc.AddRoute(ctx, principalFor(rider), r); !errors.Is(err, service.ErrValidation) {
				t.Errorf("expected ErrValidation for %+v, got %v", r, err)
			}
		}
		if drivers.AppendRouteCallCount != 0 {
			t.Error("invalid routes must not be stored")
		}
	})
}
