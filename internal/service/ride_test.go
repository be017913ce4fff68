package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

type rideFixture struct {
	rides     *MockRideRepository
	drivers   *MockDriverRepository
	users     *MockUserRepository
	maps      *MockMapsClient
	publisher *MockPublisher
	svc       *service.RideService
}

func newRideFixture() *rideFixture {
	f := &rideFixture{
		rides:     NewMockRideRepository(),
		drivers:   NewMockDriverRepository(),
		users:     NewMockUserRepository(),
		maps:      &MockMapsClient{Travel: maps.TravelInfo{DurationText: "4 mins", DurationSeconds: 240, DistanceText: "1.2 km"}},
		publisher: &MockPublisher{},
	}
	notifier := service.NewNotificationService(f.publisher, "booking")
	f.svc = service.NewRideService(f.rides, f.drivers, f.users, f.maps, notifier)
	return f
}

var (
	ikejaPickup = domain.Location{Address: "Ikeja City Mall", Latitude: 6.6018, Longitude: 3.3515}
	yabaDropoff = domain.Location{Address: "Yaba Market", Latitude: 6.5095, Longitude: 3.3711}
)

func TestBookCarRide_Pricing(t *testing.T) {
	t.Parallel()

	cheap := lagosToAbuja(time.Friday)
	cheap.Price = 300
	dear := lagosToAbuja(time.Friday)
	dear.Price = 500

	tests := []struct {
		name   string
		driver *domain.DriverDetails
		want   float64
	}{
		{"car profile", carDriver(), 0},
		{"first route wins", localDriver(keke, domain.Route{Route: "A", Price: 700}, domain.Route{Route: "B", Price: 200}), 700},
		{"cheapest trip fallback", busDriver(dear, cheap), 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newRideFixture()
			f.drivers.AddDriver(tt.driver)

			ride, err := f.svc.BookCarRide(context.Background(), riderPrincipal(), service.BookCarRideRequest{
				DriverID: tt.driver.Driver.ID,
				From:     ikejaPickup,
				To:       yabaDropoff,
			})
			if err != nil {
				t.Fatalf("BookCarRide failed: %v", err)
			}
			if ride.Price != tt.want {
				t.Errorf("expected price %f, got %f", tt.want, ride.Price)
			}
		})
	}
}

func TestBookCarRide_StoresAndNotifies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newRideFixture()
	d := carDriver()
	f.drivers.AddDriver(d)

	principal := riderPrincipal()
	f.users.AddUser(&domain.User{ID: principal.UserID, DeviceToken: "device-9"})

	ride, err := f.svc.BookCarRide(ctx, principal, service.BookCarRideRequest{DriverID: d.Driver.ID, From: ikejaPickup, To: yabaDropoff})
	if err != nil {
		t.Fatalf("BookCarRide failed: %v", err)
	}

	if ride.IsBusBooking() {
		t.Error("car ride must not reference a bus trip")
	}
	if ride.ServiceID != carService.ID || ride.DriverID != d.Driver.ID || ride.UserID != principal.UserID {
		t.Errorf("unexpected ride references %+v", ride)
	}
	if ride.RideStatus != domain.RideStatusPending || ride.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected pending ride, got %s/%s", ride.RideStatus, ride.PaymentStatus)
	}
	if _, err := f.rides.GetByIDForUser(ctx, ride.ID, principal.UserID); err != nil {
		t.Errorf("ride not stored: %v", err)
	}

	msgs := f.publisher.Messages()
	if len(msgs) != 1 || msgs[0].RoutingKey != "ride.car.booked" {
		t.Fatalf("expected one car booking notification, got %+v", msgs)
	}
}

func TestBookCarRide_Errors(t *testing.T) {
	t.Parallel()

	registered := carDriver()
	onboarding := newDriver(carService, nil)

	tests := []struct {
		name      string
		principal auth.Principal
		req       service.BookCarRideRequest
		wantErr   error
	}{
		{
			name:    "unauthenticated",
			req:     service.BookCarRideRequest{DriverID: registered.Driver.ID, From: ikejaPickup, To: yabaDropoff},
			wantErr: service.ErrUnauthenticated,
		},
		{
			name:      "bad driver id",
			principal: riderPrincipal(),
			req:       service.BookCarRideRequest{DriverID: "driver-1", From: ikejaPickup, To: yabaDropoff},
			wantErr:   service.ErrValidation,
		},
		{
			name:      "bad pickup",
			principal: riderPrincipal(),
			req:       service.BookCarRideRequest{DriverID: registered.Driver.ID, From: domain.Location{Latitude: 91}, To: yabaDropoff},
			wantErr:   service.ErrValidation,
		},
		{
			name:      "bad dropoff",
			principal: riderPrincipal(),
			req:       service.BookCarRideRequest{DriverID: registered.Driver.ID, From: ikejaPickup, To: domain.Location{Longitude: -181}},
			wantErr:   service.ErrValidation,
		},
		{
			name:      "unknown driver",
			principal: riderPrincipal(),
			req:       service.BookCarRideRequest{DriverID: uuid.NewString(), From: ikejaPickup, To: yabaDropoff},
			wantErr:   service.ErrDriverNotFound,
		},
		{
			name:      "driver without profile",
			principal: riderPrincipal(),
			req:       service.BookCarRideRequest{DriverID: onboarding.Driver.ID, From: ikejaPickup, To: yabaDropoff},
			wantErr:   service.ErrDriverNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newRideFixture()
			f.drivers.AddDriver(registered)
			f.drivers.AddDriver(onboarding)

			_, err := f.svc.BookCarRide(context.Background(), tt.principal, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if f.rides.CreateCallCount != 0 {
				t.Error("no ride should be created")
			}
		})
	}
}

func TestRideHistory(t *testing.T) {
	t.Parallel()
	f := newRideFixture()
	f.rides.Summaries = []*domain.RideSummary{{ID: "r2"}, {ID: "r1"}}

	history, err := f.svc.History(context.Background(), riderPrincipal())
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != "r2" {
		t.Errorf("unexpected history %+v", history)
	}

	if _, err := f.svc.History(context.Background(), auth.Principal{}); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTrackRide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("driver with location", func(t *testing.T) {
		t.Parallel()
		f := newRideFixture()
		d := carDriver()
		here := offset(ikeja, 1_200)
		d.User.Location = &here
		f.drivers.AddDriver(d)

		principal := riderPrincipal()
		ride, err := f.svc.BookCarRide(ctx, principal, service.BookCarRideRequest{DriverID: d.Driver.ID, From: ikejaPickup, To: yabaDropoff})
		if err != nil {
			t.Fatalf("BookCarRide failed: %v", err)
		}

		tracked, err := f.svc.Track(ctx, principal, ride.ID)
		if err != nil {
			t.Fatalf("Track failed: %v", err)
		}
		if tracked.DurationText != "4 mins" || tracked.DistanceText != "1.2 km" {
			t.Errorf("expected travel info, got %+v", tracked.TravelInfo)
		}
		if tracked.Driver.Coordinates == nil || tracked.Driver.ProfilePhoto != "corolla.png" {
			t.Errorf("unexpected driver %+v", tracked.Driver)
		}
		if tracked.Service.Code != domain.ServiceCodeCar {
			t.Errorf("expected car service, got %s", tracked.Service.Code)
		}
	})

	t.Run("driver without location", func(t *testing.T) {
		t.Parallel()
		f := newRideFixture()
		d := carDriver()
		f.drivers.AddDriver(d)

		principal := riderPrincipal()
		ride, err := f.svc.BookCarRide(ctx, principal, service.BookCarRideRequest{DriverID: d.Driver.ID, From: ikejaPickup, To: yabaDropoff})
		if err != nil {
			t.Fatalf("BookCarRide failed: %v", err)
		}

		tracked, err := f.svc.Track(ctx, principal, ride.ID)
		if err != nil {
			t.Fatalf("Track failed: %v", err)
		}
		if tracked.TravelInfo != (maps.TravelInfo{}) || f.maps.TravelCallCount != 0 {
			t.Errorf("expected no travel lookup, got %+v", tracked.TravelInfo)
		}
	})

	t.Run("another rider's ride", func(t *testing.T) {
		t.Parallel()
		f := newRideFixture()
		d := carDriver()
		f.drivers.AddDriver(d)

		ride, err := f.svc.BookCarRide(ctx, riderPrincipal(), service.BookCarRideRequest{DriverID: d.Driver.ID, From: ikejaPickup, To: yabaDropoff})
		if err != nil {
			t.Fatalf("BookCarRide failed: %v", err)
		}

		_, err = f.svc.Track(ctx, riderPrincipal(), ride.ID)
		if !errors.Is(err, service.ErrRideNotFound) {
			t.Fatalf("expected ErrRideNotFound, got %v", err)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		f := newRideFixture()

		_, err := f.svc.Track(ctx, riderPrincipal(), "42")
		if !errors.Is(err, service.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}
