package service_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

var (
	carService   = domain.Service{ID: "svc-car", Code: domain.ServiceCodeCar, Name: "Car", Image: "car.png"}
	busService   = domain.Service{ID: "svc-bus", Code: domain.ServiceCodeBus, Name: "Bus", Image: "bus.png"}
	localService = domain.Service{ID: "svc-local", Code: domain.ServiceCodeLocal, Name: "Local", Image: "local.png"}

	keke  = domain.LocalRideType{ID: "rt-keke", Name: "Keke"}
	okada = domain.LocalRideType{ID: "rt-okada", Name: "Okada"}
)

// lagos is the fixed zone for date resolution in tests.
var lagos = time.FixedZone("WAT", 60*60)

func newDriver(service domain.Service, profile domain.Profile) *domain.DriverDetails {
	userID := uuid.NewString()
	return &domain.DriverDetails{
		Driver:  domain.Driver{ID: uuid.NewString(), UserID: userID, ServiceID: service.ID},
		User:    domain.User{ID: userID, FirstName: "Ada", LastName: "Obi", PhoneNumber: "+2348000000000", Rating: 4.5},
		Service: service,
		Profile: profile,
	}
}

func carDriver() *domain.DriverDetails {
	return newDriver(carService, &domain.CarProfile{DisplayImage: "corolla.png", NumberOfSeats: 4})
}

func localDriver(rideType domain.LocalRideType, routes ...domain.Route) *domain.DriverDetails {
	return newDriver(localService, &domain.LocalProfile{RideType: rideType, ProfilePhotoURL: "me.png", Routes: routes})
}

func busDriver(trips ...domain.TripTemplate) *domain.DriverDetails {
	return newDriver(busService, &domain.BusProfile{CompanyName: "GUO", CompanyLogo: "guo.png", Trips: trips})
}

func principalFor(d *domain.DriverDetails) auth.Principal {
	return auth.Principal{UserID: d.User.ID, DriverID: d.Driver.ID, Role: auth.RoleDriver}
}

func riderPrincipal() auth.Principal {
	return auth.Principal{UserID: uuid.NewString(), Role: auth.RoleUser}
}

func lagosToAbuja(departs ...time.Weekday) domain.TripTemplate {
	return domain.TripTemplate{
		ID:              uuid.NewString(),
		DriverID:        uuid.NewString(),
		Origin:          "Jibowu Park",
		OriginCity:      "Lagos",
		Destination:     "Utako Park",
		DestinationCity: "Abuja",
		Price:           10000,
		DepartureDates:  departs,
		DepartureTime:   "08:30",
		BusType:         "Coaster",
		BusCapacity:     14,
		AirConditioning: true,
	}
}

func listing(trip domain.TripTemplate) *domain.TripListing {
	return &domain.TripListing{Trip: trip, ServiceID: busService.ID, CompanyLogo: "guo.png"}
}

// offset returns a point roughly meters north of c.
func offset(c domain.Coordinates, meters float64) domain.Coordinates {
	return domain.Coordinates{Longitude: c.Longitude, Latitude: c.Latitude + meters/111_195}
}

var ikeja = domain.Coordinates{Longitude: 3.3515, Latitude: 6.6018}
