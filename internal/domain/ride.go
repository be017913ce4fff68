package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending  RideStatus = "pending"
	RideStatusStarted  RideStatus = "started"
	RideStatusEnded    RideStatus = "ended"
	RideStatusCanceled RideStatus = "canceled"
)

// Location is an address with its coordinates.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates returns the point of the location.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Longitude: l.Longitude, Latitude: l.Latitude}
}

// Ride is a booking ledger entry, either a car ride or a bus seat reservation.
type Ride struct {
	ID            string        `json:"id"`
	ServiceID     string        `json:"serviceId"`
	DriverID      string        `json:"driverId"`
	UserID        string        `json:"userId"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	RideStatus    RideStatus    `json:"rideStatus"`
	From          Location      `json:"from"`
	To            Location      `json:"to"`
	BusTripID     string        `json:"busTripId,omitempty"`
	DepartureDate time.Time     `json:"departureDate"`
	BookedSeats   []int         `json:"bookedSeats,omitempty"`
	Price         float64       `json:"price"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// IsBusBooking reports whether the ride reserves bus seats.
func (r *Ride) IsBusBooking() bool {
	return r.BusTripID != ""
}

// RideSummary is a ride as listed in the rider's history.
type RideSummary struct {
	ID              string        `json:"id"`
	DriverFirstName string        `json:"driverFirstName"`
	ServiceCode     ServiceCode   `json:"serviceCode"`
	From            Location      `json:"from"`
	To              Location      `json:"to"`
	RideStatus      RideStatus    `json:"rideStatus"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Price           float64       `json:"price"`
	CreatedAt       time.Time     `json:"createdAt"`
}
