package domain

import (
	"cmp"
	"slices"
)

// ProfileKind tags the concrete Profile variant.
type ProfileKind string

const (
	ProfileKindCar   ProfileKind = "car"
	ProfileKindBus   ProfileKind = "bus"
	ProfileKindLocal ProfileKind = "local"
)

// Profile is implemented only by *CarProfile, *BusProfile and *LocalProfile.
type Profile interface {
	Kind() ProfileKind
	profile()
}

// CarProfile holds vehicle information for car drivers.
type CarProfile struct {
	Gender              string `json:"gender"`
	IsVehicleOwner      bool   `json:"isVehicleOwner"`
	NumberOfSeats       int    `json:"numberOfSeats"`
	VehicleManufacturer string `json:"vehicleManufacturer"`
	VehicleYear         int    `json:"vehicleYear"`
	VehicleColor        string `json:"vehicleColor"`
	VehicleLicensePlate string `json:"vehicleLicensePlate"`
	DisplayImage        string `json:"displayImage"`
}

// BusProfile holds the operator identity and its weekly trip templates.
type BusProfile struct {
	CompanyName string         `json:"companyName"`
	CompanyLogo string         `json:"companyLogo"`
	Trips       []TripTemplate `json:"trips"` // ordered by creation
}

// LocalProfile holds the ride type and priced routes of a local rider.
type LocalProfile struct {
	RideType        LocalRideType `json:"localRideType"`
	ProfilePhotoURL string        `json:"profilePhotoUrl"`
	Routes          []Route       `json:"routes"` // ordered by creation
}

func (*CarProfile) Kind() ProfileKind   { return ProfileKindCar }
func (*BusProfile) Kind() ProfileKind   { return ProfileKindBus }
func (*LocalProfile) Kind() ProfileKind { return ProfileKindLocal }

func (*CarProfile) profile()   {}
func (*BusProfile) profile()   {}
func (*LocalProfile) profile() {}

// Price derives the display price of a driver.
// The first route price wins, then the cheapest trip template, then 0.
func Price(p Profile) float64 {
	var routes []Route
	var trips []TripTemplate

	switch p := p.(type) {
	case *LocalProfile:
		routes = p.Routes
	case *BusProfile:
		trips = p.Trips
	case *CarProfile, nil:
	}

	if len(routes) > 0 {
		return routes[0].Price
	}
	if len(trips) > 0 {
		sorted := slices.Clone(trips)
		slices.SortStableFunc(sorted, func(a, b TripTemplate) int {
			return cmp.Compare(a.Price, b.Price)
		})
		return sorted[0].Price
	}
	return 0
}

// DisplayImage returns the image shown for a driver on the map.
func DisplayImage(p Profile) string {
	switch p := p.(type) {
	case *CarProfile:
		return p.DisplayImage
	case *BusProfile:
		return p.CompanyLogo
	case *LocalProfile:
		return p.ProfilePhotoURL
	default:
		return ""
	}
}
