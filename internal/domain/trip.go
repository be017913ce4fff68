package domain

import (
	"slices"
	"strings"
	"time"
)

// ClockLayout is the HH:MM format of template departure and return times.
const ClockLayout = "15:04"

// TripTemplate is a bus operator's weekly recurring schedule for one
// origin/destination pair. Its ID is the busTripId of every booking on it.
type TripTemplate struct {
	ID              string         `json:"id"`
	DriverID        string         `json:"driverId"`
	Origin          string         `json:"origin"`
	OriginCity      string         `json:"originCity"`
	Destination     string         `json:"destination"`
	DestinationCity string         `json:"destinationCity"`
	Price           float64        `json:"price"`
	IsRoundTrip     bool           `json:"isRoundTrip"`
	DepartureDates  []time.Weekday `json:"departureDates"`
	DepartureTime   string         `json:"departureTime"`
	ReturnDates     []time.Weekday `json:"returnDates"`
	ReturnTime      string         `json:"returnTime"`
	BusType         string         `json:"busType"`
	BusCapacity     int            `json:"busCapacity"`
	AirConditioning bool           `json:"airConditioning"`
}

// OneWayPrice is the per-leg fare: half the stored price on round trips.
func (t *TripTemplate) OneWayPrice() float64 {
	if t.IsRoundTrip {
		return t.Price / 2
	}
	return t.Price
}

// DepartsOn reports whether the template departs on the given weekday.
func (t *TripTemplate) DepartsOn(day time.Weekday) bool {
	return slices.Contains(t.DepartureDates, day)
}

// ReturnsOn reports whether the template returns on the given weekday.
func (t *TripTemplate) ReturnsOn(day time.Weekday) bool {
	return slices.Contains(t.ReturnDates, day)
}

// SameEndpoints compares origin and destination ignoring case and padding.
func (t *TripTemplate) SameEndpoints(origin, destination string) bool {
	return strings.EqualFold(strings.TrimSpace(t.Origin), strings.TrimSpace(origin)) &&
		strings.EqualFold(strings.TrimSpace(t.Destination), strings.TrimSpace(destination))
}

func (t *TripTemplate) servesLeg(origin, originCity, destination, destinationCity string) bool {
	return containsFold(t.Origin, origin) &&
		containsFold(t.OriginCity, originCity) &&
		containsFold(t.Destination, destination) &&
		containsFold(t.DestinationCity, destinationCity)
}

// TripListing is a template together with the operator data a ticket shows.
type TripListing struct {
	Trip        TripTemplate
	ServiceID   string
	CompanyLogo string
}

// TicketQuery describes a rider's bus ticket search.
type TicketQuery struct {
	Origin          string
	OriginCity      string
	Destination     string
	DestinationCity string
	DepartureDate   time.Time
	ReturnDate      *time.Time
	NumberOfSeats   int
}

// Matches reports whether the template can serve the query: the outbound
// leg on the departure weekday or, when a return date is given, the
// reversed leg on the return weekday.
func (q TicketQuery) Matches(t *TripTemplate) bool {
	if t.BusCapacity < q.NumberOfSeats {
		return false
	}

	departure := q.DepartureDate.Weekday()
	outbound := t.servesLeg(q.Origin, q.OriginCity, q.Destination, q.DestinationCity) && t.DepartsOn(departure)
	if outbound {
		return true
	}
	if q.ReturnDate == nil {
		return false
	}

	// A return-weekday match still needs the outbound leg, so only the
	// reversed leg can add templates here.
	ret := q.ReturnDate.Weekday()
	return t.servesLeg(q.Destination, q.DestinationCity, q.Origin, q.OriginCity) && t.DepartsOn(ret)
}

// NextDepartureDate returns the first date strictly after today's date
// falling on weekday. A weekday equal to today's resolves a week out.
func NextDepartureDate(today time.Time, weekday time.Weekday) time.Time {
	days := (int(weekday) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := today.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, today.Location())
}

func containsFold(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}
