package domain

import "time"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether both components are within range.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// User represents an account holder. Drivers are users with a Driver record.
type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DeviceToken string
	Rating      float64
	Location    *Coordinates // nil until the first location ping
	CreatedAt   time.Time
}
