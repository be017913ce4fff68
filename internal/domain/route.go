package domain

// LocalRideType is a category of local ride (keke, okada, ...).
type LocalRideType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Route is a priced route offered by a local rider.
type Route struct {
	ID    string  `json:"id"`
	Route string  `json:"route"`
	Price float64 `json:"price"`
	Views int     `json:"views"`
}

// PopularLocation aggregates a route name across all local riders.
type PopularLocation struct {
	Route string  `json:"route"`
	Views int     `json:"views"`
	Price float64 `json:"price"`
}
