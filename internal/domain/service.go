package domain

// ServiceCode identifies one of the three transport offerings.
type ServiceCode string

const (
	ServiceCodeCar   ServiceCode = "car"
	ServiceCodeBus   ServiceCode = "bus"
	ServiceCodeLocal ServiceCode = "local"
)

// Service is a static catalog entry.
type Service struct {
	ID          string      `json:"id"`
	Code        ServiceCode `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Color       string      `json:"color"`
	Image       string      `json:"image"`
}

// PickerOption is a label/value pair for client-side pickers.
type PickerOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BusLocations lists the distinct trip endpoints bus operators serve.
type BusLocations struct {
	Origins      []PickerOption `json:"origins"`
	Destinations []PickerOption `json:"destinations"`
}
