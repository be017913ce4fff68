package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

// ProfileEditor edits the calling driver's profile and offering.
type ProfileEditor interface {
	SaveCarProfile(ctx context.Context, principal auth.Principal, names service.PersonalDetails, profile domain.CarProfile) (*domain.DriverDetails, error)
	SaveBusProfile(ctx context.Context, principal auth.Principal, names service.PersonalDetails, profile domain.BusProfile) (*domain.DriverDetails, error)
	SaveLocalProfile(ctx context.Context, principal auth.Principal, names service.PersonalDetails, profile domain.LocalProfile) (*domain.DriverDetails, error)
	AddTripTemplate(ctx context.Context, principal auth.Principal, trip domain.TripTemplate) (*domain.TripTemplate, error)
	AddRoute(ctx context.Context, principal auth.Principal, route domain.Route) (*domain.Route, error)
	ListRideTypes(ctx context.Context) ([]domain.LocalRideType, error)
}

// DriverHandler handles HTTP requests for driver profiles.
type DriverHandler struct {
	profiles ProfileEditor
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(profiles ProfileEditor) *DriverHandler {
	return &DriverHandler{profiles: profiles}
}

// PersonalInformation carries the names every profile form submits.
type PersonalInformation struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

func (p PersonalInformation) details() service.PersonalDetails {
	return service.PersonalDetails{FirstName: p.FirstName, LastName: p.LastName}
}

// CarProfileRequest is the HTTP request body for a car driver's profile.
type CarProfileRequest struct {
	PersonalInformation
	Gender              string `json:"gender" binding:"required"`
	IsVehicleOwner      bool   `json:"isVehicleOwner"`
	NumberOfSeats       int    `json:"numberOfSeats"`
	VehicleManufacturer string `json:"vehicleManufacturer" binding:"required"`
	VehicleYear         int    `json:"vehicleYear"`
	VehicleColor        string `json:"vehicleColor" binding:"required"`
	VehicleLicensePlate string `json:"vehicleLicensePlate" binding:"required"`
	DisplayImage        string `json:"displayImage"`
}

// BusProfileRequest is the HTTP request body for a bus operator's profile.
type BusProfileRequest struct {
	PersonalInformation
	CompanyName string `json:"companyName" binding:"required"`
	CompanyLogo string `json:"companyLogo"`
}

// LocalProfileRequest is the HTTP request body for a local rider's profile.
type LocalProfileRequest struct {
	PersonalInformation
	LocalRideType   string `json:"localRideType" binding:"required"`
	ProfilePhotoURL string `json:"profilePhotoUrl"`
}

// DriverProfileResponse is the driver returned after a profile update.
type DriverProfileResponse struct {
	ID        string             `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Service   domain.ServiceCode `json:"service"`
	Profile   domain.Profile     `json:"profile"`
}

// RideTypeOption is a local ride type as a picker entry.
type RideTypeOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TripDetailsRequest is the HTTP request body for a new trip template.
type TripDetailsRequest struct {
	Origin          string  `json:"origin" binding:"required"`
	OriginCity      string  `json:"originCity" binding:"required"`
	Destination     string  `json:"destination" binding:"required"`
	DestinationCity string  `json:"destinationCity" binding:"required"`
	Price           float64 `json:"price"`
	IsRoundTrip     bool    `json:"isRoundTrip"`
	DepartureDates  []int   `json:"departureDates"`
	DepartureTime   string  `json:"departureTime"`
	ReturnDates     []int   `json:"returnDates"`
	ReturnTime      string  `json:"returnTime"`
	BusType         string  `json:"busType"`
	BusCapacity     int     `json:"busCapacity"`
	AirConditioning bool    `json:"airConditioning"`
}

func (r TripDetailsRequest) template() domain.TripTemplate {
	return domain.TripTemplate{
		Origin:          r.Origin,
		OriginCity:      r.OriginCity,
		Destination:     r.Destination,
		DestinationCity: r.DestinationCity,
		Price:           r.Price,
		IsRoundTrip:     r.IsRoundTrip,
		DepartureDates:  toWeekdays(r.DepartureDates),
		DepartureTime:   r.DepartureTime,
		ReturnDates:     toWeekdays(r.ReturnDates),
		ReturnTime:      r.ReturnTime,
		BusType:         r.BusType,
		BusCapacity:     r.BusCapacity,
		AirConditioning: r.AirConditioning,
	}
}

// RouteDetailsRequest is the HTTP request body for a new route.
type RouteDetailsRequest struct {
	Route string  `json:"route" binding:"required"`
	Price float64 `json:"price"`
}

// SaveCarProfile handles PUT /v1/profile/car/personal-information
func (h *DriverHandler) SaveCarProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CarProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	driver, err := h.profiles.SaveCarProfile(c.Request.Context(), p, req.details(), domain.CarProfile{
		Gender:              req.Gender,
		IsVehicleOwner:      req.IsVehicleOwner,
		NumberOfSeats:       req.NumberOfSeats,
		VehicleManufacturer: req.VehicleManufacturer,
		VehicleYear:         req.VehicleYear,
		VehicleColor:        req.VehicleColor,
		VehicleLicensePlate: req.VehicleLicensePlate,
		DisplayImage:        req.DisplayImage,
	})
	respondProfile(c, driver, err)
}

// SaveBusProfile handles PUT /v1/profile/bus/personal-information
func (h *DriverHandler) SaveBusProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req BusProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	driver, err := h.profiles.SaveBusProfile(c.Request.Context(), p, req.details(), domain.BusProfile{
		CompanyName: req.CompanyName,
		CompanyLogo: req.CompanyLogo,
	})
	respondProfile(c, driver, err)
}

// SaveLocalProfile handles PUT /v1/profile/local/personal-information
func (h *DriverHandler) SaveLocalProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req LocalProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	driver, err := h.profiles.SaveLocalProfile(c.Request.Context(), p, req.details(), domain.LocalProfile{
		RideType:        domain.LocalRideType{ID: req.LocalRideType},
		ProfilePhotoURL: req.ProfilePhotoURL,
	})
	respondProfile(c, driver, err)
}

// ListRideTypes handles GET /v1/local-ride-types
func (h *DriverHandler) ListRideTypes(c *gin.Context) {
	types, err := h.profiles.ListRideTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	options := make([]RideTypeOption, 0, len(types))
	for _, t := range types {
		options = append(options, RideTypeOption{Label: t.Name, Value: t.ID})
	}
	respondJSON(c, http.StatusOK, options)
}

func respondProfile(c *gin.Context, driver *domain.DriverDetails, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, DriverProfileResponse{
		ID:        driver.Driver.ID,
		FirstName: driver.User.FirstName,
		LastName:  driver.User.LastName,
		Service:   driver.Service.Code,
		Profile:   driver.Profile,
	})
}

// AddTripDetails handles PUT /v1/profile/trip-details
func (h *DriverHandler) AddTripDetails(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req TripDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.profiles.AddTripTemplate(c.Request.Context(), p, req.template())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, trip)
}

// AddRouteDetails handles PUT /v1/profile/route-details
func (h *DriverHandler) AddRouteDetails(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req RouteDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.profiles.AddRoute(c.Request.Context(), p, domain.Route{Route: req.Route, Price: req.Price})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, route)
}

func toWeekdays(days []int) []time.Weekday {
	weekdays := make([]time.Weekday, len(days))
	for i, d := range days {
		weekdays[i] = time.Weekday(d)
	}
	return weekdays
}
