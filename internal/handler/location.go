package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

// ProximityFinder runs the map queries.
type ProximityFinder interface {
	FindNearbyCars(ctx context.Context, principal auth.Principal, center domain.Coordinates) ([]service.RiderForMap, error)
	PrepareTrip(ctx context.Context, principal auth.Principal, from, to domain.Coordinates) ([]service.RiderForMap, error)
	AvailableLocalRiders(ctx context.Context, center domain.Coordinates, rideTypeID string) (*service.AvailableRiders, error)
	LocalRidersOnRoute(ctx context.Context, route, rideTypeID string) (*service.RouteRiders, error)
}

// LocationHandler handles HTTP requests for rider discovery.
type LocationHandler struct {
	proximity ProximityFinder
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(proximity ProximityFinder) *LocationHandler {
	return &LocationHandler{proximity: proximity}
}

// CoordinatesRequest is a point in a request body.
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r CoordinatesRequest) coordinates() domain.Coordinates {
	return domain.Coordinates{Longitude: *r.Longitude, Latitude: *r.Latitude}
}

// TripPreparationRequest is the HTTP request body for trip preparation.
type TripPreparationRequest struct {
	From CoordinatesRequest `json:"from" binding:"required"`
	To   CoordinatesRequest `json:"to" binding:"required"`
}

// AvailableRidersRequest is the HTTP request body for the local rider map.
type AvailableRidersRequest struct {
	CoordinatesRequest
	RideType string `json:"rideType"`
}

// RouteRidersRequest is the HTTP request body for riders serving a route.
type RouteRidersRequest struct {
	Route    string `json:"route" binding:"required"`
	RideType string `json:"rideType"`
}

// NearbyRiders handles POST /v1/locations/nearby-riders
func (h *LocationHandler) NearbyRiders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CoordinatesRequest
	if !bindJSON(c, &req) {
		return
	}

	riders, err := h.proximity.FindNearbyCars(c.Request.Context(), p, req.coordinates())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, riders)
}

// TripPreparation handles POST /v1/locations/trip-preparation
func (h *LocationHandler) TripPreparation(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req TripPreparationRequest
	if !bindJSON(c, &req) {
		return
	}

	riders, err := h.proximity.PrepareTrip(c.Request.Context(), p, req.From.coordinates(), req.To.coordinates())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, riders)
}

// AvailableRiders handles POST /v1/locations/available-riders
func (h *LocationHandler) AvailableRiders(c *gin.Context) {
	var req AvailableRidersRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.proximity.AvailableLocalRiders(c.Request.Context(), req.coordinates(), req.RideType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, result)
}

// RouteRiders handles POST /v1/locations/local-trips/location
func (h *LocationHandler) RouteRiders(c *gin.Context) {
	var req RouteRidersRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.proximity.LocalRidersOnRoute(c.Request.Context(), req.Route, req.RideType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, result)
}
