package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

// RideBooker books car rides and reads the caller's rides.
type RideBooker interface {
	BookCarRide(ctx context.Context, principal auth.Principal, req service.BookCarRideRequest) (*domain.Ride, error)
	History(ctx context.Context, principal auth.Principal) ([]*domain.RideSummary, error)
	Track(ctx context.Context, principal auth.Principal, rideID string) (*service.TrackedRide, error)
}

// SeatBooker books bus seats.
type SeatBooker interface {
	BookBusSeats(ctx context.Context, principal auth.Principal, req service.BookBusSeatsRequest) (*domain.Ride, error)
}

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rides   RideBooker
	booking SeatBooker
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rides RideBooker, booking SeatBooker) *RideHandler {
	return &RideHandler{rides: rides, booking: booking}
}

// LocationRequest is an address with coordinates in a request body.
type LocationRequest struct {
	Address   string   `json:"address" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r LocationRequest) location() domain.Location {
	return domain.Location{Address: r.Address, Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// BookCarRequest is the HTTP request body for booking a car ride.
type BookCarRequest struct {
	Driver string          `json:"driver" binding:"required"`
	From   LocationRequest `json:"from" binding:"required"`
	To     LocationRequest `json:"to" binding:"required"`
}

// BookBusRequest is the HTTP request body for booking bus seats.
type BookBusRequest struct {
	TicketID      string `json:"ticketId" binding:"required"`
	SeatNumbers   []int  `json:"seatNumbers" binding:"required"`
	DepartureDate string `json:"departureDate" binding:"required"`
	DepartureTime string `json:"departureTime" binding:"required"`
}

// BookingResponse is the HTTP response for a booking.
type BookingResponse struct {
	Message string       `json:"message"`
	Ride    *domain.Ride `json:"ride"`
}

// BookCar handles POST /v1/rides/car
func (h *RideHandler) BookCar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req BookCarRequest
	if !bindJSON(c, &req) {
		return
	}

	ride, err := h.rides.BookCarRide(c.Request.Context(), p, service.BookCarRideRequest{
		DriverID: req.Driver,
		From:     req.From.location(),
		To:       req.To.location(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, BookingResponse{Message: "Ride booked successfully!", Ride: ride})
}

// BookBus handles POST /v1/rides/bus
func (h *RideHandler) BookBus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req BookBusRequest
	if !bindJSON(c, &req) {
		return
	}

	ride, err := h.booking.BookBusSeats(c.Request.Context(), p, service.BookBusSeatsRequest{
		TicketID:      req.TicketID,
		SeatNumbers:   req.SeatNumbers,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, BookingResponse{Message: "Trip booked successfully!", Ride: ride})
}

// MyRides handles GET /v1/rides/me
func (h *RideHandler) MyRides(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rides, err := h.rides.History(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	if rides == nil {
		rides = []*domain.RideSummary{}
	}
	respondJSON(c, http.StatusOK, rides)
}

// Track handles GET /v1/rides/track/:id
func (h *RideHandler) Track(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	tracked, err := h.rides.Track(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tracked)
}
