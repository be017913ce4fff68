package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/domain"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

const noTicketsMessage = "No available tickets!"

// TicketFinder searches and lists bus tickets.
type TicketFinder interface {
	Search(ctx context.Context, query domain.TicketQuery) ([]service.Ticket, error)
	ListAll(ctx context.Context) ([]service.Ticket, error)
	Locations(ctx context.Context) (*domain.BusLocations, error)
}

// TripHandler handles HTTP requests for bus tickets.
type TripHandler struct {
	tickets TicketFinder
	loc     *time.Location
}

// NewTripHandler creates a new TripHandler. Query dates are read in loc.
func NewTripHandler(tickets TicketFinder, loc *time.Location) *TripHandler {
	return &TripHandler{tickets: tickets, loc: loc}
}

// TicketQueryRequest is the HTTP request body for a ticket search.
type TicketQueryRequest struct {
	Origin          string `json:"origin" binding:"required"`
	OriginCity      string `json:"originCity" binding:"required"`
	Destination     string `json:"destination" binding:"required"`
	DestinationCity string `json:"destinationCity" binding:"required"`
	DepartureDate   string `json:"departureDate" binding:"required"`
	ReturnDate      string `json:"returnDate"`
	NumberOfSeats   int    `json:"numberOfSeats" binding:"required"`
}

func (r TicketQueryRequest) query(loc *time.Location) (domain.TicketQuery, error) {
	departure, err := time.ParseInLocation(time.DateOnly, r.DepartureDate, loc)
	if err != nil {
		return domain.TicketQuery{}, &service.ValidationError{Field: "departureDate", Message: "Expected a date in YYYY-MM-DD format"}
	}

	q := domain.TicketQuery{
		Origin:          r.Origin,
		OriginCity:      r.OriginCity,
		Destination:     r.Destination,
		DestinationCity: r.DestinationCity,
		DepartureDate:   departure,
		NumberOfSeats:   r.NumberOfSeats,
	}

	if r.ReturnDate != "" {
		ret, err := time.ParseInLocation(time.DateOnly, r.ReturnDate, loc)
		if err != nil {
			return domain.TicketQuery{}, &service.ValidationError{Field: "returnDate", Message: "Expected a date in YYYY-MM-DD format"}
		}
		q.ReturnDate = &ret
	}
	return q, nil
}

// Locations handles GET /v1/rides/bus/locations
func (h *TripHandler) Locations(c *gin.Context) {
	locations, err := h.tickets.Locations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, locations)
}

// ListTickets handles GET /v1/rides/bus/tickets
func (h *TripHandler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tickets)
}

// QueryTickets handles POST /v1/rides/bus/tickets/query
func (h *TripHandler) QueryTickets(c *gin.Context) {
	var req TicketQueryRequest
	if !bindJSON(c, &req) {
		return
	}

	query, err := req.query(h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	tickets, err := h.tickets.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(tickets) == 0 {
		c.JSON(http.StatusNotFound, MessageResponse{Message: noTicketsMessage})
		return
	}
	respondJSON(c, http.StatusOK, tickets)
}
