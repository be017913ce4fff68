package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/middleware"
	"github.com/bugsbunnee/clickride-backend/internal/repository"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a user-facing message.
type MessageResponse struct {
	Message string `json:"message"`
}

const invalidBodyMessage = "invalid request body"

// respondError sends an error response with the appropriate HTTP status code.
// Unclassified errors are logged and hidden from the caller.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(code, ErrorResponse{Error: "An unexpected error occured!"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrDriverNotFound),
		errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrRideNotFound):
		return http.StatusNotFound

	// Validation and business rule errors - Bad Request
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSeatConflict),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrScheduleMismatch),
		errors.Is(err, service.ErrDuplicateTrip),
		errors.Is(err, service.ErrWrongService),
		errors.Is(err, service.ErrProfileIncomplete):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotADriver):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrBookingInProgress):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrLocationUnresolved):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// principal returns the authenticated caller or writes a 401.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
	}
	return p, ok
}

// bindJSON decodes the request body or writes a 400.
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalidBodyMessage})
		return false
	}
	return true
}
