package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/domain"
)

// AccountUpdater records the caller's current position and device.
type AccountUpdater interface {
	UpdateLocation(ctx context.Context, principal auth.Principal, c domain.Coordinates) error
	UpdateDeviceToken(ctx context.Context, principal auth.Principal, token string) error
}

// ServiceLister lists the service catalog.
type ServiceLister interface {
	List(ctx context.Context) ([]*domain.Service, error)
}

// UserHandler handles HTTP requests for users and the service catalog.
type UserHandler struct {
	users    AccountUpdater
	services ServiceLister
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users AccountUpdater, services ServiceLister) *UserHandler {
	return &UserHandler{users: users, services: services}
}

// UpdateLocation handles PATCH /v1/users/me/location
func (h *UserHandler) UpdateLocation(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CoordinatesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.UpdateLocation(c.Request.Context(), p, req.coordinates()); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, MessageResponse{Message: "Location updated successfully!"})
}

// DeviceTokenRequest is the HTTP request body for a push notification token.
type DeviceTokenRequest struct {
	Token *string `json:"token" binding:"required"`
}

// UpdateDeviceToken handles PATCH /v1/users/me/token
func (h *UserHandler) UpdateDeviceToken(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req DeviceTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.UpdateDeviceToken(c.Request.Context(), p, *req.Token); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, MessageResponse{Message: "Device token updated successfully!"})
}

// ListServices handles GET /v1/services
func (h *UserHandler) ListServices(c *gin.Context) {
	services, err := h.services.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if services == nil {
		services = []*domain.Service{}
	}
	respondJSON(c, http.StatusOK, services)
}
