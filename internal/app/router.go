package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/bugsbunnee/clickride-backend/internal/handler"
	"github.com/bugsbunnee/clickride-backend/internal/middleware"
	"github.com/bugsbunnee/clickride-backend/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	LocationHandler  *handler.LocationHandler
	RideHandler      *handler.RideHandler
	TripHandler      *handler.TripHandler
	DriverHandler    *handler.DriverHandler
	UserHandler      *handler.UserHandler
	Verifier         middleware.TokenVerifier
	IdempotencyStore redis.IdempotencyStore
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Public catalog and search routes.
	{
		v1.GET("/services", deps.UserHandler.ListServices)
		v1.GET("/local-ride-types", deps.DriverHandler.ListRideTypes)

		v1.POST("/locations/available-riders", deps.LocationHandler.AvailableRiders)
		v1.POST("/locations/local-trips/location", deps.LocationHandler.RouteRiders)

		bus := v1.Group("/rides/bus")
		bus.GET("/locations", deps.TripHandler.Locations)
		bus.GET("/tickets", deps.TripHandler.ListTickets)
		bus.POST("/tickets/query", deps.TripHandler.QueryTickets)
	}

	// Authenticated routes. Idempotency keys are scoped to the caller, so
	// the middleware runs after RequireAuth.
	authed := v1.Group("",
		middleware.RequireAuth(deps.Verifier),
		middleware.IdempotencyMiddleware(deps.IdempotencyStore),
	)
	{
		locations := authed.Group("/locations")
		locations.POST("/nearby-riders", deps.LocationHandler.NearbyRiders)
		locations.POST("/trip-preparation", deps.LocationHandler.TripPreparation)

		rides := authed.Group("/rides")
		rides.POST("/car", deps.RideHandler.BookCar)
		rides.POST("/bus", deps.RideHandler.BookBus)
		rides.GET("/me", deps.RideHandler.MyRides)
		rides.GET("/track/:id", deps.RideHandler.Track)

		profile := authed.Group("/profile")
		profile.PUT("/car/personal-information", deps.DriverHandler.SaveCarProfile)
		profile.PUT("/bus/personal-information", deps.DriverHandler.SaveBusProfile)
		profile.PUT("/local/personal-information", deps.DriverHandler.SaveLocalProfile)
		profile.PUT("/trip-details", deps.DriverHandler.AddTripDetails)
		profile.PUT("/route-details", deps.DriverHandler.AddRouteDetails)

		authed.PATCH("/users/me/location", deps.UserHandler.UpdateLocation)
		authed.PATCH("/users/me/token", deps.UserHandler.UpdateDeviceToken)
	}

	return router
}
