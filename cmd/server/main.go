package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/bugsbunnee/clickride-backend/internal/app"
	"github.com/bugsbunnee/clickride-backend/internal/auth"
	"github.com/bugsbunnee/clickride-backend/internal/config"
	"github.com/bugsbunnee/clickride-backend/internal/handler"
	"github.com/bugsbunnee/clickride-backend/internal/maps"
	"github.com/bugsbunnee/clickride-backend/internal/mq"
	internalRedis "github.com/bugsbunnee/clickride-backend/internal/redis"
	"github.com/bugsbunnee/clickride-backend/internal/repository/postgres"
	"github.com/bugsbunnee/clickride-backend/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Notifications are optional: without a broker they are only logged.
	var publisher service.Publisher
	if cfg.RabbitMQ.URL != "" {
		p, err := mq.Dial(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("notifications disabled: %v", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	server := wireServer(db, redisClient, publisher, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	publisher service.Publisher,
	nrApp *newrelic.Application,
	cfg *config.Config,
) *http.Server {
	loc := cfg.Location()

	// Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	routeRepo := postgres.NewRouteRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	rideTypeRepo := postgres.NewLocalRideTypeRepository(db)
	txManager := postgres.NewTxManager(db)

	// External adapters.
	mapsClient := maps.NewCachedClient(maps.NewClient(cfg.Maps), cacheStore, cfg.Maps.TravelTTL)

	// Services.
	notificationService := service.NewNotificationService(publisher, cfg.RabbitMQ.Exchange)
	proximityService := service.NewProximityService(locationStore, driverRepo, rideRepo, userRepo, routeRepo, mapsClient, cfg.Geo)
	ticketService := service.NewTicketService(tripRepo, rideRepo, mapsClient, cacheStore, loc)
	bookingService := service.NewBookingService(tripRepo, rideRepo, txManager, lockStore, userRepo, notificationService, cfg.Booking, loc)
	rideService := service.NewRideService(rideRepo, driverRepo, userRepo, mapsClient, notificationService)
	driverService := service.NewDriverService(driverRepo, userRepo, rideTypeRepo, cacheStore)
	userService := service.NewUserService(userRepo, locationStore)

	router := app.NewRouter(app.RouterDeps{
		LocationHandler:  handler.NewLocationHandler(proximityService),
		RideHandler:      handler.NewRideHandler(rideService, bookingService),
		TripHandler:      handler.NewTripHandler(ticketService, loc),
		DriverHandler:    handler.NewDriverHandler(driverService),
		UserHandler:      handler.NewUserHandler(userService, serviceRepo),
		Verifier:         auth.NewVerifier(cfg.Auth.JWTSecret),
		IdempotencyStore: cacheStore,
		NewRelicApp:      nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
