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

	"carpool/internal/app"
	"carpool/internal/config"
	"carpool/internal/handler"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
	"carpool/internal/ws"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, presenter := wireServer(db, redisClient, nrApp, cfg)

	// Bring the live map online: initial fetch plus subscription to
	// location change events.
	if err := presenter.Start(context.Background()); err != nil {
		log.Fatalf("failed to start live map presenter: %v", err)
	}
	defer presenter.Stop()

	// Start server in goroutine.
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

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus
// the live map presenter (started and stopped by main).
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.LiveMapPresenter) {
	// Initialize Redis stores.
	notifier := internalRedis.NewNotifier(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	actorRepo := postgres.NewActorRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	locationRepo := postgres.NewLocationRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService(nil)
	locationService := service.NewLocationService(locationRepo, lockStore, notifier)
	tripService := service.NewTripService(tripRepo, bookingRepo, actorRepo, cacheStore, notifier)
	uow := postgres.NewUnitOfWork(db)
	bookingService := service.NewBookingService(uow, bookingRepo, tripRepo, actorRepo, notificationService, notifier)

	// Live map: websocket hub fed by the presenter.
	hub := ws.NewHub()
	presenter := service.NewLiveMapPresenter(locationRepo, notifier, handler.NewHubBroadcaster(hub), repository.LocationFilter{})

	// Initialize handlers.
	actorHandler := handler.NewActorHandler(actorRepo)
	tripHandler := handler.NewTripHandler(tripService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	locationHandler := handler.NewLocationHandler(locationService)
	liveMapHandler := handler.NewLiveMapHandler(presenter, tripService, hub)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		ActorHandler:    actorHandler,
		TripHandler:     tripHandler,
		BookingHandler:  bookingHandler,
		LocationHandler: locationHandler,
		LiveMapHandler:  liveMapHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, presenter
}
