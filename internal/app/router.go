package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ActorHandler    *handler.ActorHandler
	TripHandler     *handler.TripHandler
	BookingHandler  *handler.BookingHandler
	LocationHandler *handler.LocationHandler
	LiveMapHandler  *handler.LiveMapHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Actor routes.
		actors := v1.Group("/actors")
		{
			actors.POST("/register", deps.ActorHandler.Register)
			actors.GET("", deps.ActorHandler.GetAll)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.Create)
			trips.GET("", deps.TripHandler.Search)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("/:id/status", deps.TripHandler.ChangeStatus)
			trips.DELETE("/:id", deps.TripHandler.Delete)
			trips.GET("/:id/bookings", deps.BookingHandler.ByTrip)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("", deps.BookingHandler.Mine)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/accept", deps.BookingHandler.Accept)
			bookings.POST("/:id/reject", deps.BookingHandler.Reject)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
		}

		// Location routes.
		locations := v1.Group("/locations")
		{
			locations.POST("", deps.LocationHandler.Submit)
			locations.GET("/:actorId/history", deps.LocationHandler.History)
		}

		// Live map routes.
		mapGroup := v1.Group("/map")
		{
			mapGroup.GET("/markers", deps.LiveMapHandler.Markers)
			mapGroup.GET("/ws", deps.LiveMapHandler.Stream)
		}
	}

	return router
}
