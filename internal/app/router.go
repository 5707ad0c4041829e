package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carshare/internal/handler"
	"carshare/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	VehicleHandler *handler.VehicleHandler
	RentalHandler  *handler.RentalHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
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

	router.Use(middleware.PrincipalMiddleware())
	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Vehicle catalogue routes.
		vehicles := v1.Group("/vehicles")
		{
			vehicles.POST("", deps.VehicleHandler.CreateVehicle)
			vehicles.GET("", deps.VehicleHandler.ListVehicles)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.PUT("/:id", deps.VehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", deps.VehicleHandler.DeleteVehicle)
		}

		// Rental lifecycle routes.
		rentals := v1.Group("/rentals")
		{
			rentals.POST("", deps.RentalHandler.BookRental)
			rentals.GET("", deps.RentalHandler.ListRentals)
			rentals.GET("/:id", deps.RentalHandler.GetRental)
			rentals.POST("/:id/return", deps.RentalHandler.ReturnRental)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.GET("", deps.PaymentHandler.ListPayments)
			payments.GET("/success/:id", deps.PaymentHandler.PaymentSuccess)
			payments.GET("/cancel/:id", deps.PaymentHandler.PaymentCancel)
		}
	}

	return router
}
