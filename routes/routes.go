package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"zeena/config"
	"zeena/handlers"
	"zeena/middleware"
)

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		// Customer-side operations.
		customer := api.Group("")
		customer.Use(middleware.JWTAuthMiddleware("customer"))
		customer.POST("", bh.CreateBooking)
		customer.POST("/check-availability", bh.CheckAvailability)
		customer.PATCH("/:id/reschedule", bh.RescheduleBooking)

		// Provider-side lifecycle operations.
		provider := api.Group("")
		provider.Use(middleware.JWTAuthMiddleware("provider"))
		provider.PATCH("/:id/confirm", bh.ConfirmBooking)
		provider.PATCH("/:id/complete", bh.CompleteBooking)
		provider.PATCH("/:id/no-show", bh.MarkNoShow)

		// Either party may read or cancel their own booking.
		either := api.Group("")
		either.Use(middleware.JWTAuthMiddleware(""))
		either.GET("/:id", bh.GetBooking)
		either.PATCH("/:id/cancel", bh.CancelBooking)
	}
}

// RegisterProviderRoutes sets up availability and provider-facing endpoints.
func RegisterProviderRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	api := r.Group("/api/providers")
	{
		// Availability is browsable by any authenticated customer.
		api.GET("/:id/availability", middleware.JWTAuthMiddleware("customer"), bh.GetProviderAvailability)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware("provider"))
		protected.GET("/:id/bookings", bh.ListProviderBookings)
		protected.POST("/schedule/validate", handlers.ValidateSchedule)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthCheck)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bh)
	RegisterProviderRoutes(r, bh)
}
