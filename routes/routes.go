package routes

import (
	"net/http"
	"time"

	"chargehub/handlers"
	"chargehub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterStationRoutes registers station discovery endpoints. Browsing is
// public; availability management requires a host token.
func RegisterStationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/stations")
	{
		api.GET("", hb.ListStationsHandler)
		api.GET("/:id", hb.GetStationHandler)
		api.GET("/:id/chargers", hb.ListChargersHandler)
	}

	chargers := r.Group("/api/chargers")
	{
		chargers.Use(middleware.JWTAuth(), middleware.RequireRole("host"))
		chargers.PATCH("/:id/availability", hb.SetAvailabilityHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuth())
		api.POST("", hb.CreateBookingHandler)
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/check-overlap", hb.CheckOverlapHandler)

		api.PUT("/:id/accept", hb.AcceptBookingHandler)
		api.PUT("/:id/reject", hb.RejectBookingHandler)
		api.PUT("/:id/start", hb.StartSessionHandler)
		api.PUT("/:id/stop", hb.StopSessionHandler)
		api.PUT("/:id/cancel", hb.CancelBookingHandler)

		api.POST("/:id/pay", hb.PayBookingHandler)
		api.GET("/history", hb.ChargingHistoryHandler)
		api.GET("/payments", hb.ListPaymentsHandler)
	}
}

// RegisterHostRoutes registers payout and earnings endpoints for hosts.
func RegisterHostRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/host")
	{
		api.Use(middleware.JWTAuth(), middleware.RequireRole("host"))
		api.GET("/earnings", hb.EarningsHandler)
		api.GET("/payouts", hb.RecentPayoutsHandler)
		api.GET("/payouts/eligible", hb.EligibleBookingsHandler)
		api.POST("/payouts", hb.CreatePayoutHandler)
		api.POST("/account", hb.LinkAccountHandler)
	}
}

// RegisterWebhookRoutes registers the gateway callback endpoint. The payload
// signature is the authentication; no JWT middleware here.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.WebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ChargeHub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterStationRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterHostRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
}
