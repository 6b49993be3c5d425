// File: chargehub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chargehub/config"
	"chargehub/cron"
	"chargehub/database"
	bookingRepoPkg "chargehub/database/repository/booking"
	payoutRepoPkg "chargehub/database/repository/payout"
	stationRepoPkg "chargehub/database/repository/station"
	userRepoPkg "chargehub/database/repository/user"
	"chargehub/handlers"
	"chargehub/middleware"
	"chargehub/routes"
	"chargehub/services/booking"
	"chargehub/services/notification"
	"chargehub/services/payment"
	"chargehub/services/payout"
	"chargehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitNotifyClient()

	feeRate, err := decimal.NewFromString(config.AppConfig.PlatformFeeRate)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid platform fee rate %q: %v", config.AppConfig.PlatformFeeRate, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	payoutRepo := payoutRepoPkg.NewMongoPayoutRepo()
	stationRepo := stationRepoPkg.NewMongoStationRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	gateway := payment.NewStripeGateway(config.AppConfig.StripeSecretKey, logger)
	notifier := notification.NewAsynqNotificationService(logger)

	bookingService := &booking.DefaultBookingService{
		Repo:        bookingRepo,
		StationRepo: stationRepo,
		UserRepo:    userRepo,
		PaymentRepo: payoutRepo,
		Gateway:     gateway,
		Notifier:    notifier,
		FeeRate:     feeRate,
		Currency:    config.AppConfig.Currency,
		Logger:      logger,
	}

	payoutService := &payout.DefaultPayoutService{
		Repo:        payoutRepo,
		BookingRepo: bookingRepo,
		UserRepo:    userRepo,
		Gateway:     gateway,
		Notifier:    notifier,
		Currency:    config.AppConfig.Currency,
		Logger:      logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		BookingService: bookingService,
		PayoutService:  payoutService,
		StationRepo:    stationRepo,
		UserRepo:       userRepo,
		Verifier:       payment.NewStripeWebhookVerifier(config.AppConfig.StripeWebhookSecret),
		Logger:         logger,
	}
	handlers.WireHandlers(handlerBundle)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker for notification delivery.
	go cron.InitNotifyWorker()

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
