package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zeena/config"
	"zeena/cron"
	"zeena/database"
	bookingRepoPkg "zeena/database/repository/booking"
	providerRepoPkg "zeena/database/repository/provider"
	"zeena/handlers"
	"zeena/models"
	"zeena/routes"
	"zeena/services/booking"
	"zeena/services/notification"
	"zeena/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	loc, err := time.LoadLocation(config.AppConfig.TimeZone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid TIME_ZONE %q: %v", config.AppConfig.TimeZone, err)
	}

	// Repositories.
	bookings := bookingRepoPkg.NewMongoBookingRepo()
	providers := providerRepoPkg.NewMongoProviderRepo()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := bookings.EnsureIndexes(ctx); err != nil {
			cancel()
			logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
		}
		cancel()
	}

	dispatcher := notification.NewAsynqDispatcher()
	defer dispatcher.Close()

	engine := &booking.DefaultBookingEngine{
		Bookings:  bookings,
		Providers: providers,
		Fees: booking.FeeSchedule{
			Threshold: models.MoneyFromFils(config.AppConfig.FeeTierThresholdFils),
			LowFee:    models.MoneyFromFils(config.AppConfig.FeeLowFils),
			HighFee:   models.MoneyFromFils(config.AppConfig.FeeHighFils),
		},
		Policy: booking.Policy{
			DefaultMinNoticeHours: config.AppConfig.DefaultMinNoticeHours,
			DefaultMaxAdvanceDays: config.AppConfig.DefaultMaxAdvanceDays,
			Location:              loc,
		},
		GranularityMin: config.AppConfig.SlotGranularityMin,
		Cache:          booking.NewAvailabilityCache(utils.GetCacheClient(), 30*time.Second),
		Events:         dispatcher,
	}

	// Background delivery worker and dependency health monitor.
	cron.InitEventWorker(bookings)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	bookingHandler := handlers.NewBookingHandler(engine)
	routes.RegisterRoutes(router, bookingHandler)

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
