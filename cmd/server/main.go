package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "rentwheels-backend/internal/api/http"
	"rentwheels-backend/internal/cache"
	"rentwheels-backend/internal/config"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/logger"
	"rentwheels-backend/internal/metrics"
	"rentwheels-backend/internal/repository/postgres"
	"rentwheels-backend/internal/security"
	"rentwheels-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentWheels Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Redis configuration", "address", cfg.GetRedisAddress())

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Redis snapshot cache
	cacheClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer cacheClient.Close()
	logger.Info("Redis connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Metrics
	metricsCollector := metrics.New("rentwheels-backend")

	clock := lifecycle.SystemClock{}

	// Initialize Services
	emailSvc := service.NewEmailService(&cfg.SMTP)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		cacheClient,
		clock,
	)
	negotiationSvc := service.NewNegotiationService(
		store.BookingRepository,
		store.OfferRepository,
		store.UserRepository,
		store.NotificationRepository,
		emailSvc,
		cacheClient,
		clock,
		time.Duration(cfg.Billing.BargainExpiryHours)*time.Hour,
	)
	notificationSvc := service.NewNotificationService(store.NotificationRepository)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Bookings:      bookingSvc,
		Negotiations:  negotiationSvc,
		Notifications: notificationSvc,
		Tokens:        tokenManager,
		Metrics:       metricsCollector,
		Clock:         clock,
		LiveTick:      time.Duration(cfg.Live.TickIntervalSeconds) * time.Second,
	})

	srv := &http.Server{
		Addr:        cfg.GetServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// WriteTimeout stays at the configured value (0 by default) because
		// the live stream holds its response open.
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped gracefully")
}
