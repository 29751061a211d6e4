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

	firebase "firebase.google.com/go/v4"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	httpapi "rentzy-backend/internal/api/http"
	"rentzy-backend/internal/config"
	"rentzy-backend/internal/esign"
	"rentzy-backend/internal/fees"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/payments"
	"rentzy-backend/internal/repository/postgres"
	"rentzy-backend/internal/security"
	"rentzy-backend/internal/service"
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
	logger.Info("Starting Rentzy Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

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

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Payment Provider Client
	paymentClient := payments.NewClient(
		cfg.Payments.BaseURL,
		cfg.Payments.ClientID,
		cfg.Payments.APIKey,
		cfg.Payments.ChecksumKey,
		cfg.Payments.ReturnURL,
		cfg.Payments.CancelURL,
		time.Duration(cfg.Payments.TimeoutSec)*time.Second,
	)

	// Initialize E-Signature Client
	esignClient := esign.NewClient(
		cfg.ESign.BaseURL,
		cfg.ESign.ClientID,
		cfg.ESign.ClientSecret,
		time.Duration(cfg.ESign.TimeoutSec)*time.Second,
		store.CredentialRepository,
	)

	// Initialize Push Delivery (optional)
	var pusher service.Pusher
	if cfg.Firebase.CredentialsFile != "" {
		app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		if err != nil {
			logger.Error("Failed to initialize Firebase app", "error", err)
			log.Fatalf("Failed to initialize Firebase app: %v", err)
		}
		messagingClient, err := app.Messaging(context.Background())
		if err != nil {
			logger.Error("Failed to initialize FCM client", "error", err)
			log.Fatalf("Failed to initialize FCM client: %v", err)
		}
		pusher = messagingClient
		logger.Info("FCM push delivery enabled")
	} else {
		logger.Info("FCM credentials not configured, push delivery disabled")
	}

	// Initialize Services
	notificationSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, pusher)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	contractSvc := service.NewContractService(store.ContractRepository, esignClient, notificationSvc, store.BookingRepository)

	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.VehicleRepository,
		store.UserRepository,
		store.TransactionRepository,
		store,
		paymentClient,
		notificationSvc,
		emailSvc,
		cfg.Business.DepositPercent,
		cfg.Business.PlatformFeePercent,
	)
	webhookSvc := service.NewWebhookService(
		store.BookingRepository,
		store.TransactionRepository,
		store.UserRepository,
		store,
		paymentClient,
		notificationSvc,
		emailSvc,
		contractSvc,
	)
	cancellationSvc := service.NewCancellationService(
		store.BookingRepository,
		store.CancellationRepository,
		store.TransactionRepository,
		store.UserRepository,
		store.VehicleRepository,
		store,
		notificationSvc,
		emailSvc,
		fees.New(cfg.Business.Timezone),
	)
	ledgerSvc := service.NewLedgerService(store.TransactionRepository, store)

	// Initialize Router
	router := httpapi.NewRouter(httpapi.Services{
		Bookings:      bookingSvc,
		Webhooks:      webhookSvc,
		Cancellations: cancellationSvc,
		Ledger:        ledgerSvc,
		Notifications: notificationSvc,
	}, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSec)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
