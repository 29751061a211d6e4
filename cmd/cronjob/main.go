package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"rentzy-backend/internal/config"
	"rentzy-backend/internal/jobs"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/payments"
	"rentzy-backend/internal/repository/postgres"
	"rentzy-backend/internal/scheduler"
	"rentzy-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'auto-complete-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentzy Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	paymentClient := payments.NewClient(
		cfg.Payments.BaseURL,
		cfg.Payments.ClientID,
		cfg.Payments.APIKey,
		cfg.Payments.ChecksumKey,
		cfg.Payments.ReturnURL,
		cfg.Payments.CancelURL,
		time.Duration(cfg.Payments.TimeoutSec)*time.Second,
	)
	notificationSvc := service.NewNotificationService(store.NotificationRepository, store.UserRepository, nil)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
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

	jobServices := &jobs.Services{
		Booking:      bookingSvc,
		Notification: notificationSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.BookingRepository, store.CredentialRepository, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	cronScheduler.Stop()
	logger.Info("Cronjob runner stopped")
}

func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "auto-complete-rentals":
		jobRunner.AutoCompleteRentals()
	case "send-payment-reminders":
		jobRunner.SendPaymentReminders()
	case "purge-credentials":
		jobRunner.PurgeCredentials()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		os.Exit(1)
	}
}
