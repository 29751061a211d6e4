package jobs

import (
	"rentzy-backend/internal/config"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/repository"
	"rentzy-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookingRepo    repository.BookingRepository
	credentialRepo repository.CredentialRepository
	services       *Services
	config         *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking      service.BookingService
	Notification service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookingRepo repository.BookingRepository, credentialRepo repository.CredentialRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		bookingRepo:    bookingRepo,
		credentialRepo: credentialRepo,
		services:       services,
		config:         cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.AutoCompleteRentals()
	jr.SendPaymentReminders()
	jr.PurgeCredentials()
}
