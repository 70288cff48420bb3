package jobs

import (
	"context"
	"database/sql"

	"rentwheels-backend/internal/cache"
	"rentwheels-backend/internal/config"
	"rentwheels-backend/internal/lifecycle"
	"rentwheels-backend/internal/logger"
	"rentwheels-backend/internal/repository/postgres"
	"rentwheels-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	cache    *cache.Client
	config   *config.Config
	clock    lifecycle.Clock
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cacheClient *cache.Client, cfg *config.Config, clock lifecycle.Clock) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		cache:    cacheClient,
		config:   cfg,
		clock:    clock,
	}
}

// Config exposes the runner's configuration to the scheduler
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

// RunAllJobs runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.RefreshOverdueSettlements()
	jr.ExpireStaleBargains()
	jr.SendOverdueReminders()
}

func (jr *JobRunner) invalidateBooking(ctx context.Context, bookingID string) {
	if jr.cache != nil {
		_ = jr.cache.Delete(ctx, cache.BookingKey(bookingID))
	}
}
