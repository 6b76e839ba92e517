package jobs

import (
	"database/sql"

	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository/postgres"
)

// JobRunner coordinates all scheduled jobs. Sweeps are reporting-only: the
// request handlers check stored deadlines themselves, so a late sweep never
// lets a lapsed credential through.
type JobRunner struct {
	db     *sql.DB
	store  *postgres.Store
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:     db,
		store:  store,
		config: cfg,
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

// RunAllSweeps runs every expiry sweep once (for manual execution)
func (jr *JobRunner) RunAllSweeps() {
	jr.ExpireLapsedInvitations()
	jr.ExpireQRSessions()
	jr.ExpireStaleInfoRequests()
}
