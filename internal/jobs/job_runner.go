package jobs

import (
	"context"
	"time"

	"medilink-client/internal/config"
	"medilink-client/internal/logger"
)

// SessionChecker re-reads the stored token and ends the session once it expires
type SessionChecker interface {
	RecheckExpiry(ctx context.Context) bool
}

// InventoryRefresher re-fetches the equipment list from the backend
type InventoryRefresher interface {
	Refresh(ctx context.Context) error
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	session   SessionChecker
	inventory InventoryRefresher
	config    *config.Config
	timeout   time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(session SessionChecker, inventory InventoryRefresher, cfg *config.Config) *JobRunner {
	return &JobRunner{
		session:   session,
		inventory: inventory,
		config:    cfg,
		timeout:   cfg.GetAPITimeout(),
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx := context.Background()
	if jr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, jr.timeout)
		defer cancel()
	}

	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CheckSessionExpiry()
	jr.RefreshInventory()
}
