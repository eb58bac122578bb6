package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JanitorConfig contains the retention settings for the audit store.
type JanitorConfig struct {
	// RetentionDays is how long entries are retained. 0 disables age-based
	// pruning.
	RetentionDays int

	// MaxRows caps the total stored entries. 0 means unlimited.
	MaxRows int64

	// Schedule is a cron expression for the pruning job. Empty disables
	// scheduled pruning.
	Schedule string
}

// Janitor prunes old audit entries on a cron schedule.
type Janitor struct {
	store   Store
	config  JanitorConfig
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	logger  *slog.Logger
}

// NewJanitor creates a janitor for the given store.
func NewJanitor(store Store, config JanitorConfig) *Janitor {
	return &Janitor{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "audit.janitor"),
	}
}

// Start schedules pruning per the configured cron expression. With an empty
// schedule it does nothing. The janitor stops when the context is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.config.Schedule == "" {
		j.logger.Info("prune schedule not configured, skipping janitor")
		return nil
	}

	if _, err := cron.ParseStandard(j.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", j.config.Schedule, err)
	}

	if _, err := j.cron.AddFunc(j.config.Schedule, func() {
		j.runPruning(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	j.cron.Start()
	j.running = true

	j.logger.Info("audit janitor started",
		"schedule", j.config.Schedule,
		"retention_days", j.config.RetentionDays,
		"max_rows", j.config.MaxRows,
	)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()

	return nil
}

// Prune runs one pruning cycle immediately and returns how many entries were
// deleted.
func (j *Janitor) Prune(ctx context.Context) (int64, error) {
	var deleted int64

	if j.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -j.config.RetentionDays)
		n, err := j.store.PruneBefore(ctx, cutoff)
		if err != nil {
			return deleted, fmt.Errorf("age-based pruning failed: %w", err)
		}
		deleted += n
	}

	if j.config.MaxRows > 0 {
		n, err := j.store.Cap(ctx, j.config.MaxRows)
		if err != nil {
			return deleted, fmt.Errorf("row cap pruning failed: %w", err)
		}
		deleted += n
	}

	return deleted, nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil && j.running {
		stopCtx := j.cron.Stop()
		<-stopCtx.Done()
		j.running = false
		j.logger.Info("audit janitor stopped")
	}
}

// IsRunning returns true while the scheduler is active.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) runPruning(ctx context.Context) {
	deleted, err := j.Prune(ctx)
	if err != nil {
		j.logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		j.logger.Info("scheduled pruning completed", "deleted_count", deleted)
	} else {
		j.logger.Debug("scheduled pruning completed, no entries deleted")
	}
}
