package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"form-builder-api/internal/repository"
)

// PurgeJob permanently removes forms that were soft-deleted longer ago than
// the retention window, together with their fields and responses.
type PurgeJob struct {
	formRepo repository.FormRepository
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewPurgeJob creates a new PurgeJob instance
func NewPurgeJob(formRepo repository.FormRepository, maxAge time.Duration, logger *zap.Logger) *PurgeJob {
	return &PurgeJob{
		formRepo: formRepo,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Run executes the purge job. The signature satisfies cron.Job.
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.maxAge)

	j.logger.Info("Starting deleted form purge",
		zap.Time("cutoff", cutoff),
	)

	purged, err := j.formRepo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("Failed to purge deleted forms",
			zap.Error(err),
		)
		return
	}

	if purged == 0 {
		j.logger.Info("No deleted forms past retention")
		return
	}

	j.logger.Info("Purge completed",
		zap.Int64("purged", purged),
	)
}
