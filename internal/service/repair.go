package service

import (
	"context"
	"fmt"
	"time"

	"github.com/firstlist/presentd/internal/domain"
	"github.com/firstlist/presentd/internal/infra"
)

// Repairer re-publishes work descriptors for jobs stuck in PENDING, the
// out-of-band recovery for a publish that failed after the record write.
// Re-publishing a job a worker is still processing is safe: delivery is
// at-least-once and workers treat descriptors idempotently.
type Repairer struct {
	repo   domain.JobRepository
	queue  domain.WorkQueue
	logger infra.Logger
}

// NewRepairer wires the repair scanner.
func NewRepairer(repo domain.JobRepository, queue domain.WorkQueue, logger infra.Logger) *Repairer {
	return &Repairer{repo: repo, queue: queue, logger: logger}
}

// Republish scans for jobs PENDING longer than staleAfter and pushes their
// descriptors back onto the queue. It returns how many were re-published.
func (r *Repairer) Republish(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-staleAfter)
	jobs, err := r.repo.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("scan stale jobs: %w", err)
	}

	published := 0
	for _, job := range jobs {
		if err := r.queue.Publish(ctx, domain.WorkDescriptor{JobID: job.ID, Prompt: job.Prompt}); err != nil {
			return published, fmt.Errorf("republish job %s: %w", job.ID, err)
		}
		r.logger.Info().Str("job_id", job.ID).Time("updated_at", job.UpdatedAt).Msg("republished stale job")
		published++
	}
	return published, nil
}
