package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for presentation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// AdvanceStatus moves a job out of PENDING into the given status. It is
	// a no-op (false) when the stored status is already terminal, which keeps
	// racing write-backs from regressing a finished job.
	AdvanceStatus(ctx context.Context, jobID string, status Status) (bool, error)
	// ListStalePending returns jobs still PENDING after the cutoff, oldest
	// first, for out-of-band re-publishing.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Job, error)
}

// WorkQueue hands descriptors to the asynchronous worker pool. Delivery is
// at-least-once and fire-and-forget from the producer side.
type WorkQueue interface {
	Publish(ctx context.Context, d WorkDescriptor) error
}

// StatusCache reads worker-published state. Both reads return ok=false when
// the worker has not written the key yet; that is a normal outcome, not an
// error.
type StatusCache interface {
	ReadStatus(ctx context.Context, jobID string) (raw string, ok bool, err error)
	ReadResult(ctx context.Context, jobID string) (payload []byte, ok bool, err error)
}
