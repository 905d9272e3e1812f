package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/firstlist/presentd/internal/domain"
	"github.com/firstlist/presentd/internal/infra"
)

// idRetries bounds how often Submit retries a colliding uuid before giving up.
const idRetries = 3

// Presentations orchestrates the presentation job lifecycle: creation with
// queue hand-off, and the status/result read path that reconciles the
// worker-written cache back into the durable record.
type Presentations struct {
	repo   domain.JobRepository
	queue  domain.WorkQueue
	cache  domain.StatusCache
	logger infra.Logger
	newID  func() string
}

// NewPresentations wires the lifecycle manager with its collaborators.
func NewPresentations(repo domain.JobRepository, queue domain.WorkQueue, cache domain.StatusCache, logger infra.Logger) *Presentations {
	return &Presentations{
		repo:   repo,
		queue:  queue,
		cache:  cache,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Submission is the outcome of Submit. Queued is false when the job record
// exists but the queue publish failed; such jobs will not run until an
// out-of-band repair re-publishes them.
type Submission struct {
	Job    domain.Job
	Queued bool
}

// Submit records a new PENDING job and hands its work descriptor to the
// queue. Record creation and publish are two steps with no shared
// transaction; a publish failure after a successful create is surfaced as a
// degraded success, not an error.
func (s *Presentations) Submit(ctx context.Context, prompt, userID string) (*Submission, error) {
	var job *domain.Job
	for attempt := 0; ; attempt++ {
		job = &domain.Job{
			ID:     s.newID(),
			UserID: userID,
			Prompt: prompt,
			Status: domain.StatusPending,
		}
		err := s.repo.Create(ctx, job)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateJob) && attempt < idRetries {
			s.logger.Warn().Str("job_id", job.ID).Msg("job id collision, retrying with a fresh id")
			continue
		}
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.queue.Publish(ctx, domain.WorkDescriptor{JobID: job.ID, Prompt: job.Prompt}); err != nil {
		// The record exists but no worker will ever see it. Loud log so
		// operators can find and re-publish orphaned jobs (cmd/repair).
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("job created but publish failed, job is orphaned")
		return &Submission{Job: *job, Queued: false}, nil
	}

	return &Submission{Job: *job, Queued: true}, nil
}

// Status returns the live status for a job, folding the cache value into the
// durable record when it reports a recognized advance.
func (s *Presentations) Status(ctx context.Context, jobID string) (domain.Status, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	return s.reconcile(ctx, job)
}

// ResultView is the outcome of Result.
type ResultView struct {
	JobID        string
	Status       domain.Status
	Presentation json.RawMessage
}

// Result returns the finished presentation. The payload's presence in the
// cache, not the status string, gates success: a job whose status reads
// COMPLETED but whose payload is still absent is not ready.
func (s *Presentations) Result(ctx context.Context, jobID string) (*ResultView, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	payload, ok, err := s.cache.ReadResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrResultNotReady
	}

	status, err := s.reconcile(ctx, job)
	if err != nil {
		return nil, err
	}

	return &ResultView{JobID: job.ID, Status: status, Presentation: payload}, nil
}

// reconcile reads the worker-written status, writes a recognized advance back
// to the store, and returns the value to display. Absent or unrecognized
// cache values display as PENDING but never touch the durable record, so a
// terminal row cannot regress.
func (s *Presentations) reconcile(ctx context.Context, job *domain.Job) (domain.Status, error) {
	raw, ok, err := s.cache.ReadStatus(ctx, job.ID)
	if err != nil {
		return "", err
	}

	observed := domain.StatusUnrecognized
	if ok {
		observed = domain.ParseStatus(raw)
		if !observed.Recognized() {
			s.logger.Warn().Str("job_id", job.ID).Str("raw", raw).Msg("unrecognized status in cache, not persisting")
		}
	}

	next, advance := domain.Reconcile(job.Status, observed)
	if advance {
		advanced, err := s.repo.AdvanceStatus(ctx, job.ID, next)
		if err != nil {
			return "", err
		}
		if !advanced {
			// A concurrent reader already advanced the row. Harmless.
			s.logger.Debug().Str("job_id", job.ID).Msg("status write-back lost the race")
		}
	}

	if observed.Recognized() {
		return observed, nil
	}
	return domain.StatusPending, nil
}
