package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/firstlist/presentd/internal/domain"
)

type fakeRepo struct {
	jobs      map[string]*domain.Job
	createErr []error
	advances  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{jobs: map[string]*domain.Job{}}
}

func (f *fakeRepo) Create(_ context.Context, job *domain.Job) error {
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := f.jobs[job.ID]; exists {
		return domain.ErrDuplicateJob
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeRepo) AdvanceStatus(_ context.Context, jobID string, status domain.Status) (bool, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return false, domain.ErrNotFound
	}
	f.advances++
	if job.Status != domain.StatusPending {
		return false, nil
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRepo) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]domain.Job, error) {
	var out []domain.Job
	for _, job := range f.jobs {
		if job.Status == domain.StatusPending && job.UpdatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

type fakeQueue struct {
	published []domain.WorkDescriptor
	err       error
}

func (f *fakeQueue) Publish(_ context.Context, d domain.WorkDescriptor) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, d)
	return nil
}

type fakeCache struct {
	status  map[string]string
	results map[string][]byte
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{status: map[string]string{}, results: map[string][]byte{}}
}

func (f *fakeCache) ReadStatus(_ context.Context, jobID string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	raw, ok := f.status[jobID]
	return raw, ok, nil
}

func (f *fakeCache) ReadResult(_ context.Context, jobID string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	payload, ok := f.results[jobID]
	return payload, ok, nil
}

func newTestService(repo *fakeRepo, queue *fakeQueue, cache *fakeCache) *Presentations {
	return NewPresentations(repo, queue, cache, zerolog.Nop())
}

func TestSubmit_CreatesPendingJobAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	svc := newTestService(repo, queue, newFakeCache())

	sub, err := svc.Submit(context.Background(), "make slides about cats", "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Job.ID == "" || sub.Job.Status != domain.StatusPending || !sub.Queued {
		t.Fatalf("unexpected submission %+v", sub)
	}

	stored, err := repo.GetByID(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.StatusPending || stored.Prompt != "make slides about cats" || stored.UserID != "u1" {
		t.Fatalf("unexpected stored job %+v", stored)
	}

	if len(queue.published) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(queue.published))
	}
	if d := queue.published[0]; d.JobID != sub.Job.ID || d.Prompt != "make slides about cats" {
		t.Fatalf("unexpected descriptor %+v", d)
	}

	status, err := svc.Status(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("fresh job status = %q, want PENDING", status)
	}
}

func TestSubmit_FreshIDPerCall(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeQueue{}, newFakeCache())

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		sub, err := svc.Submit(context.Background(), "p", "u1")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if seen[sub.Job.ID] {
			t.Fatalf("id %s reused", sub.Job.ID)
		}
		seen[sub.Job.ID] = true
	}
}

func TestSubmit_RetriesOnDuplicateID(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = []error{domain.ErrDuplicateJob}
	queue := &fakeQueue{}
	svc := newTestService(repo, queue, newFakeCache())

	sub, err := svc.Submit(context.Background(), "p", "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(queue.published) != 1 || queue.published[0].JobID != sub.Job.ID {
		t.Fatalf("descriptor not published for retried id")
	}
}

func TestSubmit_PublishFailureIsDegradedSuccess(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{err: domain.ErrQueueUnavailable}
	svc := newTestService(repo, queue, newFakeCache())

	sub, err := svc.Submit(context.Background(), "p", "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Queued {
		t.Fatal("expected Queued=false when publish fails")
	}
	if _, err := repo.GetByID(context.Background(), sub.Job.ID); err != nil {
		t.Fatalf("job record must exist despite publish failure: %v", err)
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeQueue{}, newFakeCache())

	if _, err := svc.Status(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatus_ReconcilesCompletedWriteBack(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.status[sub.Job.ID] = "completed"

	status, err := svc.Status(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != domain.StatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", status)
	}

	stored, _ := repo.GetByID(context.Background(), sub.Job.ID)
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("durable status = %q, want COMPLETED", stored.Status)
	}
}

func TestStatus_SecondCallSkipsWriteBack(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.status[sub.Job.ID] = "COMPLETED"

	if _, err := svc.Status(context.Background(), sub.Job.ID); err != nil {
		t.Fatalf("first Status: %v", err)
	}
	first := repo.advances

	status, err := svc.Status(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("second Status: %v", err)
	}
	if status != domain.StatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", status)
	}
	if repo.advances != first {
		t.Fatalf("second call must not write back again: %d -> %d", first, repo.advances)
	}
}

func TestStatus_TerminalNeverRegresses(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.status[sub.Job.ID] = "failed"
	if _, err := svc.Status(context.Background(), sub.Job.ID); err != nil {
		t.Fatalf("Status: %v", err)
	}

	// Worker cache later reports stale values; the durable record must stay FAILED.
	for _, stale := range []string{"pending", "PROCESSING", ""} {
		cache.status[sub.Job.ID] = stale
		if _, err := svc.Status(context.Background(), sub.Job.ID); err != nil {
			t.Fatalf("Status(%q): %v", stale, err)
		}
		stored, _ := repo.GetByID(context.Background(), sub.Job.ID)
		if stored.Status != domain.StatusFailed {
			t.Fatalf("durable status regressed to %q after cache reported %q", stored.Status, stale)
		}
	}
}

func TestStatus_UnrecognizedDisplaysPendingWithoutWriteBack(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.status[sub.Job.ID] = "PROCESSING"

	status, err := svc.Status(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != domain.StatusPending {
		t.Fatalf("status = %q, want PENDING for unrecognized cache value", status)
	}
	if repo.advances != 0 {
		t.Fatal("unrecognized value must not be written back")
	}
}

func TestStatus_CacheErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.err = domain.ErrCacheUnavailable

	if _, err := svc.Status(context.Background(), sub.Job.ID); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
}

func TestResult_UnknownJob(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeQueue{}, newFakeCache())

	if _, err := svc.Result(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResult_NotReadyEvenWhenStatusSaysCompleted(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, &fakeQueue{}, cache)

	sub, _ := svc.Submit(context.Background(), "p", "u1")
	cache.status[sub.Job.ID] = "COMPLETED"

	if _, err := svc.Result(context.Background(), sub.Job.ID); !errors.Is(err, domain.ErrResultNotReady) {
		t.Fatalf("expected ErrResultNotReady, got %v", err)
	}
}

func TestEndToEnd_SubmitThenWorkerCompletes(t *testing.T) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	cache := newFakeCache()
	svc := newTestService(repo, queue, cache)

	sub, err := svc.Submit(context.Background(), "make slides about cats", "u1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Job.Status != domain.StatusPending {
		t.Fatalf("submit status = %q, want PENDING", sub.Job.Status)
	}
	if len(queue.published) != 1 || queue.published[0].Prompt != "make slides about cats" {
		t.Fatalf("unexpected queue contents %+v", queue.published)
	}

	// External worker finishes and writes both cache keys.
	cache.status[sub.Job.ID] = "completed"
	cache.results[sub.Job.ID] = []byte(`{"slides":["cats"]}`)

	status, err := svc.Status(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != domain.StatusCompleted {
		t.Fatalf("status = %q, want COMPLETED", status)
	}
	stored, _ := repo.GetByID(context.Background(), sub.Job.ID)
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("durable status = %q, want COMPLETED", stored.Status)
	}

	view, err := svc.Result(context.Background(), sub.Job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if view.JobID != sub.Job.ID || view.Status != domain.StatusCompleted {
		t.Fatalf("unexpected view %+v", view)
	}
	if string(view.Presentation) != `{"slides":["cats"]}` {
		t.Fatalf("unexpected payload %s", view.Presentation)
	}
}
