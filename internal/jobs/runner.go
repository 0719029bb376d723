package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/google/uuid"
)

// Processor handles one job type.
type Processor interface {
	Process(ctx context.Context, job *domain.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job *domain.Job) error

func (f ProcessorFunc) Process(ctx context.Context, job *domain.Job) error {
	return f(ctx, job)
}

// Runner submits jobs and runs them on a pool of workers.
type Runner struct {
	queue      Queue
	statuses   StatusStore
	processors map[domain.JobType]Processor
	workers    int
	jobTimeout time.Duration
	now        func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRunner creates a runner. Register processors before Start.
func NewRunner(queue Queue, statuses StatusStore, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		queue:      queue,
		statuses:   statuses,
		processors: make(map[domain.JobType]Processor),
		workers:    workers,
		jobTimeout: 5 * time.Minute,
		now:        time.Now,
	}
}

// Register sets the processor for a job type.
func (r *Runner) Register(jobType domain.JobType, p Processor) {
	r.processors[jobType] = p
}

// Submit records a pending job and queues it.
func (r *Runner) Submit(ctx context.Context, jobType domain.JobType, accountID, userID, subjectID string) (*domain.Job, error) {
	if _, ok := r.processors[jobType]; !ok {
		return nil, fmt.Errorf("no processor for job type %q", jobType)
	}

	now := r.now().UTC()
	job := &domain.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		AccountID: accountID,
		UserID:    userID,
		SubjectID: subjectID,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.statuses.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("record job: %w", err)
	}
	if err := r.queue.Enqueue(ctx, job.ID); err != nil {
		job.Status = domain.JobFailed
		job.Error = "enqueue failed"
		job.UpdatedAt = r.now().UTC()
		if uerr := r.statuses.Update(ctx, job); uerr != nil {
			log.Printf("[Jobs] failed to mark job %s failed: %v", job.ID, uerr)
		}
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	log.Printf("[Jobs] submitted %s job %s for %s", job.Type, job.ID, subjectID)
	return job, nil
}

// Get returns the current state of a job.
func (r *Runner) Get(ctx context.Context, id string) (*domain.Job, error) {
	return r.statuses.Get(ctx, id)
}

// Start launches the workers. They exit when ctx is cancelled or the queue
// closes; Wait blocks until they have.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work(ctx, i)
	}
	log.Printf("[Jobs] started %d workers", r.workers)
}

// Wait blocks until all workers have exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown closes the queue and lets the workers run every job already queued.
// If ctx ends first the workers are cancelled, and jobs still buffered in a
// MemoryQueue are marked failed so they do not stay pending.
func (r *Runner) Shutdown(ctx context.Context) error {
	if err := r.queue.Close(); err != nil {
		log.Printf("[Jobs] failed to close queue: %v", err)
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Printf("[Jobs] queue drained")
		return nil
	case <-ctx.Done():
	}

	if r.cancel != nil {
		r.cancel()
	}
	<-done
	r.failQueued(context.WithoutCancel(ctx))
	return ctx.Err()
}

func (r *Runner) failQueued(ctx context.Context) {
	q, ok := r.queue.(*MemoryQueue)
	if !ok {
		return
	}
	for {
		id, err := q.Dequeue(ctx)
		if err != nil {
			return
		}
		job, err := r.statuses.Get(ctx, id)
		if err != nil || job.Terminal() {
			continue
		}
		r.finish(ctx, job, errShutdown)
	}
}

var errShutdown = errors.New("server shut down before the job ran")

func (r *Runner) work(ctx context.Context, worker int) {
	defer r.wg.Done()
	for ctx.Err() == nil {
		id, err := r.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			log.Printf("[Jobs] worker %d: dequeue error: %v", worker, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		r.run(ctx, id)
	}
}

// run executes one job and records the outcome. A panicking processor fails
// the job instead of the worker.
func (r *Runner) run(ctx context.Context, id string) {
	job, err := r.statuses.Get(ctx, id)
	if err != nil {
		log.Printf("[Jobs] dropping job %s: %v", id, err)
		return
	}
	if job.Terminal() {
		return
	}

	p, ok := r.processors[job.Type]
	if !ok {
		r.finish(ctx, job, fmt.Errorf("no processor for job type %q", job.Type))
		return
	}

	job.Status = domain.JobProcessing
	job.Attempts++
	job.UpdatedAt = r.now().UTC()
	if err := r.statuses.Update(ctx, job); err != nil {
		log.Printf("[Jobs] failed to mark job %s processing: %v", job.ID, err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	r.finish(context.WithoutCancel(ctx), job, r.safeProcess(jobCtx, p, job))
}

func (r *Runner) safeProcess(ctx context.Context, p Processor, job *domain.Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("processor panic: %v", rec)
		}
	}()
	return p.Process(ctx, job)
}

func (r *Runner) finish(ctx context.Context, job *domain.Job, procErr error) {
	job.UpdatedAt = r.now().UTC()
	if procErr != nil {
		job.Status = domain.JobFailed
		job.Error = procErr.Error()
		log.Printf("[Jobs] %s job %s failed: %v", job.Type, job.ID, procErr)
	} else {
		job.Status = domain.JobCompleted
		job.Error = ""
		log.Printf("[Jobs] %s job %s completed", job.Type, job.ID)
	}
	if err := r.statuses.Update(ctx, job); err != nil {
		log.Printf("[Jobs] failed to record outcome of job %s: %v", job.ID, err)
	}
}
