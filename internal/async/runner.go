// Package async runs quote requests on a bounded worker pool so that a
// slow local model is never hit by more concurrent calls than it can take.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

// ErrClosed is returned by Submit after Shutdown.
var ErrClosed = common.NewAppError("UNAVAILABLE", "runner is shutting down", common.ErrInternal)

// Assembler is the pipeline a worker executes.
type Assembler interface {
	Assemble(ctx context.Context, prompt string) (quote.Outcome, error)
}

// Job is one submitted request. It completes exactly once.
type Job struct {
	ID          string
	Prompt      string
	SubmittedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	outcome quote.Outcome
	err     error
}

// Done is closed when the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel aborts the job; the in-flight model call is interrupted.
func (j *Job) Cancel() { j.cancel() }

// Wait blocks until the job finishes. If ctx ends first the job is
// canceled and Wait still returns the job's own (canceled) result.
func (j *Job) Wait(ctx context.Context) (quote.Outcome, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		j.cancel()
		<-j.done
	}
	return j.outcome, j.err
}

func (j *Job) finish(out quote.Outcome, err error) {
	j.outcome, j.err = out, err
	j.cancel()
	close(j.done)
}

type Runner struct {
	asm     Assembler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan *Job
	wg   sync.WaitGroup
	once sync.Once

	// quit is closed first on Shutdown and releases submitters blocked on a
	// full queue. mu guards closing ch: senders hold it shared.
	quit     chan struct{}
	quitOnce sync.Once
	mu       sync.RWMutex
	closed   bool
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.ch = make(chan *Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRunner(asm Assembler, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		asm:     asm,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan *Job, 64),
		quit:    make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	r.start()
	return r
}

func (r *Runner) start() {
	r.once.Do(func() {
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go func(workerID int) {
				defer r.wg.Done()
				r.logger.Debug("async.worker.start", "worker_id", workerID)
				for j := range r.ch {
					r.process(workerID, j)
				}
				r.logger.Debug("async.worker.stop", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (r *Runner) process(workerID int, j *Job) {
	if err := j.ctx.Err(); err != nil {
		r.logger.Info("async.job.skipped", "worker_id", workerID, "job_id", j.ID, "err", err)
		j.finish(quote.Outcome{}, err)
		return
	}
	ctx, cancel := context.WithTimeout(j.ctx, r.timeout)
	defer cancel()

	r.logger.Debug("async.job.start", "worker_id", workerID, "job_id", j.ID,
		"queued_ms", time.Since(j.SubmittedAt).Milliseconds())
	out, err := r.asm.Assemble(ctx, j.Prompt)
	j.finish(out, err)
}

// Submit queues prompt. The job inherits ctx values (request id) and is
// canceled together with ctx. A full queue blocks until ctx ends or
// Shutdown starts.
func (r *Runner) Submit(ctx context.Context, prompt string) (*Job, error) {
	id := common.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = common.WithRequestID(ctx, id)
	}
	jctx, cancel := context.WithCancel(ctx)
	j := &Job{
		ID:          id,
		Prompt:      prompt,
		SubmittedAt: time.Now(),
		ctx:         jctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	select {
	case <-r.quit:
		cancel()
		return nil, ErrClosed
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		cancel()
		return nil, ErrClosed
	}
	select {
	case r.ch <- j:
		return j, nil
	default:
	}

	r.logger.Warn("async.queue.full", "job_id", j.ID)
	select {
	case r.ch <- j:
		return j, nil
	case <-r.quit:
		cancel()
		return nil, ErrClosed
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

// Run submits prompt and waits for its result.
func (r *Runner) Run(ctx context.Context, prompt string) (quote.Outcome, error) {
	j, err := r.Submit(ctx, prompt)
	if err != nil {
		return quote.Outcome{}, err
	}
	return j.Wait(ctx)
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (r *Runner) Shutdown(ctx context.Context) {
	r.quitOnce.Do(func() { close(r.quit) })

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); r.wg.Wait() }()

	select {
	case <-ctx.Done():
		r.logger.Warn("async.shutdown.interrupted")
	case <-done:
		r.logger.Info("async.shutdown.ok")
	}
}
