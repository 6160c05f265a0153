package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Enqueue once shutdown has begun; callers
// must not report such a job as accepted.
var ErrQueueClosed = errors.New("queue is shut down")

// Job asks for one document's pipeline run.
type Job struct {
	DocumentID  uuid.UUID
	Workflow    string // "auto" or an explicit document type label
	SubmittedAt time.Time
}

// Runner executes one pipeline run; the queue stays ignorant of the
// pipeline's internals.
type Runner interface {
	RunDocument(ctx context.Context, documentID uuid.UUID, workflow string) error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// RunnerQueue fans jobs out over a fixed worker pool. Each run gets its own
// timeout so a stuck inference call cannot pin a worker forever.
type RunnerQueue struct {
	runner  Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*RunnerQueue)

func WithWorkers(n int) Option {
	return func(q *RunnerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *RunnerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithRunTimeout(d time.Duration) Option {
	return func(q *RunnerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewRunnerQueue(runner Runner, logger *slog.Logger, opts ...Option) *RunnerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RunnerQueue{
		runner:  runner,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RunnerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.runner.RunDocument(ctx, job.DocumentID, job.Workflow)
					cancel()

					if err != nil {
						q.logger.Error("run failed", "worker_id", workerID, "doc_id", job.DocumentID, "error", err)
					} else {
						q.logger.Info("run completed", "worker_id", workerID, "doc_id", job.DocumentID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *RunnerQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "doc_id", job.DocumentID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document run", "doc_id", job.DocumentID, "workflow", job.Workflow)
	default:
		q.logger.Warn("queue full, applying backpressure", "doc_id", job.DocumentID)
		q.ch <- job
	}
	return nil
}

func (q *RunnerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
