package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config holds queue configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	JobTimeout  time.Duration // default: 30 seconds
}

// Queue runs jobs in-process on a fixed pool of workers.
type Queue struct {
	config   Config
	handlers map[string]Handler
	mu       sync.RWMutex

	queue   chan Job
	wg      sync.WaitGroup
	stopCh  chan struct{}
	once    sync.Once
	started bool
}

func NewQueue(cfg Config) *Queue {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	return &Queue{
		config:   cfg,
		handlers: make(map[string]Handler),
		queue:    make(chan Job, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}
}

// Register binds a handler to a job name. Registering twice replaces the handler.
func (q *Queue) Register(name string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = h
	slog.Info("Job handler registered", "job", name)
}

func (q *Queue) handler(name string) (Handler, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	h, ok := q.handlers[name]
	return h, ok
}

// Start launches the workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	for i := 0; i < q.config.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	slog.Info("Job queue started", "workers", q.config.WorkerCount, "queue_size", q.config.QueueSize)
}

// Dispatch enqueues without blocking the caller.
func (q *Queue) Dispatch(ctx context.Context, job Job) error {
	select {
	case <-q.stopCh:
		return ErrQueueStopped
	default:
	}

	if _, ok := q.handler(job.Name); !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, job.Name)
	}

	select {
	case q.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Stop waits for workers to drain what is already queued.
func (q *Queue) Stop() {
	q.once.Do(func() {
		slog.Info("Stopping job queue...")
		close(q.stopCh)
		q.wg.Wait()
		slog.Info("Job queue stopped")
	})
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case job := <-q.queue:
			q.run(id, job)
		case <-q.stopCh:
			for {
				select {
				case job := <-q.queue:
					q.run(id, job)
				default:
					return
				}
			}
		}
	}
}

// run executes one job. Panics are contained to the job.
func (q *Queue) run(worker int, job Job) {
	h, ok := q.handler(job.Name)
	if !ok {
		slog.Warn("Dropping job without handler", "job", job.Name, "job_id", job.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.config.JobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Job panicked", "job", job.Name, "job_id", job.ID, "worker", worker, "panic", p)
		}
	}()

	if err := h(ctx, job); err != nil {
		slog.Error("Job failed", "job", job.Name, "job_id", job.ID, "company_id", job.CompanyID, "worker", worker, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Job completed", "job", job.Name, "job_id", job.ID, "worker", worker, "duration", time.Since(start))
}

// RunNow executes a job synchronously on the caller's goroutine (useful for testing)
func (q *Queue) RunNow(ctx context.Context, job Job) error {
	h, ok := q.handler(job.Name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, job.Name)
	}
	return h(ctx, job)
}
