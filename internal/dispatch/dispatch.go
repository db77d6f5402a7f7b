// Package dispatch provides the fire-and-forget hand-off between the
// interaction router and the command executor. Submitting never blocks the
// caller; delivery is at-most-once with no result channel.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Job is one unit of deferred work: the raw interaction payload plus the
// command name for logging.
type Job struct {
	Name    string
	Payload []byte
}

// Handler processes a submitted job.
type Handler func(ctx context.Context, job Job)

// Dispatcher accepts jobs for asynchronous execution.
type Dispatcher interface {
	Submit(job Job) error
}

var (
	// ErrQueueFull is returned when the job queue has no room. The caller
	// must not wait; the spec requires the submit path to be non-blocking.
	ErrQueueFull = errors.New("dispatch queue full")

	// ErrStopped is returned when the pool is no longer accepting jobs.
	ErrStopped = errors.New("dispatcher stopped")
)

// Pool runs jobs on a fixed set of workers fed by a buffered queue.
type Pool struct {
	jobs    chan Job
	handler Handler
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a Pool with the given worker count and queue capacity.
func NewPool(workers, queueSize int, handler Handler, logger *slog.Logger) *Pool {
	p := &Pool{
		jobs:    make(chan Job, queueSize),
		handler: handler,
		logger:  logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

// run executes one job, containing panics so a faulty handler cannot take a
// worker down with it.
func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "job", job.Name, "panic", r)
		}
	}()
	p.handler(context.Background(), job)
}

// Submit enqueues a job without blocking. It returns ErrQueueFull when the
// queue is at capacity and ErrStopped after Stop.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop rejects further submissions and waits for queued jobs to drain, up to
// the context deadline.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
