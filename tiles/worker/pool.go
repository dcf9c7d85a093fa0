// Package worker runs background jobs on a fixed number of goroutines.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("worker: queue full")
	ErrClosed    = errors.New("worker: pool closed")
)

type Task struct {
	Ctx  context.Context
	Work func(ctx context.Context) error
	// Name shows up in logs when Work fails.
	Name string
}

type Pool struct {
	tasks   chan Task
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Pool)

// WithTimeout bounds every task run by the pool.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) { p.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) { p.logger = logger }
}

func NewPool(maxWorkers, queueSize int, opts ...Option) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		tasks:   make(chan Task, queueSize),
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(maxWorkers)
	for range maxWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := task.Work(ctx); err != nil {
		p.logger.Debug("task failed", "task", task.Name, "error", err)
	}
}

// Submit queues the task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
