// internal/domain/notification/dispatcher.go
package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatcher schedules a pipeline run. Submit must not block on the run.
type Dispatcher interface {
	Submit(bookID uuid.UUID)
}

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, bookID uuid.UUID) Summary
}

// WorkerPool runs submitted book ids on a fixed set of goroutines fed by a
// buffered queue. When the queue is full the run gets its own goroutine.
type WorkerPool struct {
	runner  Runner
	logger  logrus.FieldLogger
	workers int
	queue   chan uuid.UUID

	mu       sync.RWMutex
	started  bool
	stopped  bool
	wg       sync.WaitGroup
	overflow sync.WaitGroup
}

// NewWorkerPool creates a worker pool. Call Start before submitting.
func NewWorkerPool(runner Runner, workers, queueSize int, logger logrus.FieldLogger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	return &WorkerPool{
		runner:  runner,
		logger:  logger,
		workers: workers,
		queue:   make(chan uuid.UUID, queueSize),
	}
}

// Start launches the workers
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for bookID := range p.queue {
				p.run(bookID)
			}
		}()
	}

	p.logger.WithField("workers", p.workers).Info("Notification worker pool started")
}

// Submit enqueues a run without blocking
func (p *WorkerPool) Submit(bookID uuid.UUID) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logger.WithField("book_id", bookID).Warn("Notification worker pool stopped, dropping run")
		return
	}

	select {
	case p.queue <- bookID:
	default:
		p.logger.WithField("book_id", bookID).Warn("Notification queue full, running on a dedicated goroutine")
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.run(bookID)
		}()
	}
}

// Stop refuses new submissions, drains the queue and waits for running
// work or for ctx to end.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	if !p.started {
		// Nobody will consume what was queued before Start
		for bookID := range p.queue {
			p.overflow.Add(1)
			go func(id uuid.UUID) {
				defer p.overflow.Done()
				p.run(id)
			}(bookID)
		}
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		p.overflow.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Notification worker pool stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one pipeline run detached from any request context
func (p *WorkerPool) run(bookID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"book_id": bookID,
				"panic":   r,
			}).Error("Notification worker recovered from panic")
		}
	}()

	p.runner.Run(context.Background(), bookID)
}
