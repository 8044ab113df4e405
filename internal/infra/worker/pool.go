// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"runtime"
	"sync"

	"profile-scout/internal/domain"

	"github.com/rs/zerolog"
)

// Task is one unit of dispatched work, typically a full job execution.
type Task func(ctx context.Context) error

// Pool bounds the number of job executions running at once. A fixed set of
// workers drains a buffered queue, so an accepted job waits in the queue
// (still pending) until a worker is free, and the process can never spawn
// an unbounded number of probe subprocesses under load.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	return &Pool{
		jobs: make(chan Task, queueSize),
		quit: make(chan struct{}),
		n:    workers,
		log:  logger,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.Error().Err(err).Int("worker", id).Msg("task error")
					}
				}
			}
		}(i)
	}
}

// Stop signals workers to drain and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

// Submit enqueues a task without blocking. When the queue is saturated it
// returns domain.ErrQueueFull rather than stalling the submitting caller.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return domain.ErrInvalidInput
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return domain.ErrQueueFull
	}
}
