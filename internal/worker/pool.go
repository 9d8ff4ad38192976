// Package worker runs background jobs, chiefly post-solve scoreboard
// snapshot refreshes, off the request path.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rmello/flagforge/internal/logger"
)

// Job is one unit of background work. Name labels it in logs.
type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool fans queued jobs out to a fixed set of workers. A job that fails is
// logged and dropped; the periodic refresh loop papers over missed snapshots.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     logger.Default().WithPrefix("worker-pool"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i+1)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.WithField("worker_id", id)

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopped")
			return
		case job := <-p.jobs:
			if job == nil {
				return
			}
			jobLog := log.WithField("job", job.Name())
			start := time.Now()
			if err := job.Run(logger.NewContext(ctx, jobLog)); err != nil {
				jobLog.Error("job failed after %v: %v", time.Since(start), err)
				continue
			}
			jobLog.Debug("job done in %v", time.Since(start))
		}
	}
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Submit queues a job. It blocks while the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}
