package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marcusv/linguaflash/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool runs background maintenance jobs on a fixed set of workers.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     logger.Default().WithPrefix("worker"),
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
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		case job := <-p.jobs:
			if job == nil {
				return
			}
			jobLog := log.WithField("job", job.Name())
			start := time.Now()
			if err := job.Run(logger.NewContext(ctx, jobLog)); err != nil {
				jobLog.Error("job failed after %v: %v", time.Since(start), err)
			} else {
				jobLog.Debug("job completed in %v", time.Since(start))
			}
		}
	}
}

func (p *Pool) Stop() {
	p.log.Info("stopping workers")
	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("workers stopped")
}

// Submit enqueues a job, failing fast when the queue is full.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full, dropping %s", job.Name())
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
