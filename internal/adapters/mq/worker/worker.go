// Package worker runs analysis jobs pulled from the job queue. Each
// worker processes one job at a time with its own exclusive pipeline
// state, so jobs never share mutable tracking data.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/pitchvision/pitchvision/internal/adapters/mq/queue"
	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/pkg/logger"
	"github.com/pitchvision/pitchvision/pkg/metrics"
)

// Shutdown timeout constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Processor runs one job end to end. Implementations own all per-job
// state and must honor ctx between frames.
type Processor interface {
	Process(ctx context.Context, job model.Job) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker pulls jobs off the queue and hands them to the processor.
type Worker struct {
	queue queue.Queue
	proc  Processor
	name  string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorker creates a worker bound to a queue and processor.
func NewWorker(q queue.Queue, proc Processor, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		proc:     proc,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight job.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) processJob(ctx context.Context, job model.Job) {
	start := time.Now()
	w.log.Info(ctx, "job started",
		logger.String("job_id", job.ID),
		logger.String("video", job.VideoPath),
	)

	err := w.proc.Process(ctx, job)
	metrics.RecordWorkerJobLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordJobFailed()
		w.log.Error(ctx, "job failed",
			logger.String("job_id", job.ID),
			logger.Error(err),
		)
		return
	}

	metrics.RecordJobCompleted()
	w.log.Info(ctx, "job completed",
		logger.String("job_id", job.ID),
		logger.Float64("seconds", time.Since(start).Seconds()),
	)
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker
	log     logger.Logger
}

// NewPool creates workerCount workers over the same queue/processor.
func NewPool(workerCount int, q queue.Queue, proc Processor) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		log:     logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, proc, WithName(fmt.Sprintf("worker-%d", i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown stops all workers, waiting up to the pool timeout for
// in-flight jobs to finish.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		wCtx, wCancel := context.WithTimeout(shutdownCtx, workerShutdownTimeout)
		if err := w.Shutdown(wCtx); err != nil {
			p.log.Warn(ctx, "worker did not stop in time", logger.Int("worker", i))
		}
		wCancel()
	}
	return nil
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
