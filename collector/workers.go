package collector

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the GC worker pool's default size: one goroutine per
// collection-capable worker, matching spec.md §5's "GC work for a process
// is performed by a GC worker thread distinct from its mutator" without
// scaling unboundedly with process count.
const DefaultWorkers = 4

// Job is one collection request dispatched to the worker pool: run a
// collector and report its result. Built this way (rather than a richer
// job type importing package request) so collector has no dependency on
// the dispatcher that schedules jobs onto it.
type Job func() Result

// WorkerPool runs Jobs on a bounded set of goroutines, mirroring
// package finalize's pool shape (spec.md §5's "Parallel OS threads").
type WorkerPool struct {
	jobs   chan Job
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorkerPool starts a pool of `workers` goroutines (DefaultWorkers if
// workers <= 0).
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	p := &WorkerPool{
		jobs:   make(chan Job, workers*4),
		group:  group,
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			p.work(groupCtx)
			return nil
		})
	}

	return p
}

func (p *WorkerPool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		}
	}
}

// Submit enqueues job, blocking if the internal buffer is full.
func (p *WorkerPool) Submit(job Job) {
	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
	}
}

// Close stops accepting new work, waits for in-flight jobs, and shuts down
// every worker goroutine.
func (p *WorkerPool) Close() {
	close(p.jobs)
	_ = p.group.Wait()
	p.cancel()
}
