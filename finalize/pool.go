// Package finalize implements the finalizer worker pool: a bounded set of
// goroutines draining blocks' pending-finalization bitmaps off a job
// channel, as spec.md §4.14 describes.
package finalize

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/nyxvm/corevm/block"
)

// DefaultWorkers is the worker count a Pool starts with when none is
// specified, chosen to match a small, fixed concurrency budget rather than
// scaling with GOMAXPROCS — finalization work is cheap and bursty, not
// CPU-bound.
const DefaultWorkers = 4

// Pool is a bounded-concurrency finalizer worker pool. Blocks are
// submitted via Submit; each worker calls FinalizePending on a block in
// turn, recovering from (and logging) any panic a misbehaving destructor
// raises so one bad block never kills the pool.
type Pool struct {
	jobs   chan *block.Block
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a pool of `workers` goroutines (DefaultWorkers if workers <=
// 0) pulling from an internally buffered job channel.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	p := &Pool{
		jobs:   make(chan *block.Block, workers*4),
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

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case blk, ok := <-p.jobs:
			if !ok {
				return
			}
			p.finalizeOne(blk)
		}
	}
}

func (p *Pool) finalizeOne(blk *block.Block) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("finalize: recovered panic finalizing block: %v", r)
		}
	}()
	blk.FinalizePending()
}

// Submit enqueues blk for finalization. It blocks if the internal buffer
// is full, applying backpressure to the collector's reclaim phase rather
// than growing an unbounded queue.
func (p *Pool) Submit(blk *block.Block) {
	select {
	case p.jobs <- blk:
	case <-p.ctx.Done():
	}
}

// Schedule prepares blk for finalization (PrepareFinalization) and, if
// there is anything pending, submits it to the pool — the "finalize
// scheduling" step spec.md §4.8 describes for each surviving block after
// reclaim.
func (p *Pool) Schedule(blk *block.Block) {
	if blk.PrepareFinalization() {
		p.Submit(blk)
	}
}

// Close stops accepting new work, waits for in-flight jobs to drain, and
// shuts down every worker goroutine.
func (p *Pool) Close() {
	close(p.jobs)
	_ = p.group.Wait()
	p.cancel()
}
