package request

import (
	"golang.org/x/sync/singleflight"

	"github.com/nyxvm/corevm/collector"
)

// Dispatcher coalesces concurrent collection requests for the same
// process and hands each surviving request to a GC worker pool, so the
// collection itself runs on a GC worker goroutine distinct from the
// mutator that called Dispatch — spec.md §5's "GC work for a process is
// performed by a GC worker thread distinct from its mutator" — rather
// than on the caller's own goroutine.
//
// Coalescing generalizes the original's one-request-per-process
// invariant, which relied on a process only ever being scheduled for GC
// once at a time, to an explicit coalescing point safe under a dispatcher
// shared by many caller goroutines.
type Dispatcher struct {
	group singleflight.Group
	pool  *collector.WorkerPool
}

// NewDispatcher returns a dispatcher that submits requests onto pool.
func NewDispatcher(pool *collector.WorkerPool) *Dispatcher {
	return &Dispatcher{pool: pool}
}

// Dispatch submits req.Perform() to the worker pool under key's
// coalescing group and blocks until it completes, returning the
// resulting Profile. key should uniquely identify the process being
// collected (e.g. its process ID); two requests racing in with the same
// key and one already running share that run's result instead of
// double-collecting. The caller's wait is timed as req.Profile's
// Suspended phase, from submission to the worker actually starting the
// request.
func (d *Dispatcher) Dispatch(key string, req *Request) *Profile {
	v, _, _ := d.group.Do(key, func() (interface{}, error) {
		req.Profile.StartSuspended()
		done := make(chan struct{})
		d.pool.Submit(func() collector.Result {
			req.Profile.StopSuspended()
			req.Perform()
			close(done)
			return collector.Result{}
		})
		<-done
		return req.Profile, nil
	})
	return v.(*Profile)
}
