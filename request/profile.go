// Package request implements garbage-collection requests: what to collect
// (a process's heap or its mailbox), timing/counters for the run, and a
// dispatcher coalescing duplicate in-flight requests for the same process.
package request

import "time"

// CollectionType names what a Request collects.
type CollectionType int

const (
	// HeapYoung collects a process's young generation only.
	HeapYoung CollectionType = iota
	// HeapFull collects both the young and mature generations.
	HeapFull
	// Mailbox collects a process's mailbox heap.
	Mailbox
)

func (t CollectionType) String() string {
	switch t {
	case HeapYoung:
		return "heap (young)"
	case HeapFull:
		return "heap (full)"
	case Mailbox:
		return "mailbox"
	default:
		return "unknown"
	}
}

// stopwatch accumulates elapsed time across possibly multiple start/stop
// pairs (a request may suspend and resume tracing around a worker-pool
// handoff), mirroring the original's Timer type.
type stopwatch struct {
	total   time.Duration
	started time.Time
	running bool
}

func (s *stopwatch) start() {
	s.started = time.Now()
	s.running = true
}

func (s *stopwatch) stop() {
	if !s.running {
		return
	}
	s.total += time.Since(s.started)
	s.running = false
}

func (s *stopwatch) duration() time.Duration { return s.total }

// Profile accumulates one collection run's timing and object counts, used
// to log a summary line; SurvivalRatio turns its counts into the ratio
// local.Allocator.AdjustThresholds takes.
type Profile struct {
	CollectionType CollectionType

	total     stopwatch
	prepare   stopwatch
	trace     stopwatch
	reclaim   stopwatch
	finalize  stopwatch
	suspended stopwatch

	Marked    int
	Promoted  int
	Evacuated int
}

// NewProfile returns an empty profile for the given collection type.
func NewProfile(collectionType CollectionType) *Profile {
	return &Profile{CollectionType: collectionType}
}

// StartTotal/StopTotal bracket the collection run inside Request.Perform;
// the wait before a worker picks the request up is timed separately by
// StartSuspended/StopSuspended.
func (p *Profile) StartTotal()   { p.total.start() }
func (p *Profile) StopTotal()    { p.total.stop() }

// StartPrepare/StopPrepare bracket the line-mark-polarity swap and
// fragmentation scan that ready a generation for a fresh trace.
func (p *Profile) StartPrepare() { p.prepare.start() }
func (p *Profile) StopPrepare()  { p.prepare.stop() }

// StartTrace/StopTrace bracket the mark/evacuate/promote pass.
func (p *Profile) StartTrace() { p.trace.start() }
func (p *Profile) StopTrace()  { p.trace.stop() }

// StartReclaim/StopReclaim bracket returning empty blocks to the global
// allocator.
func (p *Profile) StartReclaim() { p.reclaim.start() }
func (p *Profile) StopReclaim()  { p.reclaim.stop() }

// StartFinalize/StopFinalize bracket scheduling surviving blocks'
// finalization work (not running it — that happens asynchronously on the
// finalizer pool).
func (p *Profile) StartFinalize() { p.finalize.start() }
func (p *Profile) StopFinalize()  { p.finalize.stop() }

// StartSuspended/StopSuspended bracket the time a process spent paused
// waiting for the GC worker to pick up its request.
func (p *Profile) StartSuspended() { p.suspended.start() }
func (p *Profile) StopSuspended()  { p.suspended.stop() }

// TotalDuration and friends expose each bracket's accumulated time for
// logging.
func (p *Profile) TotalDuration() time.Duration     { return p.total.duration() }
func (p *Profile) PrepareDuration() time.Duration   { return p.prepare.duration() }
func (p *Profile) TraceDuration() time.Duration     { return p.trace.duration() }
func (p *Profile) ReclaimDuration() time.Duration   { return p.reclaim.duration() }
func (p *Profile) FinalizeDuration() time.Duration  { return p.finalize.duration() }
func (p *Profile) SuspendedDuration() time.Duration { return p.suspended.duration() }

// SurvivalRatio is the fraction of marked-plus-promoted-plus-evacuated
// objects out of everything scanned, the input to
// LocalAllocator.AdjustThresholds's growth decision. scanned is supplied
// by the caller (the collector knows how many roots and their transitive
// children it walked; Profile itself only tracks the subset that survived).
func (p *Profile) SurvivalRatio(scanned int) float64 {
	if scanned == 0 {
		return 0
	}
	survived := p.Marked + p.Promoted + p.Evacuated
	return float64(survived) / float64(scanned)
}
