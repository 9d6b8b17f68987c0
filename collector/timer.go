package collector

// PhaseTimer receives phase-boundary callbacks from a collection run, so a
// caller (package request's Profile) can record real per-phase timing
// without this package depending on request. Every Start/Stop pair brackets
// exactly the work spec.md §4.9/§4.11 attributes to that phase: Prepare is
// the line-mark/fragmentation scan, Trace is the mark/evacuate/promote
// pass, Reclaim is returning empty blocks to the global allocator, and
// Finalize is scheduling (not running) survivors' pending finalization.
type PhaseTimer interface {
	StartPrepare()
	StopPrepare()
	StartTrace()
	StopTrace()
	StartReclaim()
	StopReclaim()
	StartFinalize()
	StopFinalize()
}

// NoopTimer implements PhaseTimer with no-ops, for callers (tests, simple
// drivers) that don't need phase timing.
type NoopTimer struct{}

func (NoopTimer) StartPrepare()  {}
func (NoopTimer) StopPrepare()   {}
func (NoopTimer) StartTrace()    {}
func (NoopTimer) StopTrace()     {}
func (NoopTimer) StartReclaim()  {}
func (NoopTimer) StopReclaim()   {}
func (NoopTimer) StartFinalize() {}
func (NoopTimer) StopFinalize()  {}

var _ PhaseTimer = NoopTimer{}
