package request

import (
	"github.com/nyxvm/corevm/collector"
	"github.com/nyxvm/corevm/roots"
	"github.com/nyxvm/corevm/telemetry"
)

// Collectors bundles the per-process collector handles a Request dispatches
// to. A process always has a heap collector; its mailbox collector is
// optional only in tests that don't exercise mailbox collection.
type Collectors struct {
	Heap    *collector.HeapCollector
	Mailbox *collector.MailboxCollector
}

// Request is one garbage-collection request: what to collect, for which
// process, carrying the Profile its run will fill in.
type Request struct {
	CollectionType CollectionType
	ProcessID      string
	Provider       roots.Provider
	Collectors     Collectors
	MaxAge         int
	Profile        *Profile
	Logger         *telemetry.Logger
}

// NewHeapRequest returns a request collecting provider's heap. full
// selects HeapFull over HeapYoung, resolving spec.md §4.8's "should the
// mature generation also be collected" decision the way the original's
// Request::new does via should_collect_mature_generation.
func NewHeapRequest(provider roots.Provider, collectors Collectors, maxAge int, full bool) *Request {
	t := HeapYoung
	if full {
		t = HeapFull
	}
	return &Request{
		CollectionType: t,
		Provider:       provider,
		Collectors:     collectors,
		MaxAge:         maxAge,
		Profile:        NewProfile(t),
	}
}

// NewMailboxRequest returns a request collecting provider's mailbox.
func NewMailboxRequest(provider roots.Provider, collectors Collectors) *Request {
	return &Request{
		CollectionType: Mailbox,
		Provider:       provider,
		Collectors:     collectors,
		Profile:        NewProfile(Mailbox),
	}
}

// Perform runs the collection this request describes. r.Profile is passed
// to the collector as its PhaseTimer, so prepare/trace/reclaim/finalize
// each record the real time the collector itself spends in that phase,
// then Perform logs a one-line summary matching the shape of the
// original's perform() log line.
func (r *Request) Perform() {
	r.Profile.StartTotal()

	var result collector.Result
	switch r.CollectionType {
	case HeapYoung:
		result = r.Collectors.Heap.CollectYoung(r.Provider, r.MaxAge, r.Profile)
	case HeapFull:
		result = r.Collectors.Heap.CollectFull(r.Provider, r.MaxAge, r.Profile)
	case Mailbox:
		result = r.Collectors.Mailbox.Collect(r.Profile)
	}
	r.Profile.StopTotal()

	r.Profile.Marked = result.Marked
	r.Profile.Promoted = result.Promoted
	r.Profile.Evacuated = result.Evacuated

	logger := r.Logger
	if logger == nil {
		logger = defaultLogger
	}
	logger.Log(telemetry.Record{
		ProcessID:      r.ProcessID,
		CollectionKind: r.CollectionType.String(),
		Total:          r.Profile.TotalDuration(),
		Prepare:        r.Profile.PrepareDuration(),
		Trace:          r.Profile.TraceDuration(),
		Reclaim:        r.Profile.ReclaimDuration(),
		Finalize:       r.Profile.FinalizeDuration(),
		Suspended:      r.Profile.SuspendedDuration(),
		Marked:         r.Profile.Marked,
		Promoted:       r.Profile.Promoted,
		Evacuated:      r.Profile.Evacuated,
	})
}

var defaultLogger = telemetry.NewLogger("gc: ")
