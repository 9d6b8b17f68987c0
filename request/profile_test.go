package request

import (
	"testing"
	"time"

	"github.com/nyxvm/corevm/collector"
)

var _ collector.PhaseTimer = (*Profile)(nil)

func TestProfilePhaseDurationsAccumulateIndependently(t *testing.T) {
	p := NewProfile(HeapYoung)

	p.StartPrepare()
	time.Sleep(time.Millisecond)
	p.StopPrepare()

	p.StartTrace()
	time.Sleep(time.Millisecond)
	p.StopTrace()

	p.StartReclaim()
	time.Sleep(time.Millisecond)
	p.StopReclaim()

	p.StartFinalize()
	time.Sleep(time.Millisecond)
	p.StopFinalize()

	if p.PrepareDuration() <= 0 {
		t.Fatalf("expected a nonzero prepare duration")
	}
	if p.TraceDuration() <= 0 {
		t.Fatalf("expected a nonzero trace duration")
	}
	if p.ReclaimDuration() <= 0 {
		t.Fatalf("expected a nonzero reclaim duration")
	}
	if p.FinalizeDuration() <= 0 {
		t.Fatalf("expected a nonzero finalize duration")
	}
	if p.SuspendedDuration() != 0 {
		t.Fatalf("expected suspended duration to stay zero when never started")
	}
}

func TestProfileSurvivalRatio(t *testing.T) {
	p := NewProfile(HeapFull)
	p.Marked = 3
	p.Promoted = 1
	p.Evacuated = 1

	if got := p.SurvivalRatio(10); got != 0.5 {
		t.Fatalf("expected survival ratio 0.5, got %v", got)
	}
	if got := p.SurvivalRatio(0); got != 0 {
		t.Fatalf("expected survival ratio 0 when nothing was scanned, got %v", got)
	}
}
