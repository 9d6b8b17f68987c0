package local

import (
	"testing"

	"github.com/nyxvm/corevm/config"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/object"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	cfg := config.Default()
	g := galloc.New(cfg)
	a, err := New(g, &cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(a.ReturnBlocks)
	return a
}

func TestAllocateEmptyReturnsNoneObject(t *testing.T) {
	a := newTestAllocator(t)

	p := a.AllocateEmpty()
	if !p.Get().IsNone() {
		t.Fatalf("expected an empty allocation to hold None")
	}
}

func TestAllocateWithPrototype(t *testing.T) {
	a := newTestAllocator(t)

	proto := a.AllocateEmpty()
	p := a.AllocateWithPrototype(object.Float{N: 1.5}, proto)

	if !p.Get().HasPrototype() {
		t.Fatalf("expected the allocation to carry a prototype")
	}
}

func TestAllocateMatureTargetsMatureBucket(t *testing.T) {
	a := newTestAllocator(t)

	p := a.AllocateMature(object.New(object.None{}))
	if !p.IsMature() {
		t.Fatalf("expected a mature allocation to resolve as mature")
	}
}

func TestIncrementYoungAgesRotatesEden(t *testing.T) {
	a := newTestAllocator(t)

	if a.edenIndex != 0 {
		t.Fatalf("expected eden to start at index 0")
	}

	// Eden starts at age 0, so it takes YoungMaxAge+1 calls for it to age
	// out and be reset (staying at index 0); the survivor that started at
	// age -1 ages out one call later and is the first other bucket to
	// become eden.
	for i := 0; i < a.cfg.YoungMaxAge+2; i++ {
		a.IncrementYoungAges()
	}

	if a.edenIndex == 0 {
		t.Fatalf("expected a different bucket to become eden after max age cycles")
	}
	if a.edenSpace().Age() != 0 {
		t.Fatalf("expected the new eden's age to reset to 0")
	}
}

func TestRememberDedupsViaPerObjectBit(t *testing.T) {
	a := newTestAllocator(t)

	target := a.AllocateMature(object.New(object.None{}))

	a.Remember(target)
	a.Remember(target)
	a.Remember(target)

	if got := len(a.RememberedSet()); got != 1 {
		t.Fatalf("expected exactly 1 remembered entry after repeated Remember calls, got %d", got)
	}

	a.ClearRememberedSet()
	if len(a.RememberedSet()) != 0 {
		t.Fatalf("expected the remembered set to be empty after clearing")
	}
	if target.IsRemembered() {
		t.Fatalf("expected the remembered bit to be cleared")
	}
}

func TestRememberIgnoresTaggedAndNullPointers(t *testing.T) {
	a := newTestAllocator(t)

	a.Remember(object.TaggedInt(5))
	a.Remember(object.Null())

	if len(a.RememberedSet()) != 0 {
		t.Fatalf("expected tagged/null pointers to be ignored by Remember")
	}
}

func TestAdjustThresholdsGrowsOnlyAboveBound(t *testing.T) {
	a := newTestAllocator(t)

	before := a.youngThreshold
	a.AdjustThresholds(true, a.cfg.HeapGrowthBound)
	if a.youngThreshold != before {
		t.Fatalf("expected no growth at exactly the bound")
	}

	a.AdjustThresholds(true, a.cfg.HeapGrowthBound+0.01)
	if a.youngThreshold <= before {
		t.Fatalf("expected the young threshold to grow above the bound")
	}
}

func TestShouldCollectThresholds(t *testing.T) {
	a := newTestAllocator(t)
	a.youngThreshold = 32

	if a.ShouldCollectYoung() {
		t.Fatalf("expected a fresh allocator not to need a young collection")
	}

	for i := 0; i < 2; i++ {
		a.AllocateEmpty()
	}

	if !a.ShouldCollectYoung() {
		t.Fatalf("expected the young threshold to trip after enough allocations")
	}

	a.ResetYoungCounter()
	if a.ShouldCollectYoung() {
		t.Fatalf("expected the counter reset to clear the threshold trip")
	}
}

func TestCopyPointerAndMovePointerDelegateToCopyobj(t *testing.T) {
	a := newTestAllocator(t)

	p := a.AllocateWithoutPrototype(object.Int{N: 7})

	copied := a.CopyPointer(p)
	if got, ok := copied.Get().Value.(object.Int); !ok || got.N != 7 {
		t.Fatalf("expected CopyPointer to produce a deep copy holding Int(7)")
	}

	moved := a.MovePointer(p)
	if !p.Get().IsNone() {
		t.Fatalf("expected MovePointer to empty the source")
	}
	if got, ok := moved.Get().Value.(object.Int); !ok || got.N != 7 {
		t.Fatalf("expected MovePointer to produce a copy holding Int(7)")
	}
}
