package collector

import (
	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/bucket"
	"github.com/nyxvm/corevm/copyobj"
	"github.com/nyxvm/corevm/finalize"
	"github.com/nyxvm/corevm/local"
	"github.com/nyxvm/corevm/object"
	"github.com/nyxvm/corevm/roots"
)

// matureDestination adapts a process's local allocator into an
// object.Heap whose AllocateCopy always lands in the mature bucket, so
// copyobj's shared traversal can be reused for promotion exactly as it is
// for ordinary copy/move.
type matureDestination struct{ local *local.Allocator }

func (m matureDestination) AllocateCopy(obj object.Object) object.Pointer {
	return m.local.AllocateMature(obj)
}
func (m matureDestination) CopyPointer(p object.Pointer) object.Pointer {
	return copyobj.CopyObject(m, p)
}
func (m matureDestination) MovePointer(p object.Pointer) object.Pointer {
	return copyobj.MoveObject(m, p)
}

var _ object.Heap = matureDestination{}

// HeapCollector runs young and full collections against one process's
// local allocator, per spec.md §4.8.
type HeapCollector struct {
	Local     *local.Allocator
	Finalizer *finalize.Pool
}

// NewHeapCollector returns a collector operating on local, scheduling
// surviving blocks' finalization work onto pool.
func NewHeapCollector(local *local.Allocator, pool *finalize.Pool) *HeapCollector {
	return &HeapCollector{Local: local, Finalizer: pool}
}

// blockIndex maps a block's base address to itself, letting the collector
// resolve an object.Pointer's BlockBase() back to the *block.Block owning
// it without package object exposing a raw Owner accessor.
func blockIndex(buckets []*bucket.Bucket) map[uintptr]*block.Block {
	index := make(map[uintptr]*block.Block)
	for _, b := range buckets {
		b.Blocks(func(blk *block.Block) { index[blk.Base()] = blk })
	}
	return index
}

// CollectYoung runs a young-generation collection: every young bucket is
// prepared and scanned for fragmentation, roots are gathered from the
// execution-context stack, live mailbox pointers, and the remembered set
// (which is drained into this trace and then cleared, per spec.md §4.5),
// and the trace evacuates fragmented-block roots within young space while
// promoting roots belonging to the survivor bucket that is about to age
// out past the configured maximum. timer receives a Start/Stop pair for
// each of prepare, trace, reclaim, and finalize-scheduling.
func (c *HeapCollector) CollectYoung(provider roots.Provider, maxAge int, timer PhaseTimer) Result {
	timer.StartPrepare()
	young := c.Local.YoungGeneration()
	buckets := make([]*bucket.Bucket, 0, len(young))
	for _, b := range young {
		b.PrepareForCollection()
		buckets = append(buckets, b)
	}

	fragmented := make(map[uintptr]bool)
	for _, b := range buckets {
		for _, fb := range b.ScanFragmentation() {
			fragmented[fb.Base()] = true
		}
	}
	timer.StopPrepare()

	index := blockIndex(buckets)

	var rootPointers []object.Pointer
	provider.ContextRoots(&rootPointers)
	provider.MailboxRoots(&rootPointers)
	rootPointers = append(rootPointers, c.Local.RememberedSet()...)

	timer.StartTrace()
	result := TraceMoving(rootPointers, func(p object.Pointer) (object.Heap, MoveKind, bool) {
		if !p.IsYoung() {
			return nil, 0, false
		}
		blk, ok := index[p.BlockBase()]
		if !ok {
			return nil, 0, false
		}
		if owningBucket, ok := blk.Owner().(*bucket.Bucket); ok && owningBucket.Age() == maxAge {
			return matureDestination{local: c.Local}, MovePromote, true
		}
		if fragmented[blk.Base()] {
			return c.Local, MoveEvacuate, true
		}
		return nil, 0, false
	})
	timer.StopTrace()

	c.Local.ClearRememberedSet()
	c.reclaim(buckets, timer)
	c.Local.IncrementYoungAges()
	c.Local.ResetYoungCounter()

	return result
}

// CollectFull runs a full collection: young space as CollectYoung does,
// plus a trace of the mature bucket using the same root set (the young
// trace's survivors are already accounted for). The remembered set is not
// needed for the mature trace itself — mature objects are already roots
// in their own right via the execution-context stack — and is dropped
// after, matching spec.md §4.8's "Full" request note. timer's prepare/
// trace/reclaim/finalize brackets cover both the young pass (delegated to
// CollectYoung) and this method's own mature-generation pass.
func (c *HeapCollector) CollectFull(provider roots.Provider, maxAge int, timer PhaseTimer) Result {
	result := c.CollectYoung(provider, maxAge, timer)

	timer.StartPrepare()
	mature := c.Local.MatureGeneration()
	mature.PrepareForCollection()
	mature.ScanFragmentation()
	timer.StopPrepare()

	var rootPointers []object.Pointer
	provider.ContextRoots(&rootPointers)
	provider.MailboxRoots(&rootPointers)

	timer.StartTrace()
	traced := TraceNonMoving(rootPointers)
	timer.StopTrace()
	result.add(traced)

	c.reclaim([]*bucket.Bucket{mature}, timer)
	c.Local.ResetMatureCounter()

	return result
}

// reclaim returns every fully-unmarked block in buckets to the global
// allocator and schedules finalization for the rest, per spec.md §4.8's
// Reclaim and Finalize-scheduling steps.
func (c *HeapCollector) reclaim(buckets []*bucket.Bucket, timer PhaseTimer) {
	timer.StartReclaim()
	for _, b := range buckets {
		freed := b.Reclaim(func(blk *block.Block) bool { return blk.IsEmpty() })
		for _, blk := range freed {
			blk.Reset()
		}
		c.Local.Global().AddBlocks(freed)

		b.Blocks(func(blk *block.Block) {
			blk.UpdateHoleCount()
			blk.UpdateLineMap()
		})
	}
	timer.StopReclaim()

	timer.StartFinalize()
	if c.Finalizer != nil {
		for _, b := range buckets {
			b.Blocks(func(blk *block.Block) { c.Finalizer.Schedule(blk) })
		}
	}
	timer.StopFinalize()
}
