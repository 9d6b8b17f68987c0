package block

import (
	"sync/atomic"

	"github.com/nyxvm/corevm/layout"
	"github.com/nyxvm/corevm/object"
)

// IsFinalizing reports whether this block currently has pending finalizers
// scheduled. Checking the atomic flag lets the mutator's hot allocation
// path avoid acquiring pendingMu in the common case.
func (b *Block) IsFinalizing() bool { return atomic.LoadInt32(&b.finalizing) == 1 }

func (b *Block) setFinalizing(v bool) {
	if v {
		atomic.StoreInt32(&b.finalizing, 1)
	} else {
		atomic.StoreInt32(&b.finalizing, 0)
	}
}

// PrepareFinalization moves every unmarked, finalize-flagged slot into the
// pending bitmap, returning true if the block has work for the finalizer
// worker pool. If another collection already left finalization pending,
// that work is drained first so the pending bitmap only ever holds
// entries from the most recent cycle.
func (b *Block) PrepareFinalization() bool {
	if b.IsFinalizing() {
		b.FinalizePending()
	}

	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	for index := uint32(layout.ObjectStartSlot); index < layout.ObjectsPerBlock; index++ {
		if !b.markedObjects.IsSet(uint(index)) && b.finalizeMap.IsSet(uint(index)) {
			b.pendingMap.Set(uint(index))
			b.finalizeMap.Unset(uint(index))
		}
	}

	if b.pendingMap.IsEmpty() {
		return false
	}

	b.setFinalizing(true)
	return true
}

// FinalizePending runs (or no-ops) the drain of every slot currently
// flagged in the pending bitmap, invoking destroy on each one. Safe to call
// concurrently with the mutator and with another finalizer racing on the
// same block — only the thread that observes is_finalizing true does work.
func (b *Block) FinalizePending() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	if !b.IsFinalizing() {
		return
	}

	for index := uint32(layout.ObjectStartSlot); index < layout.ObjectsPerBlock; index++ {
		if b.pendingMap.IsSet(uint(index)) {
			finalizeSlot(&b.slots[index])
			b.pendingMap.Unset(uint(index))
		}
	}

	b.setFinalizing(false)
}

// Finalize is the synchronous convenience path used for a full, stop-the-
// world sweep: prepare then immediately drain.
func (b *Block) Finalize() {
	b.PrepareFinalization()
	b.FinalizePending()
}

// finalizeSlot runs destructor work for a single object cell, mirroring
// drop_in_place in the original — the only variant that currently carries
// host resources is File.
func finalizeSlot(slot *object.Object) {
	if f, ok := slot.Value.(object.File); ok && f.Handle != nil {
		_ = f.Handle.Close()
	}
	slot.Value = object.None{}
	slot.Attributes = nil
}
