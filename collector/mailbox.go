package collector

import (
	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/mailbox"
	"github.com/nyxvm/corevm/object"
)

// MailboxCollector runs a mailbox collection, identical in structure to
// the heap collector but scoped to one process's mailbox allocator, per
// spec.md §4.9. The mailbox's write lock is held for the duration of
// prepare/trace/reclaim, blocking external producers exactly as the
// original's mailbox_collector::collect does around `mailbox.write_lock`.
type MailboxCollector struct {
	Mailbox *mailbox.Mailbox
}

// NewMailboxCollector returns a collector operating on mb.
func NewMailboxCollector(mb *mailbox.Mailbox) *MailboxCollector {
	return &MailboxCollector{Mailbox: mb}
}

// Collect prepares the mailbox allocator, traces its external pointer list
// (the roots a mailbox collection cares about — internal, self-sent
// messages already live on the owning process's own heap and are rooted
// by that process's own context scan instead), and reclaims empty blocks.
// Moves are permitted when the prepare phase finds fragmentation. timer
// receives a Start/Stop pair for prepare, trace, and reclaim; mailbox
// blocks carry no finalizer work of their own, so finalize is bracketed
// as an always-empty phase for a consistent profile shape.
func (c *MailboxCollector) Collect(timer PhaseTimer) Result {
	c.Mailbox.Lock()
	defer c.Mailbox.Unlock()

	timer.StartPrepare()
	moveObjects := c.Mailbox.Allocator.PrepareForCollection()
	timer.StopPrepare()

	// External is addressed directly (not via MailboxPointers, which
	// defensively copies) so a moving trace's in-place rewrites are
	// observed by the mailbox itself.
	roots := c.Mailbox.External

	timer.StartTrace()
	var result Result
	if moveObjects {
		result = TraceMoving(roots, func(p object.Pointer) (object.Heap, MoveKind, bool) {
			return c.Mailbox.Allocator, MoveEvacuate, true
		})
	} else {
		result = TraceNonMoving(roots)
	}
	timer.StopTrace()

	timer.StartReclaim()
	c.Mailbox.Allocator.ReclaimBlocks()

	bkt := c.Mailbox.Allocator.Bucket()
	bkt.Blocks(func(blk *block.Block) {
		blk.UpdateHoleCount()
		blk.UpdateLineMap()
	})
	timer.StopReclaim()

	timer.StartFinalize()
	timer.StopFinalize()

	return result
}
