// Package mailbox implements a process's mailbox heap: a single bucket of
// blocks receiving deep copies of messages sent by other processes, plus
// the ordered queue of pending messages and the write lock serializing
// concurrent senders.
package mailbox

import (
	"sync"

	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/bucket"
	"github.com/nyxvm/corevm/copyobj"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/object"
)

// Allocator is the mailbox's own heap: a single bucket, same block
// discipline as local.Allocator's mature bucket (spec.md §4.6), but
// collected on the mailbox's own schedule rather than alongside the
// process heap.
type Allocator struct {
	global    *galloc.GlobalAllocator
	bucket    *bucket.Bucket
	allocated int64
	threshold int64
}

// NewAllocator builds a mailbox allocator with one block leased from
// global right away.
func NewAllocator(global *galloc.GlobalAllocator, threshold int64) (*Allocator, error) {
	a := &Allocator{global: global, bucket: bucket.New(), threshold: threshold}

	blk, _, err := global.RequestBlock()
	if err != nil {
		return nil, err
	}
	a.bucket.AddBlock(blk)

	return a, nil
}

// AllocateCopy implements object.Heap.
func (a *Allocator) AllocateCopy(obj object.Object) object.Pointer {
	if p, ok := a.bucket.BumpAllocate(obj, false); ok {
		a.allocated += 32
		return p
	}

	blk, _, err := a.global.RequestBlock()
	if err != nil {
		panic("mailbox: out of memory requesting a block from the global allocator")
	}
	a.bucket.AddBlock(blk)

	p, ok := a.bucket.BumpAllocate(obj, false)
	if !ok {
		panic("mailbox: bump allocation failed immediately after adding a fresh block")
	}
	a.allocated += 32
	return p
}

// CopyPointer implements object.Heap.
func (a *Allocator) CopyPointer(p object.Pointer) object.Pointer { return copyobj.CopyObject(a, p) }

// MovePointer implements object.Heap.
func (a *Allocator) MovePointer(p object.Pointer) object.Pointer { return copyobj.MoveObject(a, p) }

var _ object.Heap = (*Allocator)(nil)

// PrepareForCollection swaps line-mark polarity and resets object marks
// across every block in the mailbox bucket, and reports whether any block
// is fragmented enough to require the moving trace variant.
func (a *Allocator) PrepareForCollection() (moveObjects bool) {
	a.bucket.PrepareForCollection()
	return len(a.bucket.ScanFragmentation()) > 0
}

// ReclaimBlocks resets and returns every fully-unmarked block to the
// global pool. The caller is responsible for having traced first so
// IsEmpty reflects the just-completed cycle's marks.
func (a *Allocator) ReclaimBlocks() {
	freed := a.bucket.Reclaim(func(blk *block.Block) bool { return blk.IsEmpty() })
	for _, blk := range freed {
		blk.Reset()
	}
	a.global.AddBlocks(freed)
}

// ShouldCollect reports whether the mailbox's allocation counter has
// crossed its configured threshold.
func (a *Allocator) ShouldCollect() bool { return a.allocated >= a.threshold }

// ResetCounter zeroes the allocation counter after a collection cycle.
func (a *Allocator) ResetCounter() { a.allocated = 0 }

// Bucket exposes the mailbox's single bucket for the collector's trace and
// reclaim phases.
func (a *Allocator) Bucket() *bucket.Bucket { return a.bucket }

// entry is one queued message, tagged with whether it arrived from another
// process (and therefore lives on this mailbox's heap, requiring a move off
// it on receive) or from the owning process itself (and therefore still
// lives on the process's local heap, where the receiver can use it as is).
type entry struct {
	pointer      object.Pointer
	fromExternal bool
}

// Mailbox owns the mailbox allocator, the ordered pending-message queue,
// and the write lock serializing concurrent senders — mirroring the
// original's single Mutex guarding both the allocator and the queue.
type Mailbox struct {
	Allocator *Allocator

	writeLock sync.Mutex
	queue     []entry

	// External retains every externally-sent pointer for as long as it is
	// queued, matching the original's `external` list used by the mailbox
	// collector's root scan.
	External []object.Pointer
}

// New builds an empty mailbox.
func New(global *galloc.GlobalAllocator, threshold int64) (*Mailbox, error) {
	alloc, err := NewAllocator(global, threshold)
	if err != nil {
		return nil, err
	}
	return &Mailbox{Allocator: alloc}, nil
}

// SendFromSelf enqueues a message the owning process sent to itself. The
// pointer already lives on the process's own heap, so no copy is needed.
func (m *Mailbox) SendFromSelf(p object.Pointer) {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	m.queue = append(m.queue, entry{pointer: p, fromExternal: false})
}

// SendFromExternal deep-copies message onto the mailbox heap and enqueues
// it, serialized by the write lock against the mailbox collector and any
// other concurrent sender.
func (m *Mailbox) SendFromExternal(message object.Pointer) {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	copy := copyobj.CopyObject(m.Allocator, message)
	m.External = append(m.External, copy)
	m.queue = append(m.queue, entry{pointer: copy, fromExternal: true})
}

// Receive pops the oldest queued message, reporting whether the caller
// must move it off the mailbox heap (true for externally-sent messages,
// since leaving it there risks the mailbox collector reclaiming it later).
func (m *Mailbox) Receive() (p object.Pointer, shouldMove bool, ok bool) {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	if len(m.queue) == 0 {
		return object.Pointer{}, false, false
	}

	head := m.queue[0]
	m.queue = m.queue[1:]

	if head.fromExternal {
		for i, e := range m.External {
			if e.Equal(head.pointer) {
				m.External = append(m.External[:i], m.External[i+1:]...)
				break
			}
		}
	}

	return head.pointer, head.fromExternal, true
}

// HasMessages reports whether the mailbox has any pending message.
func (m *Mailbox) HasMessages() bool {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	return len(m.queue) > 0
}

// MailboxPointers returns every pointer the mailbox collector's root scan
// must trace: every externally-sent object still queued or otherwise
// reachable from the mailbox heap.
func (m *Mailbox) MailboxPointers() []object.Pointer {
	m.writeLock.Lock()
	defer m.writeLock.Unlock()

	out := make([]object.Pointer, len(m.External))
	copy(out, m.External)
	return out
}

// Lock acquires the mailbox's write lock for the duration of a collection
// cycle, matching the original's `mailbox.write_lock.lock()`.
func (m *Mailbox) Lock() { m.writeLock.Lock() }

// Unlock releases the write lock acquired by Lock.
func (m *Mailbox) Unlock() { m.writeLock.Unlock() }
