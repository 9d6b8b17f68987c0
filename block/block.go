// Package block implements the Immix block allocator: a 32 KiB,
// 32 KiB-aligned region divided into 256 lines of 128 bytes, bump-allocated
// a 32-byte object slot at a time, with hole finding, per-pointer index
// recovery, and a finalization state machine bridging the mutator and a
// separate finalizer worker.
package block

import (
	"sync"

	"github.com/nyxvm/corevm/arena"
	"github.com/nyxvm/corevm/bitmap"
	"github.com/nyxvm/corevm/layout"
	"github.com/nyxvm/corevm/object"
)

// Owner identifies who currently owns a block, mirroring the original's
// raw `*mut Bucket` back-reference via an opaque handle instead (any type
// the owning bucket chooses, typically its own *Bucket — block stays
// ignorant of bucket's concrete type to avoid an import cycle).
type Owner interface{}

// Block is a single 32 KiB region of the Immix heap.
type Block struct {
	region *arena.Region

	slots [layout.ObjectsPerBlock]object.Object

	free uint32 // next free slot index
	end  uint32 // one past the last allocatable slot index (a hole boundary)

	owner      Owner
	generation object.Generation
	holes      int
	fragmented bool
	next       *Block

	finalizing int32 // atomic bool: 0 = idle, 1 = scheduled/running

	usedLines      *bitmap.LineMap
	markedObjects  *bitmap.ObjectMap
	finalizeMap    *bitmap.ObjectMap
	rememberedMap  *bitmap.ObjectMap // per-object "remembered" bit (§9 dedup resolution)
	pendingMu      sync.Mutex
	pendingMap     *bitmap.ObjectMap
}

// New allocates a fresh block backed by a freshly mmap'd 32 KiB aligned
// arena region.
func New() (*Block, error) {
	region, err := arena.New(layout.BlockSize, layout.BlockAlign)
	if err != nil {
		return nil, err
	}

	b := &Block{
		region:        region,
		free:          layout.ObjectStartSlot,
		end:           layout.ObjectsPerBlock,
		holes:         1,
		usedLines:     bitmap.NewLineMap(),
		markedObjects: bitmap.NewObjectMap(),
		finalizeMap:   bitmap.NewObjectMap(),
		rememberedMap: bitmap.NewObjectMap(),
		pendingMap:    bitmap.NewObjectMap(),
	}

	object.Register(region.Base, b)

	return b, nil
}

// Close releases the block's backing memory. Any pending finalization is
// drained first, mirroring the original's Drop impl.
func (b *Block) Close() error {
	b.FinalizePending()
	object.Unregister(b.region.Base)
	return b.region.Close()
}

// Base returns the block's aligned base address.
func (b *Block) Base() uintptr { return b.region.Base }

// --- object.Owner -----------------------------------------------------

func (b *Block) Slot(index uint32) *object.Object { return &b.slots[index] }

func (b *Block) MarkObject(index uint32) {
	b.markedObjects.Set(uint(index))
	b.usedLines.Set(uint(lineOf(index)))
}

func (b *Block) IsObjectMarked(index uint32) bool { return b.markedObjects.IsSet(uint(index)) }

func (b *Block) MarkForFinalization(index uint32) { b.finalizeMap.Set(uint(index)) }

func (b *Block) UnmarkForFinalization(index uint32) { b.finalizeMap.Unset(uint(index)) }

func (b *Block) IsFinalizeSet(index uint32) bool { return b.finalizeMap.IsSet(uint(index)) }

func (b *Block) Generation() object.Generation { return b.generation }

var _ object.Owner = (*Block)(nil)

// --- remembered-set support --------------------------------------------

// IsRemembered reports whether slot index has already been added to the
// remembered set, giving LocalAllocator.Remember an O(1) dedup check.
func (b *Block) IsRemembered(index uint32) bool { return b.rememberedMap.IsSet(uint(index)) }

// SetRemembered flags slot index as remembered.
func (b *Block) SetRemembered(index uint32) { b.rememberedMap.Set(uint(index)) }

// ClearRemembered drops the remembered flag (done when a collection has
// traced the remembered set and clears it).
func (b *Block) ClearRemembered(index uint32) { b.rememberedMap.Unset(uint(index)) }

func lineOf(objectIndex uint32) uint32 {
	return objectIndex / layout.ObjectsPerLine
}

// --- ownership / generation ---------------------------------------------

func (b *Block) SetOwner(o Owner)                       { b.owner = o }
func (b *Block) Owner() Owner                           { return b.owner }
func (b *Block) SetGeneration(g object.Generation)       { b.generation = g }
func (b *Block) SetFragmented()                         { b.fragmented = true }
func (b *Block) IsFragmented() bool                     { return b.fragmented }
func (b *Block) Holes() int                              { return b.holes }
func (b *Block) SetNext(n *Block)                        { b.next = n }
func (b *Block) Next() *Block                            { return b.next }

// IsEmpty reports whether every line in the block is unused.
func (b *Block) IsEmpty() bool { return b.usedLines.IsEmpty() }
