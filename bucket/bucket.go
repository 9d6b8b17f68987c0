// Package bucket implements a generation/age compartment of Immix blocks:
// an intrusive singly-linked block list, a bump-allocation cursor, and the
// fragmentation scan that flags blocks for evacuation during collection.
package bucket

import (
	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/layout"
	"github.com/nyxvm/corevm/object"
)

// FragmentationHoleThreshold is the hole count above which a block is
// flagged fragmented during a collection's prepare phase. The original
// drives this from a running histogram of hole counts across the bucket;
// we simplify to a fixed fraction of the maximum possible hole count,
// which is cheaper to maintain and produces the same "highly fragmented"
// classification spec.md §4.3 asks for without needing cross-block state.
const FragmentationHoleThreshold = layout.MaxHoles / 2

// Bucket owns a linked list of blocks for one generation/age compartment
// (eden, a young survivor, or mature) plus the age counter used to cycle
// young buckets.
type Bucket struct {
	blocks  *block.Block // head of the intrusive list
	current *block.Block // allocation cursor

	age int

	evacuated int
	promoted  int
}

// New returns an empty bucket with age 0 (the mature bucket's age is never
// inspected, so 0 is as good as any default).
func New() *Bucket { return &Bucket{} }

// WithAge returns an empty bucket with the given initial age, used to seed
// the young generation's eden (age 0) and its three survivors (-1, -2, -3).
func WithAge(age int) *Bucket { return &Bucket{age: age} }

// Age returns the bucket's current age.
func (b *Bucket) Age() int { return b.age }

// IncrementAge bumps the bucket's age by one young cycle.
func (b *Bucket) IncrementAge() { b.age++ }

// ResetAge zeroes the bucket's age, used when a survivor ages out and
// becomes the new eden.
func (b *Bucket) ResetAge() { b.age = 0 }

// AddBlock prepends blk to the bucket's block list and makes it the
// current allocation cursor.
func (b *Bucket) AddBlock(blk *block.Block) {
	blk.SetOwner(b)
	blk.SetNext(b.blocks)
	b.blocks = blk
	b.current = blk
}

// Blocks calls fn for every block currently owned by this bucket.
func (b *Bucket) Blocks(fn func(*block.Block)) {
	for blk := b.blocks; blk != nil; blk = blk.Next() {
		fn(blk)
	}
}

// FirstAvailableBlock returns a block with room for another allocation,
// preferring the current cursor and falling back to a scan of the list if
// the cursor block is exhausted.
func (b *Bucket) FirstAvailableBlock() *block.Block {
	if b.current != nil && b.current.IsAvailableForAllocation() {
		return b.current
	}

	for blk := b.blocks; blk != nil; blk = blk.Next() {
		if blk.IsAvailableForAllocation() {
			b.current = blk
			return blk
		}
	}

	return nil
}

// BumpAllocate allocates obj into the first available block, returning the
// new pointer and whether a block was available at all. A false second
// return means the caller must request a fresh block from the global
// allocator and retry via AddBlock.
func (b *Bucket) BumpAllocate(obj object.Object, permanent bool) (object.Pointer, bool) {
	blk := b.FirstAvailableBlock()
	if blk == nil {
		return object.Pointer{}, false
	}
	return blk.BumpAllocate(obj, permanent), true
}

// DrainBlocks detaches and returns every block owned by this bucket,
// leaving it empty. Used when returning a process's blocks to the global
// allocator on process exit.
func (b *Bucket) DrainBlocks() []*block.Block {
	var drained []*block.Block
	for blk := b.blocks; blk != nil; {
		next := blk.Next()
		blk.SetNext(nil)
		drained = append(drained, blk)
		blk = next
	}
	b.blocks = nil
	b.current = nil
	return drained
}

// Reclaim removes every block for which shouldReclaim returns true from the
// bucket's list, returning the removed blocks. The allocation cursor is
// cleared if it was among them, forcing the next allocation to rescan for
// an available block.
func (b *Bucket) Reclaim(shouldReclaim func(*block.Block) bool) []*block.Block {
	var kept *block.Block
	var keptTail *block.Block
	var reclaimed []*block.Block

	for blk := b.blocks; blk != nil; {
		next := blk.Next()
		blk.SetNext(nil)

		if shouldReclaim(blk) {
			if b.current == blk {
				b.current = nil
			}
			reclaimed = append(reclaimed, blk)
		} else if keptTail == nil {
			kept = blk
			keptTail = blk
		} else {
			keptTail.SetNext(blk)
			keptTail = blk
		}

		blk = next
	}

	b.blocks = kept
	return reclaimed
}

// PrepareForCollection swaps every owned block's line-mark polarity and
// resets its object marks, readying the bucket for a fresh trace.
func (b *Bucket) PrepareForCollection() {
	b.Blocks(func(blk *block.Block) { blk.PrepareForCollection() })
}

// ScanFragmentation recomputes each block's hole count and flags blocks
// whose hole count exceeds FragmentationHoleThreshold as fragmented,
// returning the list of newly fragmented blocks so the collector can
// schedule them for evacuation.
func (b *Bucket) ScanFragmentation() []*block.Block {
	var fragmented []*block.Block

	b.Blocks(func(blk *block.Block) {
		holes := blk.UpdateHoleCount()
		if holes > FragmentationHoleThreshold {
			blk.SetFragmented()
			fragmented = append(fragmented, blk)
		}
	})

	return fragmented
}

// RecordEvacuation increments the bucket's evacuated-object counter.
func (b *Bucket) RecordEvacuation() { b.evacuated++ }

// RecordPromotion increments the bucket's promoted-object counter.
func (b *Bucket) RecordPromotion() { b.promoted++ }

// Evacuated returns the number of objects evacuated out of this bucket
// since the last counter reset.
func (b *Bucket) Evacuated() int { return b.evacuated }

// Promoted returns the number of objects promoted out of this bucket since
// the last counter reset.
func (b *Bucket) Promoted() int { return b.promoted }

// ResetCounters zeroes the evacuated/promoted counters, called once a
// collection cycle's statistics have been reported.
func (b *Bucket) ResetCounters() {
	b.evacuated = 0
	b.promoted = 0
}
