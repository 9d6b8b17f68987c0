// Package local implements the process-local heap: an eden bucket plus
// three rotating young survivors, one mature bucket, and the remembered
// set the write barrier feeds.
package local

import (
	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/bucket"
	"github.com/nyxvm/corevm/config"
	"github.com/nyxvm/corevm/copyobj"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/object"
)

// YoungGenerationSize is the number of buckets in the young generation: one
// eden plus three survivors, per spec.md §4.5.
const YoungGenerationSize = 4

// Allocator is a process's local heap. It implements object.Heap, giving
// package copyobj a uniform target for both fresh allocation and deep
// copy/move traversal.
type Allocator struct {
	global *galloc.GlobalAllocator
	cfg    *config.Config

	youngGeneration [YoungGenerationSize]*bucket.Bucket
	edenIndex       int
	matureGeneration *bucket.Bucket

	remembered []object.Pointer

	youngAllocated  int64
	matureAllocated int64

	youngThreshold  int64
	matureThreshold int64
}

// New builds a fresh LocalAllocator, taking an eden block from the global
// allocator right away exactly as the original's LocalAllocator::new does.
// cfg is always required (resolving spec.md §9's Open Question on whether
// LocalAllocator::new should take a config parameter): every process must
// be able to answer "what are my thresholds" independent of global state.
func New(global *galloc.GlobalAllocator, cfg *config.Config) (*Allocator, error) {
	a := &Allocator{
		global:          global,
		cfg:             cfg,
		youngThreshold:  cfg.YoungThreshold,
		matureThreshold: cfg.MatureThreshold,
	}

	a.youngGeneration[0] = bucket.WithAge(0)
	a.youngGeneration[1] = bucket.WithAge(-1)
	a.youngGeneration[2] = bucket.WithAge(-2)
	a.youngGeneration[3] = bucket.WithAge(-3)
	a.edenIndex = 0
	a.matureGeneration = bucket.New()

	edenBlock, _, err := global.RequestBlock()
	if err != nil {
		return nil, err
	}
	edenBlock.SetGeneration(object.GenYoung)
	a.edenSpace().AddBlock(edenBlock)

	return a, nil
}

// edenSpace returns the bucket currently playing the eden role.
func (a *Allocator) edenSpace() *bucket.Bucket { return a.youngGeneration[a.edenIndex] }

// MatureGeneration returns the mature bucket.
func (a *Allocator) MatureGeneration() *bucket.Bucket { return a.matureGeneration }

// YoungGeneration returns all four young buckets (eden first is not
// guaranteed; use EdenSpace to find the current eden).
func (a *Allocator) YoungGeneration() [YoungGenerationSize]*bucket.Bucket {
	return a.youngGeneration
}

// EdenSpace exposes the current eden bucket for the collector's root scan.
func (a *Allocator) EdenSpace() *bucket.Bucket { return a.edenSpace() }

// Global exposes the global allocator backing this process's heap, so the
// collector's reclaim phase can return freed blocks to the shared pool.
func (a *Allocator) Global() *galloc.GlobalAllocator { return a.global }

// ReturnBlocks resets and returns every block owned by every bucket back
// to the global allocator, used when a process exits.
func (a *Allocator) ReturnBlocks() {
	var blocks []*block.Block

	for _, b := range a.youngGeneration {
		blocks = append(blocks, b.DrainBlocks()...)
	}
	blocks = append(blocks, a.matureGeneration.DrainBlocks()...)

	for _, blk := range blocks {
		blk.Reset()
	}
	a.global.AddBlocks(blocks)
}

// AllocateEmpty allocates a fresh None-valued object into eden.
func (a *Allocator) AllocateEmpty() object.Pointer {
	return a.AllocateWithoutPrototype(object.None{})
}

// AllocateWithoutPrototype allocates value into eden with no prototype.
func (a *Allocator) AllocateWithoutPrototype(value object.Value) object.Pointer {
	return a.allocateEden(object.New(value))
}

// AllocateWithPrototype allocates value into eden with the given
// prototype.
func (a *Allocator) AllocateWithPrototype(value object.Value, proto object.Pointer) object.Pointer {
	return a.allocateEden(object.WithPrototype(value, proto))
}

// AllocateMature allocates obj directly into the mature bucket. Used only
// for promotions and for values the caller already knows will outlive a
// young cycle.
func (a *Allocator) AllocateMature(obj object.Object) object.Pointer {
	return a.allocateInto(a.matureGeneration, obj, &a.matureAllocated)
}

func (a *Allocator) allocateEden(obj object.Object) object.Pointer {
	return a.allocateInto(a.edenSpace(), obj, &a.youngAllocated)
}

func (a *Allocator) allocateInto(b *bucket.Bucket, obj object.Object, counter *int64) object.Pointer {
	if p, ok := b.BumpAllocate(obj, false); ok {
		*counter += objectByteSize
		return p
	}

	blk, _, err := a.global.RequestBlock()
	if err != nil {
		panic("local: out of memory requesting a block from the global allocator")
	}
	if b == a.matureGeneration {
		blk.SetGeneration(object.GenMature)
	} else {
		blk.SetGeneration(object.GenYoung)
	}
	b.AddBlock(blk)

	p, ok := b.BumpAllocate(obj, false)
	if !ok {
		panic("local: bump allocation failed immediately after adding a fresh block")
	}
	*counter += objectByteSize
	return p
}

// objectByteSize approximates the bytes charged against a threshold per
// allocation; every slot is a fixed 32 bytes regardless of the value's
// logical size; see SPEC_FULL.md §4.5.
const objectByteSize = 32

// AllocateCopy implements object.Heap: a deep copy/move destination always
// lands in eden, exactly like a fresh allocation.
func (a *Allocator) AllocateCopy(obj object.Object) object.Pointer {
	return a.allocateEden(obj)
}

// CopyPointer implements object.Heap by delegating to package copyobj's
// shared recursive traversal.
func (a *Allocator) CopyPointer(p object.Pointer) object.Pointer {
	return copyobj.CopyObject(a, p)
}

// MovePointer implements object.Heap by delegating to package copyobj's
// shared recursive traversal.
func (a *Allocator) MovePointer(p object.Pointer) object.Pointer {
	return copyobj.MoveObject(a, p)
}

var _ object.Heap = (*Allocator)(nil)

// IncrementYoungAges ages every young bucket by one cycle. A bucket that
// already sits at the configured max age when this is called is reset to
// age 0 and becomes the new eden instead of being incremented, so a bucket
// spends one full cycle at the max age before it is rotated.
func (a *Allocator) IncrementYoungAges() {
	maxAge := a.cfg.YoungMaxAge

	for index, b := range a.youngGeneration {
		if b.Age() == maxAge {
			b.ResetAge()
			a.edenIndex = index
		} else {
			b.IncrementAge()
		}
	}
}

// ShouldCollectYoung reports whether the young generation's allocation
// counter has crossed its threshold.
func (a *Allocator) ShouldCollectYoung() bool { return a.youngAllocated >= a.youngThreshold }

// ShouldCollectMature reports whether the mature generation's allocation
// counter has crossed its threshold.
func (a *Allocator) ShouldCollectMature() bool { return a.matureAllocated >= a.matureThreshold }

// ResetYoungCounter zeroes the young allocation counter after a cycle.
func (a *Allocator) ResetYoungCounter() { a.youngAllocated = 0 }

// ResetMatureCounter zeroes the mature allocation counter after a cycle.
func (a *Allocator) ResetMatureCounter() { a.matureAllocated = 0 }

// AdjustThresholds implements the threshold-growth policy resolving
// spec.md §9's Open Question: when a cycle's survival ratio (bytes marked
// over bytes scanned) exceeds Config.HeapGrowthBound, the relevant
// threshold is multiplied by Config.HeapGrowthFactor; otherwise it is left
// unchanged. young selects which generation's threshold to adjust.
func (a *Allocator) AdjustThresholds(young bool, survivalRatio float64) {
	if survivalRatio <= a.cfg.HeapGrowthBound {
		return
	}

	if young {
		a.youngThreshold = int64(float64(a.youngThreshold) * a.cfg.HeapGrowthFactor)
	} else {
		a.matureThreshold = int64(float64(a.matureThreshold) * a.cfg.HeapGrowthFactor)
	}
}

// Remember adds p to the remembered set if it is not already present,
// using the per-object remembered bit stored in its owning block
// (resolving spec.md §9's remembered-set-deduplication Open Question) so
// repeated writes to the same mature object don't grow the set unbounded.
func (a *Allocator) Remember(p object.Pointer) {
	if p.IsNull() || p.IsTaggedInteger() || p.IsPermanent() {
		return
	}
	if p.IsRemembered() {
		return
	}
	p.SetRemembered()
	a.remembered = append(a.remembered, p)
}

// RememberedSet returns the pointers currently in the remembered set.
func (a *Allocator) RememberedSet() []object.Pointer { return a.remembered }

// ClearRememberedSet drops every pointer's remembered bit and empties the
// set, done once a collection has traced it.
func (a *Allocator) ClearRememberedSet() {
	for _, p := range a.remembered {
		p.ClearRemembered()
	}
	a.remembered = a.remembered[:0]
}
