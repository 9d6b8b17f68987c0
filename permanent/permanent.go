// Package permanent implements the permanent heap: an append-only block
// bucket whose objects are never collected, used for interned strings,
// compiled code, and other values with process lifetime.
package permanent

import (
	"github.com/nyxvm/corevm/bucket"
	"github.com/nyxvm/corevm/copyobj"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/object"
)

// Allocator is the permanent heap's allocator: same block/bucket
// discipline as every other heap, but the collector never traces or
// reclaims its blocks (spec.md §4.6).
type Allocator struct {
	global *galloc.GlobalAllocator
	bucket *bucket.Bucket
}

// New builds a permanent allocator with one block leased from global.
func New(global *galloc.GlobalAllocator) (*Allocator, error) {
	a := &Allocator{global: global, bucket: bucket.New()}

	blk, _, err := global.RequestBlock()
	if err != nil {
		return nil, err
	}
	blk.SetGeneration(object.GenPermanent)
	a.bucket.AddBlock(blk)

	return a, nil
}

// AllocateCopy implements object.Heap, always producing a permanent-tagged
// pointer.
func (a *Allocator) AllocateCopy(obj object.Object) object.Pointer {
	if p, ok := a.bucket.BumpAllocate(obj, true); ok {
		return p
	}

	blk, _, err := a.global.RequestBlock()
	if err != nil {
		panic("permanent: out of memory requesting a block from the global allocator")
	}
	blk.SetGeneration(object.GenPermanent)
	a.bucket.AddBlock(blk)

	p, ok := a.bucket.BumpAllocate(obj, true)
	if !ok {
		panic("permanent: bump allocation failed immediately after adding a fresh block")
	}
	return p
}

// CopyPointer implements object.Heap: deep-copies an arbitrary pointer
// onto the permanent heap, producing a permanent-tagged result. Used when
// interning a value built on a process's local heap.
func (a *Allocator) CopyPointer(p object.Pointer) object.Pointer { return copyobj.CopyObject(a, p) }

// MovePointer implements object.Heap with the same copyobj.MoveObject
// traversal every other allocator uses: the result is a permanent-tagged
// copy and the moved source objects are emptied.
func (a *Allocator) MovePointer(p object.Pointer) object.Pointer { return copyobj.MoveObject(a, p) }

var _ object.Heap = (*Allocator)(nil)

// InternString allocates an InternedStr value on the permanent heap.
func (a *Allocator) InternString(s string) object.Pointer {
	return a.AllocateCopy(object.New(object.InternedStr{S: s}))
}
