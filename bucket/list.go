package bucket

import "github.com/nyxvm/corevm/block"

// Iterator walks a bucket's intrusive block list one block at a time,
// mirroring the original's BlockIteratorMut.
type Iterator struct {
	next *block.Block
}

// Iter returns an iterator starting at the bucket's head block.
func (b *Bucket) Iter() *Iterator { return &Iterator{next: b.blocks} }

// Next advances the iterator, returning the next block and whether one was
// available.
func (it *Iterator) Next() (*block.Block, bool) {
	if it.next == nil {
		return nil, false
	}
	blk := it.next
	it.next = blk.Next()
	return blk, true
}
