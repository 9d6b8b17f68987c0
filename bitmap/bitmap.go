// Package bitmap provides the fixed-size mark bitmaps used by the Immix
// block allocator: a 256-bit LineMap (one bit per line in a block) and a
// 1024-bit ObjectMap (one bit per object slot in a block).
package bitmap

import "github.com/bits-and-blooms/bitset"

// Bits is the shared read/write surface of a plain, non-rotating bitmap.
type Bits interface {
	Set(i uint)
	Unset(i uint)
	IsSet(i uint) bool
	Reset()
	IsEmpty() bool
	Len() uint
}
