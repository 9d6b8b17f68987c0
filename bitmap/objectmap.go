package bitmap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/nyxvm/corevm/layout"
)

// ObjectMap tracks which of a block's 1024 object slots are live. Unlike
// LineMap it has no rotating polarity: every collection cycle resets it
// outright before tracing re-marks reachable slots.
type ObjectMap struct {
	bits *bitset.BitSet
}

// NewObjectMap returns a zeroed ObjectMap.
func NewObjectMap() *ObjectMap {
	return &ObjectMap{bits: bitset.New(layout.ObjectsPerBlock)}
}

func (m *ObjectMap) Set(i uint) { m.bits.Set(i) }

func (m *ObjectMap) Unset(i uint) { m.bits.Clear(i) }

func (m *ObjectMap) IsSet(i uint) bool { return m.bits.Test(i) }

func (m *ObjectMap) Reset() { m.bits.ClearAll() }

func (m *ObjectMap) IsEmpty() bool { return m.bits.None() }

func (m *ObjectMap) Len() uint { return m.bits.Count() }

var _ Bits = (*ObjectMap)(nil)
