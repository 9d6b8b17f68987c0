package bitmap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/nyxvm/corevm/layout"
)

// LineMap tracks which of a block's 256 lines contain one or more
// reachable objects.
//
// Unlike ObjectMap, LineMap rotates polarity across collection cycles
// instead of being fully cleared: SwapMarkValue hands the "current" bitset
// to the upcoming trace while keeping the previous cycle's marks readable
// (a line marked last cycle still counts as used until ResetPreviousMarks
// explicitly drops it), avoiding an O(lines) zeroing pass on every cycle.
type LineMap struct {
	a, b   *bitset.BitSet
	curIsA bool
}

// NewLineMap returns a zeroed LineMap.
func NewLineMap() *LineMap {
	return &LineMap{
		a:      bitset.New(layout.LinesPerBlock),
		b:      bitset.New(layout.LinesPerBlock),
		curIsA: true,
	}
}

func (m *LineMap) cur() *bitset.BitSet {
	if m.curIsA {
		return m.a
	}
	return m.b
}

func (m *LineMap) prev() *bitset.BitSet {
	if m.curIsA {
		return m.b
	}
	return m.a
}

func (m *LineMap) Set(i uint) { m.cur().Set(i) }

func (m *LineMap) Unset(i uint) { m.cur().Clear(i) }

// IsSet reports whether line i is marked in either the current or the
// previous cycle's bitset.
func (m *LineMap) IsSet(i uint) bool {
	return m.cur().Test(i) || m.prev().Test(i)
}

// Reset clears both bitsets outright (used when a block is fully reset,
// not across an ordinary collection cycle).
func (m *LineMap) Reset() {
	m.a.ClearAll()
	m.b.ClearAll()
}

func (m *LineMap) IsEmpty() bool {
	return m.cur().None() && m.prev().None()
}

// Len returns the number of lines marked in either bitset.
func (m *LineMap) Len() uint {
	return m.cur().Union(m.prev()).Count()
}

// SwapMarkValue exchanges which bitset is "current": the previous cycle's
// marks remain readable via IsSet/Len until ResetPreviousMarks clears them,
// while the new current bitset starts the upcoming cycle empty.
func (m *LineMap) SwapMarkValue() {
	m.curIsA = !m.curIsA
}

// ResetPreviousMarks drops the prior cycle's marks.
func (m *LineMap) ResetPreviousMarks() {
	m.prev().ClearAll()
}

var _ Bits = (*LineMap)(nil)
