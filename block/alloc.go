package block

import (
	"github.com/nyxvm/corevm/layout"
	"github.com/nyxvm/corevm/object"
)

// BumpAllocate writes obj into the next free slot and returns a pointer to
// it. If the block was scheduled for finalization, pending finalizers are
// drained first — simpler than threading an extra check into every future
// allocation, per the original's bump_allocate.
func (b *Block) BumpAllocate(obj object.Object, permanent bool) object.Pointer {
	if b.IsFinalizing() {
		b.FinalizePending()
	}

	slot := b.free
	b.slots[slot] = obj
	b.free++

	p := object.FromSlot(b.region.Base, slot, permanent)

	if obj.RequiresFinalization() {
		p.MarkForFinalization()
	}

	return p
}

// CanBumpAllocate reports whether the current free/end window still has
// room for another object.
func (b *Block) CanBumpAllocate() bool { return b.free < b.end }

// IsAvailableForAllocation reports whether an object can be allocated into
// this block, searching for the next hole if the current window is
// exhausted.
func (b *Block) IsAvailableForAllocation() bool {
	if b.CanBumpAllocate() {
		return true
	}
	b.FindAvailableHole()
	return b.CanBumpAllocate()
}

// LineIndexOfPointer returns the line index pointer p falls into, relative
// to this block.
func (b *Block) LineIndexOfPointer(p object.Pointer) uint32 {
	return p.SlotIndex() / layout.ObjectsPerLine
}

// ObjectIndexOfPointer returns the object slot index pointer p addresses.
func (b *Block) ObjectIndexOfPointer(p object.Pointer) uint32 {
	return p.SlotIndex()
}

// Recycle rewinds the free/end window to the first hole at or after the
// first allocatable line, readying a reclaimed block for reuse.
func (b *Block) Recycle() {
	b.findAvailableHoleStartingAt(layout.LineStartSlot)
}

// FindAvailableHole advances the free/end window to the next run of unused
// lines at or after the current free pointer.
func (b *Block) FindAvailableHole() {
	if b.free == layout.ObjectsPerBlock {
		return
	}
	line := b.free / layout.ObjectsPerLine
	b.findAvailableHoleStartingAt(line)
}

func (b *Block) findAvailableHoleStartingAt(startLine uint32) {
	startSet := false
	stopSet := false

	for line := startLine; line < layout.LinesPerBlock; line++ {
		if startSet && stopSet {
			break
		}

		slot := line * layout.ObjectsPerLine

		if !b.usedLines.IsSet(uint(line)) && !startSet {
			b.free = slot
			startSet = true
		}

		if startSet && !stopSet && b.usedLines.IsSet(uint(line)) {
			b.end = slot
			stopSet = true
		}
	}

	if !stopSet {
		b.end = layout.ObjectsPerBlock
	}
}

// MarkedLinesCount returns the number of lines currently flagged as used.
func (b *Block) MarkedLinesCount() int { return int(b.usedLines.Len()) }

// AvailableLinesCount returns the number of lines still available for
// allocation, excluding the reserved header line.
func (b *Block) AvailableLinesCount() int {
	return (layout.LinesPerBlock - 1) - b.MarkedLinesCount()
}
