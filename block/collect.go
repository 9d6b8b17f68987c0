package block

import "github.com/nyxvm/corevm/layout"

// PrepareForCollection flips the line map's mark polarity and clears the
// object mark bitmap, readying the block for a fresh trace.
func (b *Block) PrepareForCollection() {
	b.usedLines.SwapMarkValue()
	b.markedObjects.Reset()
}

// UpdateLineMap drops the previous cycle's line marks once tracing has
// completed and the current cycle's marks are authoritative.
func (b *Block) UpdateLineMap() {
	b.usedLines.ResetPreviousMarks()
}

// UpdateHoleCount recomputes and stores the number of holes (runs of
// consecutive unused lines) in this block, returning the new count.
func (b *Block) UpdateHoleCount() int {
	inHole := false
	holes := 0

	for index := uint32(layout.LineStartSlot); index < layout.LinesPerBlock; index++ {
		isSet := b.usedLines.IsSet(uint(index))

		switch {
		case inHole && isSet:
			inHole = false
		case !inHole && !isSet:
			inHole = true
			holes++
		}
	}

	b.holes = holes
	return holes
}

// Reset restores the block to a pristine, reusable state. Allocated
// objects are not released or finalized automatically — callers that need
// that must call Finalize first.
func (b *Block) Reset() {
	b.fragmented = false
	b.holes = 1
	b.owner = nil

	b.free = layout.ObjectStartSlot
	b.end = layout.ObjectsPerBlock

	b.ResetMarkBitmaps()

	// The pending finalization bitmap is not reset here: it is drained
	// automatically during finalization/allocation.
	b.finalizeMap.Reset()
	b.rememberedMap.Reset()
}

// ResetMarkBitmaps clears both the line-use and object-mark bitmaps.
func (b *Block) ResetMarkBitmaps() {
	b.usedLines.Reset()
	b.markedObjects.Reset()
}
