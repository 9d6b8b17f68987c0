// Package layout holds the fixed memory-layout constants shared by every
// package that carves addresses, lines, or slots out of an Immix block.
package layout

const (
	// BlockSize is the size, in bytes, of a single Immix block.
	BlockSize = 32 * 1024

	// BlockAlign is the alignment every block is carved to; block_of(p) =
	// p &^ (BlockAlign-1) recovers a block's base address.
	BlockAlign = BlockSize

	// LineSize is the size, in bytes, of a single line within a block.
	LineSize = 128

	// ObjectSize is the size, in bytes, of a single object slot.
	ObjectSize = 32

	// LinesPerBlock is the number of lines in a block.
	LinesPerBlock = BlockSize / LineSize

	// ObjectsPerBlock is the number of object slots in a block.
	ObjectsPerBlock = BlockSize / ObjectSize

	// ObjectsPerLine is the number of object slots that fit in a single line.
	ObjectsPerLine = LineSize / ObjectSize

	// ReservedLines is the number of lines reserved for the block header
	// and bitmaps overlay and therefore never available for allocation.
	ReservedLines = 1

	// LineStartSlot is the first line index objects may be allocated into.
	LineStartSlot = ReservedLines

	// ObjectStartSlot is the first object slot index objects may be
	// allocated into.
	ObjectStartSlot = LineSize / ObjectSize

	// MaxHoles is the maximum number of holes a block can have.
	MaxHoles = LinesPerBlock / 2

	// YoungMaxAgeDefault is the default maximum age a young bucket reaches
	// before it is recycled back into eden.
	YoungMaxAgeDefault = 3
)
