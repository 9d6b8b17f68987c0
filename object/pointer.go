package object

import (
	"sync"

	"github.com/nyxvm/corevm/layout"
)

// Generation identifies which compartment a block belongs to, used by
// ObjectPointer.IsYoung/IsMature.
type Generation int

const (
	GenUnknown Generation = iota
	GenYoung
	GenMature
	GenPermanent
	GenMailbox
)

// Owner is the surface a block exposes to the pointers carved out of it.
// It is implemented by package block's Block type; object stays ignorant
// of block's concrete type to avoid an import cycle (block imports object
// for the Object/Value types stored in its slots).
type Owner interface {
	Slot(index uint32) *Object
	MarkObject(index uint32)
	IsObjectMarked(index uint32) bool
	MarkForFinalization(index uint32)
	UnmarkForFinalization(index uint32)
	IsFinalizeSet(index uint32) bool
	Generation() Generation
	IsRemembered(index uint32) bool
	SetRemembered(index uint32)
	ClearRemembered(index uint32)
}

var registry sync.Map // uintptr(block base) -> Owner

// Register associates a block's base address with its Owner, so pointers
// carved out of it can resolve back to it in O(1) (the "arena-index" idiom
// spec.md §9 sanctions in place of a raw back-pointer stored in the block's
// own memory).
func Register(base uintptr, owner Owner) { registry.Store(base, owner) }

// Unregister drops a block's registry entry. Block.Close calls it when a
// block's memory is released, e.g. when the global allocator's pool is
// over its soft cap.
func Unregister(base uintptr) { registry.Delete(base) }

func lookup(base uintptr) (Owner, bool) {
	v, ok := registry.Load(base)
	if !ok {
		return nil, false
	}
	return v.(Owner), true
}

// tag occupies the two low bits of a Pointer's address, which is always at
// least 32-byte aligned (layout.ObjectSize), leaving those bits free.
type tag uintptr

const (
	tagHeap      tag = 0
	tagInt       tag = 1
	tagPermanent tag = 2
)

const tagMask uintptr = 0x3

// Pointer is a tagged pointer to an Object slot: either an inline tagged
// integer, a pointer onto the permanent heap, or a pointer onto a regular
// (young/mature/mailbox) heap block.
type Pointer struct {
	addr uintptr
}

// Null returns the null pointer.
func Null() Pointer { return Pointer{} }

// TaggedInt returns a pointer carrying v inline; it never dereferences the
// heap and never participates in tracing or finalization.
func TaggedInt(v int64) Pointer {
	return Pointer{addr: (uintptr(uint64(v)) << 2) | uintptr(tagInt)}
}

// FromSlot returns a regular heap pointer addressing slot index `slot`
// within the block whose arena base is `base`, tagged Permanent if
// permanent is true.
func FromSlot(base uintptr, slot uint32, permanent bool) Pointer {
	addr := base + uintptr(slot)*layout.ObjectSize
	if permanent {
		addr |= uintptr(tagPermanent)
	}
	return Pointer{addr: addr}
}

func (p Pointer) rawTag() tag { return tag(p.addr & tagMask) }

// IsNull reports whether this is the null pointer.
func (p Pointer) IsNull() bool { return p.addr == 0 }

// IsTaggedInteger reports whether this pointer carries an inline integer.
func (p Pointer) IsTaggedInteger() bool { return !p.IsNull() && p.rawTag() == tagInt }

// IsPermanent reports whether this pointer addresses the permanent heap.
func (p Pointer) IsPermanent() bool { return p.rawTag() == tagPermanent && !p.IsNull() }

// IntegerValue returns the inline integer value, if this is a tagged
// integer pointer.
func (p Pointer) IntegerValue() (int64, bool) {
	if !p.IsTaggedInteger() {
		return 0, false
	}
	return int64(p.addr) >> 2, true
}

func (p Pointer) blockBase() uintptr {
	return (p.addr &^ tagMask) &^ (layout.BlockAlign - 1)
}

func (p Pointer) slotIndex() uint32 {
	return uint32(((p.addr &^ tagMask) - p.blockBase()) / layout.ObjectSize)
}

// SlotIndex returns the object slot index this pointer addresses within its
// block, for use by package block's line/object index helpers.
func (p Pointer) SlotIndex() uint32 { return p.slotIndex() }

// BlockBase returns the aligned base address of the block this pointer
// addresses into, for use by package block.
func (p Pointer) BlockBase() uintptr { return p.blockBase() }

func (p Pointer) owner() (Owner, bool) {
	if p.IsNull() || p.IsTaggedInteger() {
		return nil, false
	}
	return lookup(p.blockBase())
}

// Get dereferences the pointer. It panics on a null or tagged-integer
// pointer or on a pointer whose block is unknown to the registry —
// exactly the "programming error" failure modes spec.md §7 assigns to
// out-of-range/invalid access.
func (p Pointer) Get() *Object {
	owner, ok := p.owner()
	if !ok {
		panic("object: Get called on a null, tagged-integer, or unregistered pointer")
	}
	return owner.Slot(p.slotIndex())
}

// IsYoung reports whether this pointer addresses a block in the young
// generation.
func (p Pointer) IsYoung() bool {
	owner, ok := p.owner()
	return ok && owner.Generation() == GenYoung
}

// IsMature reports whether this pointer addresses a block in the mature
// generation.
func (p Pointer) IsMature() bool {
	owner, ok := p.owner()
	return ok && owner.Generation() == GenMature
}

// IsMarked reports whether the addressed object is currently marked.
func (p Pointer) IsMarked() bool {
	owner, ok := p.owner()
	return ok && owner.IsObjectMarked(p.slotIndex())
}

// IsFinalizable reports whether the addressed object is flagged for
// finalization.
func (p Pointer) IsFinalizable() bool {
	owner, ok := p.owner()
	return ok && owner.IsFinalizeSet(p.slotIndex())
}

// Mark flips the addressed object's (and its containing line's) mark bit.
func (p Pointer) Mark() {
	if owner, ok := p.owner(); ok {
		owner.MarkObject(p.slotIndex())
	}
}

// MarkForFinalization flags the addressed object as requiring destructor
// work once it is found unmarked.
func (p Pointer) MarkForFinalization() {
	if owner, ok := p.owner(); ok {
		owner.MarkForFinalization(p.slotIndex())
	}
}

// UnmarkForFinalization clears the finalization flag, used by move_object
// once a value has been relocated away from its original cell.
func (p Pointer) UnmarkForFinalization() {
	if owner, ok := p.owner(); ok {
		owner.UnmarkForFinalization(p.slotIndex())
	}
}

// IsRemembered reports whether the addressed object is currently present
// in its owning block's remembered set.
func (p Pointer) IsRemembered() bool {
	owner, ok := p.owner()
	return ok && owner.IsRemembered(p.slotIndex())
}

// SetRemembered flags the addressed object as present in the remembered
// set.
func (p Pointer) SetRemembered() {
	if owner, ok := p.owner(); ok {
		owner.SetRemembered(p.slotIndex())
	}
}

// ClearRemembered drops the addressed object's remembered flag.
func (p Pointer) ClearRemembered() {
	if owner, ok := p.owner(); ok {
		owner.ClearRemembered(p.slotIndex())
	}
}

// Equal reports pointer identity.
func (p Pointer) Equal(o Pointer) bool { return p.addr == o.addr }
