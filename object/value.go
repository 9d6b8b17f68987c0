package object

import (
	"github.com/holiman/uint256"
)

// Value is the tagged value variant carried by an Object cell. Every
// concrete Value type below corresponds to one of the variants listed in
// spec.md §3: none, heap integer, big integer, float, string, interned
// string, array, byte array, file handle, hasher, block closure, binding
// handle. Tagged small integers never reach Value — they live entirely
// inside an ObjectPointer and never dereference the heap.
type Value interface {
	valueTag() string
}

// None is the absence of a value — the default for a freshly allocated
// empty object.
type None struct{}

func (None) valueTag() string { return "none" }

// Int is a heap-allocated integer too large to fit in a tagged pointer.
type Int struct{ N int64 }

func (Int) valueTag() string { return "integer" }

// BigInt is an arbitrary-ish precision integer backed by
// github.com/holiman/uint256, chosen for its value-copy semantics (see
// SPEC_FULL.md §3).
type BigInt struct{ N *uint256.Int }

func (BigInt) valueTag() string { return "bigint" }

// Clone returns a deep copy of the big integer.
func (b BigInt) Clone() BigInt {
	return BigInt{N: new(uint256.Int).Set(b.N)}
}

// Float is an IEEE-754 double.
type Float struct{ N float64 }

func (Float) valueTag() string { return "float" }

// Str is an owned, heap-allocated string.
type Str struct{ S string }

func (Str) valueTag() string { return "string" }

// InternedStr is a string interned in the permanent string table; copying
// it clones the Go string value (strings are immutable, so this is cheap
// and matches the "clone" semantics of every other scalar-ish variant).
type InternedStr struct{ S string }

func (InternedStr) valueTag() string { return "interned_string" }

// Array is a sequence of object pointers.
type Array struct{ Elements []Pointer }

func (Array) valueTag() string { return "array" }

// ByteArray is a sequence of raw bytes (e.g. file contents read into the
// VM).
type ByteArray struct{ Bytes []byte }

func (ByteArray) valueTag() string { return "byte_array" }

// File wraps an OS file handle. File values must never be copied across
// heaps — see ErrUncopyableValue in package copyobj.
type File struct {
	Name   string
	Handle interface{ Close() error }
}

func (File) valueTag() string { return "file" }

// fnvOffset64 and fnvPrime64 are the FNV-1a 64-bit basis and prime (see
// SPEC_FULL.md §3 for why a pack crypto library was considered and
// rejected in favor of this algorithm).
const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// Hasher wraps a running FNV-1a digest as a plain uint64, rather than
// stdlib hash/fnv's opaque hash.Hash64, so Clone can copy its state
// directly instead of re-deriving it from an already-folded sum.
type Hasher struct{ state uint64 }

func (Hasher) valueTag() string { return "hasher" }

// NewHasher returns a fresh Hasher seeded with FNV-1a's basis value.
func NewHasher() Hasher { return Hasher{state: fnvOffset64} }

// Write folds data into the running digest, FNV-1a style.
func (h *Hasher) Write(data []byte) {
	state := h.state
	for _, b := range data {
		state ^= uint64(b)
		state *= fnvPrime64
	}
	h.state = state
}

// Sum64 returns the current digest.
func (h Hasher) Sum64() uint64 { return h.state }

// Clone returns an independent copy carrying the same digest, so copying
// or moving a Hasher object preserves exactly the state it had hashed so
// far.
func (h Hasher) Clone() Hasher {
	return Hasher{state: h.state}
}

// BlockValue is a compiled-code closure: a code pointer, its captured
// binding, and the (permanent) global scope it closed over.
type BlockValue struct {
	Code         CodeRef
	Binding      BindingRef
	GlobalScope  GlobalScopeRef
}

func (BlockValue) valueTag() string { return "block" }

// BindingValue wraps a lexical frame as a first-class heap value (e.g. for
// `binding` builtins that hand a binding back to VM code).
type BindingValue struct{ Binding BindingRef }

func (BindingValue) valueTag() string { return "binding" }

// CodeRef, BindingRef and GlobalScopeRef are narrow interfaces standing in
// for the interpreter's CompiledCode/Binding/GlobalScope types, which the
// GC treats as opaque except for the copy/move operations package binding
// implements against BindingRef.
type CodeRef interface{}

type BindingRef interface {
	CloneTo(h Heap) BindingRef
	MovePointersTo(h Heap)
}

type GlobalScopeRef interface{}

// Heap is the allocator surface every heap-owning allocator (LocalAllocator,
// the mailbox allocator, the permanent allocator) implements: allocate a
// freshly-built copy on this heap, and recursively copy/move an arbitrary
// pointer onto this heap. Package copyobj provides the shared recursive
// traversal; each allocator's CopyPointer/MovePointer simply delegates to
// it, and AllocateCopy supplies the heap-specific bump-allocation target.
type Heap interface {
	AllocateCopy(Object) Pointer
	CopyPointer(Pointer) Pointer
	MovePointer(Pointer) Pointer
}
