// Package binding implements lexical scope frames: a binding holds the
// local variables visible to one call frame plus a link to its parent
// binding, and a global scope holds a module's permanent-only globals.
package binding

import "github.com/nyxvm/corevm/object"

// Binding is the local variables available to a call frame plus a link to
// the enclosing frame's binding, if any. Locals are not synchronized: like
// the original, a process's own bindings are only ever touched by the
// process itself.
type Binding struct {
	locals []object.Pointer
	parent *Binding
}

// New returns a binding with amount local variable slots and no parent.
func New(amount int) *Binding {
	return &Binding{locals: make([]object.Pointer, amount)}
}

// WithParent returns a binding with amount local variable slots, linked to
// parent.
func WithParent(parent *Binding, amount int) *Binding {
	return &Binding{locals: make([]object.Pointer, amount), parent: parent}
}

// GetLocal returns the local variable at index.
func (b *Binding) GetLocal(index int) object.Pointer { return b.locals[index] }

// SetLocal sets the local variable at index.
func (b *Binding) SetLocal(index int, value object.Pointer) { b.locals[index] = value }

// LocalExists reports whether the local variable at index has been set.
func (b *Binding) LocalExists(index int) bool { return !b.GetLocal(index).IsNull() }

// Parent returns the enclosing binding, or nil at the outermost frame.
func (b *Binding) Parent() *Binding { return b.parent }

// FindParent returns the ancestor depth+1 links up: FindParent(0) is the
// immediate parent, FindParent(1) its parent, and so on. It returns nil if
// the chain is shorter than that.
func (b *Binding) FindParent(depth int) *Binding {
	found := b.parent
	for i := 0; i < depth; i++ {
		if found == nil {
			return nil
		}
		found = found.parent
	}
	return found
}

// Locals returns the binding's local variable slots.
func (b *Binding) Locals() []object.Pointer { return b.locals }

// PushPointers appends every non-null local in this binding and its
// ancestors, child-first, to pointers — the root set a collector's trace
// phase walks for a process's live call stack.
func (b *Binding) PushPointers(pointers *[]object.Pointer) {
	for cur := b; cur != nil; cur = cur.parent {
		for _, p := range cur.locals {
			if !p.IsNull() {
				*pointers = append(*pointers, p)
			}
		}
	}
}

// CloneTo recursively copies this binding and its parent chain onto heap h,
// deep-copying every local variable via h's CopyPointer. Implements
// object.BindingRef.
func (b *Binding) CloneTo(h object.Heap) object.BindingRef {
	var parent *Binding
	if b.parent != nil {
		parent = b.parent.CloneTo(h).(*Binding)
	}

	locals := make([]object.Pointer, len(b.locals))
	for i, p := range b.locals {
		if !p.IsNull() {
			locals[i] = h.CopyPointer(p)
		}
	}

	return &Binding{locals: locals, parent: parent}
}

// MovePointersTo moves every local variable in this binding and its parent
// chain onto heap h in place, parent-first (matching the original's
// move_pointers_to, which recurses into the parent before moving its own
// locals). Implements object.BindingRef.
func (b *Binding) MovePointersTo(h object.Heap) {
	if b.parent != nil {
		b.parent.MovePointersTo(h)
	}

	for i, p := range b.locals {
		if !p.IsNull() {
			b.locals[i] = h.MovePointer(p)
		}
	}
}

var _ object.BindingRef = (*Binding)(nil)
