// Package barrier implements the mutator-side write barrier: the hook
// invoked on every store of one pointer into a field of another, feeding
// the owning process's remembered set so a subsequent young collection
// knows to treat mature holders of young pointers as roots.
package barrier

import "github.com/nyxvm/corevm/object"

// remember is the narrow surface the barrier needs from a process's
// local allocator — satisfied by *local.Allocator's Remember method.
// Declared locally (rather than importing package local) so the barrier
// has no dependency beyond object, mirroring how process.rs's
// write_barrier only reaches into local_data.allocator.remember_object.
type remember interface {
	Remember(p object.Pointer)
}

// Record runs the write barrier for a store of `written` into a field of
// `writtenTo`. If writtenTo is mature and written is young, writtenTo is
// added to the remembered set; every other combination (including either
// operand being a tagged integer, which is neither young nor mature) is a
// no-op. Idempotent — remembering the same pointer twice is harmless, since
// local.Allocator.Remember itself deduplicates via the per-object
// remembered bit.
func Record(allocator remember, writtenTo, written object.Pointer) {
	if writtenTo.IsMature() && written.IsYoung() {
		allocator.Remember(writtenTo)
	}
}
