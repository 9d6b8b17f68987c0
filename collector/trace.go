// Package collector implements the heap and mailbox collectors: the
// prepare/trace/reclaim/finalize-schedule pipeline spec.md §4.8/§4.9
// describe, plus the worker pool a request dispatcher runs collections on.
package collector

import (
	"github.com/nyxvm/corevm/binding"
	"github.com/nyxvm/corevm/object"
)

// Result is the live-object accounting a trace phase produces — the
// counters spec.md §4.10's Profile reports.
type Result struct {
	Marked    int
	Evacuated int
	Promoted  int
}

func (r *Result) add(other Result) {
	r.Marked += other.Marked
	r.Evacuated += other.Evacuated
	r.Promoted += other.Promoted
}

// pushChildren appends every pointer obj directly holds — prototype,
// attribute keys/values, array elements, and (for a captured closure or
// first-class binding value) every local reachable through the binding
// chain — to queue, the shared BFS worklist both trace variants push onto.
func pushChildren(obj *object.Object, queue *[]object.Pointer) {
	if obj.HasPrototype() {
		*queue = append(*queue, obj.Prototype)
	}
	if obj.Attributes != nil {
		obj.Attributes.Each(func(key, val object.Pointer) {
			*queue = append(*queue, key, val)
		})
	}

	switch v := obj.Value.(type) {
	case object.Array:
		*queue = append(*queue, v.Elements...)
	case object.BlockValue:
		pushBindingPointers(v.Binding, queue)
	case object.BindingValue:
		pushBindingPointers(v.Binding, queue)
	}
}

// pushBindingPointers reaches into a captured binding's locals. BindingRef
// is opaque to package object to avoid an import cycle; the collector
// knows the concrete type package binding provides and type-asserts to it,
// same as copyobj does for CloneTo/MovePointersTo.
func pushBindingPointers(ref object.BindingRef, queue *[]object.Pointer) {
	if b, ok := ref.(*binding.Binding); ok {
		b.PushPointers(queue)
	}
}

// TraceNonMoving runs the non-moving mark trace from roots: pop a root,
// mark its object (skipping it if already marked, null, tagged, or
// permanent), enqueue its children, repeat until the worklist drains.
func TraceNonMoving(roots []object.Pointer) Result {
	var result Result
	queue := append([]object.Pointer(nil), roots...)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if p.IsNull() || p.IsTaggedInteger() || p.IsPermanent() {
			continue
		}
		if p.IsMarked() {
			continue
		}

		p.Mark()
		result.Marked++
		pushChildren(p.Get(), &queue)
	}

	return result
}

// MoveKind distinguishes an evacuation (relocation within the same
// generation, driven by fragmentation) from a promotion (relocation from
// young into mature, driven by survivor age).
type MoveKind int

const (
	MoveEvacuate MoveKind = iota
	MovePromote
)

// TraceMoving runs the moving trace from roots. For each root, decide asks
// whether it must relocate and, if so, onto which heap and as which kind
// of move; a false third return just marks the object in place (and
// queues its children for an ordinary non-moving sub-trace).
//
// roots is mutated in place: any entry that needed to move is rewritten to
// the relocated pointer, so the caller's backing slice — an
// ExecutionContext's register file, a Binding's locals, or a Mailbox's
// external list, all of which share their backing array with what was
// passed in — observes the relocation directly. This is why no separate
// forwarding-pointer block header is reproduced here: copyobj.MoveObject
// already performs one full recursive relocation of the evacuated root's
// entire reachable subgraph, which plays the same role a forwarding tag
// would (subsequent visits of an object already moved find `moved[p]`
// instead of re-visiting it) without needing an in-block representation.
// One consequence of this simplification: an object reachable only
// through a non-relocated parent is never individually evacuated even if
// its own block is fragmented — only directly-rooted objects are
// candidates for relocation. See DESIGN.md.
func TraceMoving(roots []object.Pointer, decide func(object.Pointer) (dest object.Heap, kind MoveKind, move bool)) Result {
	var result Result
	moved := map[object.Pointer]object.Pointer{}
	var toMark []object.Pointer

	for i, p := range roots {
		if p.IsNull() || p.IsTaggedInteger() || p.IsPermanent() {
			continue
		}

		if dst, ok := moved[p]; ok {
			roots[i] = dst
			continue
		}

		if dest, kind, move := decide(p); move {
			dst := dest.MovePointer(p)
			moved[p] = dst
			roots[i] = dst
			if kind == MovePromote {
				result.Promoted++
			} else {
				result.Evacuated++
			}
			continue
		}

		if !p.IsMarked() {
			toMark = append(toMark, p)
		}
	}

	result.add(TraceNonMoving(toMark))
	return result
}
