package roots

import (
	"github.com/nyxvm/corevm/binding"
	"github.com/nyxvm/corevm/object"
)

// Code stands in for the interpreter's compiled code reference. The GC
// never interprets it, only carries it for the "running code" pointer a
// crash diagnostic wants (spec.md §4.13).
type Code interface{}

// ExecutionContext is one call frame: grounded on process.rs's use of
// `context.binding`, `context.global_scope`, `context.get_register` /
// `set_register`, and the parent-swap dance in `Process::push_context` /
// `pop_context` (execution_context.rs itself was filtered out of the
// retrieved pack, so the field set is reconstructed from process.rs's call
// sites plus spec.md §3's ExecutionContext paragraph).
type ExecutionContext struct {
	Code        Code
	Binding     *binding.Binding
	GlobalScope *binding.GlobalScope
	CatchTable  *CatchTable

	registers     []object.Pointer
	instructionIx int

	parent *ExecutionContext
}

// NewExecutionContext returns a root context with registerCount registers,
// no parent.
func NewExecutionContext(code Code, b *binding.Binding, scope *binding.GlobalScope, registerCount int) *ExecutionContext {
	return &ExecutionContext{
		Code:        code,
		Binding:     b,
		GlobalScope: scope,
		CatchTable:  NewCatchTable(),
		registers:   make([]object.Pointer, registerCount),
	}
}

// SetParent links ctx below the current top of a process's context stack,
// mirroring `push_context`'s `target.set_parent(boxed)`.
func (ctx *ExecutionContext) SetParent(parent *ExecutionContext) { ctx.parent = parent }

// Parent returns the context one frame below this one on the stack, or nil
// at the bottom.
func (ctx *ExecutionContext) Parent() *ExecutionContext { return ctx.parent }

// TakeParent detaches and returns the parent context, leaving this
// context's parent link nil — the building block `pop_context` uses to
// discard the current frame and resume its caller.
func (ctx *ExecutionContext) TakeParent() *ExecutionContext {
	p := ctx.parent
	ctx.parent = nil
	return p
}

// GetRegister returns the value in the given register.
func (ctx *ExecutionContext) GetRegister(index int) object.Pointer { return ctx.registers[index] }

// SetRegister stores value in the given register, growing the register
// file if necessary.
func (ctx *ExecutionContext) SetRegister(index int, value object.Pointer) {
	if index >= len(ctx.registers) {
		grown := make([]object.Pointer, index+1)
		copy(grown, ctx.registers)
		ctx.registers = grown
	}
	ctx.registers[index] = value
}

// InstructionIndex returns the index of the next instruction to execute.
func (ctx *ExecutionContext) InstructionIndex() int { return ctx.instructionIx }

// AdvanceInstructionIndex moves to the next instruction.
func (ctx *ExecutionContext) AdvanceInstructionIndex() { ctx.instructionIx++ }

// JumpTo sets the instruction index directly, used when a CatchEntry
// redirects execution on a thrown value.
func (ctx *ExecutionContext) JumpTo(index int) { ctx.instructionIx = index }

// PushPointers appends every root this context and its ancestor contexts
// hold — register file plus the local binding chain — to pointers. Global
// scope entries are never appended: they are permanent-heap-only by
// GlobalScope.Set's own invariant and therefore never move or get
// collected.
func (ctx *ExecutionContext) PushPointers(pointers *[]object.Pointer) {
	for cur := ctx; cur != nil; cur = cur.parent {
		for _, p := range cur.registers {
			if !p.IsNull() {
				*pointers = append(*pointers, p)
			}
		}
		if cur.Binding != nil {
			cur.Binding.PushPointers(pointers)
		}
	}
}

// Contexts returns this context and every context below it on the stack,
// this (innermost) frame first and the bottom frame last — mirroring
// `Process::contexts`'s traversal order.
func (ctx *ExecutionContext) Contexts() []*ExecutionContext {
	var out []*ExecutionContext
	for cur := ctx; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}
