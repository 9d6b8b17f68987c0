package binding

import (
	"testing"

	"github.com/nyxvm/corevm/config"
	"github.com/nyxvm/corevm/galloc"
	"github.com/nyxvm/corevm/local"
	"github.com/nyxvm/corevm/object"
)

func newTestAllocator(t *testing.T) *local.Allocator {
	t.Helper()
	cfg := config.Default()
	g := galloc.New(cfg)
	a, err := local.New(g, &cfg)
	if err != nil {
		t.Fatalf("local.New error: %v", err)
	}
	return a
}

func TestNewBinding(t *testing.T) {
	b := New(2)
	if len(b.Locals()) != 2 {
		t.Fatalf("expected 2 locals, got %d", len(b.Locals()))
	}
}

func TestWithParent(t *testing.T) {
	b1 := New(0)
	b2 := WithParent(b1, 1)

	if b2.Parent() == nil {
		t.Fatalf("expected a parent binding")
	}
	if len(b2.Locals()) != 1 {
		t.Fatalf("expected 1 local, got %d", len(b2.Locals()))
	}
}

func TestGetSetLocal(t *testing.T) {
	b := New(1)
	ptr := object.TaggedInt(5)

	b.SetLocal(0, ptr)

	if !b.GetLocal(0).Equal(ptr) {
		t.Fatalf("expected to read back the set local")
	}
}

func TestLocalExists(t *testing.T) {
	b := New(1)
	if b.LocalExists(0) {
		t.Fatalf("expected a fresh local not to exist")
	}

	b.SetLocal(0, object.TaggedInt(5))
	if !b.LocalExists(0) {
		t.Fatalf("expected the set local to exist")
	}
}

func TestParentWithoutParent(t *testing.T) {
	b := New(0)
	if b.Parent() != nil {
		t.Fatalf("expected no parent")
	}
}

func TestFindParent(t *testing.T) {
	b1 := New(0)
	b2 := WithParent(b1, 0)
	b3 := WithParent(b2, 0)
	b4 := WithParent(b3, 0)

	if b4.FindParent(0) == nil || b4.FindParent(0).Parent() == nil {
		t.Fatalf("expected FindParent(0) to be b3 with a parent")
	}
	if b4.FindParent(1) == nil || b4.FindParent(1).Parent() == nil {
		t.Fatalf("expected FindParent(1) to be b2 with a parent")
	}
	if b4.FindParent(2) == nil || b4.FindParent(2).Parent() != nil {
		t.Fatalf("expected FindParent(2) to be b1 with no parent")
	}
	if b4.FindParent(3) != nil {
		t.Fatalf("expected FindParent(3) to run off the end of the chain")
	}
}

func TestPushPointersChildFirst(t *testing.T) {
	alloc := newTestAllocator(t)

	local1 := alloc.AllocateEmpty()
	b1 := New(1)
	b1.SetLocal(0, local1)

	local2 := alloc.AllocateEmpty()
	b2 := WithParent(b1, 1)
	b2.SetLocal(0, local2)

	var pointers []object.Pointer
	b2.PushPointers(&pointers)

	if len(pointers) != 2 {
		t.Fatalf("expected 2 pointers, got %d", len(pointers))
	}
	if !pointers[0].Equal(local2) || !pointers[1].Equal(local1) {
		t.Fatalf("expected child-first order: local2 then local1")
	}
}

func TestCloneTo(t *testing.T) {
	cfg := config.Default()
	global := galloc.New(cfg)
	alloc1, err := local.New(global, &cfg)
	if err != nil {
		t.Fatalf("local.New error: %v", err)
	}
	alloc2, err := local.New(global, &cfg)
	if err != nil {
		t.Fatalf("local.New error: %v", err)
	}

	ptr1 := alloc1.AllocateWithoutPrototype(object.Float{N: 5.0})
	ptr2 := alloc1.AllocateWithoutPrototype(object.Float{N: 2.0})

	srcB1 := New(1)
	srcB2 := WithParent(srcB1, 1)

	srcB1.SetLocal(0, ptr1)
	srcB2.SetLocal(0, ptr2)

	copyRef := srcB2.CloneTo(alloc2)
	bindCopy := copyRef.(*Binding)

	if len(bindCopy.Locals()) != 1 {
		t.Fatalf("expected 1 local in the copy")
	}
	if bindCopy.Parent() == nil {
		t.Fatalf("expected the copy to retain a parent")
	}

	got, ok := bindCopy.GetLocal(0).Get().Value.(object.Float)
	if !ok || got.N != 2.0 {
		t.Fatalf("expected copied local to be Float(2.0), got %#v", bindCopy.GetLocal(0).Get().Value)
	}

	parentCopy := bindCopy.Parent()
	if parentCopy.Parent() != nil {
		t.Fatalf("expected the cloned parent to have no parent of its own")
	}
	gotParent, ok := parentCopy.GetLocal(0).Get().Value.(object.Float)
	if !ok || gotParent.N != 5.0 {
		t.Fatalf("expected cloned parent local to be Float(5.0), got %#v", parentCopy.GetLocal(0).Get().Value)
	}
}

func TestMovePointersTo(t *testing.T) {
	cfg := config.Default()
	g := galloc.New(cfg)
	alloc1, err := local.New(g, &cfg)
	if err != nil {
		t.Fatalf("local.New error: %v", err)
	}
	alloc2, err := local.New(g, &cfg)
	if err != nil {
		t.Fatalf("local.New error: %v", err)
	}

	ptr1 := alloc1.AllocateWithoutPrototype(object.Float{N: 5.0})
	ptr2 := alloc1.AllocateWithoutPrototype(object.Float{N: 2.0})

	srcB1 := New(1)
	srcB2 := WithParent(srcB1, 1)

	srcB1.SetLocal(0, ptr1)
	srcB2.SetLocal(0, ptr2)

	srcB2.MovePointersTo(alloc2)

	if !ptr1.Get().IsNone() {
		t.Fatalf("expected the original binding-1 cell to be emptied by the move")
	}
	if !ptr2.Get().IsNone() {
		t.Fatalf("expected the original binding-2 cell to be emptied by the move")
	}

	got2, ok := srcB2.GetLocal(0).Get().Value.(object.Float)
	if !ok || got2.N != 2.0 {
		t.Fatalf("expected moved local 2 to be Float(2.0), got %#v", srcB2.GetLocal(0).Get().Value)
	}
	got1, ok := srcB1.GetLocal(0).Get().Value.(object.Float)
	if !ok || got1.N != 5.0 {
		t.Fatalf("expected moved local 1 to be Float(5.0), got %#v", srcB1.GetLocal(0).Get().Value)
	}
}
