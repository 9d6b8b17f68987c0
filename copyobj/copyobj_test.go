package copyobj

import (
	"testing"

	"github.com/nyxvm/corevm/block"
	"github.com/nyxvm/corevm/object"
)

// testHeap is a minimal object.Heap backed by a single real block, enough
// to exercise the traversal without pulling in package local.
type testHeap struct {
	blk *block.Block
}

func newTestHeap(t *testing.T) *testHeap {
	t.Helper()
	blk, err := block.New()
	if err != nil {
		t.Fatalf("block.New error: %v", err)
	}
	t.Cleanup(func() { _ = blk.Close() })
	return &testHeap{blk: blk}
}

func (h *testHeap) AllocateCopy(obj object.Object) object.Pointer {
	return h.blk.BumpAllocate(obj, false)
}

func (h *testHeap) CopyPointer(p object.Pointer) object.Pointer { return CopyObject(h, p) }
func (h *testHeap) MovePointer(p object.Pointer) object.Pointer { return MoveObject(h, p) }

var _ object.Heap = (*testHeap)(nil)

// fakeBinding is a minimal object.BindingRef for exercising the
// block/binding value variants without package binding.
type fakeBinding struct {
	local object.Pointer
}

func (b *fakeBinding) CloneTo(h object.Heap) object.BindingRef {
	return &fakeBinding{local: CopyObject(h, b.local)}
}

func (b *fakeBinding) MovePointersTo(h object.Heap) {
	b.local = MoveObject(h, b.local)
}

func TestCopyObjectNone(t *testing.T) {
	h := newTestHeap(t)
	p := h.AllocateCopy(object.New(object.None{}))

	copy := CopyObject(h, p)
	if !copy.Get().IsNone() {
		t.Fatalf("expected copy of a none object to be none")
	}
}

func TestCopyObjectWithPrototype(t *testing.T) {
	h := newTestHeap(t)
	proto := h.AllocateCopy(object.New(object.None{}))
	p := h.AllocateCopy(object.WithPrototype(object.Float{N: 1}, proto))

	copy := CopyObject(h, p)
	if !copy.Get().HasPrototype() {
		t.Fatalf("expected the copy to carry a prototype")
	}
}

func TestCopyObjectWithAttributes(t *testing.T) {
	h := newTestHeap(t)
	key := h.AllocateCopy(object.New(object.None{}))
	val := h.AllocateCopy(object.New(object.None{}))
	p := h.AllocateCopy(object.New(object.None{}))
	attrs := object.NewAttributes()
	attrs.Set(key, val)
	p.Get().SetAttributes(attrs)

	copy := CopyObject(h, p)
	if copy.Get().Attributes == nil {
		t.Fatalf("expected the copy to carry an attribute map")
	}
	if copy.Get().Attributes.Len() != 1 {
		t.Fatalf("expected 1 attribute, got %d", copy.Get().Attributes.Len())
	}
}

func TestCopyObjectInteger(t *testing.T) {
	h := newTestHeap(t)
	p := h.AllocateCopy(object.New(object.Int{N: 5}))

	copy := CopyObject(h, p)
	got, ok := copy.Get().Value.(object.Int)
	if !ok || got.N != 5 {
		t.Fatalf("expected copy to hold Int(5), got %#v", copy.Get().Value)
	}
}

func TestCopyObjectHasherClonesIndependentState(t *testing.T) {
	h := newTestHeap(t)
	src := object.NewHasher()
	src.Write([]byte("seed"))
	p := h.AllocateCopy(object.New(src))

	copy := CopyObject(h, p)
	got, ok := copy.Get().Value.(object.Hasher)
	if !ok {
		t.Fatalf("expected copy to hold a Hasher, got %#v", copy.Get().Value)
	}
	if got.Sum64() != src.Sum64() {
		t.Fatalf("expected the copied hasher to start with the same digest")
	}

	got.Write([]byte("more"))
	if got.Sum64() == src.Sum64() {
		t.Fatalf("expected writing to the copy to leave the source's digest untouched")
	}
}

func TestCopyObjectArray(t *testing.T) {
	h := newTestHeap(t)
	e1 := h.AllocateCopy(object.New(object.None{}))
	e2 := h.AllocateCopy(object.New(object.None{}))
	arr := h.AllocateCopy(object.New(object.Array{Elements: []object.Pointer{e1, e2}}))

	copy := CopyObject(h, arr)
	got, ok := copy.Get().Value.(object.Array)
	if !ok || len(got.Elements) != 2 {
		t.Fatalf("expected a 2-element array copy, got %#v", copy.Get().Value)
	}
	if got.Elements[0].Equal(e1) {
		t.Fatalf("expected array elements to be deep-copied, not shared")
	}
}

func TestCopyObjectPermanentPointerIsUnchanged(t *testing.T) {
	h := newTestHeap(t)
	blk, err := block.New()
	if err != nil {
		t.Fatalf("block.New error: %v", err)
	}
	defer blk.Close()
	blk.SetGeneration(object.GenPermanent)

	p := blk.BumpAllocate(object.New(object.None{}), true)

	copy := CopyObject(h, p)
	if !copy.Equal(p) {
		t.Fatalf("expected a permanent pointer to be returned unchanged")
	}
}

func TestCopyObjectBinding(t *testing.T) {
	h := newTestHeap(t)
	local := h.AllocateCopy(object.New(object.Float{N: 15}))
	bindingPtr := h.AllocateCopy(object.New(object.BindingValue{Binding: &fakeBinding{local: local}}))

	copy := CopyObject(h, bindingPtr)
	got, ok := copy.Get().Value.(object.BindingValue)
	if !ok {
		t.Fatalf("expected a binding value copy")
	}
	copiedBinding := got.Binding.(*fakeBinding)
	if copiedBinding.local.Equal(local) {
		t.Fatalf("expected the binding's local to be deep-copied")
	}
}

func TestMoveObjectEmptiesSource(t *testing.T) {
	h := newTestHeap(t)
	p := h.AllocateCopy(object.New(object.Int{N: 5}))

	moved := MoveObject(h, p)

	if !p.Get().IsNone() {
		t.Fatalf("expected the source object to be emptied after move")
	}
	got, ok := moved.Get().Value.(object.Int)
	if !ok || got.N != 5 {
		t.Fatalf("expected moved copy to hold Int(5), got %#v", moved.Get().Value)
	}
}

func TestMoveObjectPanicsOnFileValue(t *testing.T) {
	h := newTestHeap(t)
	key := h.AllocateCopy(object.New(object.None{}))
	val := h.AllocateCopy(object.New(object.None{}))
	p := h.AllocateCopy(object.New(object.File{Name: "f"}))
	attrs := object.NewAttributes()
	attrs.Set(key, val)
	p.Get().SetAttributes(attrs)
	p.MarkForFinalization()

	defer func() {
		r := recover()
		if r != ErrUncopyableValue {
			t.Fatalf("expected a File value to panic with ErrUncopyableValue, got %v", r)
		}
	}()

	MoveObject(h, p)
}

func TestMoveObjectArray(t *testing.T) {
	h := newTestHeap(t)
	e1 := h.AllocateCopy(object.New(object.None{}))
	arr := h.AllocateCopy(object.New(object.Array{Elements: []object.Pointer{e1}}))

	moved := MoveObject(h, arr)

	if !arr.Get().IsNone() {
		t.Fatalf("expected the source array object to be emptied")
	}
	got, ok := moved.Get().Value.(object.Array)
	if !ok || len(got.Elements) != 1 {
		t.Fatalf("expected the moved array to carry 1 element")
	}
}
