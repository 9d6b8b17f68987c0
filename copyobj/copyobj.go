// Package copyobj implements the CopyObject protocol: a deep copy and a
// destructive deep move of an object graph from one heap onto another,
// shared by every allocator via the object.Heap interface so neither
// local, mailbox, nor permanent needs to duplicate the traversal.
package copyobj

import (
	"errors"

	"github.com/nyxvm/corevm/object"
)

// ErrUncopyableValue is the panic value raised when the traversal reaches
// a File value. File handles carry OS resources that cannot be duplicated
// across heaps, exactly as the original's copy_object panics on
// ObjectValue::File.
var ErrUncopyableValue = errors.New("copyobj: file values cannot be copied or moved across heaps")

// CopyObject performs a deep copy of the object graph rooted at p onto
// heap h, returning a pointer to the root of the copy. Permanent pointers
// are returned unchanged — the permanent heap is shared and never needs
// duplicating.
func CopyObject(h object.Heap, p object.Pointer) object.Pointer {
	if p.IsPermanent() || p.IsTaggedInteger() || p.IsNull() {
		return p
	}

	src := p.Get()

	valueCopy := copyValue(h, src.Value)

	var copy object.Object
	if src.HasPrototype() {
		copy = object.WithPrototype(valueCopy, CopyObject(h, src.Prototype))
	} else {
		copy = object.New(valueCopy)
	}

	if src.Attributes != nil {
		attrs := object.NewAttributes()
		src.Attributes.Each(func(key, val object.Pointer) {
			attrs.Set(CopyObject(h, key), CopyObject(h, val))
		})
		copy.SetAttributes(attrs)
	}

	return h.AllocateCopy(copy)
}

func copyValue(h object.Heap, v object.Value) object.Value {
	switch val := v.(type) {
	case object.None:
		return object.None{}
	case object.Float:
		return object.Float{N: val.N}
	case object.Int:
		return object.Int{N: val.N}
	case object.BigInt:
		return val.Clone()
	case object.Str:
		return object.Str{S: val.S}
	case object.InternedStr:
		return object.InternedStr{S: val.S}
	case object.Array:
		elems := make([]object.Pointer, len(val.Elements))
		for i, e := range val.Elements {
			elems[i] = CopyObject(h, e)
		}
		return object.Array{Elements: elems}
	case object.ByteArray:
		bs := make([]byte, len(val.Bytes))
		copy(bs, val.Bytes)
		return object.ByteArray{Bytes: bs}
	case object.Hasher:
		return val.Clone()
	case object.BlockValue:
		return object.BlockValue{
			Code:        val.Code,
			Binding:     val.Binding.CloneTo(h),
			GlobalScope: val.GlobalScope,
		}
	case object.BindingValue:
		return object.BindingValue{Binding: val.Binding.CloneTo(h)}
	case object.File:
		panic(ErrUncopyableValue)
	default:
		panic(ErrUncopyableValue)
	}
}

// MoveObject performs a deep, destructive move of the object graph rooted
// at p onto heap h: the copy is allocated on h exactly as CopyObject
// would, but the source cells are emptied (value reset to None, attributes
// dropped, finalization flag cleared) as they are visited, so nothing is
// duplicated and the source becomes immediately collectible garbage.
func MoveObject(h object.Heap, p object.Pointer) object.Pointer {
	if p.IsPermanent() || p.IsTaggedInteger() || p.IsNull() {
		return p
	}

	src := p.Get()

	valueCopy := moveValue(h, src.Take())

	var copy object.Object
	if proto := src.TakePrototype(); !proto.IsNull() {
		copy = object.WithPrototype(valueCopy, MoveObject(h, proto))
	} else {
		copy = object.New(valueCopy)
	}

	if src.Attributes != nil {
		attrs := object.NewAttributes()
		src.Attributes.Each(func(key, val object.Pointer) {
			attrs.Set(MoveObject(h, key), MoveObject(h, val))
		})
		copy.SetAttributes(attrs)
	}

	src.DropAttributes()
	p.UnmarkForFinalization()

	return h.AllocateCopy(copy)
}

func moveValue(h object.Heap, v object.Value) object.Value {
	switch val := v.(type) {
	case object.Array:
		for i, e := range val.Elements {
			val.Elements[i] = MoveObject(h, e)
		}
		return val
	case object.BlockValue:
		val.Binding.MovePointersTo(h)
		return val
	case object.BindingValue:
		val.Binding.MovePointersTo(h)
		return val
	case object.File:
		panic(ErrUncopyableValue)
	default:
		return v
	}
}
