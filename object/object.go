package object

// Object is the fixed-size cell every heap allocation carries: a tagged
// value, an optional prototype pointer, and an optional attribute map.
// Conceptually a 32-byte cell per spec.md §3; the attribute map is stored
// out-of-line since it is variable-sized (see DESIGN.md).
type Object struct {
	Value      Value
	Prototype  Pointer
	Attributes *Attributes
}

// Attributes is an object's attribute map: named, pointer-keyed properties
// attached on top of its value (e.g. instance variables).
type Attributes struct {
	entries map[Pointer]Pointer
	order   []Pointer
}

// NewAttributes returns an empty attribute map.
func NewAttributes() *Attributes {
	return &Attributes{entries: make(map[Pointer]Pointer)}
}

// Set stores key -> value, preserving first-insertion order for iteration.
func (a *Attributes) Set(key, value Pointer) {
	if _, exists := a.entries[key]; !exists {
		a.order = append(a.order, key)
	}
	a.entries[key] = value
}

// Get looks up a key.
func (a *Attributes) Get(key Pointer) (Pointer, bool) {
	v, ok := a.entries[key]
	return v, ok
}

// Each calls fn for every (key, value) pair in insertion order.
func (a *Attributes) Each(fn func(key, value Pointer)) {
	for _, k := range a.order {
		fn(k, a.entries[k])
	}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.order) }

// New returns an empty object with no prototype and no attributes.
func New(value Value) Object {
	return Object{Value: value, Prototype: Null()}
}

// WithPrototype returns an object with a prototype pointer set.
func WithPrototype(value Value, proto Pointer) Object {
	return Object{Value: value, Prototype: proto}
}

// HasPrototype reports whether the object has a non-null prototype.
func (o *Object) HasPrototype() bool { return !o.Prototype.IsNull() }

// SetAttributes installs an attribute map, replacing any existing one.
func (o *Object) SetAttributes(m *Attributes) { o.Attributes = m }

// DropAttributes clears the attribute map (used by move_object, which must
// not retain a reference to the source's attributes once moved).
func (o *Object) DropAttributes() { o.Attributes = nil }

// Take resets the object's value to None and returns the previous value,
// mirroring Rust's `mem::replace`/`ObjectValue::take` used by move_object.
func (o *Object) Take() Value {
	v := o.Value
	o.Value = None{}
	return v
}

// TakePrototype clears and returns the prototype pointer.
func (o *Object) TakePrototype() Pointer {
	p := o.Prototype
	o.Prototype = Null()
	return p
}

// IsNone reports whether the object currently carries no value.
func (o *Object) IsNone() bool {
	_, ok := o.Value.(None)
	return ok
}

// RequiresFinalization reports whether the object's value needs destructor
// work when unmarked. Only File values (which hold an OS file handle)
// report true.
func (o *Object) RequiresFinalization() bool {
	switch o.Value.(type) {
	case File:
		return true
	default:
		return false
	}
}
