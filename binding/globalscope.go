package binding

import (
	"errors"

	"github.com/nyxvm/corevm/object"
)

// defaultGlobalScopeSize is the initial variable slot count a fresh scope
// is seeded with, matching the original's fixed 32-slot starting vector.
const defaultGlobalScopeSize = 32

// ErrPermanenceViolation is returned by GlobalScope.Set when asked to
// store a pointer that does not live on the permanent heap. A global
// scope outlives any one process, so anything reachable from it must
// survive every process-local collection.
var ErrPermanenceViolation = errors.New("binding: only permanent objects can be stored in a global scope")

// GlobalScope holds a module's global variables. Every value stored in it
// must already live on the permanent heap, since a scope outlives any one
// process and must never hold a pointer a process-local collection could
// invalidate.
type GlobalScope struct {
	variables []object.Pointer
}

// NewGlobalScope returns an empty global scope.
func NewGlobalScope() *GlobalScope {
	return &GlobalScope{variables: make([]object.Pointer, defaultGlobalScopeSize)}
}

// Get returns the global variable at index. It panics on an out-of-range
// index, matching the original's unchecked vector indexing.
func (g *GlobalScope) Get(index int) object.Pointer {
	return g.variables[index]
}

// Set stores value at index, growing the backing slice if necessary. It
// returns ErrPermanenceViolation if value is not a permanent pointer,
// leaving the scope unchanged.
func (g *GlobalScope) Set(index int, value object.Pointer) error {
	if !value.IsPermanent() {
		return ErrPermanenceViolation
	}

	if index >= len(g.variables) {
		grown := make([]object.Pointer, index+1)
		copy(grown, g.variables)
		g.variables = grown
	}

	g.variables[index] = value
	return nil
}
