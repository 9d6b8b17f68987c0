package roots

import "github.com/nyxvm/corevm/object"

// Provider is the root-set surface a collector traces against, exposing
// exactly what spec.md §4.13 lists as the interpreter's obligations:
// iteration over the execution-context stack, the mailbox's internal and
// external pointer lists, the remembered set, and the "running code"
// pointer for crash diagnostics. Modeled as an interface so package
// collector compiles and is tested against a fake implementation without
// importing an interpreter.
type Provider interface {
	// ContextRoots appends every pointer reachable from the process's
	// execution-context stack (registers and binding chains, every frame)
	// to pointers.
	ContextRoots(pointers *[]object.Pointer)

	// MailboxRoots appends every pointer the process's mailbox holds live
	// (self-sent and externally-sent messages) to pointers.
	MailboxRoots(pointers *[]object.Pointer)

	// RememberedSet returns the process-local remembered set: mature
	// objects written to since the last young collection's root scan.
	RememberedSet() []object.Pointer

	// RunningCode returns an opaque description of the code currently
	// executing, for crash diagnostics. May be empty.
	RunningCode() string

	// Status returns the process's current lifecycle status.
	Status() Status
}
