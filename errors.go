package sable

import "github.com/rotisserie/eris"

// Error kinds. The entity generator and the component manager return these
// precisely; the query engine and the scheduler collapse failures that
// cannot happen in correct usage into ErrUnknown after logging them, while
// expected misses (resolving an unflushed handle) stay silent no-ops.
var (
	// ErrDoesNotExist signals that a looked-up entity, component, or
	// component type is not present. Frequently an expected outcome rather
	// than corruption.
	ErrDoesNotExist = eris.New("does not exist")

	// ErrDuplicate signals that an insertion collided with an existing
	// entry. Always a logic bug in the caller or in the engine's own
	// bookkeeping.
	ErrDuplicate = eris.New("duplicate entry")

	// ErrWrongArgument signals caller-supplied data of the wrong shape, such
	// as a flush with a mismatched entity count. The caller can recover by
	// fixing its inputs.
	ErrWrongArgument = eris.New("wrong argument")

	// ErrUnknown is the catch-all for invariant violations, such as a stored
	// component value that fails to downcast. Fatal to the current
	// operation.
	ErrUnknown = eris.New("unknown internal error")
)
