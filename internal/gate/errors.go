package gate

import "fmt"

// StateError reports an operation that is invalid in the gate's current
// state, e.g. Reset while waiters are registered.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("gate: %s: %s", e.Op, e.Reason)
}

// UnknownWaiterError reports a waiter ID that was never issued by this gate.
// It is distinct from cancelling an already-resolved waiter, which is a
// successful no-op.
type UnknownWaiterError struct {
	ID WaiterID
}

func (e *UnknownWaiterError) Error() string {
	return fmt.Sprintf("gate: unknown waiter id %d", e.ID)
}
