package asyncrt

// WakerKind identifies a wait queue category.
type WakerKind uint8

const (
	// WakerInvalid indicates an invalid waker key.
	WakerInvalid WakerKind = iota
	// WakerJoin indicates a task-completion wait queue.
	WakerJoin
	// WakerTimer indicates a timer wait queue.
	WakerTimer
	// WakerGate indicates a gate suspension wait queue.
	WakerGate
)

// WakerKey identifies a wait queue entry.
type WakerKey struct {
	Kind WakerKind
	A    uint64
	B    uint64
}

// IsValid reports whether the key is usable for waiting.
func (k WakerKey) IsValid() bool {
	return k.Kind != WakerInvalid
}

// JoinKey builds a wait key for a target task's completion.
func JoinKey(target TaskID) WakerKey {
	return WakerKey{Kind: WakerJoin, A: uint64(target)}
}

// TimerKey builds a wait key for a timer.
func TimerKey(id TimerID) WakerKey {
	return WakerKey{Kind: WakerTimer, A: uint64(id)}
}

// GateKey builds a wait key for one suspended gate waiter.
func GateKey(gateID, waiterID uint64) WakerKey {
	return WakerKey{Kind: WakerGate, A: gateID, B: waiterID}
}
