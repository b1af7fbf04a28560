package gate

import "container/list"

// WaiterID identifies one suspended waiter within its gate.
// IDs are issued monotonically per gate and never reused.
type WaiterID uint64

// WaiterInfo is an observable snapshot of one registered waiter.
type WaiterInfo struct {
	ID         WaiterID
	EnqueuedMs uint64
}

type waiter struct {
	id         WaiterID
	enqueuedMs uint64
	res        Resumption
}

// waiterRegistry keeps waiters in arrival order with O(1) append, O(1)
// removal by ID through an element index, and O(1) head access.
// A waiter is present exactly while suspended.
type waiterRegistry struct {
	order *list.List
	index map[WaiterID]*list.Element
}

func newWaiterRegistry() waiterRegistry {
	return waiterRegistry{
		order: list.New(),
		index: make(map[WaiterID]*list.Element),
	}
}

func (r *waiterRegistry) push(w *waiter) {
	r.index[w.id] = r.order.PushBack(w)
}

// remove detaches a waiter by ID. Removing an absent ID is a no-op so that
// cancel stays idempotent under races.
func (r *waiterRegistry) remove(id WaiterID) (*waiter, bool) {
	el, ok := r.index[id]
	if !ok {
		return nil, false
	}
	delete(r.index, id)
	w, _ := r.order.Remove(el).(*waiter)
	return w, w != nil
}

func (r *waiterRegistry) popFront() (*waiter, bool) {
	el := r.order.Front()
	if el == nil {
		return nil, false
	}
	w, _ := el.Value.(*waiter)
	if w == nil {
		r.order.Remove(el)
		return nil, false
	}
	delete(r.index, w.id)
	r.order.Remove(el)
	return w, true
}

func (r *waiterRegistry) len() int {
	return r.order.Len()
}

func (r *waiterRegistry) snapshot() []WaiterInfo {
	infos := make([]WaiterInfo, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		if w, ok := el.Value.(*waiter); ok {
			infos = append(infos, WaiterInfo{ID: w.id, EnqueuedMs: w.enqueuedMs})
		}
	}
	return infos
}
