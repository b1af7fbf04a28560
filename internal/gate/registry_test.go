package gate

import "testing"

func TestRegistryFIFO(t *testing.T) {
	r := newWaiterRegistry()
	for id := WaiterID(1); id <= 3; id++ {
		r.push(&waiter{id: id})
	}
	if r.len() != 3 {
		t.Fatalf("len = %d, want 3", r.len())
	}
	for want := WaiterID(1); want <= 3; want++ {
		w, ok := r.popFront()
		if !ok || w.id != want {
			t.Fatalf("popFront = %v, %v; want id %d", w, ok, want)
		}
	}
	if _, ok := r.popFront(); ok {
		t.Fatalf("popFront on empty registry succeeded")
	}
}

func TestRegistryRemoveByID(t *testing.T) {
	r := newWaiterRegistry()
	for id := WaiterID(1); id <= 3; id++ {
		r.push(&waiter{id: id})
	}
	w, ok := r.remove(2)
	if !ok || w.id != 2 {
		t.Fatalf("remove(2) = %v, %v", w, ok)
	}
	if _, ok := r.remove(2); ok {
		t.Fatalf("second remove(2) succeeded; want idempotent no-op")
	}
	infos := r.snapshot()
	if len(infos) != 2 || infos[0].ID != 1 || infos[1].ID != 3 {
		t.Fatalf("snapshot after removal = %v", infos)
	}
}
