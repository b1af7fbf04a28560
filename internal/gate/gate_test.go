package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

type waitResult struct {
	id  WaiterID
	out Outcome
}

// startWaiter launches one waiter goroutine and returns once it is
// registered, so callers can build a known FIFO order.
func startWaiter(g *Gate, timeout time.Duration, results chan<- waitResult) WaiterID {
	regs := make(chan WaiterID, 1)
	go func() {
		var id WaiterID
		out := g.WaitRegistered(timeout, func(w WaiterID) {
			id = w
			regs <- w
		})
		results <- waitResult{id: id, out: out}
	}()
	return <-regs
}

func TestWaitFastPathConsumesPending(t *testing.T) {
	g := NewThreaded()
	g.Unblock()
	if out := g.Wait(0); out != OutcomeUnblocked {
		t.Fatalf("outcome = %v, want unblocked", out)
	}
	if p := g.Pending(); p != SignalNone {
		t.Fatalf("pending after fast path = %v, want none", p)
	}
}

func TestInterruptDominatesOnFastPath(t *testing.T) {
	g := NewThreaded()
	g.Unblock()
	g.Interrupt()
	g.Unblock()
	if p := g.Pending(); p != SignalInterrupt {
		t.Fatalf("pending = %v, want interrupt", p)
	}
	if out := g.Wait(0); out != OutcomeInterrupted {
		t.Fatalf("outcome = %v, want interrupted", out)
	}
}

func TestSignalsResumeInFIFOOrder(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 3)
	var order []WaiterID
	for range 3 {
		order = append(order, startWaiter(g, 0, results))
	}

	g.Unblock()
	first := <-results
	if first.id != order[0] || first.out != OutcomeUnblocked {
		t.Fatalf("first resume = %+v, want id %d unblocked", first, order[0])
	}
	select {
	case extra := <-results:
		t.Fatalf("one signal released a second waiter: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
	if n := g.WaiterCount(); n != 2 {
		t.Fatalf("waiter count = %d, want 2", n)
	}

	g.Interrupt()
	second := <-results
	if second.id != order[1] || second.out != OutcomeInterrupted {
		t.Fatalf("second resume = %+v, want id %d interrupted", second, order[1])
	}
	g.Unblock()
	third := <-results
	if third.id != order[2] || third.out != OutcomeUnblocked {
		t.Fatalf("third resume = %+v, want id %d unblocked", third, order[2])
	}
}

func TestWaitTimesOut(t *testing.T) {
	g := NewThreaded()
	if out := g.Wait(20 * time.Millisecond); out != OutcomeTimedOut {
		t.Fatalf("outcome = %v, want timed-out", out)
	}
	if n := g.WaiterCount(); n != 0 {
		t.Fatalf("waiter count after timeout = %d", n)
	}
}

func TestSignalBeatsTimeout(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 1)
	startWaiter(g, 500*time.Millisecond, results)

	time.Sleep(50 * time.Millisecond)
	g.Unblock()
	got := <-results
	if got.out != OutcomeUnblocked {
		t.Fatalf("outcome = %v, want unblocked", got.out)
	}
}

func TestTimeoutDoesNotConsumeLateSignal(t *testing.T) {
	g := NewThreaded()
	if out := g.Wait(10 * time.Millisecond); out != OutcomeTimedOut {
		t.Fatalf("outcome = %v, want timed-out", out)
	}
	g.Unblock()
	if p := g.Pending(); p != SignalUnblock {
		t.Fatalf("pending = %v, want unblock kept for next waiter", p)
	}
	if out := g.Wait(0); out != OutcomeUnblocked {
		t.Fatalf("next wait outcome = %v, want unblocked", out)
	}
}

func TestCancelTargetsOneWaiter(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 2)
	first := startWaiter(g, 0, results)
	second := startWaiter(g, 0, results)

	released, err := g.Cancel(first)
	if err != nil || !released {
		t.Fatalf("Cancel(%d) = %v, %v", first, released, err)
	}
	got := <-results
	if got.id != first || got.out != OutcomeCancelled {
		t.Fatalf("cancelled waiter result = %+v", got)
	}
	if n := g.WaiterCount(); n != 1 {
		t.Fatalf("waiter count = %d, want 1 (cancel is waiter-scoped)", n)
	}

	g.Unblock()
	got = <-results
	if got.id != second || got.out != OutcomeUnblocked {
		t.Fatalf("surviving waiter result = %+v", got)
	}
}

func TestCancelAlreadyResolvedIsNoOp(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 1)
	id := startWaiter(g, 0, results)

	g.Unblock()
	<-results

	released, err := g.Cancel(id)
	if err != nil {
		t.Fatalf("Cancel after resume returned error: %v", err)
	}
	if released {
		t.Fatalf("Cancel after resume reported a release")
	}
}

func TestCancelUnknownWaiter(t *testing.T) {
	g := NewThreaded()
	_, err := g.Cancel(42)
	var unknown *UnknownWaiterError
	if !errors.As(err, &unknown) {
		t.Fatalf("Cancel(42) error = %v, want UnknownWaiterError", err)
	}
	if unknown.ID != 42 {
		t.Fatalf("UnknownWaiterError.ID = %d", unknown.ID)
	}
}

func TestCancelDoesNotTouchSlot(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 1)
	id := startWaiter(g, 0, results)

	// Queue a signal while a waiter exists would release it, so cancel
	// first, then verify signals stored afterwards are unaffected.
	if _, err := g.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	<-results
	g.Interrupt()
	if p := g.Pending(); p != SignalInterrupt {
		t.Fatalf("pending = %v, want interrupt", p)
	}
}

func TestResetClearsPendingSignal(t *testing.T) {
	g := NewThreaded()
	g.Interrupt()
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset with no waiters: %v", err)
	}
	if p := g.Pending(); p != SignalNone {
		t.Fatalf("pending after reset = %v", p)
	}
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset on empty gate: %v", err)
	}
}

func TestResetFailsWithActiveWaiters(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 1)
	id := startWaiter(g, 0, results)

	err := g.Reset()
	var state *StateError
	if !errors.As(err, &state) {
		t.Fatalf("Reset with active waiter error = %v, want StateError", err)
	}

	if _, err := g.Cancel(id); err != nil {
		t.Fatalf("cleanup cancel: %v", err)
	}
	<-results
}

func TestWaitContextCancellation(t *testing.T) {
	g := NewThreaded()
	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan Outcome, 1)
	go func() { results <- g.WaitContext(ctx) }()

	for g.WaiterCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if out := <-results; out != OutcomeCancelled {
		t.Fatalf("outcome = %v, want cancelled", out)
	}
}

func TestWaitersSnapshotOrdered(t *testing.T) {
	g := NewThreaded()
	results := make(chan waitResult, 2)
	first := startWaiter(g, 0, results)
	second := startWaiter(g, 0, results)

	infos := g.Waiters()
	if len(infos) != 2 || infos[0].ID != first || infos[1].ID != second {
		t.Fatalf("snapshot = %v, want [%d %d]", infos, first, second)
	}
	if infos[0].EnqueuedMs > infos[1].EnqueuedMs {
		t.Fatalf("enqueue timestamps out of order: %v", infos)
	}

	g.Unblock()
	g.Unblock()
	<-results
	<-results
}

func TestResumeIdempotent(t *testing.T) {
	var warnings int
	s := NewThreadScheduler()
	s.Warn = func(string, ...any) { warnings++ }

	r := s.SuspendCurrent()
	s.Resume(r, OutcomeUnblocked)
	s.Resume(r, OutcomeInterrupted)
	if warnings != 1 {
		t.Fatalf("warnings = %d, want 1", warnings)
	}
	if out := r.Await(); out != OutcomeUnblocked {
		t.Fatalf("Await = %v, want first delivered outcome", out)
	}
}
