// Package gate provides an interruptible wait primitive for cooperatively
// scheduled tasks. A waiter suspends without blocking the scheduling
// substrate; another task releases it with an unblock or interrupt signal,
// a timeout, or a targeted cancel, and the waiter observes exactly one
// terminal Outcome.
//
// A Gate owns one signal slot (at most one pending signal, interrupt
// dominating unblock) and one FIFO waiter registry. Every Gate is
// independent; there is no process-wide state. The scheduling substrate is
// abstracted behind the Scheduler seam: ThreadScheduler runs waits on
// goroutines, ExecutorScheduler runs them on an asyncrt.Executor.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Gate is an interruptible wait primitive. The zero value is not usable;
// construct with New or NewThreaded.
type Gate struct {
	mu    sync.Mutex
	sched Scheduler
	slot  signalSlot
	reg   waiterRegistry
	last  WaiterID
}

// New constructs a gate on the given scheduling substrate.
func New(s Scheduler) *Gate {
	if s == nil {
		s = NewThreadScheduler()
	}
	return &Gate{
		sched: s,
		reg:   newWaiterRegistry(),
	}
}

// NewThreaded constructs a gate whose waiters are ordinary goroutines.
func NewThreaded() *Gate {
	return New(NewThreadScheduler())
}

// Wait suspends the caller until a signal, cancel, or timeout releases it.
// A timeout of zero or less waits indefinitely.
//
// If a signal is already pending it is consumed immediately and the caller
// never suspends. Otherwise the caller joins the tail of the FIFO registry:
// when several waiters exist, one signal releases exactly the earliest one.
// A timeout resumes the waiter with OutcomeTimedOut and never consumes a
// signal that arrives concurrently; such a signal stays pending for the
// next waiter.
func (g *Gate) Wait(timeout time.Duration) Outcome {
	return g.WaitRegistered(timeout, nil)
}

// WaitRegistered is Wait with a registration callback. When the caller has
// to suspend, registered receives the assigned WaiterID inside the gate's
// critical section, before suspension and before any signal can reach the
// waiter. The callback must not call back into the gate. It is not invoked
// on the fast path.
func (g *Gate) WaitRegistered(timeout time.Duration, registered func(WaiterID)) Outcome {
	g.mu.Lock()
	if k, ok := g.slot.take(); ok {
		g.mu.Unlock()
		return k.outcome()
	}
	res := g.sched.SuspendCurrent()
	g.last++
	id := g.last
	g.reg.push(&waiter{id: id, enqueuedMs: g.sched.NowMs(), res: res})
	if registered != nil {
		registered(id)
	}
	var tok TimeoutToken
	if timeout > 0 {
		tok = g.sched.ScheduleTimeout(timeout, func() { g.expire(id) })
	}
	g.mu.Unlock()

	out := res.Await()
	if tok != nil {
		tok.Stop()
	}
	return out
}

// WaitContext waits indefinitely and cancels the waiter when ctx is done,
// in which case the outcome is OutcomeCancelled. Only meaningful on a
// goroutine substrate.
func (g *Gate) WaitContext(ctx context.Context) Outcome {
	if ctx == nil {
		return g.Wait(0)
	}
	stop := make(chan struct{})
	defer close(stop)
	return g.WaitRegistered(0, func(id WaiterID) {
		go func() {
			select {
			case <-ctx.Done():
				_, _ = g.Cancel(id)
			case <-stop:
			}
		}()
	})
}

// Unblock releases the earliest waiter with OutcomeUnblocked, or, with no
// waiters, leaves an unblock signal pending unless an interrupt already is.
// Exactly one waiter is released per call; signals are never broadcast.
func (g *Gate) Unblock() {
	g.signal(SignalUnblock)
}

// Interrupt releases the earliest waiter with OutcomeInterrupted, or, with
// no waiters, leaves an interrupt signal pending, overwriting a pending
// unblock.
func (g *Gate) Interrupt() {
	g.signal(SignalInterrupt)
}

func (g *Gate) signal(k SignalKind) {
	g.mu.Lock()
	w, ok := g.reg.popFront()
	if !ok {
		g.slot.store(k)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.sched.Resume(w.res, k.outcome())
}

// Cancel removes one specific waiter and resumes it with OutcomeCancelled.
// It reports true when it released the waiter and false when the waiter had
// already been resolved through another path (a successful no-op). An ID
// this gate never issued yields an UnknownWaiterError. The signal slot is
// never touched.
func (g *Gate) Cancel(id WaiterID) (bool, error) {
	g.mu.Lock()
	if id == 0 || id > g.last {
		g.mu.Unlock()
		return false, &UnknownWaiterError{ID: id}
	}
	w, ok := g.reg.remove(id)
	g.mu.Unlock()
	if !ok {
		return false, nil
	}
	g.sched.Resume(w.res, OutcomeCancelled)
	return true, nil
}

// Reset clears any pending signal. It fails with a StateError while waiters
// are registered, since clearing would silently drop a signal someone is
// about to consume.
func (g *Gate) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n := g.reg.len(); n > 0 {
		return &StateError{Op: "reset", Reason: fmt.Sprintf("%d waiters registered", n)}
	}
	g.slot.clear()
	return nil
}

// Pending returns the kind of signal currently held by the slot.
func (g *Gate) Pending() SignalKind {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slot.pending
}

// WaiterCount returns the number of currently suspended waiters.
func (g *Gate) WaiterCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reg.len()
}

// Waiters returns a snapshot of the suspended waiters in FIFO order.
func (g *Gate) Waiters() []WaiterInfo {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reg.snapshot()
}

// expire is the timeout path. Whoever removes the registry entry first wins;
// if a signal or cancel got there already, the expiry is a no-op and the
// pending state is untouched.
func (g *Gate) expire(id WaiterID) {
	g.mu.Lock()
	w, ok := g.reg.remove(id)
	g.mu.Unlock()
	if ok {
		g.sched.Resume(w.res, OutcomeTimedOut)
	}
}
