package gate

import (
	"errors"
	"testing"
	"time"

	"nbaio/internal/asyncrt"
)

func newCoopGate() (*asyncrt.Executor, *Gate) {
	ex := asyncrt.NewExecutor(asyncrt.Config{})
	return ex, New(NewExecutorScheduler(ex))
}

func TestCoopFIFOResumption(t *testing.T) {
	ex, g := newCoopGate()
	type record struct {
		waiter int
		out    Outcome
	}
	var got []record

	for i := range 3 {
		ex.Spawn(func(*asyncrt.Task) {
			got = append(got, record{waiter: i, out: g.Wait(0)})
		})
	}
	ex.Spawn(func(*asyncrt.Task) {
		g.Unblock()
		g.Unblock()
		g.Interrupt()
	})

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []record{
		{0, OutcomeUnblocked},
		{1, OutcomeUnblocked},
		{2, OutcomeInterrupted},
	}
	if len(got) != len(want) {
		t.Fatalf("resumptions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("resumption %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCoopFastPath(t *testing.T) {
	ex, g := newCoopGate()
	var out Outcome

	ex.Spawn(func(*asyncrt.Task) { g.Interrupt() })
	ex.Spawn(func(*asyncrt.Task) { out = g.Wait(0) })

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != OutcomeInterrupted {
		t.Fatalf("outcome = %v, want interrupted", out)
	}
	if p := g.Pending(); p != SignalNone {
		t.Fatalf("pending after fast path = %v", p)
	}
}

func TestCoopTimeoutVirtualTime(t *testing.T) {
	ex, g := newCoopGate()
	var out Outcome

	ex.Spawn(func(*asyncrt.Task) { out = g.Wait(100 * time.Millisecond) })

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != OutcomeTimedOut {
		t.Fatalf("outcome = %v, want timed-out", out)
	}
	if now := ex.NowMs(); now != 100 {
		t.Fatalf("executor time = %dms, want 100", now)
	}
}

func TestCoopSignalBeatsTimeout(t *testing.T) {
	ex, g := newCoopGate()
	var out Outcome

	ex.Spawn(func(*asyncrt.Task) { out = g.Wait(100 * time.Millisecond) })
	ex.Spawn(func(t *asyncrt.Task) {
		t.Sleep(90)
		g.Unblock()
	})

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != OutcomeUnblocked {
		t.Fatalf("outcome = %v, want unblocked (signal at 90ms beats 100ms timeout)", out)
	}
	if now := ex.NowMs(); now != 90 {
		t.Fatalf("executor time = %dms, want 90 (cancelled timer must not fire)", now)
	}
}

func TestCoopCancel(t *testing.T) {
	ex, g := newCoopGate()
	var (
		id       WaiterID
		out      Outcome
		released bool
		again    bool
		err      error
	)

	ex.Spawn(func(*asyncrt.Task) {
		out = g.WaitRegistered(0, func(w WaiterID) { id = w })
	})
	ex.Spawn(func(*asyncrt.Task) {
		released, err = g.Cancel(id)
		again, _ = g.Cancel(id)
	})

	if runErr := ex.Run(); runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	if err != nil || !released {
		t.Fatalf("Cancel = %v, %v", released, err)
	}
	if again {
		t.Fatalf("second Cancel reported a release")
	}
	if out != OutcomeCancelled {
		t.Fatalf("outcome = %v, want cancelled", out)
	}
}

func TestCoopResetWithActiveWaiter(t *testing.T) {
	ex, g := newCoopGate()
	var (
		id       WaiterID
		resetErr error
	)

	ex.Spawn(func(*asyncrt.Task) {
		g.WaitRegistered(0, func(w WaiterID) { id = w })
	})
	ex.Spawn(func(*asyncrt.Task) {
		resetErr = g.Reset()
		_, _ = g.Cancel(id)
	})

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var state *StateError
	if !errors.As(resetErr, &state) {
		t.Fatalf("Reset error = %v, want StateError", resetErr)
	}
}

func TestCoopResumeIdempotent(t *testing.T) {
	ex := asyncrt.NewExecutor(asyncrt.Config{})
	s := NewExecutorScheduler(ex)
	var warnings int
	s.Warn = func(string, ...any) { warnings++ }
	g := New(s)

	var out Outcome
	ex.Spawn(func(*asyncrt.Task) { out = g.Wait(0) })
	ex.Spawn(func(*asyncrt.Task) {
		g.Unblock()
		g.Unblock() // no waiter left; parks in the slot, not a double resume
	})

	if err := ex.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != OutcomeUnblocked {
		t.Fatalf("outcome = %v", out)
	}
	if p := g.Pending(); p != SignalUnblock {
		t.Fatalf("pending = %v, want unblock", p)
	}
	if warnings != 0 {
		t.Fatalf("unexpected scheduler warnings: %d", warnings)
	}
}
