package gate

import (
	"sync/atomic"
	"time"

	"nbaio/internal/asyncrt"
)

var nextExecSchedID atomic.Uint64

// ExecutorScheduler adapts an asyncrt.Executor to the Scheduler seam.
// Waits park the current executor task; timeouts use the executor's timer
// heap, so virtual clocks make timeout behavior fully deterministic.
//
// All gate operations must happen on the executor's tasks (or its timer
// callbacks); the adapter is single-threaded like the executor itself.
type ExecutorScheduler struct {
	// Warn receives programming-usage warnings such as double resumes.
	// Nil discards them.
	Warn func(format string, args ...any)

	ex      *asyncrt.Executor
	schedID uint64
	nextKey uint64
}

// NewExecutorScheduler returns a scheduler backed by the given executor.
func NewExecutorScheduler(ex *asyncrt.Executor) *ExecutorScheduler {
	return &ExecutorScheduler{
		ex:      ex,
		schedID: nextExecSchedID.Add(1),
	}
}

type execResumption struct {
	sched    *ExecutorScheduler
	key      asyncrt.WakerKey
	outcome  Outcome
	resolved bool
	awaited  bool
}

func (r *execResumption) Await() Outcome {
	if r.resolved {
		return r.outcome
	}
	r.awaited = true
	r.sched.ex.ParkCurrent(r.key)
	return r.outcome
}

func (s *ExecutorScheduler) SuspendCurrent() Resumption {
	s.nextKey++
	return &execResumption{
		sched: s,
		key:   asyncrt.GateKey(s.schedID, s.nextKey),
	}
}

func (s *ExecutorScheduler) Resume(r Resumption, out Outcome) {
	er, ok := r.(*execResumption)
	if !ok {
		s.warnf("resume with foreign resumption handle %T", r)
		return
	}
	if er.resolved {
		s.warnf("resume of already-resolved handle ignored")
		return
	}
	er.resolved = true
	er.outcome = out
	if er.awaited {
		s.ex.WakeKeyOne(er.key)
	}
}

type execTimeoutToken struct {
	ex *asyncrt.Executor
	id asyncrt.TimerID
}

func (t *execTimeoutToken) Stop() {
	if t != nil {
		t.ex.CancelTimer(t.id)
	}
}

func (s *ExecutorScheduler) ScheduleTimeout(d time.Duration, fn func()) TimeoutToken {
	if fn == nil {
		return &execTimeoutToken{}
	}
	delayMs := uint64(d.Milliseconds())
	if d > 0 && delayMs == 0 {
		delayMs = 1
	}
	id := s.ex.ScheduleCallback(delayMs, fn)
	return &execTimeoutToken{ex: s.ex, id: id}
}

func (s *ExecutorScheduler) NowMs() uint64 {
	return s.ex.NowMs()
}

func (s *ExecutorScheduler) warnf(format string, args ...any) {
	if s != nil && s.Warn != nil {
		s.Warn(format, args...)
	}
}
