package gate

import (
	"sync/atomic"
	"time"

	"fortio.org/safecast"
)

// Resumption is an opaque handle for one suspended wait. Await blocks the
// calling task until a scheduler delivers its outcome.
type Resumption interface {
	Await() Outcome
}

// TimeoutToken cancels a scheduled timeout. Stop must be reliable: after it
// returns, the timeout callback either already ran or never will as far as
// the caller can observe.
type TimeoutToken interface {
	Stop()
}

// Scheduler maps suspension and resumption onto a scheduling substrate.
// It is the only seam between a Gate and the substrate running its callers.
type Scheduler interface {
	// SuspendCurrent creates a resumption handle for the calling task.
	// The task is not suspended until it calls Await on the handle.
	SuspendCurrent() Resumption
	// Resume delivers an outcome to a handle. Resuming an already-resolved
	// handle is a no-op surfaced through the scheduler's warn hook.
	Resume(r Resumption, out Outcome)
	// ScheduleTimeout arranges fn to run after d elapses.
	ScheduleTimeout(d time.Duration, fn func()) TimeoutToken
	// NowMs returns the substrate's current time in milliseconds.
	NowMs() uint64
}

// ThreadScheduler runs waits on ordinary goroutines. Suspension blocks the
// calling goroutine on a buffered channel; timeouts use time.AfterFunc.
type ThreadScheduler struct {
	// Warn receives programming-usage warnings such as double resumes.
	// Nil discards them.
	Warn func(format string, args ...any)

	start time.Time
}

// NewThreadScheduler returns a goroutine-backed scheduler.
func NewThreadScheduler() *ThreadScheduler {
	return &ThreadScheduler{start: time.Now()}
}

type threadResumption struct {
	ch       chan Outcome
	resolved atomic.Bool
}

func (r *threadResumption) Await() Outcome {
	return <-r.ch
}

func (s *ThreadScheduler) SuspendCurrent() Resumption {
	return &threadResumption{ch: make(chan Outcome, 1)}
}

func (s *ThreadScheduler) Resume(r Resumption, out Outcome) {
	tr, ok := r.(*threadResumption)
	if !ok {
		s.warnf("resume with foreign resumption handle %T", r)
		return
	}
	if !tr.resolved.CompareAndSwap(false, true) {
		s.warnf("resume of already-resolved handle ignored")
		return
	}
	tr.ch <- out
}

type threadTimeoutToken struct {
	timer *time.Timer
}

func (t *threadTimeoutToken) Stop() {
	if t != nil && t.timer != nil {
		t.timer.Stop()
	}
}

func (s *ThreadScheduler) ScheduleTimeout(d time.Duration, fn func()) TimeoutToken {
	if fn == nil {
		return &threadTimeoutToken{}
	}
	return &threadTimeoutToken{timer: time.AfterFunc(d, fn)}
}

func (s *ThreadScheduler) NowMs() uint64 {
	if s == nil {
		return 0
	}
	elapsed := time.Since(s.start) / time.Millisecond
	ms, err := safecast.Conv[uint64](int64(elapsed))
	if err != nil {
		return 0
	}
	return ms
}

func (s *ThreadScheduler) warnf(format string, args ...any) {
	if s != nil && s.Warn != nil {
		s.Warn(format, args...)
	}
}
