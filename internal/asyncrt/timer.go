package asyncrt

import "container/heap"

// TimerID identifies a scheduled timer.
type TimerID uint64

// timer represents a single scheduled wakeup or callback.
type timer struct {
	id         TimerID
	deadlineMs uint64
	taskID     TaskID
	fn         func()
	cancelled  bool
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadlineMs == h[j].deadlineMs {
		return h[i].id < h[j].id
	}
	return h[i].deadlineMs < h[j].deadlineMs
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	tm, ok := x.(*timer)
	if !ok || tm == nil {
		return
	}
	*h = append(*h, tm)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	if n == 0 {
		return (*timer)(nil)
	}
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ScheduleCallback arranges fn to run on the executor goroutine once the
// clock reaches now + delayMs. The returned ID cancels it via CancelTimer.
func (e *Executor) ScheduleCallback(delayMs uint64, fn func()) TimerID {
	if e == nil || fn == nil {
		return 0
	}
	return e.scheduleTimer(0, delayMs, fn)
}

// CancelTimer marks a timer as cancelled. A cancelled timer never fires.
func (e *Executor) CancelTimer(id TimerID) {
	if e == nil || id == 0 {
		return
	}
	tm := e.timerByID[id]
	if tm == nil {
		return
	}
	tm.cancelled = true
	delete(e.timerByID, id)
}

// TimerActive reports whether a timer is still pending.
func (e *Executor) TimerActive(id TimerID) bool {
	if e == nil || id == 0 {
		return false
	}
	tm := e.timerByID[id]
	return tm != nil && !tm.cancelled
}

func (e *Executor) scheduleTimer(taskID TaskID, delayMs uint64, fn func()) TimerID {
	if e.nextTimerID == 0 {
		e.nextTimerID = 1
	}
	id := e.nextTimerID
	e.nextTimerID++
	tm := &timer{
		id:         id,
		deadlineMs: e.clock.NowMs() + delayMs,
		taskID:     taskID,
		fn:         fn,
	}
	e.timerByID[id] = tm
	heap.Push(&e.timers, tm)
	return id
}

// fireDueTimers advances time to the next pending timer and fires every
// timer due at or before the new time. It reports whether any timer fired.
func (e *Executor) fireDueTimers() bool {
	for {
		if len(e.timers) == 0 {
			return false
		}
		tm, ok := heap.Pop(&e.timers).(*timer)
		if !ok || tm == nil || tm.cancelled {
			continue
		}
		e.clock.SleepUntilMs(tm.deadlineMs)
		e.fireTimer(tm)
		now := e.clock.NowMs()
		for len(e.timers) > 0 {
			next := e.timers[0]
			if next == nil || next.cancelled {
				heap.Pop(&e.timers)
				continue
			}
			if next.deadlineMs > now {
				break
			}
			heap.Pop(&e.timers)
			e.fireTimer(next)
		}
		return true
	}
}

func (e *Executor) fireTimer(tm *timer) {
	if tm.cancelled {
		return
	}
	tm.cancelled = true
	delete(e.timerByID, tm.id)
	if tm.fn != nil {
		tm.fn()
		return
	}
	if tm.taskID != 0 {
		e.Wake(tm.taskID)
	}
}
