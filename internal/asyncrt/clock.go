package asyncrt

import (
	"math"
	"time"

	"fortio.org/safecast"
)

// Clock supplies time and blocking behavior for timers.
type Clock interface {
	NowMs() uint64
	SleepUntilMs(deadlineMs uint64)
}

// VirtualClock advances executor time without blocking.
type VirtualClock struct {
	nowMs uint64
}

// NewVirtualClock returns a virtual clock starting at zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

func (c *VirtualClock) NowMs() uint64 {
	if c == nil {
		return 0
	}
	return c.nowMs
}

func (c *VirtualClock) SleepUntilMs(deadlineMs uint64) {
	if c == nil || deadlineMs <= c.nowMs {
		return
	}
	c.nowMs = deadlineMs
}

// RealClock measures monotonic time since its creation and blocks the OS
// thread until the requested deadline.
type RealClock struct {
	start time.Time
}

// NewRealClock returns a real clock starting at zero.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

func (c *RealClock) NowMs() uint64 {
	if c == nil {
		return 0
	}
	elapsed := time.Since(c.start) / time.Millisecond
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed)
}

func (c *RealClock) SleepUntilMs(deadlineMs uint64) {
	if c == nil {
		return
	}
	now := c.NowMs()
	if deadlineMs <= now {
		return
	}
	delta := deadlineMs - now
	maxMs := uint64(math.MaxInt64 / int64(time.Millisecond))
	if delta > maxMs {
		delta = maxMs
	}
	delay, err := safecast.Conv[int64](delta)
	if err != nil {
		return
	}
	time.Sleep(time.Duration(delay) * time.Millisecond)
}
