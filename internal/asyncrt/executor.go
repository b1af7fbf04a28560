// Package asyncrt implements a single-threaded cooperative executor.
//
// Tasks are ordinary Go functions running on their own goroutines, but the
// executor hands control to exactly one task at a time. A task gives control
// back by parking on a waker key, yielding, or returning. While a task runs,
// the executor goroutine is blocked; executor state is therefore only ever
// touched by one goroutine at a time and needs no locking.
package asyncrt

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// TaskID identifies a spawned task.
type TaskID uint64

// TaskStatus describes task scheduling state.
type TaskStatus uint8

const (
	TaskReady TaskStatus = iota
	TaskRunning
	TaskWaiting
	TaskDone
)

// TaskFunc is the body of a task. It runs to completion cooperatively,
// handing control back through the methods of its Task.
type TaskFunc func(t *Task)

// Task is the executor-side handle passed to a running task body.
type Task struct {
	id     TaskID
	ex     *Executor
	fn     TaskFunc
	status TaskStatus
	resume chan struct{}
}

// ID returns the task's identifier.
func (t *Task) ID() TaskID {
	if t == nil {
		return 0
	}
	return t.id
}

// Config configures executor scheduling behavior.
type Config struct {
	// Fuzz picks the next ready task pseudo-randomly instead of FIFO,
	// using Seed for reproducible interleavings.
	Fuzz bool
	Seed uint64
	// Clock supplies time for timers. Nil defaults to a VirtualClock.
	Clock Clock
}

// Executor runs tasks one at a time with a deterministic FIFO scheduler by
// default. Fuzz scheduling is supported for reproducible interleavings.
type Executor struct {
	cfg         Config
	nextID      TaskID
	nextTimerID TimerID
	ready       []TaskID
	readySet    map[TaskID]struct{}
	tasks       map[TaskID]*Task
	waiters     map[WakerKey][]TaskID
	parked      map[TaskID]WakerKey
	timers      timerHeap
	timerByID   map[TimerID]*timer
	clock       Clock
	current     TaskID
	yield       chan struct{}
	rng         *rand.Rand
	running     bool
}

// NewExecutor constructs an executor with the provided configuration.
func NewExecutor(cfg Config) *Executor {
	ex := &Executor{
		cfg:       cfg,
		nextID:    1,
		readySet:  make(map[TaskID]struct{}),
		tasks:     make(map[TaskID]*Task),
		waiters:   make(map[WakerKey][]TaskID),
		parked:    make(map[TaskID]WakerKey),
		timerByID: make(map[TimerID]*timer),
		clock:     cfg.Clock,
		yield:     make(chan struct{}),
	}
	if ex.clock == nil {
		ex.clock = NewVirtualClock()
	}
	if cfg.Fuzz {
		seed := cfg.Seed
		if seed == 0 {
			seed = 1
		}
		ex.rng = rand.New(rand.NewSource(int64(seed))) //nolint:gosec // deterministic scheduler seed
	}
	return ex
}

// Current returns the ID of the task holding control, or zero.
func (e *Executor) Current() TaskID {
	if e == nil {
		return 0
	}
	return e.current
}

// CurrentTask returns the task holding control, or nil.
func (e *Executor) CurrentTask() *Task {
	if e == nil {
		return nil
	}
	return e.tasks[e.current]
}

// NowMs returns the executor's current time in milliseconds.
func (e *Executor) NowMs() uint64 {
	if e == nil {
		return 0
	}
	return e.clock.NowMs()
}

// Spawn registers a task and enqueues it for execution. The task body does
// not run until the executor dispatches it.
func (e *Executor) Spawn(fn TaskFunc) TaskID {
	if e == nil || fn == nil {
		return 0
	}
	id := e.nextID
	e.nextID++
	t := &Task{
		id:     id,
		ex:     e,
		fn:     fn,
		status: TaskReady,
		resume: make(chan struct{}),
	}
	e.tasks[id] = t
	e.enqueue(id)
	go t.loop()
	return id
}

// Run dispatches tasks until every spawned task has completed.
// When the ready queue drains it advances time to the next timer.
// It returns an error if tasks remain parked with no timer to wake them.
func (e *Executor) Run() error {
	if e == nil {
		return nil
	}
	if e.running {
		return errors.New("asyncrt: executor already running")
	}
	e.running = true
	defer func() { e.running = false }()

	for {
		id, ok := e.nextReady()
		if !ok {
			if e.fireDueTimers() {
				continue
			}
			if len(e.parked) > 0 {
				return e.deadlockError()
			}
			return nil
		}
		t := e.tasks[id]
		e.current = id
		t.status = TaskRunning
		t.resume <- struct{}{}
		<-e.yield
		e.current = 0
	}
}

// Wake moves a parked or waiting task back onto the ready queue.
func (e *Executor) Wake(id TaskID) {
	if e == nil {
		return
	}
	t := e.tasks[id]
	if t == nil || t.status == TaskDone {
		return
	}
	if key, ok := e.parked[id]; ok {
		e.removeWaiter(key, id)
		delete(e.parked, id)
	}
	e.enqueue(id)
}

// WakeKeyOne wakes the oldest task waiting on a key.
func (e *Executor) WakeKeyOne(key WakerKey) {
	if e == nil || !key.IsValid() {
		return
	}
	queue := e.waiters[key]
	if len(queue) == 0 {
		return
	}
	id := queue[0]
	queue = queue[1:]
	if len(queue) == 0 {
		delete(e.waiters, key)
	} else {
		e.waiters[key] = queue
	}
	delete(e.parked, id)
	e.enqueue(id)
}

// WakeKeyAll wakes every task waiting on a key, in park order.
func (e *Executor) WakeKeyAll(key WakerKey) {
	if e == nil || !key.IsValid() {
		return
	}
	queue := e.waiters[key]
	if len(queue) == 0 {
		return
	}
	delete(e.waiters, key)
	for _, id := range queue {
		delete(e.parked, id)
		e.enqueue(id)
	}
}

// ParkCurrent suspends the calling task on the given key until it is woken.
// It must be called from the goroutine of the task holding control.
func (e *Executor) ParkCurrent(key WakerKey) {
	if e == nil || !key.IsValid() {
		return
	}
	t := e.tasks[e.current]
	if t == nil {
		return
	}
	e.parkTask(t.id, key)
	e.yield <- struct{}{}
	<-t.resume
}

// Yield hands control back to the executor, leaving the task ready.
func (t *Task) Yield() {
	if t == nil || t.ex == nil {
		return
	}
	e := t.ex
	e.enqueue(t.id)
	e.yield <- struct{}{}
	<-t.resume
}

// Sleep parks the task until the executor clock reaches now + d milliseconds.
func (t *Task) Sleep(delayMs uint64) {
	if t == nil || t.ex == nil {
		return
	}
	e := t.ex
	id := e.scheduleTimer(t.id, delayMs, nil)
	e.ParkCurrent(TimerKey(id))
}

// Join parks the task until the target task completes.
// Joining a finished or unknown task returns immediately.
func (t *Task) Join(target TaskID) {
	if t == nil || t.ex == nil {
		return
	}
	e := t.ex
	other := e.tasks[target]
	if other == nil || other.status == TaskDone {
		return
	}
	e.ParkCurrent(JoinKey(target))
}

func (t *Task) loop() {
	<-t.resume
	t.fn(t)
	e := t.ex
	t.status = TaskDone
	e.WakeKeyAll(JoinKey(t.id))
	e.yield <- struct{}{}
}

func (e *Executor) nextReady() (TaskID, bool) {
	for len(e.ready) > 0 {
		idx := 0
		if e.cfg.Fuzz && e.rng != nil {
			idx = e.rng.Intn(len(e.ready))
		}
		id := e.ready[idx]
		copy(e.ready[idx:], e.ready[idx+1:])
		e.ready = e.ready[:len(e.ready)-1]
		delete(e.readySet, id)
		t := e.tasks[id]
		if t == nil || t.status == TaskDone {
			continue
		}
		return id, true
	}
	return 0, false
}

func (e *Executor) enqueue(id TaskID) {
	if _, ok := e.readySet[id]; ok {
		return
	}
	e.ready = append(e.ready, id)
	e.readySet[id] = struct{}{}
	if t := e.tasks[id]; t != nil && t.status != TaskDone {
		t.status = TaskReady
	}
}

func (e *Executor) parkTask(id TaskID, key WakerKey) {
	t := e.tasks[id]
	if t == nil || t.status == TaskDone {
		return
	}
	if prev, ok := e.parked[id]; ok {
		if prev == key {
			t.status = TaskWaiting
			return
		}
		e.removeWaiter(prev, id)
	}
	e.parked[id] = key
	e.waiters[key] = append(e.waiters[key], id)
	t.status = TaskWaiting
}

func (e *Executor) removeWaiter(key WakerKey, id TaskID) {
	queue := e.waiters[key]
	for i, waiting := range queue {
		if waiting == id {
			copy(queue[i:], queue[i+1:])
			queue = queue[:len(queue)-1]
			break
		}
	}
	if len(queue) == 0 {
		delete(e.waiters, key)
		return
	}
	e.waiters[key] = queue
}

func (e *Executor) deadlockError() error {
	ids := make([]TaskID, 0, len(e.parked))
	for id := range e.parked {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return fmt.Errorf("asyncrt: deadlock: tasks %v parked with no pending timer", ids)
}
