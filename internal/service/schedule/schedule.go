// Package schedule abstracts delayed callbacks so services can run on real
// timers in production and on virtual time in tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Task is a pending callback.
type Task interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Timer schedules callbacks on runtime timers.
type Timer struct{}

// AfterFunc implements Scheduler using time.AfterFunc.
func (Timer) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Manual is a virtual-time Scheduler. Callbacks only run from Advance, on the
// caller's goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks map[uint64]*manualTask
}

type manualTask struct {
	owner *Manual
	id    uint64
	due   time.Duration
	fn    func()
}

// NewManual returns a Manual scheduler positioned at virtual time zero.
func NewManual() *Manual {
	return &Manual{tasks: make(map[uint64]*manualTask)}
}

// AfterFunc registers fn to run once virtual time reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	task := &manualTask{owner: m, id: m.seq, due: m.now + d, fn: fn}
	m.tasks[task.id] = task
	return task
}

// Advance moves virtual time forward by d and runs every callback that came
// due, ordered by due time then registration order. Callbacks registered
// while advancing run in the same call if they fall inside the window.
// It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	fired := 0
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return fired
		}
		delete(m.tasks, next.id)
		if next.due > m.now {
			m.now = next.due
		}
		m.mu.Unlock()

		next.fn()
		fired++
	}
}

// Pending returns the number of callbacks not yet run or stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Elapsed returns the current virtual time.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTask {
	due := make([]*manualTask, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.due <= target {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})
	return due[0]
}

func (t *manualTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if _, ok := t.owner.tasks[t.id]; !ok {
		return false
	}
	delete(t.owner.tasks, t.id)
	return true
}
