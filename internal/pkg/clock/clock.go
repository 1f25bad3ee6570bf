// Package clock abstracts wall time and delayed callbacks so timer-driven
// components (debounce, retry backoff, health checks) run deterministically
// under test.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable pending callback
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Clock provides the current time and delayed execution
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// New returns a Clock backed by the time package
func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Mock is a manually advanced Clock. Callbacks run synchronously on the
// goroutine calling Add, in deadline order.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*mockTimer
}

type mockTimer struct {
	mock     *Mock
	deadline time.Time
	seq      uint64
	fn       func()
	done     bool
}

// NewMock returns a Mock positioned at start
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now returns the mock's current time
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once the mock has been advanced by d
func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &mockTimer{mock: m, deadline: m.now.Add(d), seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Add advances the clock by d, firing every timer whose deadline is reached,
// including timers scheduled by callbacks fired during the same advance
func (m *Mock) Add(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		m.mu.Unlock()
		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// popDue removes and returns the earliest timer due at or before target.
// Caller holds m.mu.
func (m *Mock) popDue(target time.Time) *mockTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].deadline.Equal(m.timers[j].deadline) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].deadline.Before(m.timers[j].deadline)
	})
	first := m.timers[0]
	if first.deadline.After(target) {
		return nil
	}
	m.timers = m.timers[1:]
	first.done = true
	return first
}

func (t *mockTimer) Stop() bool {
	m := t.mock
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
	return true
}
