// Package clock provides a time source that can be replaced in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time and deferred execution.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc runs f in its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a deferred function scheduled via AfterFunc.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the
	// timer before it fired.
	Stop() bool
}

// New returns a Clock backed by the real system time.
func New() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Mock is a manually advanced Clock for tests. Timers fire synchronously
// inside Advance once their deadline is reached.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*mockTimer
}

// NewMock creates a Mock clock set to the given time.
func NewMock(now time.Time) *Mock {
	return &Mock{
		now:    now,
		timers: make(map[int]*mockTimer),
	}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers f to run when the mock is advanced past d from now.
func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t := &mockTimer{
		clock: m,
		id:    m.nextID,
		at:    m.now.Add(d),
		fn:    f,
	}
	m.timers[t.id] = t
	return t
}

// Advance moves the mock's time forward by d and fires every timer whose
// deadline has been reached, in deadline order.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now

	var due []*mockTimer
	for id, t := range m.timers {
		if !t.at.After(now) {
			due = append(due, t)
			delete(m.timers, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

// Set jumps the mock's time to the given instant, firing due timers.
func (m *Mock) Set(now time.Time) {
	m.mu.Lock()
	d := now.Sub(m.now)
	m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.Advance(d)
}

type mockTimer struct {
	clock *Mock
	id    int
	at    time.Time
	fn    func()
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}
