// Package clock abstracts time for open/close delays and exit animations.
//
// Real wraps the time package. Manual is a hand-driven clock for tests: timers
// only fire from Advance, on the caller's goroutine, in due order. Dispatching
// routes timer callbacks through an event loop so they serialize with UI
// events. Slot holds at most one pending timer and cancels it whenever a new
// one is scheduled.
package clock

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped it before
	// it fired.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Dispatching wraps c so every timer callback is handed to dispatch instead of
// running on the timer goroutine. A timer stopped before its dispatched
// callback runs does not run it.
func Dispatching(c Clock, dispatch func(func())) Clock {
	return &dispatchingClock{inner: c, dispatch: dispatch}
}

type dispatchingClock struct {
	inner    Clock
	dispatch func(func())
}

func (c *dispatchingClock) Now() time.Time { return c.inner.Now() }

func (c *dispatchingClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &dispatchedTimer{}
	t.inner = c.inner.AfterFunc(d, func() {
		c.dispatch(func() {
			if t.done.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type dispatchedTimer struct {
	inner Timer
	done  atomic.Bool
}

func (t *dispatchedTimer) Stop() bool {
	t.inner.Stop()
	return t.done.CompareAndSwap(false, true)
}

// Manual is a clock that only advances when told to.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	clock   *Manual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.clock.remove(t)
	return true
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Clock.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{clock: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	return t
}

// Advance moves time forward by d, firing every timer that comes due,
// including timers scheduled by callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		if len(m.timers) == 0 || m.timers[0].due.After(target) {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.timers[0]
		m.timers = m.timers[1:]
		t.stopped = true
		if t.due.After(m.now) {
			m.now = t.due
		}
		m.mu.Unlock()

		t.fn()
	}
}

// Pending returns the number of timers waiting to fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) remove(t *manualTimer) {
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
