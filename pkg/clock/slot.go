package clock

import (
	"sync"
	"time"
)

// Slot owns at most one pending timer. Scheduling replaces (and cancels) the
// previous timer; a superseded callback never runs even if its timer already
// fired and the callback is queued.
type Slot struct {
	clock Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewSlot creates an empty slot on c.
func NewSlot(c Clock) *Slot {
	return &Slot{clock: c}
}

// Schedule cancels any pending timer and runs fn after d.
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen || s.timer == nil {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
	s.mu.Unlock()
}

// Cancel stops the pending timer. It reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

// Pending reports whether a timer is waiting to fire.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
