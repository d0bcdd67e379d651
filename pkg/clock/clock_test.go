package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInOrder(t *testing.T) {
	c := NewManual(epoch)
	var order []string
	c.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	c.AfterFunc(10*time.Millisecond, func() { order = append(order, "b") })

	c.Advance(20 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order after 20ms = %v", order)
	}
	if got := c.Now().Sub(epoch); got != 20*time.Millisecond {
		t.Errorf("Now advanced by %v", got)
	}

	c.Advance(10 * time.Millisecond)
	if len(order) != 3 {
		t.Errorf("order after 30ms = %v", order)
	}
}

func TestManualStop(t *testing.T) {
	c := NewManual(epoch)
	fired := false
	timer := c.AfterFunc(time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Error("Stop should report true for pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	c.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending = %d", c.Pending())
	}
}

func TestManualNestedScheduling(t *testing.T) {
	c := NewManual(epoch)
	var at []time.Duration
	c.AfterFunc(10*time.Millisecond, func() {
		at = append(at, c.Now().Sub(epoch))
		c.AfterFunc(5*time.Millisecond, func() {
			at = append(at, c.Now().Sub(epoch))
		})
	})
	c.Advance(50 * time.Millisecond)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 15*time.Millisecond {
		t.Errorf("fire times = %v", at)
	}
}

func TestSlotSupersedes(t *testing.T) {
	c := NewManual(epoch)
	s := NewSlot(c)
	var got []string
	s.Schedule(10*time.Millisecond, func() { got = append(got, "first") })
	s.Schedule(20*time.Millisecond, func() { got = append(got, "second") })
	if !s.Pending() {
		t.Fatal("slot should be pending")
	}
	c.Advance(30 * time.Millisecond)
	if len(got) != 1 || got[0] != "second" {
		t.Errorf("got %v", got)
	}
	if s.Pending() {
		t.Error("slot should be idle after firing")
	}
}

func TestSlotCancel(t *testing.T) {
	c := NewManual(epoch)
	s := NewSlot(c)
	fired := false
	s.Schedule(10*time.Millisecond, func() { fired = true })
	if !s.Cancel() {
		t.Error("Cancel should report pending timer")
	}
	if s.Cancel() {
		t.Error("second Cancel should report false")
	}
	c.Advance(time.Second)
	if fired {
		t.Error("cancelled timer fired")
	}
}

func TestDispatchingQueuesCallbacks(t *testing.T) {
	c := NewManual(epoch)
	var queue []func()
	d := Dispatching(c, func(fn func()) { queue = append(queue, fn) })

	fired := 0
	d.AfterFunc(time.Millisecond, func() { fired++ })
	stopped := d.AfterFunc(time.Millisecond, func() { fired += 10 })

	c.Advance(time.Millisecond)
	if fired != 0 {
		t.Fatal("callbacks should wait for the dispatcher")
	}
	if len(queue) != 2 {
		t.Fatalf("queue len = %d", len(queue))
	}

	// Stopping after the timer fired but before dispatch still suppresses it.
	if !stopped.Stop() {
		t.Error("Stop before dispatch should report true")
	}
	for _, fn := range queue {
		fn()
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestRealClock(t *testing.T) {
	done := make(chan struct{})
	Real().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
