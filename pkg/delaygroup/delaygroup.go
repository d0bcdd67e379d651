// Package delaygroup coordinates open delays across a set of floating
// elements.
//
// A Group is created once and handed to every member. When a member opens it
// becomes current: the group's open delay drops to GroupedOpenDelay so the
// next member opens almost immediately, and any other open member is told to
// close. When the current member closes and the group stays idle for the
// grace window, the configured delay comes back.
//
//	group := delaygroup.New(delaygroup.Uniform(200 * time.Millisecond))
//	a := tooltip.New(doc, tooltip.Options{ID: "save", Group: group})
//	b := tooltip.New(doc, tooltip.Options{ID: "undo", Group: group})
package delaygroup

import (
	"sync"
	"time"

	"github.com/vango-dev/floatkit/pkg/clock"
)

// GroupedOpenDelay is the open delay while the group is in its grouped
// phase. It only needs to be near zero.
var GroupedOpenDelay = time.Millisecond

// Delay holds open and close delays.
type Delay struct {
	Open  time.Duration `json:"open"`
	Close time.Duration `json:"close"`
}

// Uniform returns a Delay with the same open and close duration.
func Uniform(d time.Duration) Delay {
	return Delay{Open: d, Close: d}
}

// IsZero reports whether both delays are zero.
func (d Delay) IsZero() bool {
	return d.Open == 0 && d.Close == 0
}

// Group is shared timing state for its members.
type Group struct {
	clock   clock.Clock
	timeout time.Duration
	initial Delay

	mu        sync.Mutex
	delay     Delay
	currentID string
	switched  bool
	members   map[string]func(currentID string)
	release   *clock.Slot
}

// Option configures a Group.
type Option func(*Group)

// WithTimeout sets the grace window after the current member closes during
// which the grouped phase survives.
func WithTimeout(d time.Duration) Option {
	return func(g *Group) {
		g.timeout = d
	}
}

// WithClock sets the clock used for the grace window.
func WithClock(c clock.Clock) Option {
	return func(g *Group) {
		if c != nil {
			g.clock = c
		}
	}
}

// New creates a group with the given initial delay.
func New(delay Delay, opts ...Option) *Group {
	g := &Group{
		clock:   clock.Real(),
		initial: delay,
		delay:   delay,
		members: make(map[string]func(string)),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.release = clock.NewSlot(g.clock)
	return g
}

// Delay returns the delay members should use right now.
func (g *Group) Delay() Delay {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delay
}

// InitialDelay returns the configured delay.
func (g *Group) InitialDelay() Delay {
	return g.initial
}

// CurrentID returns the id of the current member, or "".
func (g *Group) CurrentID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentID
}

// InstantPhase reports whether the group is in its grouped phase.
func (g *Group) InstantPhase() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentID != "" && g.delay.Open == GroupedOpenDelay
}

// Switched reports whether the current member took over from another member
// that was still current, i.e. the user moved between members without the
// group going idle.
func (g *Group) Switched() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.switched
}

// Register adds a member. onCurrentChange runs whenever a different member
// becomes current; members close themselves in response. The returned func
// unregisters the member.
func (g *Group) Register(id string, onCurrentChange func(currentID string)) func() {
	g.mu.Lock()
	g.members[id] = onCurrentChange
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.members, id)
		current := g.currentID == id
		g.mu.Unlock()
		if current {
			g.reset(id)
		}
	}
}

// SetCurrentID marks id as the open member. It cancels a pending reset,
// switches the group into its grouped phase and tells every other member.
func (g *Group) SetCurrentID(id string) {
	g.release.Cancel()

	g.mu.Lock()
	g.switched = g.currentID != "" && g.currentID != id
	g.currentID = id
	g.delay = Delay{Open: GroupedOpenDelay, Close: g.initial.Close}
	notify := make([]func(string), 0, len(g.members))
	for memberID, fn := range g.members {
		if memberID != id && fn != nil {
			notify = append(notify, fn)
		}
	}
	g.mu.Unlock()

	for _, fn := range notify {
		fn(id)
	}
}

// Release is called by a member when it closes. If it is still current the
// group returns to its initial delay after the grace window.
func (g *Group) Release(id string) {
	g.mu.Lock()
	current := g.currentID == id
	g.mu.Unlock()
	if !current {
		return
	}

	if g.timeout <= 0 {
		g.reset(id)
		return
	}
	g.release.Schedule(g.timeout, func() { g.reset(id) })
}

func (g *Group) reset(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentID != id {
		return
	}
	g.currentID = ""
	g.switched = false
	g.delay = g.initial
}
