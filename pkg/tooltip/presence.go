package tooltip

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/vango-dev/floatkit/pkg/clock"
)

// TransitionKind selects how a presence transition is timed.
type TransitionKind uint8

const (
	TransitionSpring TransitionKind = iota
	TransitionTween
)

// Transition is the timing of an enter or exit animation.
type Transition struct {
	Kind TransitionKind

	// Duration applies to tweens.
	Duration time.Duration

	// Damping, Stiffness and Mass apply to springs.
	Damping   float64
	Stiffness float64
	Mass      float64
}

// Spring returns a unit-mass spring transition.
func Spring(damping, stiffness float64) Transition {
	return Transition{Kind: TransitionSpring, Damping: damping, Stiffness: stiffness, Mass: 1}
}

// Tween returns a fixed-duration transition.
func Tween(d time.Duration) Transition {
	return Transition{Kind: TransitionTween, Duration: d}
}

var (
	// DefaultTransition is used outside the grouped phase.
	DefaultTransition = Spring(20, 300)

	// GroupedTransition is used when moving between members of a delay group.
	GroupedTransition = Tween(80 * time.Millisecond)
)

// SettleDuration is how long the animation runs. A spring is considered
// settled once its envelope has decayed to e^-4 (about 2%).
func (t Transition) SettleDuration() time.Duration {
	if t.Kind == TransitionTween {
		return t.Duration
	}
	mass := t.Mass
	if mass <= 0 {
		mass = 1
	}
	decay := t.Damping / (2 * mass)
	if decay <= 0 {
		return 0
	}
	return time.Duration(math.Round(4 / decay * float64(time.Second)))
}

// overshoots reports whether the spring is underdamped.
func (t Transition) overshoots() bool {
	mass := t.Mass
	if mass <= 0 {
		mass = 1
	}
	return t.Damping < 2*math.Sqrt(t.Stiffness*mass)
}

// CSS renders the transition for the given properties.
func (t Transition) CSS(properties ...string) string {
	secs := strconv.FormatFloat(t.SettleDuration().Seconds(), 'f', -1, 64) + "s"
	easing := "linear"
	if t.Kind == TransitionSpring {
		easing = "cubic-bezier(0.22, 1, 0.36, 1)"
		if t.overshoots() {
			easing = "cubic-bezier(0.34, 1.56, 0.64, 1)"
		}
	}
	out := ""
	for i, p := range properties {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s %s", p, secs, easing)
	}
	return out
}

// Keyframe is the animated style of the floating content.
type Keyframe struct {
	Opacity float64
	Scale   float64
}

var (
	// EnterFrom is where content starts when it appears.
	EnterFrom = Keyframe{Opacity: 0, Scale: 0.85}
	// Shown is the resting style.
	Shown = Keyframe{Opacity: 1, Scale: 1}
	// ExitTo is where content ends before it is removed.
	ExitTo = Keyframe{Opacity: 0, Scale: 1}
)

// Presence keeps content mounted while its exit transition runs.
type Presence struct {
	slot *clock.Slot

	mu         sync.Mutex
	mounted    bool
	exiting    bool
	transition Transition
}

// NewPresence creates an unmounted presence driven by c.
func NewPresence(c clock.Clock) *Presence {
	if c == nil {
		c = clock.Real()
	}
	return &Presence{slot: clock.NewSlot(c), transition: DefaultTransition}
}

// Show mounts the content, interrupting a running exit.
func (p *Presence) Show(t Transition) {
	p.slot.Cancel()
	p.mu.Lock()
	p.mounted = true
	p.exiting = false
	p.transition = t
	p.mu.Unlock()
}

// Hide starts the exit transition. done runs once the content is unmounted.
// Hiding content that is not mounted does nothing.
func (p *Presence) Hide(t Transition, done func()) {
	p.mu.Lock()
	if !p.mounted || p.exiting {
		p.mu.Unlock()
		return
	}
	p.exiting = true
	p.transition = t
	p.mu.Unlock()

	finish := func() {
		p.mu.Lock()
		p.mounted = false
		p.exiting = false
		p.mu.Unlock()
		if done != nil {
			done()
		}
	}
	if d := t.SettleDuration(); d > 0 {
		p.slot.Schedule(d, finish)
		return
	}
	finish()
}

// Cancel unmounts immediately without running an exit.
func (p *Presence) Cancel() {
	p.slot.Cancel()
	p.mu.Lock()
	p.mounted = false
	p.exiting = false
	p.mu.Unlock()
}

// Mounted reports whether the content is in the tree.
func (p *Presence) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// Exiting reports whether the exit transition is running.
func (p *Presence) Exiting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exiting
}

// Transition returns the transition of the last Show or Hide.
func (p *Presence) Transition() Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transition
}

// Target returns the keyframe the content is animating towards.
func (p *Presence) Target() Keyframe {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.exiting:
		return ExitTo
	case p.mounted:
		return Shown
	default:
		return EnterFrom
	}
}
