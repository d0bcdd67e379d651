package interact

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/floatkit/pkg/clock"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/dom"
)

// Reason tells listeners what caused an open state change.
type Reason string

const (
	ReasonHover        Reason = "hover"
	ReasonFocus        Reason = "focus"
	ReasonBlur         Reason = "blur"
	ReasonEscapeKey    Reason = "escape-key"
	ReasonOutsidePress Reason = "outside-press"
	ReasonGroup        Reason = "group"
	ReasonProgrammatic Reason = "programmatic"
	ReasonDispose      Reason = "dispose"
)

// Phase is the open state plus whatever transition is pending.
type Phase uint8

const (
	PhaseClosed Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// ElementsFunc returns the current reference and floating elements. Either
// may be nil.
type ElementsFunc func() (reference, floating dom.Element)

// Options configures a Controller.
type Options struct {
	// ID identifies the controller in its delay group and in the floating
	// element's id. Generated when empty.
	ID string

	InitialOpen bool

	// Clock drives the open/close timers. Defaults to clock.Real().
	Clock clock.Clock

	// Group is the delay group this controller belongs to, if any.
	Group *delaygroup.Group

	// Elements lets dismiss and focus handling test containment.
	Elements ElementsFunc

	Logger *slog.Logger
}

var idCounter atomic.Uint64

// Controller is the single owner of an open/closed state.
type Controller struct {
	id       string
	logger   *slog.Logger
	group    *delaygroup.Group
	elements ElementsFunc

	openSlot  *clock.Slot
	closeSlot *clock.Slot

	mu         sync.Mutex
	open       bool
	disposed   bool
	nextListen int
	listeners  map[int]func(open bool, reason Reason)
	unregister func()
}

// New creates a controller.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ID == "" {
		opts.ID = "floating-" + strconv.FormatUint(idCounter.Add(1), 10)
	}
	c := &Controller{
		id:        opts.ID,
		logger:    opts.Logger,
		group:     opts.Group,
		elements:  opts.Elements,
		openSlot:  clock.NewSlot(opts.Clock),
		closeSlot: clock.NewSlot(opts.Clock),
		open:      opts.InitialOpen,
		listeners: make(map[int]func(bool, Reason)),
	}
	if c.group != nil {
		c.unregister = c.group.Register(c.id, func(current string) {
			if current != c.id && c.Open() {
				c.SetOpen(false, ReasonGroup)
			}
		})
		if c.open {
			c.group.SetCurrentID(c.id)
		}
	}
	return c
}

// ID returns the controller's identity.
func (c *Controller) ID() string { return c.id }

// FloatingID is the DOM id given to the floating element.
func (c *Controller) FloatingID() string { return c.id + "-floating" }

// Group returns the delay group, or nil.
func (c *Controller) Group() *delaygroup.Group { return c.group }

// Open reports the current open state.
func (c *Controller) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Phase derives the phase from the open state and pending timers.
func (c *Controller) Phase() Phase {
	open := c.Open()
	switch {
	case open && c.closeSlot.Pending():
		return PhaseClosing
	case open:
		return PhaseOpen
	case c.openSlot.Pending():
		return PhaseOpening
	default:
		return PhaseClosed
	}
}

// SetOpen is the only way the open state changes. It cancels any pending
// timers, since a direct transition supersedes them. Listeners run only when
// the state actually changes.
func (c *Controller) SetOpen(open bool, reason Reason) {
	c.openSlot.Cancel()
	c.closeSlot.Cancel()

	c.mu.Lock()
	if c.open == open || (open && c.disposed) {
		c.mu.Unlock()
		return
	}
	c.open = open
	listeners := c.sortedListeners()
	c.mu.Unlock()

	c.logger.Debug("floating open state changed",
		"id", c.id,
		"open", open,
		"reason", string(reason),
	)

	if c.group != nil {
		if open {
			c.group.SetCurrentID(c.id)
		} else {
			c.group.Release(c.id)
		}
	}
	for _, fn := range listeners {
		fn(open, reason)
	}
}

// OnOpenChange subscribes fn to open state changes. Listeners run in
// subscription order. The returned func unsubscribes.
func (c *Controller) OnOpenChange(fn func(open bool, reason Reason)) func() {
	c.mu.Lock()
	id := c.nextListen
	c.nextListen++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) sortedListeners() []func(bool, Reason) {
	out := make([]func(bool, Reason), 0, len(c.listeners))
	for i := 0; i < c.nextListen; i++ {
		if fn, ok := c.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// scheduleOpen opens after d, or now when d is not positive.
func (c *Controller) scheduleOpen(d time.Duration, reason Reason) {
	if d <= 0 {
		c.SetOpen(true, reason)
		return
	}
	c.openSlot.Schedule(d, func() { c.SetOpen(true, reason) })
}

// scheduleClose closes after d, or now when d is not positive.
func (c *Controller) scheduleClose(d time.Duration, reason Reason) {
	if d <= 0 {
		c.SetOpen(false, reason)
		return
	}
	c.closeSlot.Schedule(d, func() { c.SetOpen(false, reason) })
}

// Elements returns the current reference and floating elements.
func (c *Controller) Elements() (reference, floating dom.Element) {
	if c.elements == nil {
		return nil, nil
	}
	return c.elements()
}

// Dispose cancels pending timers, closes, and leaves the delay group. The
// controller cannot be reopened afterwards.
func (c *Controller) Dispose() {
	c.SetOpen(false, ReasonDispose)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	unregister := c.unregister
	c.unregister = nil
	c.listeners = make(map[int]func(bool, Reason))
	c.mu.Unlock()

	if unregister != nil {
		unregister()
	}
}
