package tooltip

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/autoupdate"
	"github.com/vango-dev/floatkit/pkg/clock"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/interact"
	"github.com/vango-dev/floatkit/pkg/metrics"
	"github.com/vango-dev/floatkit/pkg/position"
)

// DefaultGroupDelay is the delay of a group created without one.
const DefaultGroupDelay = 200 * time.Millisecond

// NewGroup creates a tooltip delay group. A zero delay uses
// DefaultGroupDelay for both open and close.
func NewGroup(delay delaygroup.Delay, opts ...delaygroup.Option) *delaygroup.Group {
	if delay.IsZero() {
		delay = delaygroup.Uniform(DefaultGroupDelay)
	}
	return delaygroup.New(delay, opts...)
}

// Options configures a Tooltip.
type Options struct {
	// ID identifies the tooltip in its group and in rendered element ids.
	ID string

	// Placement is the preferred placement, "bottom" when empty.
	Placement string

	// Delay overrides the group's delay when non-zero.
	Delay delaygroup.Delay

	InitialOpen bool

	Group *delaygroup.Group

	// Portal receives the floating content. A private portal is created when
	// nil.
	Portal *Portal

	Clock    clock.Clock
	Resolver *position.Resolver
	Metrics  *metrics.Collector
	Logger   *slog.Logger

	// ReferenceRefs and FloatingRefs are caller refs assigned alongside the
	// tooltip's own.
	ReferenceRefs []dom.RefSetter
	FloatingRefs  []dom.RefSetter
}

// DefaultMiddleware is the tooltip pipeline.
func DefaultMiddleware() []position.Middleware {
	return []position.Middleware{
		position.Offset{MainAxis: 8},
		position.Flip{},
		position.Shift{},
	}
}

var tooltipCounter uint64
var tooltipCounterMu sync.Mutex

func nextID() string {
	tooltipCounterMu.Lock()
	defer tooltipCounterMu.Unlock()
	tooltipCounter++
	return "tooltip-" + strconv.FormatUint(tooltipCounter, 10)
}

// Tooltip is one trigger with its floating content.
type Tooltip struct {
	doc     *dom.Document
	id      string
	logger  *slog.Logger
	group   *delaygroup.Group
	portal  *Portal
	metrics *metrics.Collector

	controller *interact.Controller
	props      *interact.Props
	tracker    *position.Tracker
	presence   *Presence
	reference  *dom.RefRegistry
	floating   *dom.RefRegistry

	mu        sync.Mutex
	stopWatch func()
	watched   [2]dom.Element
	onPresent []func(mounted bool)
	unmounted bool
}

// New creates a tooltip in doc. It fails only for an invalid placement.
func New(doc *dom.Document, opts Options) (*Tooltip, error) {
	placement := geom.PlacementBottom
	if opts.Placement != "" {
		p, err := geom.ParsePlacement(opts.Placement)
		if err != nil {
			return nil, errors.New("F010").WithDetail(opts.Placement).Wrap(err)
		}
		placement = p
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.ID == "" {
		opts.ID = nextID()
	}
	if opts.Portal == nil {
		opts.Portal = NewPortal("")
	}

	t := &Tooltip{
		doc:      doc,
		id:       opts.ID,
		logger:   opts.Logger.With("tooltip", opts.ID),
		group:    opts.Group,
		portal:   opts.Portal,
		metrics:  opts.Metrics,
		presence: NewPresence(opts.Clock),
		tracker: position.NewTracker(opts.Resolver, position.Config{
			Placement:  placement,
			Strategy:   position.StrategyAbsolute,
			Middleware: DefaultMiddleware(),
		}),
	}

	t.reference = dom.NewRefRegistry(t.logger, append([]dom.RefSetter{t.setReference}, opts.ReferenceRefs...)...)
	t.floating = dom.NewRefRegistry(t.logger, append([]dom.RefSetter{t.setFloating}, opts.FloatingRefs...)...)

	t.controller = interact.New(interact.Options{
		ID:          opts.ID,
		InitialOpen: opts.InitialOpen,
		Clock:       opts.Clock,
		Group:       opts.Group,
		Logger:      t.logger,
		Elements: func() (dom.Element, dom.Element) {
			return t.reference.Current(), t.floating.Current()
		},
	})
	t.props = t.controller.Attach(
		interact.Hover{Delay: opts.Delay},
		interact.Focus{},
		interact.Dismiss{},
		interact.Role{Role: "tooltip"},
	)
	t.controller.OnOpenChange(t.openChanged)

	if opts.InitialOpen {
		t.presence.Show(t.transition())
		t.metrics.OpenChanged(true, "initial")
	}
	return t, nil
}

// ID returns the tooltip id.
func (t *Tooltip) ID() string { return t.id }

// ReferenceID is the DOM id given to a trigger rendered without one.
func (t *Tooltip) ReferenceID() string { return t.id + "-reference" }

// FloatingID is the DOM id of the floating content.
func (t *Tooltip) FloatingID() string { return t.controller.FloatingID() }

// Controller exposes the open state owner.
func (t *Tooltip) Controller() *interact.Controller { return t.controller }

// Props exposes the merged interactions.
func (t *Tooltip) Props() *interact.Props { return t.props }

// Open reports the open state.
func (t *Tooltip) Open() bool { return t.controller.Open() }

// Phase reports the open phase.
func (t *Tooltip) Phase() interact.Phase { return t.controller.Phase() }

// SetOpen opens or closes programmatically.
func (t *Tooltip) SetOpen(open bool) {
	t.controller.SetOpen(open, interact.ReasonProgrammatic)
}

// Presence exposes the enter/exit state of the content.
func (t *Tooltip) Presence() *Presence { return t.presence }

// Result returns the last computed position.
func (t *Tooltip) Result() position.Result { return t.tracker.Result() }

// Placement returns the preferred placement.
func (t *Tooltip) Placement() geom.Placement { return t.tracker.Config().Placement }

// OnPosition registers fn to run whenever the computed position changes.
func (t *Tooltip) OnPosition(fn func(position.Result)) { t.tracker.OnChange(fn) }

// OnPresence registers fn to run when the content mounts or unmounts.
func (t *Tooltip) OnPresence(fn func(mounted bool)) {
	t.mu.Lock()
	t.onPresent = append(t.onPresent, fn)
	t.mu.Unlock()
}

// Handle forwards a DOM event for part to the interactions.
func (t *Tooltip) Handle(part interact.Part, ev interact.Event) {
	t.props.Dispatch(part, ev)
}

// Mount assigns both elements.
func (t *Tooltip) Mount(reference, floating dom.Element) {
	t.reference.Set(reference)
	t.floating.Set(floating)
}

// SetReference assigns the trigger element; nil detaches it.
func (t *Tooltip) SetReference(el dom.Element) { t.reference.Set(el) }

// SetFloating assigns the floating element; nil detaches it.
func (t *Tooltip) SetFloating(el dom.Element) { t.floating.Set(el) }

// Bind looks both elements up by id in the tooltip's document.
func (t *Tooltip) Bind(referenceID, floatingID string) {
	if t.doc == nil {
		return
	}
	t.Mount(t.doc.Lookup(referenceID), t.doc.Lookup(floatingID))
}

// Reference returns the mounted trigger element.
func (t *Tooltip) Reference() dom.Element { return t.reference.Current() }

// Floating returns the mounted floating element.
func (t *Tooltip) Floating() dom.Element { return t.floating.Current() }

func (t *Tooltip) setReference(el dom.Element) error {
	t.tracker.SetReference(el)
	t.sync()
	return nil
}

func (t *Tooltip) setFloating(el dom.Element) error {
	t.tracker.SetFloating(el)
	t.sync()
	return nil
}

// Update recomputes the position now.
func (t *Tooltip) Update(ctx context.Context) (position.Result, bool) {
	return t.tracker.Update(ctx)
}

func (t *Tooltip) layoutChanged() {
	t.tracker.Update(context.Background())
}

// transition picks the fast tween when the user is moving between members of
// the group.
func (t *Tooltip) transition() Transition {
	if t.group != nil && t.group.InstantPhase() && t.group.Switched() {
		return GroupedTransition
	}
	return DefaultTransition
}

func (t *Tooltip) openChanged(open bool, reason interact.Reason) {
	t.metrics.OpenChanged(open, string(reason))
	if open {
		wasMounted := t.presence.Mounted()
		t.presence.Show(t.transition())
		if !wasMounted {
			t.presenceChanged(true)
		}
		t.sync()
		return
	}
	t.presence.Hide(t.transition(), func() {
		t.portal.Unmount(t.id)
		t.tracker.Reset()
		t.sync()
		t.presenceChanged(false)
	})
}

func (t *Tooltip) presenceChanged(mounted bool) {
	t.mu.Lock()
	fns := append(([]func(bool))(nil), t.onPresent...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn(mounted)
	}
}

// sync starts the watcher when the content is present and both elements are
// mounted, restarts it when an element changed, and stops it otherwise.
func (t *Tooltip) sync() {
	ref, fl := t.reference.Current(), t.floating.Current()
	pair := [2]dom.Element{ref, fl}

	t.mu.Lock()
	want := !t.unmounted && t.presence.Mounted() && dom.Mounted(ref) && dom.Mounted(fl)
	var stop func()
	if t.stopWatch != nil && (!want || t.watched != pair) {
		stop = t.stopWatch
		t.stopWatch = nil
		t.watched = [2]dom.Element{}
	}
	start := want && t.stopWatch == nil
	if start {
		t.watched = pair
		// Placeholder so a re-entrant sync from the first update does not
		// start a second watcher.
		t.stopWatch = func() {}
	}
	t.mu.Unlock()

	if stop != nil {
		stop()
		t.metrics.WatcherStopped()
	}
	if !start {
		return
	}
	t.metrics.WatcherStarted()
	stopFn := autoupdate.Start(ref, fl, t.layoutChanged, autoupdate.Options{})

	t.mu.Lock()
	if t.watched == pair && !t.unmounted {
		t.stopWatch = stopFn
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	stopFn()
}

// Watching reports whether the scroll/resize watcher is installed.
func (t *Tooltip) Watching() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopWatch != nil
}

// Unmount tears the tooltip down: listeners removed, timers cancelled, the
// group released and the content removed from the portal.
func (t *Tooltip) Unmount() {
	t.mu.Lock()
	if t.unmounted {
		t.mu.Unlock()
		return
	}
	t.unmounted = true
	stop := t.stopWatch
	t.stopWatch = nil
	t.mu.Unlock()

	if stop != nil {
		stop()
		t.metrics.WatcherStopped()
	}
	t.controller.Dispose()
	wasMounted := t.presence.Mounted()
	t.presence.Cancel()
	t.portal.Unmount(t.id)
	t.reference.Set(nil)
	t.floating.Set(nil)
	t.tracker.Reset()
	if wasMounted {
		t.presenceChanged(false)
	}
}
