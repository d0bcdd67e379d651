package tooltip

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/autoupdate"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/metrics"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

// ArrowPadding keeps the arrow away from the floating element's corners.
const ArrowPadding = 5

// TransformTransition eases position changes once the element is placed.
const TransformTransition = "transform 0.65s cubic-bezier(0.22, 1, 0.36, 1)"

// FloatingOptions configures a Floating.
type FloatingOptions struct {
	ID string

	// Placement is the preferred placement, "bottom" when empty.
	Placement string
	Strategy  position.Strategy

	// Middleware is decoded by name; see position.Decode.
	Middleware []position.Spec

	// Portaled renders the floating element into Portal instead of next to
	// the trigger.
	Portaled bool
	Portal   *Portal

	// MinHeight is the smallest max-height a size step may apply.
	MinHeight float64

	// Transition animates transform changes.
	Transition bool

	// Arrow appends an arrow step and renders the arrow element.
	Arrow bool

	// Style is applied under the computed styles.
	Style vdom.Styles

	Resolver *position.Resolver
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

// Floating is an always-visible floating element positioned by a named
// middleware list.
type Floating struct {
	doc     *dom.Document
	id      string
	opts    FloatingOptions
	logger  *slog.Logger
	tracker *position.Tracker

	reference *dom.RefRegistry
	floating  *dom.RefRegistry
	arrow     dom.Ref

	mu             sync.Mutex
	maxHeight      *float64
	stopWatch      func()
	stopResize     func()
	skipTransition bool
}

// NewFloating creates a floating component in doc.
func NewFloating(doc *dom.Document, opts FloatingOptions) (*Floating, error) {
	placement := geom.PlacementBottom
	if opts.Placement != "" {
		p, err := geom.ParsePlacement(opts.Placement)
		if err != nil {
			return nil, errors.New("F010").WithDetail(opts.Placement).Wrap(err)
		}
		placement = p
	}
	if opts.Strategy == "" {
		opts.Strategy = position.StrategyAbsolute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ID == "" {
		opts.ID = nextID()
	}
	if opts.Portaled && opts.Portal == nil {
		opts.Portal = NewPortal("")
	}

	f := &Floating{
		doc:    doc,
		id:     opts.ID,
		opts:   opts,
		logger: opts.Logger.With("floating", opts.ID),
	}
	f.tracker = position.NewTracker(opts.Resolver, position.Config{
		Placement: placement,
		Strategy:  opts.Strategy,
	})
	f.reference = dom.NewRefRegistry(f.logger, f.elementChanged)
	f.floating = dom.NewRefRegistry(f.logger, f.elementChanged)
	if doc != nil {
		f.stopResize = doc.AddListener(dom.EventResize, f.windowResized)
	}
	f.rebuild()
	return f, nil
}

// ID returns the component id.
func (f *Floating) ID() string { return f.id }

// FloatingID is the DOM id of the floating element.
func (f *Floating) FloatingID() string { return f.id + "-floating" }

// ArrowID is the DOM id of the arrow element.
func (f *Floating) ArrowID() string { return f.id + "-arrow" }

// ReferenceID is the DOM id given to a trigger rendered without one.
func (f *Floating) ReferenceID() string { return f.id + "-reference" }

// Mount assigns the trigger, floating and (optional) arrow elements.
func (f *Floating) Mount(reference, floating, arrow dom.Element) {
	f.arrow.Set(arrow)
	f.rebuild()
	f.reference.Set(reference)
	f.floating.Set(floating)
}

// Bind looks the elements up by their rendered ids.
func (f *Floating) Bind(referenceID string) {
	if f.doc == nil {
		return
	}
	f.Mount(f.doc.Lookup(referenceID), f.doc.Lookup(f.FloatingID()), f.doc.Lookup(f.ArrowID()))
}

// Result returns the last computed position.
func (f *Floating) Result() position.Result { return f.tracker.Result() }

// OnPosition registers fn to run whenever the position changes.
func (f *Floating) OnPosition(fn func(position.Result)) { f.tracker.OnChange(fn) }

// Update recomputes the position now.
func (f *Floating) Update(ctx context.Context) (position.Result, bool) {
	return f.tracker.Update(ctx)
}

// MaxHeight returns the max-height the size step applied, if any.
func (f *Floating) MaxHeight() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.maxHeight == nil {
		return 0, false
	}
	return *f.maxHeight, true
}

func (f *Floating) rebuild() {
	arrow := f.arrow.Current()
	mw := position.Decode(f.opts.Middleware, position.DecodeHooks{
		OnSize:       f.applySize,
		ArrowElement: arrow,
	}, f.logger)
	if f.opts.Arrow && arrow != nil {
		mw = append(mw, position.Arrow{Element: arrow, Padding: geom.Uniform(ArrowPadding)})
	}
	cfg := f.tracker.Config()
	cfg.Middleware = mw
	f.tracker.SetConfig(cfg)
}

func (f *Floating) applySize(info position.SizeInfo) {
	h := math.Max(info.AvailableHeight, math.Max(f.opts.MinHeight, 0))
	f.mu.Lock()
	f.maxHeight = &h
	f.mu.Unlock()
}

// windowResized drops the transform transition for the next render so the
// element jumps instead of gliding while the window is being resized.
func (f *Floating) windowResized() {
	f.mu.Lock()
	f.skipTransition = true
	f.mu.Unlock()
}

func (f *Floating) elementChanged(dom.Element) error {
	ref, fl := f.reference.Current(), f.floating.Current()
	f.tracker.SetElements(ref, fl)

	f.mu.Lock()
	stop := f.stopWatch
	f.stopWatch = nil
	f.mu.Unlock()
	if stop != nil {
		stop()
		f.opts.Metrics.WatcherStopped()
	}

	if !dom.Mounted(ref) || !dom.Mounted(fl) {
		return nil
	}
	f.opts.Metrics.WatcherStarted()
	stop = autoupdate.Start(ref, fl, func() {
		f.tracker.Update(context.Background())
	}, autoupdate.Options{DisableElementResize: true})
	f.mu.Lock()
	f.stopWatch = stop
	f.mu.Unlock()
	return nil
}

// Render returns the trigger, followed by the floating element unless it is
// portaled.
func (f *Floating) Render(trigger *vdom.VNode, content ...any) *vdom.VNode {
	if trigger == nil || trigger.Kind != vdom.KindElement {
		trigger = vdom.Span(trigger)
	}
	if trigger.Props == nil {
		trigger.Props = make(vdom.Props)
	}
	if _, ok := trigger.Props["id"]; !ok {
		trigger.Props["id"] = f.ReferenceID()
	}
	trigger.Props["data-floating-reference"] = f.id

	node := f.renderFloating(content)
	if f.opts.Portaled {
		f.opts.Portal.Mount(f.id, node)
		return trigger
	}
	return vdom.Fragment(trigger, node)
}

func (f *Floating) renderFloating(content []any) *vdom.VNode {
	res := f.Result()

	f.mu.Lock()
	maxHeight := f.maxHeight
	skip := f.skipTransition
	f.skipTransition = false
	f.mu.Unlock()

	style := vdom.Styles{}
	for k, v := range f.opts.Style {
		style.Set(k, v)
	}
	style.Set("position", string(f.opts.Strategy))
	if res.IsPositioned {
		style.Set("left", "0").
			Set("top", "0").
			Set("transform", "translate3d("+px(math.Round(res.X))+","+px(math.Round(res.Y))+",0)")
		if f.opts.Transition && !skip {
			style.Set("transition", TransformTransition)
		}
	}
	if maxHeight != nil {
		style.Set("max-height", px(*maxHeight))
	}
	hide := res.MiddlewareData.Hide
	if hide != nil && hide.Escaped {
		style.Set("background-color", "red")
	}
	if !res.Visible() {
		style.Set("visibility", "hidden")
	}

	if len(content) == 0 {
		content = []any{"Floating"}
	}
	return vdom.Div(
		vdom.ID(f.FloatingID()),
		vdom.Key(f.id),
		vdom.Class("floating"),
		vdom.Data("floating", f.id),
		vdom.Data("placement", res.Placement.String()),
		vdom.Style(style),
		vdom.Div(vdom.Class("floating-content"), content),
		f.renderArrow(res),
	)
}

func (f *Floating) renderArrow(res position.Result) *vdom.VNode {
	if !f.opts.Arrow {
		return nil
	}
	a := res.MiddlewareData.Arrow
	style := vdom.Styles{}
	style.Set("position", "absolute").Set("transition", "transform 0.2s ease")
	if a != nil && a.X != nil {
		style.Set("left", px(*a.X))
	}
	if a != nil && a.Y != nil {
		style.Set("top", px(*a.Y))
	}
	if a == nil || a.CenterOffset != 0 {
		style.Set("transform", "translateX(1rem) rotate(45deg)")
	} else {
		style.Set("transform", "rotate(45deg)")
	}
	return vdom.Div(vdom.ID(f.ArrowID()), vdom.Class("floating-arrow"), vdom.Style(style))
}

// Unmount removes every listener and the portaled element.
func (f *Floating) Unmount() {
	f.mu.Lock()
	stop, stopResize := f.stopWatch, f.stopResize
	f.stopWatch, f.stopResize = nil, nil
	f.mu.Unlock()
	if stop != nil {
		stop()
		f.opts.Metrics.WatcherStopped()
	}
	if stopResize != nil {
		stopResize()
	}
	if f.opts.Portaled {
		f.opts.Portal.Unmount(f.id)
	}
	f.reference.Set(nil)
	f.floating.Set(nil)
	f.arrow.Set(nil)
	f.tracker.Reset()
}
