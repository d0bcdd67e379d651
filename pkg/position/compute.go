package position

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// maxResets bounds pipeline restarts so a pair of steps that keep asking
// for different placements cannot loop forever.
const maxResets = 50

const tracerName = "github.com/vango-dev/floatkit/pkg/position"

// Config is the input to Compute. The zero Placement is "top".
type Config struct {
	Placement  geom.Placement
	Strategy   Strategy
	Middleware []Middleware
}

// Observer receives one call per completed computation.
type Observer interface {
	ObserveCompute(requested, resolved geom.Placement, resets int, elapsed time.Duration)
}

// Resolver computes positions. The zero value is not usable; use NewResolver.
type Resolver struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	observer Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTracer sets the tracer used for compute spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// NewResolver creates a Resolver. Without options it traces through the
// global OpenTelemetry provider and logs through slog.Default().
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Compute resolves with a default Resolver.
func Compute(reference, floating dom.Element, cfg Config) (Result, bool) {
	return defaultResolver.Compute(context.Background(), reference, floating, cfg)
}

// Compute resolves the floating element's position. It returns ok=false,
// without computing anything, when either element is missing or detached.
func (r *Resolver) Compute(ctx context.Context, reference, floating dom.Element, cfg Config) (Result, bool) {
	if !dom.Mounted(reference) || !dom.Mounted(floating) {
		r.logger.Debug("positioning skipped", "error", errors.New("F001"))
		return Result{}, false
	}

	start := time.Now()
	_, span := r.tracer.Start(ctx, "position.Compute",
		trace.WithAttributes(attribute.String("floatkit.placement.requested", cfg.Placement.String())))
	defer span.End()

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyAbsolute
	}

	s := &state{
		reference:        reference,
		floating:         floating,
		initialPlacement: cfg.Placement,
		placement:        cfg.Placement,
		strategy:         strategy,
		rects:            measure(reference, floating),
	}
	s.coords = coordsFromPlacement(s.rects, s.placement)

	resets := 0
	for i := 0; i < len(cfg.Middleware); i++ {
		res := s.apply(cfg.Middleware[i])
		if res.coords != nil {
			s.coords = *res.coords
		}
		if res.reset && resets < maxResets {
			resets++
			if res.placement != nil {
				s.placement = *res.placement
			}
			if res.rects {
				s.rects = measure(reference, floating)
			}
			s.coords = coordsFromPlacement(s.rects, s.placement)
			i = -1
		}
	}

	span.SetAttributes(
		attribute.String("floatkit.placement.resolved", s.placement.String()),
		attribute.Int("floatkit.resets", resets),
	)
	if r.observer != nil {
		r.observer.ObserveCompute(cfg.Placement, s.placement, resets, time.Since(start))
	}

	return Result{
		X:              s.coords.X,
		Y:              s.coords.Y,
		Strategy:       strategy,
		Placement:      s.placement,
		MiddlewareData: s.data,
		IsPositioned:   true,
	}, true
}

// state is the running pipeline state.
type state struct {
	reference, floating dom.Element

	initialPlacement geom.Placement
	placement        geom.Placement
	strategy         Strategy
	rects            ElementRects
	coords           geom.Coords
	data             MiddlewareData
}

// stepResult is what a middleware step asks of the pipeline.
type stepResult struct {
	coords    *geom.Coords
	reset     bool
	placement *geom.Placement
	rects     bool
}

func (s *state) apply(m Middleware) stepResult {
	switch m := m.(type) {
	case Offset:
		return s.offset(m)
	case *Offset:
		return s.offset(*m)
	case Flip:
		return s.flip(m)
	case *Flip:
		return s.flip(*m)
	case Shift:
		return s.shift(m)
	case *Shift:
		return s.shift(*m)
	case Size:
		return s.size(m)
	case *Size:
		return s.size(*m)
	case Arrow:
		return s.arrow(m)
	case *Arrow:
		return s.arrow(*m)
	case Hide:
		return s.hide(m)
	case *Hide:
		return s.hide(*m)
	default:
		return stepResult{}
	}
}

func measure(reference, floating dom.Element) ElementRects {
	size := floating.Rect().Size()
	return ElementRects{
		Reference: reference.Rect(),
		Floating:  geom.Rect{Width: size.Width, Height: size.Height},
	}
}

// coordsFromPlacement places the floating element flush against the given
// side of the anchor, centered on the cross axis, then aligns it to the
// anchor's start or end edge.
func coordsFromPlacement(rects ElementRects, p geom.Placement) geom.Coords {
	ref, fl := rects.Reference, rects.Floating
	commonX := ref.X + ref.Width/2 - fl.Width/2
	commonY := ref.Y + ref.Height/2 - fl.Height/2
	alignAxis := p.AlignmentAxis()
	commonAlign := ref.Length(alignAxis)/2 - fl.Length(alignAxis)/2

	var c geom.Coords
	switch p.Side {
	case geom.Top:
		c = geom.Coords{X: commonX, Y: ref.Y - fl.Height}
	case geom.Bottom:
		c = geom.Coords{X: commonX, Y: ref.Bottom()}
	case geom.Right:
		c = geom.Coords{X: ref.Right(), Y: commonY}
	case geom.Left:
		c = geom.Coords{X: ref.X - fl.Width, Y: commonY}
	}

	switch p.Alignment {
	case geom.AlignStart:
		c = c.With(alignAxis, c.Get(alignAxis)-commonAlign)
	case geom.AlignEnd:
		c = c.With(alignAxis, c.Get(alignAxis)+commonAlign)
	}
	return c
}
