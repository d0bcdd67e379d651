package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/clock"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/interact"
	"github.com/vango-dev/floatkit/pkg/metrics"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/render"
	"github.com/vango-dev/floatkit/pkg/tooltip"
)

const (
	eventQueueSize = 256
	sendQueueSize  = 64
	writeTimeout   = 10 * time.Second
)

var sessionCounter atomic.Uint64

// sessionOptions carries what a session needs from its server.
type sessionOptions struct {
	Placement    string
	Delay        delaygroup.Delay
	GroupDelay   time.Duration
	GroupTimeout time.Duration
	Resolver     *position.Resolver
	Renderer     *render.Renderer
	Metrics      *metrics.Collector
	Logger       *slog.Logger

	// Clock drives delays and exit animations. Nil uses the wall clock with
	// callbacks routed through the session's event loop.
	Clock clock.Clock
}

// Session is one connected browser: a layout mirror and the tooltips running
// against it. All state is touched only from the event loop, or directly by
// the caller when no loop is running.
type Session struct {
	id       string
	doc      *dom.Document
	clock    clock.Clock
	group    *delaygroup.Group
	portal   *tooltip.Portal
	renderer *render.Renderer
	metrics  *metrics.Collector
	logger   *slog.Logger

	tooltips map[string]*tooltip.Tooltip
	order    []string
	content  map[string]string
	floating *tooltip.Floating
	bound    [2]dom.Element

	events chan func()
	out    chan Outbound
	done   chan struct{}
	closed atomic.Bool
}

func newSession(opts sessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer(render.RendererConfig{})
	}
	id := "s" + strconv.FormatUint(sessionCounter.Add(1), 10)
	s := &Session{
		id:       id,
		doc:      dom.NewDocument(geom.Rect{}),
		portal:   tooltip.NewPortal(""),
		renderer: opts.Renderer,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("session", id),
		tooltips: make(map[string]*tooltip.Tooltip),
		content:  make(map[string]string),
		events:   make(chan func(), eventQueueSize),
		out:      make(chan Outbound, sendQueueSize),
		done:     make(chan struct{}),
	}
	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = clock.Dispatching(clock.Real(), s.Dispatch)
	}

	var groupOpts []delaygroup.Option
	groupOpts = append(groupOpts, delaygroup.WithClock(s.clock))
	if opts.GroupTimeout > 0 {
		groupOpts = append(groupOpts, delaygroup.WithTimeout(opts.GroupTimeout))
	}
	s.group = tooltip.NewGroup(delaygroup.Uniform(opts.GroupDelay), groupOpts...)

	for _, item := range demoTooltips {
		placement := item.Placement
		if placement == "" {
			placement = opts.Placement
		}
		t, err := tooltip.New(s.doc, tooltip.Options{
			ID:        item.ID,
			Placement: placement,
			Delay:     opts.Delay,
			Group:     s.group,
			Portal:    s.portal,
			Clock:     s.clock,
			Resolver:  opts.Resolver,
			Metrics:   opts.Metrics,
			Logger:    s.logger,
		})
		if err != nil {
			s.logger.Error("tooltip not created", "id", item.ID, "error", err)
			continue
		}
		s.addTooltip(t, item.Content)
	}

	fopts := demoFloatingOptions()
	fopts.Resolver = opts.Resolver
	fopts.Metrics = opts.Metrics
	fopts.Logger = s.logger
	if f, err := tooltip.NewFloating(s.doc, fopts); err == nil {
		s.floating = f
		f.OnPosition(func(res position.Result) {
			var maxHeight *float64
			if h, ok := f.MaxHeight(); ok {
				maxHeight = &h
			}
			s.emit(positionMessage(f.ID(), res, maxHeight))
		})
	} else {
		s.logger.Error("floating not created", "error", err)
	}
	return s
}

func (s *Session) addTooltip(t *tooltip.Tooltip, content string) {
	id := t.ID()
	s.tooltips[id] = t
	s.order = append(s.order, id)
	s.content[id] = content

	t.Controller().OnOpenChange(func(open bool, reason interact.Reason) {
		s.emit(Outbound{
			Type:    MessageOpen,
			Tooltip: id,
			Open:    &open,
			Phase:   t.Phase().String(),
			Reason:  string(reason),
		})
	})
	t.OnPresence(func(mounted bool) {
		msg := Outbound{Type: MessagePresence, Tooltip: id, Mounted: &mounted}
		if mounted {
			msg.HTML = s.floatingHTML(t)
		}
		s.emit(msg)
	})
	t.OnPosition(func(res position.Result) {
		s.emit(positionMessage(id, res, nil))
	})
}

// floatingHTML renders the tooltip content the way the portal holds it.
func (s *Session) floatingHTML(t *tooltip.Tooltip) string {
	t.Render(nil, s.content[t.ID()])
	node := s.portal.Node(t.ID())
	if node == nil {
		return ""
	}
	html, err := s.renderer.RenderToString(node)
	if err != nil {
		s.logger.Debug("floating content not rendered", "tooltip", t.ID(), "error", err)
		return ""
	}
	return html
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Document returns the layout mirror.
func (s *Session) Document() *dom.Document { return s.doc }

// Tooltip returns the tooltip with the given id, or nil.
func (s *Session) Tooltip(id string) *tooltip.Tooltip { return s.tooltips[id] }

// Dispatch queues fn on the event loop. After the session ends fn is dropped.
func (s *Session) Dispatch(fn func()) {
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// Outbound returns the queue of messages for the client.
func (s *Session) Outbound() <-chan Outbound { return s.out }

func (s *Session) emit(msg Outbound) {
	if s.closed.Load() {
		return
	}
	select {
	case s.out <- msg:
	case <-s.done:
	default:
		s.logger.Warn("client too slow, message dropped", "type", msg.Type, "tooltip", msg.Tooltip)
	}
}

// Serve runs the session over conn until the client disconnects or ctx is
// cancelled. The read loop, the event loop and the writer share one errgroup;
// the first to fail stops the others.
func (s *Session) Serve(ctx context.Context, conn *websocket.Conn) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			msg, err := DecodeInbound(data)
			if err != nil {
				s.logger.Debug("message ignored", "error", err)
				s.metrics.Message("in", "invalid")
				s.emit(errorMessage(err))
				continue
			}
			s.metrics.Message("in", string(msg.Type))
			select {
			case s.events <- func() { s.Handle(gctx, msg) }:
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer conn.Close()
		for {
			select {
			case fn := <-s.events:
				fn()
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case msg := <-s.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
				s.metrics.Message("out", string(msg.Type))
			case <-gctx.Done():
				return nil
			}
		}
	})

	err := g.Wait()
	s.Close()
	if isNormalClose(err) || ctx.Err() != nil {
		return nil
	}
	return err
}

func isNormalClose(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return stderrors.Is(err, context.Canceled)
}

// Close unmounts every tooltip and stops accepting work. It must not run
// concurrently with the event loop.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	for _, id := range s.order {
		s.tooltips[id].Unmount()
	}
	if s.floating != nil {
		s.floating.Unmount()
	}
}

// Handle applies one client message.
func (s *Session) Handle(ctx context.Context, msg Inbound) {
	switch msg.Type {
	case MessageLayout:
		s.applyLayout(ctx, msg)
	case MessageEvent:
		s.handleEvent(msg)
	case MessageUnmount:
		t, ok := s.tooltips[msg.Tooltip]
		if !ok {
			s.unknownTooltip(msg.Tooltip)
			return
		}
		t.Unmount()
	}
}

func (s *Session) unknownTooltip(id string) {
	err := errors.New("F031").WithDetail(id)
	s.logger.Debug("message ignored", "error", err)
	s.emit(errorMessage(err))
}

// applyLayout updates the mirror, then rebinds elements whose node changed and
// recomputes every present tooltip, since nodes may have moved without a size
// change.
func (s *Session) applyLayout(ctx context.Context, msg Inbound) {
	for _, err := range ApplyLayout(s.doc, msg.Viewport, msg.Nodes, msg.Full) {
		s.logger.Debug("layout node rejected", "error", err)
		s.emit(errorMessage(err))
	}

	for _, id := range s.order {
		t := s.tooltips[id]
		ref, fl := s.doc.Lookup(t.ReferenceID()), s.doc.Lookup(t.FloatingID())
		if !sameElement(t.Reference(), ref) || !sameElement(t.Floating(), fl) {
			t.Mount(ref, fl)
		}
		if t.Presence().Mounted() {
			t.Update(ctx)
		}
	}

	if f := s.floating; f != nil {
		pair := [2]dom.Element{s.doc.Lookup(f.ReferenceID()), s.doc.Lookup(f.FloatingID())}
		if pair != s.bound {
			s.bound = pair
			f.Bind(f.ReferenceID())
		} else {
			f.Update(ctx)
		}
	}
}

// sameElement compares by identity, treating a nil interface and a missing
// node alike.
func sameElement(a, b dom.Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func (s *Session) handleEvent(msg Inbound) {
	switch msg.Event {
	case string(dom.EventScroll), string(dom.EventResize):
		typ := dom.EventType(msg.Event)
		if n := s.doc.GetElementByID(msg.Target); n != nil && n != s.doc.Body() {
			n.Dispatch(typ)
			return
		}
		s.doc.Dispatch(typ)
		return
	}

	ev := interact.Event{
		Type:   interact.EventType(msg.Event),
		Key:    msg.Key,
		Target: s.doc.Lookup(msg.Target),
	}
	if msg.Related != "" {
		ev.Related = s.doc.Lookup(msg.Related)
	}

	switch ev.Type {
	case interact.EventKeyDown, interact.EventPointerDown:
		if ev.Target == nil {
			ev.Target = s.doc.Body()
		}
		for _, id := range s.order {
			s.tooltips[id].Handle(interact.PartDocument, ev)
		}
		return
	case interact.EventPointerEnter, interact.EventPointerLeave, interact.EventFocus, interact.EventBlur:
	default:
		s.logger.Debug("message ignored", "error", errors.New("F030").WithDetail("unknown event "+msg.Event))
		return
	}

	for _, id := range s.order {
		t := s.tooltips[id]
		switch msg.Target {
		case t.ReferenceID():
			t.Handle(interact.PartReference, ev)
			return
		case t.FloatingID():
			t.Handle(interact.PartFloating, ev)
			return
		}
	}
	s.unknownTooltip(msg.Target)
}
