package interact

import (
	"testing"
	"time"

	"github.com/vango-dev/floatkit/pkg/clock"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

const ms = time.Millisecond

func newManual() *clock.Manual { return clock.NewManual(time.Unix(0, 0)) }

func enter() Event { return Event{Type: EventPointerEnter} }
func leave() Event { return Event{Type: EventPointerLeave} }

// recorder tracks every transition the controller reports.
type recorder struct {
	changes []bool
	reasons []Reason
}

func (r *recorder) listen(c *Controller) {
	c.OnOpenChange(func(open bool, reason Reason) {
		r.changes = append(r.changes, open)
		r.reasons = append(r.reasons, reason)
	})
}

func TestHoverOpenAndCloseDelays(t *testing.T) {
	clk := newManual()
	c := New(Options{Clock: clk})
	p := c.Attach(Hover{Delay: delaygroup.Delay{Open: 100 * ms, Close: 300 * ms}})

	p.Reference(enter())
	if c.Phase() != PhaseOpening {
		t.Fatalf("Phase = %v, want opening", c.Phase())
	}
	clk.Advance(99 * ms)
	if c.Open() {
		t.Fatal("opened before the open delay")
	}
	clk.Advance(1 * ms)
	if !c.Open() {
		t.Fatal("not open after the open delay")
	}

	p.Reference(leave())
	if c.Phase() != PhaseClosing {
		t.Fatalf("Phase = %v, want closing", c.Phase())
	}
	clk.Advance(300 * ms)
	if c.Open() || c.Phase() != PhaseClosed {
		t.Fatal("still open after the close delay")
	}
}

func TestLeaveBeforeOpenDelayNeverOpens(t *testing.T) {
	clk := newManual()
	c := New(Options{Clock: clk})
	var rec recorder
	rec.listen(c)
	p := c.Attach(Hover{Delay: delaygroup.Delay{Open: 100 * ms, Close: 300 * ms}})

	p.Reference(enter())
	clk.Advance(50 * ms)
	p.Reference(leave())
	clk.Advance(time.Second)

	if c.Open() {
		t.Fatal("open after leave cancelled the pending open")
	}
	if len(rec.changes) != 0 {
		t.Errorf("changes = %v, want none", rec.changes)
	}
}

func TestReenterWithinCloseDelayStaysOpen(t *testing.T) {
	for _, reenterAfter := range []time.Duration{0, 10 * ms, 150 * ms, 299 * ms} {
		clk := newManual()
		c := New(Options{Clock: clk, InitialOpen: true})
		var rec recorder
		rec.listen(c)
		p := c.Attach(Hover{Delay: delaygroup.Delay{Open: 100 * ms, Close: 300 * ms}})

		p.Reference(leave())
		clk.Advance(reenterAfter)
		p.Reference(enter())
		clk.Advance(time.Second)

		if !c.Open() || len(rec.changes) != 0 {
			t.Errorf("re-enter after %v: open=%v changes=%v", reenterAfter, c.Open(), rec.changes)
		}
	}
}

func TestMovingOntoFloatingKeepsOpen(t *testing.T) {
	clk := newManual()
	c := New(Options{Clock: clk, InitialOpen: true})
	p := c.Attach(Hover{Delay: delaygroup.Uniform(100 * ms)})

	p.Reference(leave())
	clk.Advance(50 * ms)
	p.Floating(enter())
	clk.Advance(time.Second)
	if !c.Open() {
		t.Fatal("closed while pointer was over the floating element")
	}

	p.Floating(leave())
	clk.Advance(100 * ms)
	if c.Open() {
		t.Fatal("still open after leaving the floating element")
	}
}

func TestZeroDelayOpensImmediately(t *testing.T) {
	c := New(Options{Clock: newManual()})
	p := c.Attach(Hover{})
	p.Reference(enter())
	if !c.Open() {
		t.Fatal("zero delay should open synchronously")
	}
	p.Reference(leave())
	if c.Open() {
		t.Fatal("zero delay should close synchronously")
	}
}

func TestSetOpenNotifiesOnlyOnChange(t *testing.T) {
	c := New(Options{Clock: newManual()})
	var rec recorder
	rec.listen(c)

	c.SetOpen(true, ReasonProgrammatic)
	c.SetOpen(true, ReasonProgrammatic)
	c.SetOpen(false, ReasonProgrammatic)

	if len(rec.changes) != 2 || rec.changes[0] != true || rec.changes[1] != false {
		t.Errorf("changes = %v", rec.changes)
	}
}

func TestSetOpenCancelsPendingTimers(t *testing.T) {
	clk := newManual()
	c := New(Options{Clock: clk})
	p := c.Attach(Hover{Delay: delaygroup.Uniform(100 * ms)})

	p.Reference(enter())
	c.SetOpen(false, ReasonEscapeKey)
	clk.Advance(time.Second)
	if c.Open() {
		t.Fatal("pending hover open survived a direct close")
	}
}

func TestOnOpenChangeUnsubscribe(t *testing.T) {
	c := New(Options{Clock: newManual()})
	calls := 0
	stop := c.OnOpenChange(func(bool, Reason) { calls++ })
	c.SetOpen(true, ReasonProgrammatic)
	stop()
	stop()
	c.SetOpen(false, ReasonProgrammatic)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func newPair() (*dom.Document, *dom.Node, *dom.Node) {
	doc := dom.NewDocument(geom.Rect{Width: 800, Height: 600})
	ref := doc.CreateElement("ref").SetRect(geom.Rect{X: 100, Y: 100, Width: 40, Height: 20})
	fl := doc.CreateElement("tip").SetRect(geom.Rect{Width: 80, Height: 30})
	inner := doc.CreateElement("tip-inner")
	fl.Append(inner)
	doc.Body().Append(ref, fl)
	return doc, ref, fl
}

func TestFocusAndBlur(t *testing.T) {
	doc, ref, fl := newPair()
	c := New(Options{
		Clock:    newManual(),
		Elements: func() (dom.Element, dom.Element) { return ref, fl },
	})
	p := c.Attach(Focus{})

	p.Reference(Event{Type: EventFocus})
	if !c.Open() {
		t.Fatal("focus should open")
	}

	p.Reference(Event{Type: EventBlur, Related: doc.GetElementByID("tip-inner")})
	if !c.Open() {
		t.Fatal("blur into the floating element should keep it open")
	}

	p.Reference(Event{Type: EventBlur})
	if c.Open() {
		t.Fatal("blur should close")
	}
}

func TestDismiss(t *testing.T) {
	doc, ref, fl := newPair()
	outside := doc.CreateElement("outside")
	doc.Body().Append(outside)

	c := New(Options{
		Clock:       newManual(),
		InitialOpen: true,
		Elements:    func() (dom.Element, dom.Element) { return ref, fl },
	})
	var rec recorder
	rec.listen(c)
	p := c.Attach(Dismiss{})

	p.Document(Event{Type: EventKeyDown, Key: "a"})
	p.Document(Event{Type: EventPointerDown, Target: doc.GetElementByID("tip-inner")})
	p.Document(Event{Type: EventPointerDown, Target: ref})
	if !c.Open() {
		t.Fatal("closed by a press inside the pair")
	}

	p.Document(Event{Type: EventPointerDown, Target: outside})
	if c.Open() || rec.reasons[0] != ReasonOutsidePress {
		t.Fatalf("outside press: open=%v reasons=%v", c.Open(), rec.reasons)
	}

	c.SetOpen(true, ReasonProgrammatic)
	p.Reference(Event{Type: EventKeyDown, Key: "Escape"})
	if c.Open() || rec.reasons[2] != ReasonEscapeKey {
		t.Fatalf("escape: open=%v reasons=%v", c.Open(), rec.reasons)
	}
}

func TestDismissDisabled(t *testing.T) {
	_, ref, fl := newPair()
	c := New(Options{
		Clock:       newManual(),
		InitialOpen: true,
		Elements:    func() (dom.Element, dom.Element) { return ref, fl },
	})
	p := c.Attach(Dismiss{DisableEscapeKey: true, DisableOutsidePress: true})
	p.Document(Event{Type: EventKeyDown, Key: "Escape"})
	p.Document(Event{Type: EventPointerDown})
	if !c.Open() {
		t.Fatal("disabled dismiss closed the controller")
	}
	if got := p.Events(PartDocument); len(got) != 0 {
		t.Errorf("Events(document) = %v, want none", got)
	}
}

func TestGroupedOpenDelay(t *testing.T) {
	clk := newManual()
	g := delaygroup.New(delaygroup.Uniform(200*ms), delaygroup.WithClock(clk))
	a := New(Options{ID: "a", Clock: clk, Group: g})
	b := New(Options{ID: "b", Clock: clk, Group: g})
	pa := a.Attach(Hover{})
	pb := b.Attach(Hover{})

	pa.Reference(enter())
	clk.Advance(199 * ms)
	if a.Open() {
		t.Fatal("a opened before the full delay")
	}
	clk.Advance(1 * ms)
	if !a.Open() || g.CurrentID() != "a" {
		t.Fatalf("a open=%v current=%q", a.Open(), g.CurrentID())
	}

	pa.Reference(leave())
	clk.Advance(20 * ms)
	pb.Reference(enter())
	clk.Advance(delaygroup.GroupedOpenDelay)

	if !b.Open() {
		t.Fatal("b should open after the grouped delay")
	}
	if a.Open() {
		t.Fatal("a should close when b becomes current")
	}
	if g.CurrentID() != "b" {
		t.Errorf("current = %q, want b", g.CurrentID())
	}
}

func TestExplicitDelayWinsOverGroup(t *testing.T) {
	clk := newManual()
	g := delaygroup.New(delaygroup.Uniform(200*ms), delaygroup.WithClock(clk))
	g.SetCurrentID("other")
	c := New(Options{Clock: clk, Group: g})
	p := c.Attach(Hover{Delay: delaygroup.Uniform(50 * ms)})

	p.Reference(enter())
	clk.Advance(delaygroup.GroupedOpenDelay)
	if c.Open() {
		t.Fatal("explicit delay should not be replaced by the grouped delay")
	}
	clk.Advance(50 * ms)
	if !c.Open() {
		t.Fatal("not open after explicit delay")
	}
}

func TestDisposeClosesAndLeavesGroup(t *testing.T) {
	clk := newManual()
	g := delaygroup.New(delaygroup.Uniform(100*ms), delaygroup.WithClock(clk))
	c := New(Options{ID: "x", Clock: clk, Group: g})
	p := c.Attach(Hover{})

	c.SetOpen(true, ReasonProgrammatic)
	p.Reference(leave())
	c.Dispose()

	if c.Open() || clk.Pending() != 0 {
		t.Fatalf("open=%v pending=%d", c.Open(), clk.Pending())
	}
	if g.CurrentID() != "" {
		t.Errorf("group current = %q after dispose", g.CurrentID())
	}
	c.SetOpen(true, ReasonProgrammatic)
	if c.Open() {
		t.Error("disposed controller reopened")
	}
}

func TestRoleAttrs(t *testing.T) {
	c := New(Options{ID: "t", Clock: newManual()})
	p := c.Attach(Role{})

	floating := vdom.Div(p.FloatingAttrs()...)
	if floating.Props["role"] != "tooltip" || floating.Props["id"] != "t-floating" {
		t.Errorf("floating props = %v", floating.Props)
	}

	ref := vdom.Button(p.ReferenceAttrs()...)
	if _, ok := ref.Props["aria-describedby"]; ok {
		t.Error("aria-describedby set while closed")
	}
	c.SetOpen(true, ReasonProgrammatic)
	ref = vdom.Button(p.ReferenceAttrs()...)
	if ref.Props["aria-describedby"] != "t-floating" {
		t.Errorf("aria-describedby = %v", ref.Props["aria-describedby"])
	}
}

func TestReferenceAttrsMergesCallerHandlers(t *testing.T) {
	c := New(Options{Clock: newManual()})
	p := c.Attach(Hover{}, Focus{})

	var order []string
	node := vdom.Button(p.ReferenceAttrs(
		vdom.Class("trigger"),
		vdom.OnPointerEnter(func() { order = append(order, "caller") }),
		vdom.OnClick(func() { order = append(order, "click") }),
	)...)
	c.OnOpenChange(func(open bool, _ Reason) {
		if open {
			order = append(order, "open")
		}
	})

	if node.Props["class"] != "trigger" {
		t.Errorf("class = %v", node.Props["class"])
	}
	enterFn, ok := node.Handler("onpointerenter").(func(Event))
	if !ok {
		t.Fatalf("onpointerenter type = %T", node.Handler("onpointerenter"))
	}
	enterFn(Event{})
	if len(order) != 2 || order[0] != "caller" || order[1] != "open" {
		t.Errorf("order = %v, want [caller open]", order)
	}
	if _, ok := node.Handler("onclick").(func()); !ok {
		t.Error("unrelated caller handler dropped")
	}
	for _, ev := range []string{"onpointerleave", "onfocus", "onblur"} {
		if node.Handler(ev) == nil {
			t.Errorf("missing %s", ev)
		}
	}
}
