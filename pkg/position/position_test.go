package position

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// fixture builds a 800x600 document with an anchor and a 120x40 floating
// element attached to the body.
func fixture(t *testing.T, anchor geom.Rect) (*dom.Document, *dom.Node, *dom.Node) {
	t.Helper()
	doc := dom.NewDocument(geom.R(0, 0, 800, 600))
	ref := doc.CreateElement("anchor").SetRect(anchor)
	fl := doc.CreateElement("tip").SetRect(geom.R(0, 0, 120, 40))
	doc.Body().Append(ref, fl)
	return doc, ref, fl
}

func mustCompute(t *testing.T, ref, fl dom.Element, cfg Config) Result {
	t.Helper()
	res, ok := Compute(ref, fl, cfg)
	if !ok {
		t.Fatal("Compute reported not mounted")
	}
	return res
}

func TestCoordsFromPlacement(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(100, 100, 80, 20))

	tests := []struct {
		placement string
		x, y      float64
	}{
		{"bottom", 80, 120},
		{"bottom-start", 100, 120},
		{"bottom-end", 60, 120},
		{"top", 80, 60},
		{"left", -20, 90},
		{"right", 180, 90},
		{"right-start", 180, 100},
		{"left-end", -20, 80},
	}
	for _, tt := range tests {
		t.Run(tt.placement, func(t *testing.T) {
			res := mustCompute(t, ref, fl, Config{Placement: geom.MustParsePlacement(tt.placement)})
			if res.X != tt.x || res.Y != tt.y {
				t.Errorf("got (%v, %v), want (%v, %v)", res.X, res.Y, tt.x, tt.y)
			}
			if !res.IsPositioned {
				t.Error("IsPositioned should be true")
			}
			if res.Strategy != StrategyAbsolute {
				t.Errorf("Strategy = %q", res.Strategy)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(100, 100, 80, 20))

	res := mustCompute(t, ref, fl, Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Offset{MainAxis: 8}}})
	if res.Y != 128 {
		t.Errorf("bottom Y = %v, want 128", res.Y)
	}

	res = mustCompute(t, ref, fl, Config{Placement: geom.PlacementTop, Middleware: []Middleware{Offset{MainAxis: 8}}})
	if res.Y != 52 {
		t.Errorf("top Y = %v, want 52", res.Y)
	}
	if d := res.MiddlewareData.Offset; d == nil || d.Y != -8 || d.Placement != geom.PlacementTop {
		t.Errorf("offset data = %+v", d)
	}

	align := 4.0
	res = mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottomEnd,
		Middleware: []Middleware{Offset{MainAxis: 8, AlignmentAxis: &align}},
	})
	if res.X != 56 {
		t.Errorf("bottom-end X with alignment axis = %v, want 56", res.X)
	}
}

func TestFlipAtViewportBottom(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(300, 570, 80, 20))

	res := mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottom,
		Middleware: []Middleware{Offset{MainAxis: 8}, Flip{}, Shift{}},
	})
	if res.Placement != geom.PlacementTop {
		t.Fatalf("Placement = %s, want top", res.Placement)
	}
	if res.Y >= ref.Rect().Top() {
		t.Errorf("Y = %v should be above anchor top %v", res.Y, ref.Rect().Top())
	}
	if res.Y != 522 {
		t.Errorf("Y = %v, want 522", res.Y)
	}
	if d := res.MiddlewareData.Flip; d == nil || d.Index != 1 || len(d.Overflows) != 1 {
		t.Errorf("flip data = %+v", d)
	}
}

func TestFlipEveryPlacement(t *testing.T) {
	anchors := map[geom.Side]geom.Rect{
		geom.Top:    geom.R(340, 10, 20, 20),
		geom.Bottom: geom.R(340, 570, 20, 20),
		geom.Left:   geom.R(10, 280, 20, 20),
		geom.Right:  geom.R(770, 280, 20, 20),
	}
	for _, p := range geom.AllPlacements {
		t.Run(p.String(), func(t *testing.T) {
			_, ref, fl := fixture(t, anchors[p.Side])
			res := mustCompute(t, ref, fl, Config{Placement: p, Middleware: []Middleware{Flip{}}})
			if res.Placement == p {
				t.Fatalf("placement %s overflows but was kept", p)
			}
			if res.Placement != p.Opposite() {
				t.Errorf("Placement = %s, want %s", res.Placement, p.Opposite())
			}
		})
	}
}

func TestFlipFallbackPlacements(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(340, 570, 20, 20))
	res := mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottom,
		Middleware: []Middleware{Flip{FallbackPlacements: []geom.Placement{geom.PlacementRight}}},
	})
	if res.Placement != geom.PlacementRight {
		t.Errorf("Placement = %s, want right", res.Placement)
	}
}

func TestFlipBestFitWhenNothingFits(t *testing.T) {
	doc := dom.NewDocument(geom.R(0, 0, 800, 100))
	ref := doc.CreateElement("anchor").SetRect(geom.R(300, 30, 20, 20))
	fl := doc.CreateElement("tip").SetRect(geom.R(0, 0, 120, 60))
	doc.Body().Append(ref, fl)

	res := mustCompute(t, ref, fl, Config{Placement: geom.PlacementTop, Middleware: []Middleware{Flip{}}})
	// top overflows by 30, bottom by 10
	if res.Placement != geom.PlacementBottom {
		t.Errorf("Placement = %s, want bottom", res.Placement)
	}

	res = mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementTop,
		Middleware: []Middleware{Flip{FallbackStrategy: FallbackInitialPlacement}},
	})
	if res.Placement != geom.PlacementTop {
		t.Errorf("initialPlacement strategy: Placement = %s, want top", res.Placement)
	}
}

func TestShift(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(0, 100, 20, 20))

	res := mustCompute(t, ref, fl, Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Shift{}}})
	if res.X != 0 {
		t.Errorf("X = %v, want 0", res.X)
	}
	if d := res.MiddlewareData.Shift; d == nil || d.X != 50 || d.Y != 0 {
		t.Errorf("shift data = %+v", d)
	}

	res = mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottom,
		Middleware: []Middleware{Shift{Padding: geom.Uniform(5)}},
	})
	if res.X != 5 {
		t.Errorf("padded X = %v, want 5", res.X)
	}
}

func TestSizeReportsAvailableSpace(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(100, 100, 80, 20))

	var got SizeInfo
	res := mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottom,
		Middleware: []Middleware{Size{Apply: func(i SizeInfo) { got = i }}},
	})
	if got.AvailableHeight != 480 {
		t.Errorf("AvailableHeight = %v, want 480", got.AvailableHeight)
	}
	if got.AvailableWidth != 280 {
		t.Errorf("AvailableWidth = %v, want 280", got.AvailableWidth)
	}
	if d := res.MiddlewareData.Size; d == nil || d.AvailableHeight != 480 {
		t.Errorf("size data = %+v", d)
	}
}

func TestSizeResetsWhenFloatingResizes(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(100, 100, 80, 20))

	calls := 0
	res := mustCompute(t, ref, fl, Config{
		Placement: geom.PlacementTop,
		Middleware: []Middleware{Size{Apply: func(SizeInfo) {
			calls++
			fl.SetRect(geom.R(0, 0, 120, 30))
		}}},
	})
	if calls != 2 {
		t.Errorf("Apply calls = %d, want 2", calls)
	}
	if res.Y != 70 {
		t.Errorf("Y = %v, want 70 (re-measured height)", res.Y)
	}
}

func TestArrow(t *testing.T) {
	doc, ref, fl := fixture(t, geom.R(100, 100, 80, 20))
	arrow := doc.CreateElement("arrow").SetRect(geom.R(0, 0, 10, 10))
	fl.Append(arrow)

	res := mustCompute(t, ref, fl, Config{
		Placement:  geom.PlacementBottom,
		Middleware: []Middleware{Arrow{Element: arrow, Padding: geom.Uniform(5)}},
	})
	d := res.MiddlewareData.Arrow
	if d == nil || d.X == nil || d.Y != nil {
		t.Fatalf("arrow data = %+v", d)
	}
	if *d.X != 55 || d.CenterOffset != 0 {
		t.Errorf("arrow x = %v centerOffset = %v, want 55 and 0", *d.X, d.CenterOffset)
	}
}

func TestArrowWithoutElementIsNoop(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(100, 100, 80, 20))
	res := mustCompute(t, ref, fl, Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Arrow{}}})
	if res.MiddlewareData.Arrow != nil {
		t.Error("arrow without element should not report data")
	}
}

func scrollFixture(t *testing.T, anchor geom.Rect) (*dom.Node, *dom.Node) {
	t.Helper()
	doc := dom.NewDocument(geom.R(0, 0, 800, 600))
	panel := doc.CreateElement("panel").SetRect(geom.R(0, 0, 400, 300)).SetOverflow(dom.OverflowAuto)
	ref := doc.CreateElement("anchor").SetRect(anchor)
	fl := doc.CreateElement("tip").SetRect(geom.R(0, 0, 120, 40))
	doc.Body().Append(panel, fl)
	panel.Append(ref)
	return ref, fl
}

func TestHideReferenceHidden(t *testing.T) {
	ref, fl := scrollFixture(t, geom.R(100, 350, 50, 20))
	cfg := Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Hide{}, Hide{Strategy: HideEscaped}}}

	res := mustCompute(t, ref, fl, cfg)
	if h := res.MiddlewareData.Hide; h == nil || !h.ReferenceHidden {
		t.Fatalf("hide data = %+v, want referenceHidden", h)
	}
	if res.Visible() {
		t.Error("result with hidden reference should not be visible")
	}
}

func TestHideEscaped(t *testing.T) {
	ref, fl := scrollFixture(t, geom.R(100, 250, 50, 20))
	cfg := Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Hide{}, Hide{Strategy: HideEscaped}}}

	res := mustCompute(t, ref, fl, cfg)
	h := res.MiddlewareData.Hide
	if h == nil || h.ReferenceHidden || h.Escaped {
		t.Fatalf("in-view anchor: hide data = %+v", h)
	}

	ref.SetRect(geom.R(100, 290, 50, 20))
	res = mustCompute(t, ref, fl, cfg)
	h = res.MiddlewareData.Hide
	if h == nil || h.ReferenceHidden || !h.Escaped {
		t.Errorf("escaped anchor: hide data = %+v", h)
	}
	if h.EscapedOffsets == nil || h.ReferenceHiddenOffsets == nil {
		t.Error("both offsets should be reported")
	}
	if !res.Visible() {
		t.Error("escaped but not hidden result is still visible")
	}
}

func TestComputeNotMounted(t *testing.T) {
	doc, ref, fl := fixture(t, geom.R(100, 100, 80, 20))

	if _, ok := Compute(nil, fl, Config{}); ok {
		t.Error("nil reference should not compute")
	}
	if _, ok := Compute(ref, nil, Config{}); ok {
		t.Error("nil floating should not compute")
	}

	fl.Remove()
	if _, ok := Compute(ref, fl, Config{}); ok {
		t.Error("detached floating should not compute")
	}
	doc.Body().Append(fl)
	if _, ok := Compute(ref, fl, Config{}); !ok {
		t.Error("reattached floating should compute")
	}
}

func TestComputeIdempotent(t *testing.T) {
	doc, ref, fl := fixture(t, geom.R(300, 570, 80, 20))
	arrow := doc.CreateElement("arrow").SetRect(geom.R(0, 0, 8, 8))
	fl.Append(arrow)

	cfg := Config{
		Placement: geom.PlacementBottomStart,
		Middleware: []Middleware{
			Offset{MainAxis: 8}, Flip{}, Shift{Padding: geom.Uniform(4)},
			Size{}, Arrow{Element: arrow}, Hide{}, Hide{Strategy: HideEscaped},
		},
	}
	first := mustCompute(t, ref, fl, cfg)
	second := mustCompute(t, ref, fl, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

type recordingObserver struct {
	requested, resolved geom.Placement
	resets              int
	calls               int
}

func (o *recordingObserver) ObserveCompute(req, res geom.Placement, resets int, _ time.Duration) {
	o.requested, o.resolved, o.resets = req, res, resets
	o.calls++
}

func TestResolverObserver(t *testing.T) {
	_, ref, fl := fixture(t, geom.R(300, 570, 80, 20))
	obs := &recordingObserver{}
	r := NewResolver(WithObserver(obs))

	_, ok := r.Compute(context.Background(), ref, fl, Config{Placement: geom.PlacementBottom, Middleware: []Middleware{Flip{}}})
	if !ok {
		t.Fatal("compute failed")
	}
	if obs.calls != 1 || obs.requested != geom.PlacementBottom || obs.resolved != geom.PlacementTop || obs.resets != 1 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestTrackerRetainsStaleResult(t *testing.T) {
	doc, ref, fl := fixture(t, geom.R(100, 100, 80, 20))
	tr := NewTracker(nil, Config{Placement: geom.PlacementBottom})

	if tr.Result().IsPositioned {
		t.Fatal("fresh tracker should be unpositioned")
	}
	if _, ok := tr.Update(context.Background()); ok {
		t.Fatal("update without elements should not compute")
	}

	changes := 0
	tr.OnChange(func(Result) { changes++ })
	tr.SetElements(ref, fl)
	first, ok := tr.Update(context.Background())
	if !ok || !first.IsPositioned {
		t.Fatal("update with mounted pair should position")
	}

	fl.Remove()
	ref.SetRect(geom.R(200, 200, 80, 20))
	stale, ok := tr.Update(context.Background())
	if ok {
		t.Error("update with detached floating should report false")
	}
	if !reflect.DeepEqual(stale, first) {
		t.Error("stale result should be retained")
	}

	doc.Body().Append(fl)
	tr.Update(context.Background())
	tr.Update(context.Background())
	if changes != 2 {
		t.Errorf("changes = %d, want 2", changes)
	}

	tr.Reset()
	if tr.Result().IsPositioned {
		t.Error("Reset should clear the result")
	}
}

func TestDecode(t *testing.T) {
	var specs []Spec
	if err := json.Unmarshal([]byte(`[
		{"name": "offset", "options": 8},
		{"name": "flip", "options": {"crossAxis": false, "fallbackPlacements": ["left"], "padding": 4}},
		{"name": "autoPlacement"},
		{"name": "shift", "options": {"padding": {"top": 1, "right": 2, "bottom": 3, "left": 4}}},
		{"name": "size"},
		{"name": "hide"},
		{"name": "offset", "options": "broken"}
	]`), &specs); err != nil {
		t.Fatal(err)
	}

	sized := false
	mw := Decode(specs, DecodeHooks{OnSize: func(SizeInfo) { sized = true }}, nil)
	if len(mw) != 6 {
		t.Fatalf("len = %d, want 6: %#v", len(mw), mw)
	}

	if o, ok := mw[0].(Offset); !ok || o.MainAxis != 8 {
		t.Errorf("mw[0] = %#v", mw[0])
	}
	f, ok := mw[1].(Flip)
	if !ok || !f.DisableCrossAxis || f.DisableMainAxis || len(f.FallbackPlacements) != 1 || f.Padding != geom.Uniform(4) {
		t.Errorf("mw[1] = %#v", mw[1])
	}
	if s, ok := mw[2].(Shift); !ok || s.Padding.Left != 4 || s.Padding.Bottom != 3 {
		t.Errorf("mw[2] = %#v", mw[2])
	}
	size, ok := mw[3].(Size)
	if !ok || size.Apply == nil {
		t.Fatalf("mw[3] = %#v", mw[3])
	}
	size.Apply(SizeInfo{})
	if !sized {
		t.Error("size hook not wired")
	}
	if h, ok := mw[4].(Hide); !ok || h.Strategy != HideReferenceHidden {
		t.Errorf("mw[4] = %#v", mw[4])
	}
	if h, ok := mw[5].(Hide); !ok || h.Strategy != HideEscaped {
		t.Errorf("mw[5] = %#v", mw[5])
	}
}
