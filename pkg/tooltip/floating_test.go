package tooltip

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

func specs(t *testing.T, raw string) []position.Spec {
	t.Helper()
	var out []position.Spec
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func floatingFixture() (*dom.Document, *dom.Node, *dom.Node) {
	doc := dom.NewDocument(geom.R(0, 0, 800, 600))
	ref := doc.CreateElement("anchor").SetRect(geom.R(100, 100, 80, 20))
	fl := doc.CreateElement("demo-floating").SetRect(geom.R(0, 0, 120, 40))
	doc.Body().Append(ref, fl)
	return doc, ref, fl
}

func styleOf(t *testing.T, n *vdom.VNode) string {
	t.Helper()
	if n == nil {
		t.Fatal("node not rendered")
	}
	s, _ := n.Props["style"].(string)
	return s
}

func TestFloatingSizeMinHeight(t *testing.T) {
	for _, tc := range []struct {
		minHeight float64
		want      float64
	}{
		{0, 480},
		{500, 500},
	} {
		doc, ref, fl := floatingFixture()
		f, err := NewFloating(doc, FloatingOptions{
			ID:         "demo",
			Middleware: specs(t, `[{"name":"size"}]`),
			MinHeight:  tc.minHeight,
		})
		if err != nil {
			t.Fatal(err)
		}
		f.Mount(ref, fl, nil)

		got, ok := f.MaxHeight()
		if !ok || got != tc.want {
			t.Errorf("minHeight %v: MaxHeight = %v, %v; want %v", tc.minHeight, got, ok, tc.want)
		}
		style := styleOf(t, f.Render(vdom.Button("x")).Find("demo-floating"))
		if !strings.Contains(style, "max-height: "+num(tc.want)+"px") {
			t.Errorf("style %q missing max-height", style)
		}
	}
}

func TestFloatingTransformAndTransition(t *testing.T) {
	doc, ref, fl := floatingFixture()
	f, err := NewFloating(doc, FloatingOptions{
		ID:         "demo",
		Middleware: specs(t, `[{"name":"offset","options":4.4},{"name":"flip"},{"name":"bogus"}]`),
		Transition: true,
		Style:      vdom.Styles{"z-index": "10", "position": "static"},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := f.Render(vdom.Button("x"))
	style := styleOf(t, out.Find("demo-floating"))
	if !strings.Contains(style, "visibility: hidden") || strings.Contains(style, "transform") {
		t.Errorf("unpositioned style = %q", style)
	}

	f.Mount(ref, fl, nil)
	res := f.Result()
	if res.Y != 124.4 {
		t.Fatalf("Y = %v, want 124.4", res.Y)
	}
	style = styleOf(t, f.Render(vdom.Button("x")).Find("demo-floating"))
	for _, want := range []string{
		"transform: translate3d(80px,124px,0)",
		"left: 0",
		"top: 0",
		"position: absolute",
		"z-index: 10",
		"transition: " + TransformTransition,
	} {
		if !strings.Contains(style, want) {
			t.Errorf("style %q missing %q", style, want)
		}
	}

	doc.SetViewport(geom.R(0, 0, 700, 600))
	style = styleOf(t, f.Render(vdom.Button("x")).Find("demo-floating"))
	if strings.Contains(style, "transition") {
		t.Errorf("transition should be dropped right after a window resize: %q", style)
	}
	style = styleOf(t, f.Render(vdom.Button("x")).Find("demo-floating"))
	if !strings.Contains(style, "transition") {
		t.Errorf("transition should come back on the next render: %q", style)
	}
}

func TestFloatingArrow(t *testing.T) {
	doc, _, fl := floatingFixture()
	arrow := doc.CreateElement("demo-arrow").SetRect(geom.R(0, 0, 10, 10))
	fl.Append(arrow)

	f, err := NewFloating(doc, FloatingOptions{ID: "demo", Arrow: true})
	if err != nil {
		t.Fatal(err)
	}
	f.Bind("anchor")

	a := f.Result().MiddlewareData.Arrow
	if a == nil || a.X == nil || *a.X != 55 {
		t.Fatalf("arrow data = %+v", a)
	}
	style := styleOf(t, f.Render(vdom.Button("x")).Find("demo-arrow"))
	if !strings.Contains(style, "left: 55px") || !strings.Contains(style, "transform: rotate(45deg)") {
		t.Errorf("arrow style = %q", style)
	}
}

func TestFloatingHideEscaped(t *testing.T) {
	doc := dom.NewDocument(geom.R(0, 0, 800, 600))
	panel := doc.CreateElement("panel").SetRect(geom.R(0, 0, 400, 300)).SetOverflow(dom.OverflowAuto)
	ref := doc.CreateElement("anchor").SetRect(geom.R(100, 290, 50, 20))
	fl := doc.CreateElement("demo-floating").SetRect(geom.R(0, 0, 120, 40))
	doc.Body().Append(panel, fl)
	panel.Append(ref)

	f, err := NewFloating(doc, FloatingOptions{ID: "demo", Middleware: specs(t, `[{"name":"hide"}]`)})
	if err != nil {
		t.Fatal(err)
	}
	f.Mount(ref, fl, nil)

	style := styleOf(t, f.Render(vdom.Button("x")).Find("demo-floating"))
	if !strings.Contains(style, "background-color: red") {
		t.Errorf("escaped style = %q", style)
	}
	if strings.Contains(style, "visibility") {
		t.Errorf("escaped but visible anchor should not hide: %q", style)
	}
}

func TestFloatingPortaledAndUnmount(t *testing.T) {
	doc, ref, fl := floatingFixture()
	portal := NewPortal("")
	f, err := NewFloating(doc, FloatingOptions{ID: "demo", Portaled: true, Portal: portal})
	if err != nil {
		t.Fatal(err)
	}
	f.Mount(ref, fl, nil)

	trigger := f.Render(vdom.Button("x"), "content")
	if trigger.Tag != "button" || trigger.Props["id"] != "demo-reference" {
		t.Errorf("trigger = %+v", trigger)
	}
	if node := portal.Render().Find("demo-floating"); node == nil || node.TextContent() != "content" {
		t.Fatalf("portaled node = %+v", node)
	}

	if doc.ListenerCount() == 0 {
		t.Fatal("expected listeners while mounted")
	}
	f.Unmount()
	if doc.ListenerCount() != 0 || portal.Len() != 0 {
		t.Errorf("after unmount: listeners=%d portal=%d", doc.ListenerCount(), portal.Len())
	}

	// scroll after unmount must not recompute
	if _, ok := f.Update(context.Background()); ok {
		t.Error("Update after unmount should not compute")
	}
}

func TestFloatingDefaultContent(t *testing.T) {
	f, err := NewFloating(nil, FloatingOptions{ID: "demo"})
	if err != nil {
		t.Fatal(err)
	}
	out := f.Render(nil)
	if out.Kind != vdom.KindFragment || len(out.Children) != 2 {
		t.Fatalf("render = %+v", out)
	}
	if got := out.Find("demo-floating").TextContent(); got != "Floating" {
		t.Errorf("default content = %q", got)
	}
}
