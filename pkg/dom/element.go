package dom

import (
	"math"

	"github.com/vango-dev/floatkit/pkg/geom"
)

// EventType names a layout-affecting event.
type EventType string

const (
	EventScroll EventType = "scroll"
	EventResize EventType = "resize"
)

// EventTarget can be subscribed to. The returned func removes the listener;
// calling it more than once is a no-op.
type EventTarget interface {
	AddListener(typ EventType, fn func()) (remove func())
}

// Overflow is the computed CSS overflow of an element.
type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowClip    Overflow = "clip"
	OverflowAuto    Overflow = "auto"
	OverflowScroll  Overflow = "scroll"
	OverflowOverlay Overflow = "overlay"
)

// Clips reports whether content outside the element box is cut off.
func (o Overflow) Clips() bool {
	return o != "" && o != OverflowVisible
}

// Window is the top-level scroll and resize target.
type Window interface {
	EventTarget
	// Viewport is the visible area in the coordinate space of element rects.
	Viewport() geom.Rect
}

// Element is a live node with layout.
type Element interface {
	EventTarget
	ID() string
	// Rect is the bounding client rect.
	Rect() geom.Rect
	ParentElement() Element
	Overflow() Overflow
	IsConnected() bool
	OwnerWindow() Window
}

// Mounted reports whether el is non-nil and attached to a document.
func Mounted(el Element) bool {
	return el != nil && el.IsConnected()
}

// Contains reports whether el is ancestor itself or one of its descendants.
func Contains(ancestor, el Element) bool {
	if ancestor == nil || el == nil {
		return false
	}
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if cur.ID() == ancestor.ID() {
			return true
		}
	}
	return false
}

// OverflowAncestors returns every ancestor of el whose overflow clips or
// scrolls, nearest first, followed by the window. These are the targets whose
// scroll or resize can move el on screen.
func OverflowAncestors(el Element) []EventTarget {
	if el == nil {
		return nil
	}
	var out []EventTarget
	for cur := el.ParentElement(); cur != nil; cur = cur.ParentElement() {
		if cur.Overflow().Clips() {
			out = append(out, cur)
		}
	}
	if w := el.OwnerWindow(); w != nil {
		out = append(out, w)
	}
	return out
}

// ClippingAncestors returns the ancestors of el that clip it, nearest first.
func ClippingAncestors(el Element) []Element {
	if el == nil {
		return nil
	}
	var out []Element
	for cur := el.ParentElement(); cur != nil; cur = cur.ParentElement() {
		if cur.Overflow().Clips() {
			out = append(out, cur)
		}
	}
	return out
}

// ClippingRect is the area el can be seen in: the viewport intersected with
// the rects of its clipping ancestors.
func ClippingRect(el Element) geom.Rect {
	if el == nil {
		return geom.Rect{}
	}
	ancestors := ClippingAncestors(el)
	var rect geom.Rect
	if w := el.OwnerWindow(); w != nil {
		rect = w.Viewport()
	} else if len(ancestors) > 0 {
		rect = ancestors[0].Rect()
	} else {
		return geom.R(math.Inf(-1), math.Inf(-1), math.Inf(1), math.Inf(1))
	}
	for _, a := range ancestors {
		rect = rect.Intersect(a.Rect())
	}
	return rect
}
