package position

import (
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

type elementContext uint8

const (
	contextFloating elementContext = iota
	contextReference
)

type overflowOptions struct {
	context elementContext
	// altBoundary measures against the other element's clipping ancestors.
	altBoundary bool
	padding     geom.SideObject
}

// detectOverflow returns how far the element sticks out past each side of
// its clipping rect. Positive values overflow; negative values are room left.
func (s *state) detectOverflow(o overflowOptions) geom.SideObject {
	var boundaryEl dom.Element
	switch {
	case o.context == contextFloating && !o.altBoundary,
		o.context == contextReference && o.altBoundary:
		boundaryEl = s.floating
	default:
		boundaryEl = s.reference
	}
	clip := dom.ClippingRect(boundaryEl)

	var rect geom.Rect
	if o.context == contextFloating {
		rect = geom.Rect{
			X:      s.coords.X,
			Y:      s.coords.Y,
			Width:  s.rects.Floating.Width,
			Height: s.rects.Floating.Height,
		}
	} else {
		rect = s.rects.Reference
	}

	return geom.SideObject{
		Top:    clip.Top() - rect.Top() + o.padding.Top,
		Bottom: rect.Bottom() - clip.Bottom() + o.padding.Bottom,
		Left:   clip.Left() - rect.Left() + o.padding.Left,
		Right:  rect.Right() - clip.Right() + o.padding.Right,
	}
}
