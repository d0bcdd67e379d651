// Package geom provides the rectangle and placement primitives used to
// position floating elements.
package geom

import "math"

// Axis is a layout axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// String returns "x" or "y".
func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Coords is a point in viewport space.
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Get returns the coordinate on the given axis.
func (c Coords) Get(a Axis) float64 {
	if a == AxisX {
		return c.X
	}
	return c.Y
}

// With returns a copy with the coordinate on axis a replaced.
func (c Coords) With(a Axis, v float64) Coords {
	if a == AxisX {
		c.X = v
	} else {
		c.Y = v
	}
	return c
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Length returns the extent along an axis (width for x, height for y).
func (s Size) Length(a Axis) float64 {
	if a == AxisX {
		return s.Width
	}
	return s.Height
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// R is shorthand for constructing a Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) Top() float64    { return r.Y }
func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Coords {
	return Coords{X: r.X, Y: r.Y}
}

// Pos returns the position along an axis.
func (r Rect) Pos(a Axis) float64 {
	if a == AxisX {
		return r.X
	}
	return r.Y
}

// Length returns the extent along an axis.
func (r Rect) Length(a Axis) float64 {
	return r.Size().Length(a)
}

// Edge returns the coordinate of a side of the rectangle.
func (r Rect) Edge(s Side) float64 {
	switch s {
	case Top:
		return r.Top()
	case Bottom:
		return r.Bottom()
	case Left:
		return r.Left()
	default:
		return r.Right()
	}
}

// Intersect returns the overlap of r and o. Disjoint rectangles produce a
// zero-area rectangle (negative extents are clamped to zero).
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left(), o.Left())
	top := math.Max(r.Top(), o.Top())
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	return Rect{
		X:      left,
		Y:      top,
		Width:  math.Max(0, right-left),
		Height: math.Max(0, bottom-top),
	}
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(p Coords) bool {
	return p.X >= r.Left() && p.X < r.Right() && p.Y >= r.Top() && p.Y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// SideObject holds one value per side: overflow amounts, padding, offsets.
type SideObject struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns a SideObject with the same value on every side.
func Uniform(v float64) SideObject {
	return SideObject{Top: v, Right: v, Bottom: v, Left: v}
}

// Get returns the value for a side.
func (s SideObject) Get(side Side) float64 {
	switch side {
	case Top:
		return s.Top
	case Bottom:
		return s.Bottom
	case Left:
		return s.Left
	default:
		return s.Right
	}
}

// AnyNonNegative reports whether any side is >= 0.
func (s SideObject) AnyNonNegative() bool {
	return s.Top >= 0 || s.Right >= 0 || s.Bottom >= 0 || s.Left >= 0
}

// Clamp limits v to [lo, hi]. When lo > hi, lo wins.
func Clamp(lo, v, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
