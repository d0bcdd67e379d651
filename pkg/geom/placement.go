package geom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Side is the side of the anchor a floating element is placed on.
type Side uint8

const (
	Top Side = iota
	Right
	Bottom
	Left
)

var sideNames = [...]string{"top", "right", "bottom", "left"}

// String returns the CSS-style side name.
func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return "unknown"
}

// Opposite returns the mirrored side.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Axis returns the axis the side lies on: y for top/bottom, x for left/right.
func (s Side) Axis() Axis {
	if s == Top || s == Bottom {
		return AxisY
	}
	return AxisX
}

// Alignment is the cross-axis alignment of a placement.
type Alignment uint8

const (
	AlignCenter Alignment = iota
	AlignStart
	AlignEnd
)

// String returns "", "start" or "end".
func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignEnd:
		return "end"
	default:
		return ""
	}
}

// Opposite swaps start and end; center stays center.
func (a Alignment) Opposite() Alignment {
	switch a {
	case AlignStart:
		return AlignEnd
	case AlignEnd:
		return AlignStart
	default:
		return AlignCenter
	}
}

// Placement is a side plus an optional alignment, e.g. "bottom-start".
type Placement struct {
	Side      Side
	Alignment Alignment
}

// The twelve placements.
var (
	PlacementTop         = Placement{Top, AlignCenter}
	PlacementTopStart    = Placement{Top, AlignStart}
	PlacementTopEnd      = Placement{Top, AlignEnd}
	PlacementRight       = Placement{Right, AlignCenter}
	PlacementRightStart  = Placement{Right, AlignStart}
	PlacementRightEnd    = Placement{Right, AlignEnd}
	PlacementBottom      = Placement{Bottom, AlignCenter}
	PlacementBottomStart = Placement{Bottom, AlignStart}
	PlacementBottomEnd   = Placement{Bottom, AlignEnd}
	PlacementLeft        = Placement{Left, AlignCenter}
	PlacementLeftStart   = Placement{Left, AlignStart}
	PlacementLeftEnd     = Placement{Left, AlignEnd}
)

// AllPlacements lists every placement in side order.
var AllPlacements = []Placement{
	PlacementTop, PlacementTopStart, PlacementTopEnd,
	PlacementRight, PlacementRightStart, PlacementRightEnd,
	PlacementBottom, PlacementBottomStart, PlacementBottomEnd,
	PlacementLeft, PlacementLeftStart, PlacementLeftEnd,
}

// ParsePlacement parses names such as "top" or "left-end".
func ParsePlacement(s string) (Placement, error) {
	side, align, aligned := strings.Cut(strings.TrimSpace(strings.ToLower(s)), "-")
	if aligned && align == "" {
		return Placement{}, fmt.Errorf("geom: invalid placement alignment %q", s)
	}
	var p Placement
	switch side {
	case "top":
		p.Side = Top
	case "right":
		p.Side = Right
	case "bottom":
		p.Side = Bottom
	case "left":
		p.Side = Left
	default:
		return Placement{}, fmt.Errorf("geom: invalid placement %q", s)
	}
	switch align {
	case "":
		p.Alignment = AlignCenter
	case "start":
		p.Alignment = AlignStart
	case "end":
		p.Alignment = AlignEnd
	default:
		return Placement{}, fmt.Errorf("geom: invalid placement alignment %q", s)
	}
	return p, nil
}

// MustParsePlacement is like ParsePlacement but panics on error.
func MustParsePlacement(s string) Placement {
	p, err := ParsePlacement(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the placement name.
func (p Placement) String() string {
	if p.Alignment == AlignCenter {
		return p.Side.String()
	}
	return p.Side.String() + "-" + p.Alignment.String()
}

// Opposite mirrors the side and keeps the alignment.
func (p Placement) Opposite() Placement {
	return Placement{Side: p.Side.Opposite(), Alignment: p.Alignment}
}

// OppositeAlignment keeps the side and swaps start/end.
func (p Placement) OppositeAlignment() Placement {
	return Placement{Side: p.Side, Alignment: p.Alignment.Opposite()}
}

// SideAxis is the axis the floating element moves away from the anchor on.
func (p Placement) SideAxis() Axis {
	return p.Side.Axis()
}

// AlignmentAxis is the cross axis.
func (p Placement) AlignmentAxis() Axis {
	return p.Side.Axis().Other()
}

// ExpandedPlacements returns the fallbacks tried for an aligned placement:
// same side with the other alignment, the opposite side, and the opposite
// side with the other alignment.
func (p Placement) ExpandedPlacements() []Placement {
	opp := p.Opposite()
	return []Placement{p.OppositeAlignment(), opp, opp.OppositeAlignment()}
}

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Placement) UnmarshalText(b []byte) error {
	v, err := ParsePlacement(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

var _ json.Marshaler = Placement{}

// MarshalJSON encodes the placement as its name.
func (p Placement) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a placement name.
func (p *Placement) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(s))
}
