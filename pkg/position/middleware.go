package position

import (
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// Middleware is one step of the pipeline. The set of steps is closed: the
// resolver switches on the concrete type.
type Middleware interface {
	Name() string
	isMiddleware()
}

// Offset moves the floating element away from the anchor.
type Offset struct {
	// MainAxis is the gap between anchor and floating element.
	MainAxis float64
	// CrossAxis nudges along the alignment axis.
	CrossAxis float64
	// AlignmentAxis replaces CrossAxis for aligned placements, and is
	// negated for -end alignments.
	AlignmentAxis *float64
}

// FallbackStrategy picks a placement when every candidate overflows.
type FallbackStrategy uint8

const (
	// FallbackBestFit picks the placement with the least total overflow.
	FallbackBestFit FallbackStrategy = iota
	// FallbackInitialPlacement returns to the requested placement.
	FallbackInitialPlacement
)

// Flip swaps to a fallback placement when the current one overflows.
type Flip struct {
	// DisableMainAxis skips the overflow check on the placement side.
	DisableMainAxis bool
	// DisableCrossAxis skips the overflow check on the alignment sides.
	DisableCrossAxis bool
	// FallbackPlacements overrides the candidates tried after the
	// requested placement. Defaults to the opposite placement, or the
	// expanded alignment set for aligned placements.
	FallbackPlacements []geom.Placement
	FallbackStrategy   FallbackStrategy
	// DisableFlipAlignment stops aligned placements from trying the other
	// alignment.
	DisableFlipAlignment bool
	Padding              geom.SideObject
}

// Shift slides the floating element along the alignment axis to keep it
// inside the clipping rect without changing placement.
type Shift struct {
	DisableMainAxis bool
	// CrossAxis also clamps along the side axis.
	CrossAxis bool
	Padding   geom.SideObject
}

// SizeInfo is passed to Size.Apply.
type SizeInfo struct {
	AvailableWidth  float64
	AvailableHeight float64
	Placement       geom.Placement
	Rects           ElementRects
}

// Size reports the space available to the floating element. Apply typically
// stores a max-height; if the floating element's measured size changes as a
// result the pipeline restarts with fresh rects.
type Size struct {
	Padding geom.SideObject
	Apply   func(SizeInfo)
}

// Arrow centers an arrow element along the alignment axis.
type Arrow struct {
	Element dom.Element
	Padding geom.SideObject
}

// HideStrategy selects what Hide measures.
type HideStrategy uint8

const (
	// HideReferenceHidden detects an anchor clipped out of view.
	HideReferenceHidden HideStrategy = iota
	// HideEscaped detects a floating element outside its anchor's
	// clipping context.
	HideEscaped
)

// String returns "referenceHidden" or "escaped".
func (s HideStrategy) String() string {
	if s == HideEscaped {
		return "escaped"
	}
	return "referenceHidden"
}

// Hide reports occlusion without moving anything.
type Hide struct {
	Strategy HideStrategy
	Padding  geom.SideObject
}

func (Offset) Name() string { return "offset" }
func (Flip) Name() string   { return "flip" }
func (Shift) Name() string  { return "shift" }
func (Size) Name() string   { return "size" }
func (Arrow) Name() string  { return "arrow" }
func (Hide) Name() string   { return "hide" }

func (Offset) isMiddleware() {}
func (Flip) isMiddleware()   {}
func (Shift) isMiddleware()  {}
func (Size) isMiddleware()   {}
func (Arrow) isMiddleware()  {}
func (Hide) isMiddleware()   {}
