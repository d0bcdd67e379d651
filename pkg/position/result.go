package position

import "github.com/vango-dev/floatkit/pkg/geom"

// Strategy is the CSS position the floating element is rendered with.
type Strategy string

const (
	StrategyAbsolute Strategy = "absolute"
	StrategyFixed    Strategy = "fixed"
)

// ElementRects are the measured anchor rect and floating size. The floating
// rect always has a zero origin.
type ElementRects struct {
	Reference geom.Rect `json:"reference"`
	Floating  geom.Rect `json:"floating"`
}

// OffsetData records the applied offset.
type OffsetData struct {
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Placement geom.Placement `json:"placement"`
}

// FlipAttempt is one placement Flip tried and how much it overflowed.
type FlipAttempt struct {
	Placement geom.Placement `json:"placement"`
	Overflows []float64      `json:"overflows"`
}

// FlipData records the fallback search.
type FlipData struct {
	Index     int           `json:"index"`
	Overflows []FlipAttempt `json:"overflows"`
}

// ShiftData is the translation Shift applied.
type ShiftData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SizeData is the space Size reported.
type SizeData struct {
	AvailableWidth  float64 `json:"availableWidth"`
	AvailableHeight float64 `json:"availableHeight"`
}

// ArrowData positions the arrow. Only the alignment-axis coordinate is set.
type ArrowData struct {
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	CenterOffset    float64  `json:"centerOffset"`
	AlignmentOffset float64  `json:"alignmentOffset,omitempty"`
}

// HideData merges the results of both hide strategies.
type HideData struct {
	ReferenceHidden        bool             `json:"referenceHidden,omitempty"`
	ReferenceHiddenOffsets *geom.SideObject `json:"referenceHiddenOffsets,omitempty"`
	Escaped                bool             `json:"escaped,omitempty"`
	EscapedOffsets         *geom.SideObject `json:"escapedOffsets,omitempty"`
}

// MiddlewareData collects what each step reported. Nil means the step did not
// run or had nothing to say.
type MiddlewareData struct {
	Offset *OffsetData `json:"offset,omitempty"`
	Flip   *FlipData   `json:"flip,omitempty"`
	Shift  *ShiftData  `json:"shift,omitempty"`
	Size   *SizeData   `json:"size,omitempty"`
	Arrow  *ArrowData  `json:"arrow,omitempty"`
	Hide   *HideData   `json:"hide,omitempty"`
}

// Result is a resolved position.
type Result struct {
	X              float64        `json:"x"`
	Y              float64        `json:"y"`
	Strategy       Strategy       `json:"strategy"`
	Placement      geom.Placement `json:"placement"`
	MiddlewareData MiddlewareData `json:"middlewareData"`
	// IsPositioned is false until the first successful measurement.
	IsPositioned bool `json:"isPositioned"`
}

// Visible reports whether a renderer should show the floating element: it
// has been measured and its anchor is not clipped out of view.
func (r Result) Visible() bool {
	if !r.IsPositioned {
		return false
	}
	if h := r.MiddlewareData.Hide; h != nil && h.ReferenceHidden {
		return false
	}
	return true
}
