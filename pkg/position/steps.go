package position

import (
	"math"
	"sort"

	"github.com/vango-dev/floatkit/pkg/geom"
)

func (s *state) offset(o Offset) stepResult {
	side := s.placement.Side
	mainMulti := 1.0
	if side == geom.Left || side == geom.Top {
		mainMulti = -1
	}
	cross := o.CrossAxis
	if s.placement.Alignment != geom.AlignCenter && o.AlignmentAxis != nil {
		cross = *o.AlignmentAxis
		if s.placement.Alignment == geom.AlignEnd {
			cross = -cross
		}
	}

	var diff geom.Coords
	if side.Axis() == geom.AxisY {
		diff = geom.Coords{X: cross, Y: o.MainAxis * mainMulti}
	} else {
		diff = geom.Coords{X: o.MainAxis * mainMulti, Y: cross}
	}

	s.data.Offset = &OffsetData{X: diff.X, Y: diff.Y, Placement: s.placement}
	next := geom.Coords{X: s.coords.X + diff.X, Y: s.coords.Y + diff.Y}
	return stepResult{coords: &next}
}

// alignmentSides returns the two cross-axis sides Flip checks, the side the
// floating element extends toward first.
func alignmentSides(p geom.Placement, rects ElementRects) (geom.Side, geom.Side) {
	axis := p.AlignmentAxis()
	var main geom.Side
	if axis == geom.AxisX {
		main = geom.Left
		if p.Alignment == geom.AlignStart {
			main = geom.Right
		}
	} else {
		main = geom.Top
		if p.Alignment == geom.AlignStart {
			main = geom.Bottom
		}
	}
	if rects.Reference.Length(axis) > rects.Floating.Length(axis) {
		main = main.Opposite()
	}
	return main, main.Opposite()
}

func (s *state) flip(o Flip) stepResult {
	initial := s.initialPlacement
	fallbacks := o.FallbackPlacements
	if fallbacks == nil {
		if initial.Alignment == geom.AlignCenter || o.DisableFlipAlignment {
			fallbacks = []geom.Placement{initial.Opposite()}
		} else {
			fallbacks = initial.ExpandedPlacements()
		}
	}
	placements := append([]geom.Placement{initial}, fallbacks...)

	overflow := s.detectOverflow(overflowOptions{padding: o.Padding})
	var overflows []float64
	if !o.DisableMainAxis {
		overflows = append(overflows, overflow.Get(s.placement.Side))
	}
	if !o.DisableCrossAxis {
		a, b := alignmentSides(s.placement, s.rects)
		overflows = append(overflows, overflow.Get(a), overflow.Get(b))
	}

	fits := true
	for _, v := range overflows {
		if v > 0 {
			fits = false
			break
		}
	}
	if fits {
		return stepResult{}
	}

	prevIndex := 0
	var history []FlipAttempt
	if prev := s.data.Flip; prev != nil {
		prevIndex = prev.Index
		history = append(history, prev.Overflows...)
	}
	history = append(history, FlipAttempt{Placement: s.placement, Overflows: overflows})

	next := prevIndex + 1
	if next < len(placements) {
		s.data.Flip = &FlipData{Index: next, Overflows: history}
		p := placements[next]
		return stepResult{reset: true, placement: &p}
	}

	reset, ok := pickFallback(history)
	if !ok {
		switch o.FallbackStrategy {
		case FallbackInitialPlacement:
			reset = initial
		default:
			reset = bestFit(history)
		}
	}
	if reset != s.placement {
		return stepResult{reset: true, placement: &reset}
	}
	return stepResult{}
}

// pickFallback returns the attempt whose first checked side fits and whose
// second overflows least.
func pickFallback(history []FlipAttempt) (geom.Placement, bool) {
	var candidates []FlipAttempt
	for _, h := range history {
		if len(h.Overflows) > 0 && h.Overflows[0] <= 0 {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return geom.Placement{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return second(candidates[i].Overflows) < second(candidates[j].Overflows)
	})
	return candidates[0].Placement, true
}

func second(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	return v[1]
}

// bestFit returns the attempt with the least total positive overflow.
func bestFit(history []FlipAttempt) geom.Placement {
	best := history[0].Placement
	bestSum := math.Inf(1)
	for _, h := range history {
		sum := 0.0
		for _, v := range h.Overflows {
			if v > 0 {
				sum += v
			}
		}
		if sum < bestSum {
			best, bestSum = h.Placement, sum
		}
	}
	return best
}

func (s *state) shift(o Shift) stepResult {
	crossAxis := s.placement.SideAxis()
	mainAxis := crossAxis.Other()
	overflow := s.detectOverflow(overflowOptions{padding: o.Padding})

	clampAxis := func(axis geom.Axis, v float64) float64 {
		minSide, maxSide := geom.Left, geom.Right
		if axis == geom.AxisY {
			minSide, maxSide = geom.Top, geom.Bottom
		}
		lo := v + overflow.Get(minSide)
		hi := v - overflow.Get(maxSide)
		return geom.Clamp(lo, v, hi)
	}

	limited := s.coords
	if !o.DisableMainAxis {
		limited = limited.With(mainAxis, clampAxis(mainAxis, s.coords.Get(mainAxis)))
	}
	if o.CrossAxis {
		limited = limited.With(crossAxis, clampAxis(crossAxis, s.coords.Get(crossAxis)))
	}

	s.data.Shift = &ShiftData{X: limited.X - s.coords.X, Y: limited.Y - s.coords.Y}
	return stepResult{coords: &limited}
}

func (s *state) size(o Size) stepResult {
	overflow := s.detectOverflow(overflowOptions{padding: o.Padding})
	side := s.placement.Side
	align := s.placement.Alignment
	w, h := s.rects.Floating.Width, s.rects.Floating.Height

	var heightSide, widthSide geom.Side
	if side == geom.Top || side == geom.Bottom {
		heightSide = side
		widthSide = geom.Right
		if align == geom.AlignEnd {
			widthSide = geom.Left
		}
	} else {
		widthSide = side
		heightSide = geom.Bottom
		if align == geom.AlignEnd {
			heightSide = geom.Top
		}
	}

	maxClipHeight := h - overflow.Top - overflow.Bottom
	maxClipWidth := w - overflow.Left - overflow.Right
	availableHeight := math.Min(h-overflow.Get(heightSide), maxClipHeight)
	availableWidth := math.Min(w-overflow.Get(widthSide), maxClipWidth)

	if s.data.Shift == nil && align == geom.AlignCenter {
		xMin, xMax := math.Max(overflow.Left, 0), math.Max(overflow.Right, 0)
		yMin, yMax := math.Max(overflow.Top, 0), math.Max(overflow.Bottom, 0)
		if side.Axis() == geom.AxisY {
			if xMin != 0 || xMax != 0 {
				availableWidth = w - 2*(xMin+xMax)
			} else {
				availableWidth = w - 2*math.Max(overflow.Left, overflow.Right)
			}
		} else {
			if yMin != 0 || yMax != 0 {
				availableHeight = h - 2*(yMin+yMax)
			} else {
				availableHeight = h - 2*math.Max(overflow.Top, overflow.Bottom)
			}
		}
	}

	s.data.Size = &SizeData{AvailableWidth: availableWidth, AvailableHeight: availableHeight}
	if o.Apply != nil {
		o.Apply(SizeInfo{
			AvailableWidth:  availableWidth,
			AvailableHeight: availableHeight,
			Placement:       s.placement,
			Rects:           s.rects,
		})
	}

	if s.floating.Rect().Size() != s.rects.Floating.Size() {
		return stepResult{reset: true, rects: true}
	}
	return stepResult{}
}

func (s *state) arrow(o Arrow) stepResult {
	if o.Element == nil {
		return stepResult{}
	}

	axis := s.placement.AlignmentAxis()
	arrowLen := o.Element.Rect().Length(axis)
	minProp, maxProp := geom.Left, geom.Right
	if axis == geom.AxisY {
		minProp, maxProp = geom.Top, geom.Bottom
	}

	ref, fl := s.rects.Reference, s.rects.Floating
	coord := s.coords.Get(axis)
	endDiff := ref.Length(axis) + ref.Pos(axis) - coord - fl.Length(axis)
	startDiff := coord - ref.Pos(axis)
	clientSize := fl.Length(axis)
	centerToReference := endDiff/2 - startDiff/2

	largestPadding := clientSize/2 - arrowLen/2 - 1
	minPadding := math.Min(o.Padding.Get(minProp), largestPadding)
	maxPadding := math.Min(o.Padding.Get(maxProp), largestPadding)

	lo := minPadding
	hi := clientSize - arrowLen - maxPadding
	center := clientSize/2 - arrowLen/2 + centerToReference
	offset := geom.Clamp(lo, center, hi)

	edgePadding := maxPadding
	if center < lo {
		edgePadding = minPadding
	}
	shouldAddOffset := s.placement.Alignment != geom.AlignCenter &&
		center != offset &&
		ref.Length(axis)/2-edgePadding-arrowLen/2 < 0

	alignmentOffset := 0.0
	if shouldAddOffset {
		if center < lo {
			alignmentOffset = center - lo
		} else {
			alignmentOffset = center - hi
		}
	}

	data := &ArrowData{CenterOffset: center - offset - alignmentOffset}
	if shouldAddOffset {
		data.AlignmentOffset = alignmentOffset
	}
	if axis == geom.AxisX {
		data.X = &offset
	} else {
		data.Y = &offset
	}
	s.data.Arrow = data

	next := s.coords.With(axis, coord+alignmentOffset)
	return stepResult{coords: &next}
}

func sideOffsets(overflow geom.SideObject, rect geom.Rect) geom.SideObject {
	return geom.SideObject{
		Top:    overflow.Top - rect.Height,
		Right:  overflow.Right - rect.Width,
		Bottom: overflow.Bottom - rect.Height,
		Left:   overflow.Left - rect.Width,
	}
}

func (s *state) hide(o Hide) stepResult {
	if s.data.Hide == nil {
		s.data.Hide = &HideData{}
	}
	switch o.Strategy {
	case HideEscaped:
		overflow := s.detectOverflow(overflowOptions{altBoundary: true, padding: o.Padding})
		offsets := sideOffsets(overflow, s.rects.Floating)
		s.data.Hide.EscapedOffsets = &offsets
		s.data.Hide.Escaped = offsets.AnyNonNegative()
	default:
		overflow := s.detectOverflow(overflowOptions{context: contextReference, padding: o.Padding})
		offsets := sideOffsets(overflow, s.rects.Reference)
		s.data.Hide.ReferenceHiddenOffsets = &offsets
		s.data.Hide.ReferenceHidden = offsets.AnyNonNegative()
	}
	return stepResult{}
}
