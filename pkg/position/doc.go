// Package position resolves where a floating element goes relative to its
// anchor.
//
// Compute starts from the coordinates implied by the requested placement and
// runs an ordered middleware pipeline over them. Each step sees the running
// coordinates and may replace them, record data for renderers, or ask the
// pipeline to restart with a different placement or freshly measured rects:
//
//	res, ok := resolver.Compute(ctx, anchor, tip, position.Config{
//	    Placement: geom.PlacementBottom,
//	    Middleware: []position.Middleware{
//	        position.Offset{MainAxis: 8},
//	        position.Flip{},
//	        position.Shift{},
//	    },
//	})
//
// Results are best effort: they are recomputed whenever layout changes rather
// than solved once. Compute reports ok=false and does nothing when either
// element is missing or detached; Tracker keeps the previous result in that
// case so renderers can keep the element hidden until a real measurement
// exists.
package position
