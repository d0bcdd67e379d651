// Package dom models the parts of a browser document that floating-element
// positioning depends on: bounding rectangles, the parent chain, overflow
// style, and scroll/resize subscriptions.
//
// Element is the interface the positioning and watcher packages consume.
// Document and Node are an in-memory implementation: the layout-sync server
// mirrors each browser's layout into a Document, and tests build one by hand.
//
//	doc := dom.NewDocument(geom.R(0, 0, 1280, 800))
//	panel := doc.CreateElement("panel")
//	panel.SetOverflow(dom.OverflowAuto)
//	doc.Body().Append(panel)
//
// RefRegistry collects several owners of one element reference and assigns
// the live element to all of them at mount time.
package dom
