// Package render converts vdom trees into HTML.
//
// Text and attribute values are escaped. Event handlers are never serialized;
// an element carrying handlers gets one data-on-<event> marker per handler so
// the browser script knows which events to forward to the server.
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// RenderPage wraps a body tree in a complete document with the layout-sync
// client script.
package render
