// Package server hosts the floatkit demo and the layout-sync endpoint.
//
// The browser renders the page once over HTTP. It then opens a WebSocket
// to /ws and reports its layout: the viewport plus every element with an id,
// including its parent, bounding rect and computed overflow. The server keeps
// a mirror of that layout in a dom.Document and runs the tooltip state
// machines against it. It pushes back three kinds of message:
//
//	open      the open state and phase of a tooltip changed
//	presence  floating content mounted (with its HTML) or unmounted
//	position  a new computed position for a floating element
//
// Each WebSocket connection is a Session. A session owns its document,
// delay group and tooltips and serializes every event, layout update and
// timer callback through one event loop goroutine.
//
// # Routes
//
//	GET  /           demo page
//	POST /mode       toggle the persisted color mode
//	GET  /client.js  layout-sync client
//	GET  /ws         layout-sync WebSocket
//	GET  /metrics    Prometheus metrics
//	GET  /healthz    liveness
package server
