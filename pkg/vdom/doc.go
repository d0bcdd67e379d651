// Package vdom provides the virtual node tree floatkit renders triggers and
// floating content into.
//
// Elements are created using variadic factory functions:
//
//	Div(ID("tip"), Role("tooltip"),
//	    Span(Text("Saved")),
//	    OnPointerEnter(handler),
//	)
//
// Event handlers are stored in Props under their "on"-prefixed name. The HTML
// renderer does not serialize them; it emits data-on-* markers so the browser
// side knows which events to forward over the layout-sync socket.
package vdom
