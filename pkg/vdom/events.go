package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "blur" becomes "onblur").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// On creates a handler for an arbitrary event name.
func On(name string, handler any) EventHandler { return event(name, handler) }

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) EventHandler { return event("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) EventHandler { return event("blur", handler) }

// OnPointerDown handles pointerdown events.
func OnPointerDown(handler any) EventHandler { return event("pointerdown", handler) }

// OnPointerEnter handles pointerenter events.
func OnPointerEnter(handler any) EventHandler { return event("pointerenter", handler) }

// OnPointerLeave handles pointerleave events.
func OnPointerLeave(handler any) EventHandler { return event("pointerleave", handler) }
