package interact

import (
	"github.com/vango-dev/floatkit/pkg/delaygroup"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

// Part is the element an event was delivered to.
type Part uint8

const (
	PartReference Part = iota
	PartFloating
	PartDocument
)

// EventType names the DOM events interactions react to.
type EventType string

const (
	EventPointerEnter EventType = "pointerenter"
	EventPointerLeave EventType = "pointerleave"
	EventFocus        EventType = "focus"
	EventBlur         EventType = "blur"
	EventKeyDown      EventType = "keydown"
	EventPointerDown  EventType = "pointerdown"
)

// Event is a DOM event forwarded to the controller.
type Event struct {
	Type EventType

	// Key is set for keydown.
	Key string

	// Target is the element the event originated on.
	Target dom.Element

	// Related is the element focus moves to on blur, if known.
	Related dom.Element
}

// Interaction is one trigger source. Interactions never mutate the open state
// except through the controller.
type Interaction interface {
	// Events lists the events this interaction needs delivered to part.
	Events(part Part) []EventType

	// Handle reacts to an event delivered to part.
	Handle(c *Controller, part Part, ev Event)

	// Attrs returns the attributes it contributes to part.
	Attrs(c *Controller, part Part) []vdom.Attr
}

// Hover opens on pointer enter and closes on pointer leave, with delays.
// Moving from the reference onto the floating element within the close delay
// keeps it open.
type Hover struct {
	// Delay overrides the group's delay when non-zero.
	Delay delaygroup.Delay

	// Group supplies the delay when Delay is zero. Defaults to the
	// controller's group.
	Group *delaygroup.Group
}

// delay is read at event time so a group that entered its grouped phase
// since the last hover is honored.
func (h Hover) delay(c *Controller) delaygroup.Delay {
	if !h.Delay.IsZero() {
		return h.Delay
	}
	g := h.Group
	if g == nil {
		g = c.group
	}
	if g != nil {
		return g.Delay()
	}
	return delaygroup.Delay{}
}

func (h Hover) Events(part Part) []EventType {
	if part == PartDocument {
		return nil
	}
	return []EventType{EventPointerEnter, EventPointerLeave}
}

func (h Hover) Handle(c *Controller, part Part, ev Event) {
	if part == PartDocument {
		return
	}
	switch ev.Type {
	case EventPointerEnter:
		c.closeSlot.Cancel()
		if part == PartFloating || c.Open() {
			return
		}
		c.scheduleOpen(h.delay(c).Open, ReasonHover)
	case EventPointerLeave:
		c.openSlot.Cancel()
		if !c.Open() {
			return
		}
		c.scheduleClose(h.delay(c).Close, ReasonHover)
	}
}

func (Hover) Attrs(*Controller, Part) []vdom.Attr { return nil }

// Focus opens while the reference has keyboard focus.
type Focus struct{}

func (Focus) Events(part Part) []EventType {
	if part != PartReference {
		return nil
	}
	return []EventType{EventFocus, EventBlur}
}

func (Focus) Handle(c *Controller, part Part, ev Event) {
	if part != PartReference {
		return
	}
	switch ev.Type {
	case EventFocus:
		c.SetOpen(true, ReasonFocus)
	case EventBlur:
		if ev.Related != nil {
			_, floating := c.Elements()
			if dom.Contains(floating, ev.Related) {
				return
			}
		}
		c.SetOpen(false, ReasonBlur)
	}
}

func (Focus) Attrs(*Controller, Part) []vdom.Attr { return nil }

// Dismiss closes on Escape and on presses outside both elements.
type Dismiss struct {
	DisableEscapeKey    bool
	DisableOutsidePress bool
}

func (d Dismiss) Events(part Part) []EventType {
	var out []EventType
	if !d.DisableEscapeKey {
		out = append(out, EventKeyDown)
	}
	if part == PartDocument && !d.DisableOutsidePress {
		out = append(out, EventPointerDown)
	}
	return out
}

func (d Dismiss) Handle(c *Controller, part Part, ev Event) {
	if !c.Open() {
		return
	}
	switch ev.Type {
	case EventKeyDown:
		if !d.DisableEscapeKey && ev.Key == "Escape" {
			c.SetOpen(false, ReasonEscapeKey)
		}
	case EventPointerDown:
		if d.DisableOutsidePress || part != PartDocument || ev.Target == nil {
			return
		}
		reference, floating := c.Elements()
		if dom.Contains(reference, ev.Target) || dom.Contains(floating, ev.Target) {
			return
		}
		c.SetOpen(false, ReasonOutsidePress)
	}
}

func (Dismiss) Attrs(*Controller, Part) []vdom.Attr { return nil }

// Role adds ARIA wiring. The default role is "tooltip", which describes the
// reference by the floating element while open.
type Role struct {
	Role string
}

func (r Role) role() string {
	if r.Role == "" {
		return "tooltip"
	}
	return r.Role
}

func (Role) Events(Part) []EventType { return nil }

func (Role) Handle(*Controller, Part, Event) {}

func (r Role) Attrs(c *Controller, part Part) []vdom.Attr {
	switch part {
	case PartFloating:
		return []vdom.Attr{vdom.ID(c.FloatingID()), vdom.Role(r.role())}
	case PartReference:
		if r.role() == "tooltip" && c.Open() {
			return []vdom.Attr{vdom.AriaDescribedBy(c.FloatingID())}
		}
	}
	return nil
}
