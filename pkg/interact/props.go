package interact

import (
	"slices"
	"strings"

	"github.com/vango-dev/floatkit/pkg/vdom"
)

// Props is the merged result of attaching interactions to a controller.
type Props struct {
	c            *Controller
	interactions []Interaction
}

// Attach merges interactions into one props set. Events are delivered to
// interactions in the order given.
func (c *Controller) Attach(interactions ...Interaction) *Props {
	return &Props{c: c, interactions: slices.Clone(interactions)}
}

// Controller returns the controller the props dispatch to.
func (p *Props) Controller() *Controller { return p.c }

// Reference dispatches an event delivered to the reference element.
func (p *Props) Reference(ev Event) { p.dispatch(PartReference, ev) }

// Floating dispatches an event delivered to the floating element.
func (p *Props) Floating(ev Event) { p.dispatch(PartFloating, ev) }

// Document dispatches a document-level event.
func (p *Props) Document(ev Event) { p.dispatch(PartDocument, ev) }

// Dispatch routes ev to part.
func (p *Props) Dispatch(part Part, ev Event) { p.dispatch(part, ev) }

func (p *Props) dispatch(part Part, ev Event) {
	for _, in := range p.interactions {
		if slices.Contains(in.Events(part), ev.Type) {
			in.Handle(p.c, part, ev)
		}
	}
}

// Events returns the distinct events part must forward, in first-seen order.
func (p *Props) Events(part Part) []EventType {
	var out []EventType
	for _, in := range p.interactions {
		for _, ev := range in.Events(part) {
			if !slices.Contains(out, ev) {
				out = append(out, ev)
			}
		}
	}
	return out
}

// ReferenceAttrs returns vdom attributes and handlers for the reference
// element merged with extra. A caller handler for the same event runs first.
func (p *Props) ReferenceAttrs(extra ...any) []any {
	return p.attrs(PartReference, extra)
}

// FloatingAttrs is ReferenceAttrs for the floating element.
func (p *Props) FloatingAttrs(extra ...any) []any {
	return p.attrs(PartFloating, extra)
}

func (p *Props) attrs(part Part, extra []any) []any {
	caller := make(map[string]any)
	out := make([]any, 0, len(extra)+4)
	for _, e := range extra {
		if h, ok := e.(vdom.EventHandler); ok {
			caller[h.Event] = h.Handler
			continue
		}
		out = append(out, e)
	}
	for _, in := range p.interactions {
		for _, a := range in.Attrs(p.c, part) {
			out = append(out, a)
		}
	}

	ours := p.Events(part)
	for _, typ := range ours {
		name := "on" + string(typ)
		typ := typ
		handler := func(ev Event) {
			if ev.Type == "" {
				ev.Type = typ
			}
			invoke(caller[name], ev)
			p.dispatch(part, ev)
		}
		out = append(out, vdom.EventHandler{Event: name, Handler: handler})
	}
	for name, h := range caller {
		if !slices.Contains(ours, EventType(strings.TrimPrefix(name, "on"))) {
			out = append(out, vdom.EventHandler{Event: name, Handler: h})
		}
	}
	return out
}

// invoke calls a caller-supplied handler of a supported shape.
func invoke(h any, ev Event) {
	switch fn := h.(type) {
	case func():
		fn()
	case func(Event):
		fn(ev)
	}
}
