// Package autoupdate keeps a floating element's position fresh by listening
// for scroll and resize on everything that can move either element.
package autoupdate

import (
	"sync"

	"github.com/vango-dev/floatkit/pkg/dom"
)

// Options selects which listeners Start installs. The zero value installs all
// of them.
type Options struct {
	// DisableAncestorScroll skips scroll listeners on overflow ancestors and
	// the window.
	DisableAncestorScroll bool

	// DisableAncestorResize skips resize listeners on overflow ancestors and
	// the window.
	DisableAncestorResize bool

	// DisableElementResize skips resize listeners on the two elements.
	DisableElementResize bool
}

// Start calls update once, then again whenever an overflow ancestor of either
// element (or the window) scrolls or resizes, or either element resizes. The
// returned stop func removes every listener and is safe to call more than
// once. When either element is missing or detached Start installs nothing
// and does not call update.
func Start(reference, floating dom.Element, update func(), opts Options) (stop func()) {
	if !dom.Mounted(reference) || !dom.Mounted(floating) {
		return func() {}
	}

	var removers []func()
	seen := make(map[dom.EventTarget]bool)
	listen := func(target dom.EventTarget, types ...dom.EventType) {
		if target == nil || seen[target] {
			return
		}
		seen[target] = true
		for _, typ := range types {
			removers = append(removers, target.AddListener(typ, update))
		}
	}

	var ancestorTypes []dom.EventType
	if !opts.DisableAncestorScroll {
		ancestorTypes = append(ancestorTypes, dom.EventScroll)
	}
	if !opts.DisableAncestorResize {
		ancestorTypes = append(ancestorTypes, dom.EventResize)
	}
	if len(ancestorTypes) > 0 {
		for _, el := range []dom.Element{reference, floating} {
			for _, target := range dom.OverflowAncestors(el) {
				listen(target, ancestorTypes...)
			}
		}
	}
	if !opts.DisableElementResize {
		listen(reference, dom.EventResize)
		listen(floating, dom.EventResize)
	}

	update()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, remove := range removers {
				remove()
			}
		})
	}
}
