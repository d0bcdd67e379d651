package position

import (
	"context"
	"reflect"
	"sync"

	"github.com/vango-dev/floatkit/pkg/dom"
)

// Tracker keeps the latest Result for one floating pair. Update recomputes
// when both elements are mounted and otherwise leaves the previous result in
// place.
type Tracker struct {
	resolver *Resolver

	mu        sync.Mutex
	cfg       Config
	reference dom.Element
	floating  dom.Element
	last      Result
	listeners []func(Result)
}

// NewTracker creates a tracker. A nil resolver uses the package default.
func NewTracker(resolver *Resolver, cfg Config) *Tracker {
	if resolver == nil {
		resolver = defaultResolver
	}
	return &Tracker{resolver: resolver, cfg: cfg}
}

// SetElements replaces the floating pair. Either may be nil.
func (t *Tracker) SetElements(reference, floating dom.Element) {
	t.mu.Lock()
	t.reference, t.floating = reference, floating
	t.mu.Unlock()
}

// SetReference replaces the anchor element.
func (t *Tracker) SetReference(el dom.Element) {
	t.mu.Lock()
	t.reference = el
	t.mu.Unlock()
}

// SetFloating replaces the floating element.
func (t *Tracker) SetFloating(el dom.Element) {
	t.mu.Lock()
	t.floating = el
	t.mu.Unlock()
}

// Elements returns the current floating pair.
func (t *Tracker) Elements() (reference, floating dom.Element) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reference, t.floating
}

// SetConfig replaces the configuration used by later updates.
func (t *Tracker) SetConfig(cfg Config) {
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
}

// Config returns the current configuration.
func (t *Tracker) Config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// Result returns the last computed result. Its IsPositioned is false until
// the first successful update.
func (t *Tracker) Result() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// OnChange registers fn to run after an update produces a different result.
func (t *Tracker) OnChange(fn func(Result)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// Update recomputes the position. It reports whether a computation ran.
func (t *Tracker) Update(ctx context.Context) (Result, bool) {
	t.mu.Lock()
	ref, fl, cfg := t.reference, t.floating, t.cfg
	t.mu.Unlock()

	res, ok := t.resolver.Compute(ctx, ref, fl, cfg)
	if !ok {
		return t.Result(), false
	}

	t.mu.Lock()
	changed := !reflect.DeepEqual(t.last, res)
	t.last = res
	listeners := append(([]func(Result))(nil), t.listeners...)
	t.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(res)
		}
	}
	return res, true
}

// Reset forgets the last result, e.g. when the floating element unmounts.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.last = Result{}
	t.mu.Unlock()
}
