package dom

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/floatkit/internal/errors"
)

// RefSetter receives the live element (or nil on unmount). It may refuse the
// assignment, e.g. when the caller handed over a read-only reference.
type RefSetter func(Element) error

// Ref is a plain element holder.
type Ref struct {
	mu      sync.RWMutex
	current Element
}

// Current returns the held element.
func (r *Ref) Current() Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Set stores el.
func (r *Ref) Set(el Element) error {
	r.mu.Lock()
	r.current = el
	r.mu.Unlock()
	return nil
}

// Setter returns r.Set as a RefSetter.
func (r *Ref) Setter() RefSetter {
	return r.Set
}

// RefRegistry is the single ownership point for one element reference. The
// component registers its own slot and any caller-supplied setters; Set then
// assigns the live element to all of them.
type RefRegistry struct {
	mu      sync.Mutex
	current Element
	setters []RefSetter
	logger  *slog.Logger
}

// NewRefRegistry creates a registry. A nil logger uses slog.Default().
func NewRefRegistry(logger *slog.Logger, setters ...RefSetter) *RefRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RefRegistry{logger: logger}
	r.Add(setters...)
	return r
}

// Add registers more setters. Nil setters are ignored. If an element is
// already mounted the new setters receive it immediately.
func (r *RefRegistry) Add(setters ...RefSetter) {
	r.mu.Lock()
	var added []RefSetter
	for _, s := range setters {
		if s != nil {
			r.setters = append(r.setters, s)
			added = append(added, s)
		}
	}
	el := r.current
	r.mu.Unlock()

	if el != nil {
		r.assign(el, added)
	}
}

// Set assigns el to every registered setter. Setter failures are logged and
// swallowed: the registry's own slot always holds el.
func (r *RefRegistry) Set(el Element) {
	r.mu.Lock()
	r.current = el
	setters := append([]RefSetter(nil), r.setters...)
	r.mu.Unlock()

	r.assign(el, setters)
}

// Current returns the element last assigned through Set.
func (r *RefRegistry) Current() Element {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *RefRegistry) assign(el Element, setters []RefSetter) {
	for _, s := range setters {
		if err := s(el); err != nil {
			r.logger.Debug("element reference not assigned",
				"error", errors.New("F002").Wrap(err))
		}
	}
}
