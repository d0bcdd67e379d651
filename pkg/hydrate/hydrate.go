// Package hydrate persists small UI state values in a JSON cookie and restores
// them on the next visit.
//
// A State is hydrated at most once; later Hydrate calls are no-ops so state
// changed since then is never clobbered by a stale cookie. Only properties
// whose cookie value is truthy (not null, false, 0 or "") are copied, and an
// unreadable cookie is ignored.
package hydrate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// MaxAge is how long the persisted cookie lives.
const MaxAge = 30 * 24 * time.Hour

// State is a value of type T mirrored into the cookie named Name. T must
// marshal to a JSON object.
type State[T any] struct {
	name       string
	properties []string
	logger     *slog.Logger

	mu       sync.Mutex
	value    T
	hydrated bool
}

// New creates a state with an initial value. properties limits which JSON
// fields hydration may overwrite; empty means every field of initial.
func New[T any](name string, initial T, properties ...string) *State[T] {
	return &State[T]{
		name:       name,
		properties: properties,
		logger:     slog.Default(),
		value:      initial,
	}
}

// WithLogger sets the logger used for swallowed cookie errors.
func (s *State[T]) WithLogger(l *slog.Logger) *State[T] {
	if l != nil {
		s.logger = l
	}
	return s
}

// Name returns the cookie name.
func (s *State[T]) Name() string { return s.name }

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Hydrated reports whether Hydrate has run.
func (s *State[T]) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Hydrate copies truthy properties from the request's cookie into the state.
// Only the first call has any effect.
func (s *State[T]) Hydrate(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	if r == nil {
		return
	}

	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		raw = c.Value
	}
	merged, err := merge(s.value, []byte(raw), s.properties)
	if err != nil {
		s.logger.Debug("ignoring unreadable state cookie", "cookie", s.name, "error", err)
		return
	}
	s.value = merged
}

// Set replaces the value and writes the cookie to w.
func (s *State[T]) Set(w http.ResponseWriter, v T) error {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	c, err := s.Cookie()
	if err != nil {
		return err
	}
	http.SetCookie(w, c)
	return nil
}

// Cookie builds the cookie for the current value.
func (s *State[T]) Cookie() (*http.Cookie, error) {
	b, err := json.Marshal(s.Get())
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     s.name,
		Value:    url.QueryEscape(string(b)),
		Path:     "/",
		MaxAge:   int(MaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func merge[T any](current T, cookie []byte, properties []string) (T, error) {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(cookie, &incoming); err != nil {
		return current, err
	}

	b, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(b, &base); err != nil {
		return current, err
	}

	if len(properties) == 0 {
		for k := range base {
			properties = append(properties, k)
		}
	}
	for _, p := range properties {
		if v, ok := incoming[p]; ok && truthy(v) {
			base[p] = v
		}
	}

	b, err = json.Marshal(base)
	if err != nil {
		return current, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return current, err
	}
	return out, nil
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
