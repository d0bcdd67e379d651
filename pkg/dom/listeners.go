package dom

import (
	"slices"
	"sync"
)

// listenerSet stores callbacks per event type. Dispatch copies the callbacks
// before calling them so listeners may unsubscribe themselves.
type listenerSet struct {
	mu     sync.Mutex
	nextID uint64
	byType map[EventType]map[uint64]func()
}

func (l *listenerSet) add(typ EventType, fn func()) func() {
	l.mu.Lock()
	if l.byType == nil {
		l.byType = make(map[EventType]map[uint64]func())
	}
	if l.byType[typ] == nil {
		l.byType[typ] = make(map[uint64]func())
	}
	l.nextID++
	id := l.nextID
	l.byType[typ][id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.byType[typ], id)
			l.mu.Unlock()
		})
	}
}

func (l *listenerSet) dispatch(typ EventType) {
	l.mu.Lock()
	ids := make([]uint64, 0, len(l.byType[typ]))
	for id := range l.byType[typ] {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, l.byType[typ][id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (l *listenerSet) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.byType {
		n += len(m)
	}
	return n
}
