package dom

import (
	"sync"

	"github.com/vango-dev/floatkit/pkg/geom"
)

// Document is an in-memory document: a window with a viewport and a tree of
// nodes rooted at Body. It is safe for concurrent use, though layout mirrors
// normally mutate it from a single event loop.
type Document struct {
	mu        sync.RWMutex
	viewport  geom.Rect
	body      *Node
	nodes     map[string]*Node
	listeners listenerSet
}

// NewDocument creates a document whose body fills the viewport.
func NewDocument(viewport geom.Rect) *Document {
	d := &Document{
		viewport: viewport,
		nodes:    make(map[string]*Node),
	}
	d.body = &Node{id: "body", doc: d, rect: viewport, overflow: OverflowVisible}
	d.nodes["body"] = d.body
	return d
}

// Body returns the root node.
func (d *Document) Body() *Node {
	return d.body
}

// Viewport implements Window.
func (d *Document) Viewport() geom.Rect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewport
}

// SetViewport changes the viewport and dispatches resize on the window when
// its size changed.
func (d *Document) SetViewport(r geom.Rect) {
	d.mu.Lock()
	prev := d.viewport
	d.viewport = r
	d.mu.Unlock()
	if prev.Size() != r.Size() {
		d.listeners.dispatch(EventResize)
	}
}

// AddListener implements EventTarget for the window.
func (d *Document) AddListener(typ EventType, fn func()) func() {
	return d.listeners.add(typ, fn)
}

// Dispatch fires an event on the window.
func (d *Document) Dispatch(typ EventType) {
	d.listeners.dispatch(typ)
}

// CreateElement creates a detached node, or returns the existing node with
// that id.
func (d *Document) CreateElement(id string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.nodes[id]; ok {
		return n
	}
	n := &Node{id: id, doc: d, overflow: OverflowVisible}
	d.nodes[id] = n
	return n
}

// GetElementByID returns the node with the given id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nodes[id]
}

// Lookup is like GetElementByID but returns an Element, nil when missing.
func (d *Document) Lookup(id string) Element {
	if n := d.GetElementByID(id); n != nil {
		return n
	}
	return nil
}

// ListenerCount returns the number of live listeners on the window and every
// node.
func (d *Document) ListenerCount() int {
	d.mu.RLock()
	nodes := make([]*Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		nodes = append(nodes, n)
	}
	d.mu.RUnlock()

	total := d.listeners.count()
	for _, n := range nodes {
		total += n.listeners.count()
	}
	return total
}

// Scroll scrolls the window: every connected node moves by (-dx, -dy) and
// scroll listeners on the window fire.
func (d *Document) Scroll(dx, dy float64) {
	d.body.translateChildren(-dx, -dy)
	d.listeners.dispatch(EventScroll)
}
