package dom

import (
	"sync"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// Node is an element of a Document.
type Node struct {
	mu       sync.RWMutex
	id       string
	doc      *Document
	parent   *Node
	children []*Node
	rect     geom.Rect
	overflow Overflow

	listeners listenerSet
}

var _ Element = (*Node)(nil)

// ID implements Element.
func (n *Node) ID() string { return n.id }

// Rect implements Element.
func (n *Node) Rect() geom.Rect {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rect
}

// ParentElement implements Element. The interface value is nil at the root.
func (n *Node) ParentElement() Element {
	n.mu.RLock()
	p := n.parent
	n.mu.RUnlock()
	if p == nil {
		return nil
	}
	return p
}

// Parent returns the parent node.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Overflow implements Element.
func (n *Node) Overflow() Overflow {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.overflow
}

// SetOverflow sets the computed overflow.
func (n *Node) SetOverflow(o Overflow) *Node {
	n.mu.Lock()
	n.overflow = o
	n.mu.Unlock()
	return n
}

// IsConnected implements Element.
func (n *Node) IsConnected() bool {
	cur := n
	for cur != nil {
		if cur == n.doc.body {
			return true
		}
		cur = cur.Parent()
	}
	return false
}

// OwnerWindow implements Element.
func (n *Node) OwnerWindow() Window {
	return n.doc
}

// AddListener implements EventTarget.
func (n *Node) AddListener(typ EventType, fn func()) func() {
	return n.listeners.add(typ, fn)
}

// Dispatch fires an event on this node only.
func (n *Node) Dispatch(typ EventType) {
	n.listeners.dispatch(typ)
}

// ListenerCount returns the number of live listeners on this node.
func (n *Node) ListenerCount() int {
	return n.listeners.count()
}

// SetRect updates the bounding rect. A size change dispatches resize, the
// equivalent of a ResizeObserver notification.
func (n *Node) SetRect(r geom.Rect) *Node {
	n.mu.Lock()
	prev := n.rect
	n.rect = r
	n.mu.Unlock()
	if prev.Size() != r.Size() {
		n.listeners.dispatch(EventResize)
	}
	return n
}

// Append attaches children in order, skipping any that AppendChild refuses.
func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		_ = n.AppendChild(child)
	}
	return n
}

// AppendChild attaches child as the last child of n, detaching it first if
// needed. It fails with F032 when child is n or one of n's ancestors, since
// the tree would no longer reach the body.
func (n *Node) AppendChild(child *Node) error {
	if child == nil {
		return nil
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == child {
			return errors.New("F032").WithDetail(child.id + " would become an ancestor of itself under " + n.id)
		}
	}
	child.detach()
	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()
	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
	return nil
}

// Remove detaches n from its parent. The node keeps its id and listeners and
// can be appended again.
func (n *Node) Remove() {
	n.detach()
}

func (n *Node) detach() {
	p := n.Parent()
	if p == nil {
		return
	}
	p.mu.Lock()
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	n.mu.Lock()
	n.parent = nil
	n.mu.Unlock()
}

// Scroll scrolls the node's content: descendants move by (-dx, -dy) and
// scroll listeners on n fire.
func (n *Node) Scroll(dx, dy float64) {
	n.translateChildren(-dx, -dy)
	n.listeners.dispatch(EventScroll)
}

func (n *Node) translateChildren(dx, dy float64) {
	for _, c := range n.Children() {
		c.walk(func(d *Node) {
			d.mu.Lock()
			d.rect = d.rect.Translate(dx, dy)
			d.mu.Unlock()
		})
	}
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.walk(fn)
	}
}
