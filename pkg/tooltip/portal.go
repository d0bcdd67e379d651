package tooltip

import (
	"slices"
	"sync"

	"github.com/vango-dev/floatkit/pkg/vdom"
)

// DefaultPortalRoot is the id of the element floating content is rendered
// into.
const DefaultPortalRoot = "floating-root"

// Portal collects floating content rendered outside its trigger's subtree.
type Portal struct {
	root string

	mu      sync.Mutex
	order   []string
	entries map[string]*vdom.VNode
}

// NewPortal creates a portal rendering into the element with id root. An
// empty root uses DefaultPortalRoot.
func NewPortal(root string) *Portal {
	if root == "" {
		root = DefaultPortalRoot
	}
	return &Portal{root: root, entries: make(map[string]*vdom.VNode)}
}

// RootID returns the portal root element id.
func (p *Portal) RootID() string { return p.root }

// Mount places node under key, replacing any previous node with that key.
// New keys are appended after existing ones.
func (p *Portal) Mount(key string, node *vdom.VNode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[key]; !ok {
		p.order = append(p.order, key)
	}
	p.entries[key] = node
}

// Unmount removes the node under key.
func (p *Portal) Unmount(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[key]; !ok {
		return
	}
	delete(p.entries, key)
	p.order = slices.DeleteFunc(p.order, func(k string) bool { return k == key })
}

// Has reports whether key is mounted.
func (p *Portal) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[key]
	return ok
}

// Len returns the number of mounted nodes.
func (p *Portal) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Render returns the portal root with every mounted node in mount order.
func (p *Portal) Render() *vdom.VNode {
	p.mu.Lock()
	children := make([]*vdom.VNode, 0, len(p.order))
	for _, k := range p.order {
		children = append(children, p.entries[k])
	}
	p.mu.Unlock()
	return vdom.Div(vdom.ID(p.root), children)
}

// Node returns the node mounted under key, or nil.
func (p *Portal) Node(key string) *vdom.VNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[key]
}
