package server

import (
	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// ApplyLayout mirrors a measured layout into doc. Nodes are created on first
// sight and re-parented when their parent changed; a size change dispatches
// resize on the node. With full set, nodes missing from the list are
// detached.
//
// A node whose parent would make it its own ancestor keeps its previous place
// and is reported as an F030 error; the rest of the layout still applies.
func ApplyLayout(doc *dom.Document, viewport *geom.Rect, nodes []LayoutNode, full bool) []error {
	if viewport != nil {
		doc.SetViewport(*viewport)
		doc.Body().SetRect(*viewport)
	}

	var errs []error
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" || n.ID == "body" {
			continue
		}
		seen[n.ID] = true
		node := doc.CreateElement(n.ID)
		parent := doc.Body()
		if n.Parent != "" {
			parent = doc.CreateElement(n.Parent)
		}
		if node.Parent() != parent {
			if err := parent.AppendChild(node); err != nil {
				errs = append(errs, errors.New("F030").WithDetail("layout node "+n.ID).Wrap(err))
				continue
			}
		}
		overflow := n.Overflow
		if overflow == "" {
			overflow = dom.OverflowVisible
		}
		node.SetOverflow(overflow)
		node.SetRect(n.Rect)
	}
	if full {
		detachMissing(doc.Body(), seen)
	}
	return errs
}

func detachMissing(n *dom.Node, seen map[string]bool) {
	for _, c := range n.Children() {
		if !seen[c.ID()] {
			c.Remove()
			continue
		}
		detachMissing(c, seen)
	}
}
