package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment, Props: make(Props)}
	for _, child := range children {
		switch v := child.(type) {
		case *VNode, []*VNode, string, []any:
			node.apply(v)
		}
	}
	return node
}

// If returns node when cond is true, nil otherwise.
func If(cond bool, node *VNode) *VNode {
	if cond {
		return node
	}
	return nil
}
