package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText
}

// Props holds attributes and event handlers.
type Props map[string]any

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// Handler returns the handler registered for an event such as "onblur".
func (v *VNode) Handler(event string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props[event]
}

// Find returns the first node in the subtree whose id attribute equals id.
func (v *VNode) Find(id string) *VNode {
	if v == nil {
		return nil
	}
	if v.Kind == KindElement && v.Props["id"] == id {
		return v
	}
	for _, child := range v.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates the text of every descendant text node.
func (v *VNode) TextContent() string {
	var sb strings.Builder
	v.walkText(&sb)
	return sb.String()
}

func (v *VNode) walkText(sb *strings.Builder) {
	if v == nil {
		return
	}
	if v.Kind == KindText {
		sb.WriteString(v.Text)
		return
	}
	for _, child := range v.Children {
		child.walkText(sb)
	}
}

// IsEventKey reports whether a props key names an event handler.
func IsEventKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onpointerenter", "onblur", etc.
	Handler any    // Function to call
}
