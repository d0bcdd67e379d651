package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"link":  true,
	"meta":  true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element with an arbitrary tag.
// Arguments can be: nil, Attr, []Attr, EventHandler, []EventHandler, *VNode,
// []*VNode, string or []any (flattened).
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	for _, arg := range args {
		node.apply(arg)
	}
	return node
}

func (node *VNode) apply(arg any) {
	switch v := arg.(type) {
	case nil:
		// Ignore nil (allows conditional attributes)
	case Attr:
		node.setAttr(v)
	case []Attr:
		for _, a := range v {
			node.setAttr(a)
		}
	case EventHandler:
		if v.Event != "" && v.Handler != nil {
			node.Props[v.Event] = v.Handler
		}
	case []EventHandler:
		for _, h := range v {
			node.apply(h)
		}
	case *VNode:
		if v != nil {
			node.Children = append(node.Children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				node.Children = append(node.Children, c)
			}
		}
	case string:
		node.Children = append(node.Children, Text(v))
	case []any:
		for _, a := range v {
			node.apply(a)
		}
	}
}

func (node *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			node.Key = s
		}
		return
	}
	if a.Key == "class" {
		if existing, ok := node.Props["class"].(string); ok && existing != "" {
			if s, ok := a.Value.(string); ok && s != "" {
				node.Props["class"] = existing + " " + s
				return
			}
		}
	}
	node.Props[a.Key] = a.Value
}

// Div creates a <div> element.
func Div(args ...any) *VNode { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *VNode { return El("span", args...) }

// Button creates a <button> element.
func Button(args ...any) *VNode { return El("button", args...) }

// P creates a <p> element.
func P(args ...any) *VNode { return El("p", args...) }

// H1 creates an <h1> element.
func H1(args ...any) *VNode { return El("h1", args...) }

// Section creates a <section> element.
func Section(args ...any) *VNode { return El("section", args...) }

// Main creates a <main> element.
func Main(args ...any) *VNode { return El("main", args...) }
