package vdom

import (
	"sort"
	"strconv"
	"strings"
)

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// A creates an arbitrary attribute.
func A(key string, value any) Attr { return attr(key, value) }

// Key sets the reconciliation key.
func Key(key string) Attr { return attr("key", key) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Data creates a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaDescribedBy sets the aria-describedby attribute.
func AriaDescribedBy(id string) Attr { return attr("aria-describedby", id) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", strconv.FormatBool(hidden)) }

// TabIndex sets the tabindex attribute.
func TabIndex(i int) Attr { return attr("tabindex", i) }

// Title sets the title attribute.
func Title(title string) Attr { return attr("title", title) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Style sets the style attribute from a raw declaration string or Styles.
func Style(v any) Attr {
	switch s := v.(type) {
	case Styles:
		return attr("style", s.String())
	case string:
		return attr("style", s)
	default:
		return Attr{}
	}
}

// Styles is a set of CSS declarations rendered in key order.
type Styles map[string]string

// Set adds a declaration and returns s for chaining. Empty values are dropped.
func (s Styles) Set(property, value string) Styles {
	if value == "" {
		delete(s, property)
		return s
	}
	s[property] = value
	return s
}

// String renders the declarations as "k: v; k2: v2".
func (s Styles) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+s[k])
	}
	return strings.Join(parts, "; ")
}
