// Package tooltip binds a trigger element and its floating content.
//
// A Tooltip wires an interact.Controller (hover, focus, dismiss and the
// tooltip role) to a position.Tracker using offset(8), flip and shift. While
// the content is present and both elements are mounted an autoupdate watcher
// keeps the position current. Content is rendered into a Portal and stays
// mounted until its exit transition finishes.
//
//	group := tooltip.NewGroup(delaygroup.Delay{})
//	tip, err := tooltip.New(doc, tooltip.Options{ID: "save", Group: group, Portal: portal})
//	trigger := tip.Render(vdom.Button(vdom.Text("Save")), vdom.Text("Save changes"))
//
// Floating is the lower-level component: a named middleware list, optional
// arrow, size clamping and a transform transition, always visible.
package tooltip
