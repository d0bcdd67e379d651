package tooltip

import (
	"strconv"

	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

// Render returns trigger with the tooltip's handlers and ARIA attributes
// merged in. While the content is present it is mounted into the portal;
// otherwise it is removed from it. A nil or non-element trigger is wrapped in
// a button.
func (t *Tooltip) Render(trigger *vdom.VNode, content ...any) *vdom.VNode {
	ref := t.renderReference(trigger)
	if t.presence.Mounted() {
		t.portal.Mount(t.id, t.renderFloating(content))
	} else {
		t.portal.Unmount(t.id)
	}
	return ref
}

func (t *Tooltip) renderReference(trigger *vdom.VNode) *vdom.VNode {
	if trigger == nil || trigger.Kind != vdom.KindElement {
		trigger = vdom.Button(vdom.Type("button"), trigger)
	}

	extra := make([]any, 0, len(trigger.Props)+2)
	for key, value := range trigger.Props {
		if vdom.IsEventKey(key) {
			extra = append(extra, vdom.EventHandler{Event: key, Handler: value})
			continue
		}
		extra = append(extra, vdom.A(key, value))
	}
	if _, ok := trigger.Props["id"]; !ok {
		extra = append(extra, vdom.ID(t.ReferenceID()))
	}
	extra = append(extra, vdom.Data("floating-reference", t.id))
	if trigger.Key != "" {
		extra = append(extra, vdom.Key(trigger.Key))
	}

	return vdom.El(trigger.Tag, t.props.ReferenceAttrs(extra...), trigger.Children)
}

func (t *Tooltip) renderFloating(content []any) *vdom.VNode {
	res := t.Result()
	strategy := res.Strategy
	if strategy == "" {
		strategy = position.StrategyAbsolute
	}

	frame := t.presence.Target()
	state := "open"
	if t.presence.Exiting() {
		state = "closed"
	}

	style := vdom.Styles{}
	style.Set("position", string(strategy)).
		Set("top", px(res.Y)).
		Set("left", px(res.X)).
		Set("opacity", num(frame.Opacity)).
		Set("transform", "scale("+num(frame.Scale)+")").
		Set("transition", t.presence.Transition().CSS("opacity", "transform"))
	if !res.Visible() {
		style.Set("visibility", "hidden")
	}

	return vdom.Div(
		t.props.FloatingAttrs(
			vdom.Key(t.id),
			vdom.Class("tooltip"),
			vdom.Style(style),
			vdom.Data("state", state),
			vdom.Data("placement", res.Placement.String()),
			vdom.Data("floating", t.id),
		),
		content,
	)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func px(v float64) string { return num(v) + "px" }
