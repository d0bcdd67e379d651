package server

import (
	"encoding/json"
	"net/http"

	"github.com/vango-dev/floatkit/pkg/hydrate"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/render"
	"github.com/vango-dev/floatkit/pkg/tooltip"
	"github.com/vango-dev/floatkit/pkg/vdom"
)

// demoTooltip is one tooltip on the demo page. The same list drives the page
// render and every session, so element ids agree on both sides.
type demoTooltip struct {
	ID        string
	Label     string
	Content   string
	Placement string
	// Section is the id of the page section the trigger is rendered in.
	Section string
}

var demoTooltips = []demoTooltip{
	{ID: "tip-bold", Label: "Bold", Content: "Bold (Ctrl+B)", Placement: "top", Section: "toolbar"},
	{ID: "tip-italic", Label: "Italic", Content: "Italic (Ctrl+I)", Placement: "top", Section: "toolbar"},
	{ID: "tip-underline", Label: "Underline", Content: "Underline (Ctrl+U)", Placement: "top", Section: "toolbar"},
	{ID: "tip-panel", Label: "Inside a scroller", Content: "Follows the panel while it scrolls", Placement: "right", Section: "panel-content"},
	{ID: "tip-footer", Label: "Near the bottom", Content: "Flips above when there is no room below", Section: "footer"},
}

const demoFloatingID = "floating-demo"

func demoFloatingOptions() tooltip.FloatingOptions {
	return tooltip.FloatingOptions{
		ID:        demoFloatingID,
		Placement: "right-start",
		Strategy:  position.StrategyFixed,
		Middleware: []position.Spec{
			{Name: "offset", Options: json.RawMessage(`10`)},
			{Name: "flip"},
			{Name: "shift", Options: json.RawMessage(`{"padding":8}`)},
			{Name: "size", Options: json.RawMessage(`{"padding":8}`)},
			{Name: "hide"},
		},
		MinHeight:  120,
		Transition: true,
		Arrow:      true,
	}
}

// Mode is the persisted color mode.
type Mode struct {
	Dark bool `json:"dark"`
}

const modeCookie = "floatkit-mode"

func (s *Server) modeState(r *http.Request) *hydrate.State[Mode] {
	st := hydrate.New(modeCookie, Mode{}, "dark").WithLogger(s.logger)
	st.Hydrate(r)
	return st
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	st := s.modeState(r)
	if err := st.Set(w, Mode{Dark: !st.Get().Dark}); err != nil {
		s.logger.Warn("mode not saved", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	mode := s.modeState(r).Get()

	sections := map[string][]any{}
	for _, item := range demoTooltips {
		t, err := tooltip.New(nil, tooltip.Options{
			ID:        item.ID,
			Placement: s.placement(item),
			Delay:     s.config.Delay,
			Logger:    s.logger,
		})
		if err != nil {
			s.logger.Error("demo tooltip", "id", item.ID, "error", err)
			continue
		}
		sections[item.Section] = append(sections[item.Section], t.Render(vdom.Button(vdom.Type("button"), item.Label)))
	}

	f, err := tooltip.NewFloating(nil, demoFloatingOptions())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	floating := f.Render(vdom.Button(vdom.Type("button"), "Anchor"),
		vdom.P("Positioned by a named middleware list: offset, flip, shift, size and hide."))

	modeLabel := "Dark mode"
	bodyClass := "demo"
	if mode.Dark {
		modeLabel = "Light mode"
		bodyClass = "demo dark"
	}

	body := vdom.Main(vdom.ID("app"), vdom.Class(bodyClass),
		vdom.H1("floatkit"),
		vdom.El("form", vdom.A("method", "post"), vdom.A("action", "/mode"),
			vdom.Button(vdom.Type("submit"), vdom.ID("mode-toggle"), modeLabel),
		),
		vdom.Section(vdom.ID("toolbar"), vdom.Class("toolbar"), sections["toolbar"]),
		vdom.Section(vdom.ID("panel"), vdom.Class("panel"),
			vdom.Div(vdom.ID("panel-content"), vdom.Class("panel-content"), sections["panel-content"]),
		),
		vdom.Section(vdom.ID("floating-section"), vdom.Class("floating-section"), floating),
		vdom.Section(vdom.ID("footer"), vdom.Class("footer"), sections["footer"]),
		tooltip.NewPortal("").Render(),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.renderer.RenderPage(w, render.PageData{
		Title:        "floatkit",
		Styles:       []string{demoCSS},
		Body:         body,
		ClientScript: "/client.js",
	})
	if err != nil {
		s.logger.Debug("page write failed", "error", err)
	}
}

func (s *Server) placement(item demoTooltip) string {
	if item.Placement != "" {
		return item.Placement
	}
	return s.config.Placement
}

const demoCSS = `
body { margin: 0; font-family: system-ui, sans-serif; }
.demo { padding: 2rem; min-height: 100vh; box-sizing: border-box; }
.demo.dark { background: #111; color: #eee; }
.toolbar { display: flex; gap: .5rem; margin: 1rem 0; }
.panel { height: 160px; width: 320px; overflow: auto; border: 1px solid #888; margin: 1rem 0; }
.panel-content { height: 480px; padding: 200px 1rem 0; box-sizing: border-box; }
.floating-section { margin: 2rem 0; }
.footer { position: fixed; bottom: .5rem; left: 2rem; }
#floating-root { position: fixed; inset: 0; pointer-events: none; }
#floating-root > * { pointer-events: auto; }
.tooltip { background: #222; color: #fff; padding: .25rem .5rem; border-radius: 4px; font-size: .875rem; white-space: nowrap; }
.floating { background: #fff; color: #111; border: 1px solid #888; padding: .5rem; width: 220px; overflow: auto; }
.floating-arrow { width: 8px; height: 8px; background: inherit; }
`
