package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/floatkit/pkg/vdom"
)

// PageData contains everything needed to render a complete HTML page.
type PageData struct {
	// Title is the page title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// Styles are inline CSS blocks placed in the head.
	Styles []string

	// Body is the root VNode for the page content.
	Body *vdom.VNode

	// ClientScript is the src of the layout-sync script, if any.
	ClientScript string

	// InlineScripts are emitted after the body content, in order.
	InlineScripts []string
}

// RenderPage writes a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8">`, escapeAttr(lang)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<title>%s</title>", escapeHTML(page.Title)); err != nil {
		return err
	}
	for _, css := range page.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>", css); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head><body>"); err != nil {
		return err
	}

	if err := r.renderNode(w, page.Body, 0); err != nil {
		return err
	}

	if page.ClientScript != "" {
		if _, err := fmt.Fprintf(w, `<script src="%s" defer></script>`, escapeAttr(page.ClientScript)); err != nil {
			return err
		}
	}
	for _, js := range page.InlineScripts {
		if _, err := fmt.Fprintf(w, "<script>%s</script>", js); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body></html>")
	return err
}
