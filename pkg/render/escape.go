package render

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML escapes text for inclusion in HTML content.
func escapeHTML(s string) string { return textEscaper.Replace(s) }

// escapeAttr escapes text for inclusion in a quoted attribute value. Whitespace
// that could break attribute parsing is escaped too.
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
