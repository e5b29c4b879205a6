// Package htmlsanitize cleans user-authored HTML before it is stored
// or rendered. Document bodies arrive from a rich-text editor and may
// contain anything, so everything passes through a bluemonday policy
// tuned for that editor's output.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// The editor emits tables and a few inline marks UGC does not
	// cover by default.
	p.AllowAttrs("class").OnElements("table", "th", "td", "tr")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowElements("u", "s", "sub", "sup", "mark")

	// Table layout comes through inline styles. Only the layout
	// properties the editor writes survive; everything else in a
	// style attribute is dropped.
	p.AllowAttrs("style").OnElements("table", "th", "td", "tr")
	p.AllowStyles(
		"width", "height", "text-align", "vertical-align",
		"background-color", "border", "padding",
	).OnElements("table", "th", "td", "tr")

	return p
}

// Sanitize strips unsafe markup from s and returns the cleaned HTML.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes s and returns it as template.HTML so
// templates render it without re-escaping.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s looks like plain text rather than
// markup. It is a heuristic: anything containing both angle brackets
// is treated as HTML.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML converts plain text to minimal HTML, escaping any
// special characters and turning newlines into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders stored content for templates. Plain text
// is wrapped and escaped; HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
