package markdown

import (
	"html"
	"strings"
)

// RenderHTML renders text as escaped HTML. Newlines outside code blocks become <br>.
func RenderHTML(text string) string {
	var b strings.Builder
	for _, span := range Tokenize(text) {
		switch span.Kind {
		case Bold:
			b.WriteString("<strong>" + html.EscapeString(span.Text) + "</strong>")
		case Italic:
			b.WriteString("<em>" + html.EscapeString(span.Text) + "</em>")
		case InlineCode:
			b.WriteString("<code>" + html.EscapeString(span.Text) + "</code>")
		case CodeBlock:
			b.WriteString("<pre><code")
			if span.Lang != "" {
				b.WriteString(` class="language-` + html.EscapeString(span.Lang) + `"`)
			}
			b.WriteString(">" + html.EscapeString(span.Text) + "</code></pre>")
		default:
			b.WriteString(strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br>"))
		}
	}
	return b.String()
}
