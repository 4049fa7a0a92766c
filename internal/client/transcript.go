package client

import (
	"html"
	"strings"

	"ragchat/internal/markdown"
)

// TranscriptHTML renders the log as a standalone HTML page. Bot messages go
// through the markdown renderer; user text is escaped as typed.
func TranscriptHTML(messages []Message) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Ritual AI chat</title></head><body>\n")
	for _, m := range messages {
		role, body := "user", strings.ReplaceAll(html.EscapeString(m.Text), "\n", "<br>")
		if m.IsBot {
			role, body = "bot", markdown.RenderHTML(m.Text)
		}
		b.WriteString(`<div class="message ` + role + `">`)
		b.WriteString(`<time>` + m.Timestamp.Format("15:04") + `</time> `)
		b.WriteString(body)
		b.WriteString("</div>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

// LastUserText returns the most recent message the user sent.
func LastUserText(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].IsBot {
			return messages[i].Text, true
		}
	}
	return "", false
}
