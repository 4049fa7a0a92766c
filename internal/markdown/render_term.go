package markdown

import (
	"strings"

	"github.com/fatih/color"
)

// TerminalRenderer styles spans with ANSI escapes.
type TerminalRenderer struct {
	bold   *color.Color
	italic *color.Color
	code   *color.Color
	block  *color.Color
	label  *color.Color
}

// NewTerminalRenderer builds a renderer. With styled false every span is
// written as bare text, which keeps output stable for pipes and tests.
func NewTerminalRenderer(styled bool) *TerminalRenderer {
	r := &TerminalRenderer{
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		code:   color.New(color.FgYellow),
		block:  color.New(color.FgCyan),
		label:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.bold, r.italic, r.code, r.block, r.label} {
		if styled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *TerminalRenderer) Render(text string) string {
	var b strings.Builder
	for _, span := range Tokenize(text) {
		switch span.Kind {
		case Bold:
			b.WriteString(r.bold.Sprint(span.Text))
		case Italic:
			b.WriteString(r.italic.Sprint(span.Text))
		case InlineCode:
			b.WriteString(r.code.Sprint(span.Text))
		case CodeBlock:
			r.writeBlock(&b, span)
		default:
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

func (r *TerminalRenderer) writeBlock(b *strings.Builder, span Span) {
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	if span.Lang != "" {
		b.WriteString(r.label.Sprint("  [" + span.Lang + "]"))
		b.WriteByte('\n')
	}
	lines := strings.Split(strings.TrimSuffix(span.Text, "\n"), "\n")
	for _, line := range lines {
		b.WriteString("    " + r.block.Sprint(line) + "\n")
	}
}

// RenderTerminal renders with colors following the terminal's capabilities.
func RenderTerminal(text string) string {
	return NewTerminalRenderer(!color.NoColor).Render(text)
}
