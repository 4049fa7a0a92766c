// Package markdown turns the small markdown subset produced by the assistant
// into styled spans.
package markdown

import "strings"

type Kind int

const (
	PlainText Kind = iota
	Bold
	Italic
	InlineCode
	CodeBlock
)

func (k Kind) String() string {
	switch k {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case InlineCode:
		return "inline_code"
	case CodeBlock:
		return "code_block"
	default:
		return "plain"
	}
}

// Span is a run of text with one style. Lang is only set on code blocks.
type Span struct {
	Kind Kind
	Text string
	Lang string
}

const fence = "```"

// Tokenize scans text in two passes. Code blocks and inline code are found
// first (a fence wins over a backtick at the same position); bold and italic
// are then looked for only in the text between code spans, so an emphasis
// marker never swallows a code delimiter. Anything that does not close stays
// plain text. Adjacent plain runs are merged.
func Tokenize(text string) []Span {
	var spans []Span
	gap := 0
	for i := 0; i < len(text); {
		span, n, ok := matchCode(text[i:])
		if !ok {
			i++
			continue
		}
		spans = appendEmphasis(spans, text[gap:i])
		spans = append(spans, span)
		i += n
		gap = i
	}
	return appendEmphasis(spans, text[gap:])
}

// matchCode tries a code block, then inline code, at the start of s and
// reports how many bytes it consumed.
func matchCode(s string) (Span, int, bool) {
	if strings.HasPrefix(s, fence) {
		if end := strings.Index(s[len(fence):], fence); end >= 0 {
			lang, body := splitLang(s[len(fence) : len(fence)+end])
			return Span{Kind: CodeBlock, Text: body, Lang: lang}, end + 2*len(fence), true
		}
		return Span{}, 0, false
	}
	if s[0] == '`' {
		if body, ok := inline(s, "`"); ok {
			return Span{Kind: InlineCode, Text: body}, len(body) + 2, true
		}
	}
	return Span{}, 0, false
}

// appendEmphasis tokenizes a code-free segment into bold, italic and plain spans.
func appendEmphasis(spans []Span, segment string) []Span {
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Kind: PlainText, Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(segment); {
		span, n, ok := matchEmphasis(segment[i:])
		if !ok {
			plain.WriteByte(segment[i])
			i++
			continue
		}
		flush()
		spans = append(spans, span)
		i += n
	}
	flush()
	return spans
}

func matchEmphasis(s string) (Span, int, bool) {
	if strings.HasPrefix(s, "**") {
		if body, ok := inline(s, "**"); ok {
			return Span{Kind: Bold, Text: body}, len(body) + 4, true
		}
	}
	if s[0] == '*' {
		if body, ok := inline(s, "*"); ok {
			return Span{Kind: Italic, Text: body}, len(body) + 2, true
		}
	}
	return Span{}, 0, false
}

// inline finds a non-empty body between delim pairs on the same line.
func inline(s, delim string) (string, bool) {
	rest := s[len(delim):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	end := strings.Index(rest, delim)
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

// splitLang peels a language tag off the opening fence line. Bodies without a
// newline are kept whole.
func splitLang(body string) (string, string) {
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return "", body
	}
	first := strings.TrimSpace(body[:nl])
	if strings.ContainsAny(first, " \t`") {
		return "", body
	}
	return first, body[nl+1:]
}
