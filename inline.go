package xmag

import (
	"regexp"
	"strings"
)

// latexReplacer maps LaTeX special characters to their safe representations.
// Built once; escaping is a single pass over raw characters so substituted
// output is never re-scanned.
var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX escapes LaTeX special characters in content text.
func EscapeLaTeX(value string) string {
	return latexReplacer.Replace(value)
}

// Inline markup forms, tried in order at each scan position. First match
// wins; link before bold so "[x](url)**" cannot be misread, bold before
// italic so "**" is never consumed as two italic markers.
var (
	inlineLinkRE   = regexp.MustCompile(`^\[([^\]\n]+)\]\((https?://[^)\s]+)\)`)
	inlineBoldRE   = regexp.MustCompile(`^\*\*([^*\n]+)\*\*`)
	inlineCodeRE   = regexp.MustCompile("^`([^`\n]+)`")
	inlineItalicRE = regexp.MustCompile(`^\*([^*\n]+)\*`)
)

// RenderInline converts bold, italic, inline-code, and link spans inside
// block text into LaTeX, escaping every unmatched run. It applies to
// heading, paragraph, and list-item bodies only; code blocks pass through
// verbatim elsewhere.
func RenderInline(text string) string {
	var out strings.Builder
	out.Grow(len(text) + 16)

	plainStart := 0
	i := 0
	flush := func(end int) {
		if end > plainStart {
			out.WriteString(EscapeLaTeX(text[plainStart:end]))
		}
	}

	for i < len(text) {
		rest := text[i:]

		if m := inlineLinkRE.FindStringSubmatch(rest); m != nil {
			flush(i)
			out.WriteString(`\href{` + escapeHrefURL(m[2]) + `}{` + EscapeLaTeX(m[1]) + `}`)
			i += len(m[0])
			plainStart = i
			continue
		}
		if m := inlineBoldRE.FindStringSubmatch(rest); m != nil {
			flush(i)
			out.WriteString(`\textbf{` + EscapeLaTeX(m[1]) + `}`)
			i += len(m[0])
			plainStart = i
			continue
		}
		if m := inlineCodeRE.FindStringSubmatch(rest); m != nil {
			flush(i)
			out.WriteString(`\texttt{` + EscapeLaTeX(m[1]) + `}`)
			i += len(m[0])
			plainStart = i
			continue
		}
		if m := inlineItalicRE.FindStringSubmatch(rest); m != nil {
			flush(i)
			out.WriteString(`\textit{` + EscapeLaTeX(m[1]) + `}`)
			i += len(m[0])
			plainStart = i
			continue
		}

		i++
	}
	flush(len(text))

	return out.String()
}

// escapeHrefURL escapes the characters LaTeX treats specially inside the
// \href URL argument. The URL is not content text, so the full escape map
// does not apply.
func escapeHrefURL(url string) string {
	url = strings.ReplaceAll(url, `%`, `\%`)
	url = strings.ReplaceAll(url, `#`, `\#`)
	return url
}
