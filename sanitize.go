package xmag

import (
	"regexp"
	"strings"
)

// Pattern constants compiled once at process start. None of these are
// mutated after init.
var (
	// metricLineRE matches standalone engagement counts ("1.2K", "340",
	// "12,345", "3M+").
	metricLineRE = regexp.MustCompile(`(?i)^[\d,.]+(?:[KMBT]\+?)?$`)

	// stopLineRE matches boilerplate that marks the end of article content.
	stopLineRE = regexp.MustCompile(`(?i)^(Want to publish your own Article\?|Upgrade to Premium|Read\s+\d+\s+replies)$`)

	// timestampLineRE matches the compact timestamp line under a post
	// ("7:45 PM · Feb 20, 2026").
	timestampLineRE = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s?(AM|PM)\s*·`)

	// artifactPatterns match instruction-like artifacts that hostile pages
	// embed in visible text. Blanked before any other cleaning.
	artifactPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)if\s*\(!alreadyRequested\)\s*\{.*?\}`),
		regexp.MustCompile(`(?is)postComment\s*\(.*?\)`),
		regexp.MustCompile(`(?i)@review-harness:\S+`),
		regexp.MustCompile(`(?i)\$\{trigger\}`),
	}

	handleRE = regexp.MustCompile(`@[A-Za-z0-9_]+`)
)

// SanitizeText cleans raw extracted body text: it blanks injected artifacts,
// strips one leading "author name handle metrics" chrome prefix, truncates at
// the first boilerplate or timestamp line, drops residual metric and
// author-echo lines, and collapses blank runs. The result may be empty; the
// caller decides whether that is fatal.
//
// Step order is load-bearing: artifact blanking must run before the author
// prefix match, and truncation must run before per-line filtering so that
// everything after the boilerplate marker is discarded rather than filtered.
func SanitizeText(raw, authorName, authorHandle string) string {
	text := raw
	for _, pattern := range artifactPatterns {
		text = pattern.ReplaceAllString(text, " ")
	}

	text = stripAuthorPrefix(text, authorName, authorHandle)

	nameNorm := strings.ToLower(strings.TrimSpace(authorName))
	handleNorm := strings.ToLower(strings.TrimSpace(authorHandle))
	comboNorm := strings.TrimSpace(nameNorm + " " + handleNorm)

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			cleaned = append(cleaned, "")
			continue
		}

		if stopLineRE.MatchString(stripped) || timestampLineRE.MatchString(stripped) {
			break
		}

		if stripped == "Views" || stripped == "·" {
			continue
		}

		lower := strings.ToLower(stripped)
		if lower == nameNorm || lower == handleNorm || lower == comboNorm {
			continue
		}

		if metricLineRE.MatchString(stripped) {
			continue
		}

		cleaned = append(cleaned, stripped)
	}

	return collapseBlankLines(cleaned)
}

// stripAuthorPrefix removes one leading "name handle [metrics...]" run, the
// chrome X prepends to the first text node of a post.
func stripAuthorPrefix(text, authorName, authorHandle string) string {
	if authorName == "" || authorHandle == "" {
		return text
	}
	prefixRE, err := regexp.Compile(`(?i)^\s*` + regexp.QuoteMeta(authorName) +
		`\s+` + regexp.QuoteMeta(authorHandle) +
		`(?:\s+[\d.,]+[KMBT]?)*\s+`)
	if err != nil {
		return text
	}
	return prefixRE.ReplaceAllString(text, "")
}

// collapseBlankLines reduces runs of blank lines to one and trims leading
// and trailing blanks.
func collapseBlankLines(lines []string) string {
	var collapsed []string
	previousBlank := false
	for _, line := range lines {
		blank := line == ""
		if blank && previousBlank {
			continue
		}
		collapsed = append(collapsed, line)
		previousBlank = blank
	}
	return strings.TrimSpace(strings.Join(collapsed, "\n"))
}

// extractAuthor derives (name, handle) from the raw author element text.
// The handle is the first @token anywhere in the text; the name is the first
// non-blank line with handle tokens and surrounding punctuation stripped.
func extractAuthor(rawAuthor string) (name, handle string) {
	handle = "@unknown"
	if m := handleRE.FindString(rawAuthor); m != "" {
		handle = m
	}

	name = "Unknown"
	for _, line := range strings.Split(rawAuthor, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}
		candidate = handleRE.ReplaceAllString(candidate, "")
		candidate = strings.Trim(candidate, " -|·")
		if candidate != "" {
			name = candidate
		}
		break
	}
	return name, handle
}
