package xmag

import (
	"regexp"
	"strings"
)

// Line-length statistics used to re-chunk segments that carry no blank-line
// structure. Long lines are standalone paragraphs; short lines are
// hard-wrapped fragments of one paragraph.
const (
	meanLineSplitThreshold = 140
	maxLineSplitThreshold  = 220
)

var (
	codeFenceRE = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)\n(.*?)```")
	headingRE   = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	titleLineRE = regexp.MustCompile(`(?i)^(chapter\s+\d+:|conclusion\b|appendix:)`)
	ulistRE     = regexp.MustCompile(`^[-*]\s+`)
	olistRE     = regexp.MustCompile(`^\d+[.)]\s+`)

	// commandLineRE matches shell-command-looking lines: a prompt marker or
	// a small fixed set of tool verbs.
	commandLineRE = regexp.MustCompile(`(?i)^(?:\$|npm\s+|pnpm\s+|yarn\s+|uv\s+|python\s+|pip\s+|git\s+|npx\s+|node\s+|curl\s+|bash\s+|sh\s+|export\s+|set\s+)`)

	uppercaseTitleRE = regexp.MustCompile(`^[^a-z]+$`)
)

// blockRule is one step of the ordered classification cascade. Rules are
// evaluated top to bottom; the first match wins.
type blockRule struct {
	match func(lines []string) bool
	build func(lines []string) RenderBlock
}

var blockRules = []blockRule{
	{matchMarkerHeading, buildMarkerHeading},
	{matchTitleHeading, buildTitleHeading},
	{matchCommandListing, buildCommandListing},
	{matchUnorderedList, buildUnorderedList},
	{matchOrderedList, buildOrderedList},
}

// ClassifyBlocks splits sanitized text into ordered structural blocks.
// Fenced code spans are spliced out first and reinserted as code blocks in
// their original positions; the remaining segments run through the rule
// cascade per blank-line chunk.
func ClassifyBlocks(text string) []RenderBlock {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if normalized == "" {
		return nil
	}

	var blocks []RenderBlock
	cursor := 0

	for _, loc := range codeFenceRE.FindAllStringSubmatchIndex(normalized, -1) {
		blocks = append(blocks, classifySegment(normalized[cursor:loc[0]])...)

		language := strings.TrimSpace(normalized[loc[2]:loc[3]])
		code := strings.Trim(normalized[loc[4]:loc[5]], "\n")
		if code != "" {
			blocks = append(blocks, RenderBlock{Kind: BlockCode, Body: code, Tag: language})
		}

		cursor = loc[1]
	}
	blocks = append(blocks, classifySegment(normalized[cursor:])...)

	if len(blocks) == 0 {
		blocks = append(blocks, RenderBlock{Kind: BlockParagraph, Body: normalized})
	}

	return blocks
}

// classifySegment chunks one fence-free segment and classifies every chunk.
func classifySegment(segment string) []RenderBlock {
	var blocks []RenderBlock
	for _, chunk := range splitChunks(segment) {
		blocks = append(blocks, classifyChunk(chunk))
	}
	return blocks
}

// splitChunks returns the segment's chunks as trimmed line groups.
// Chunks are separated by blank lines; a segment with no blank line at all is
// re-chunked by line-length statistics instead.
func splitChunks(segment string) [][]string {
	trimmed := strings.Trim(segment, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}

	var chunks [][]string
	hasBlank := false
	var current []string
	for _, line := range strings.Split(trimmed, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			hasBlank = true
			if len(current) > 0 {
				chunks = append(chunks, current)
				current = nil
			}
			continue
		}
		current = append(current, stripped)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	if hasBlank || len(chunks) != 1 || len(chunks[0]) < 2 {
		return chunks
	}

	// No blank-line structure: decide whether the lines are independent
	// paragraphs or one hard-wrapped paragraph.
	lines := chunks[0]
	if linesAreStandalone(lines) {
		standalone := make([][]string, 0, len(lines))
		for _, line := range lines {
			standalone = append(standalone, []string{line})
		}
		return standalone
	}
	return chunks
}

// linesAreStandalone reports whether each line should remain its own chunk.
func linesAreStandalone(lines []string) bool {
	total := 0
	for _, line := range lines {
		if len(line) > maxLineSplitThreshold {
			return true
		}
		total += len(line)
	}
	return total/len(lines) > meanLineSplitThreshold
}

// classifyChunk runs the rule cascade over one chunk; unmatched chunks
// become paragraphs with their lines joined by single spaces.
func classifyChunk(lines []string) RenderBlock {
	for _, rule := range blockRules {
		if rule.match(lines) {
			return rule.build(lines)
		}
	}
	return RenderBlock{Kind: BlockParagraph, Body: strings.Join(lines, " ")}
}

func matchMarkerHeading(lines []string) bool {
	if len(lines) != 1 {
		return false
	}
	m := headingRE.FindStringSubmatch(lines[0])
	return m != nil && strings.TrimSpace(m[2]) != ""
}

func buildMarkerHeading(lines []string) RenderBlock {
	m := headingRE.FindStringSubmatch(lines[0])
	level := len(m[1])
	if level > 3 {
		level = 3
	}
	return RenderBlock{Kind: BlockHeading, Body: strings.TrimSpace(m[2]), Tag: levelTag(level)}
}

func matchTitleHeading(lines []string) bool {
	if len(lines) != 1 {
		return false
	}
	line := lines[0]
	if titleLineRE.MatchString(line) {
		return true
	}
	return len(line) >= 3 && len(line) <= 90 && uppercaseTitleRE.MatchString(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}

func buildTitleHeading(lines []string) RenderBlock {
	return RenderBlock{Kind: BlockHeading, Body: lines[0], Tag: "2"}
}

func matchCommandListing(lines []string) bool {
	count := 0
	for _, line := range lines {
		if commandLineRE.MatchString(line) {
			count++
		}
	}
	return count >= 2
}

func buildCommandListing(lines []string) RenderBlock {
	return RenderBlock{Kind: BlockCode, Body: strings.Join(lines, "\n")}
}

func matchUnorderedList(lines []string) bool {
	return allMatch(lines, ulistRE)
}

func buildUnorderedList(lines []string) RenderBlock {
	return RenderBlock{Kind: BlockUList, Body: stripMarkers(lines, ulistRE)}
}

func matchOrderedList(lines []string) bool {
	return allMatch(lines, olistRE)
}

func buildOrderedList(lines []string) RenderBlock {
	return RenderBlock{Kind: BlockOList, Body: stripMarkers(lines, olistRE)}
}

func allMatch(lines []string, re *regexp.Regexp) bool {
	for _, line := range lines {
		if !re.MatchString(line) {
			return false
		}
	}
	return len(lines) > 0
}

func stripMarkers(lines []string, re *regexp.Regexp) string {
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		items = append(items, strings.TrimSpace(re.ReplaceAllString(line, "")))
	}
	return strings.Join(items, "\n")
}

func levelTag(level int) string {
	switch level {
	case 1:
		return "1"
	case 3:
		return "3"
	default:
		return "2"
	}
}
