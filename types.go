package xmag

import "time"

// ArticleInput is a user-provided status URL and its parsed status id.
// The status id is the dedup key across a run.
type ArticleInput struct {
	URL      string
	StatusID string
}

// ArticleContent is the normalized article data extracted from one page.
// It is immutable once built.
type ArticleContent struct {
	StatusID     string
	URL          string
	AuthorName   string
	AuthorHandle string
	PublishedAt  *time.Time // nil when the page carried no parsable timestamp
	Text         string     // sanitized body text
	MediaURLs    []string   // deduped, first-seen order
}

// BlockKind identifies the structural role of a RenderBlock.
type BlockKind string

// Block kinds produced by the classifier.
const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockUList     BlockKind = "ulist"
	BlockOList     BlockKind = "olist"
	BlockCode      BlockKind = "code"
)

// RenderBlock is one classified content block. Tag carries the heading level
// ("1".."3") or the fenced-code language; empty otherwise. Blocks are built
// fresh per article render and never mutated after creation.
type RenderBlock struct {
	Kind BlockKind
	Body string
	Tag  string
}

// LocalMedia describes a downloaded media file referenced by the renderer.
type LocalMedia struct {
	SourceURL string
	LocalPath string
}

// BuildReport summarizes one BuildIssue run.
type BuildReport struct {
	Total     int
	Succeeded int
	Failed    int
	Outputs   []string // ordered output artifact paths
	Failures  []string // ordered per-article failure messages
}
