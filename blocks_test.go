package xmag

import (
	"strings"
	"testing"
)

func TestClassifyBlocksFencedCode(t *testing.T) {
	t.Parallel()

	t.Run("fence with language tag", func(t *testing.T) {
		t.Parallel()

		blocks := ClassifyBlocks("```python\nprint(1)\n```")
		if len(blocks) != 1 {
			t.Fatalf("blocks = %d, want 1", len(blocks))
		}
		if blocks[0].Kind != BlockCode {
			t.Errorf("kind = %q, want code", blocks[0].Kind)
		}
		if blocks[0].Tag != "python" {
			t.Errorf("tag = %q, want python", blocks[0].Tag)
		}
		if blocks[0].Body != "print(1)" {
			t.Errorf("body = %q, want print(1)", blocks[0].Body)
		}
	})

	t.Run("fence without language tag", func(t *testing.T) {
		t.Parallel()

		blocks := ClassifyBlocks("```\nraw text\n```")
		if len(blocks) != 1 || blocks[0].Kind != BlockCode || blocks[0].Tag != "" {
			t.Fatalf("blocks = %+v, want one untagged code block", blocks)
		}
	})

	t.Run("fences keep original order among prose", func(t *testing.T) {
		t.Parallel()

		text := "Before.\n\n```go\nfmt.Println(1)\n```\n\nAfter."
		blocks := ClassifyBlocks(text)
		if len(blocks) != 3 {
			t.Fatalf("blocks = %d, want 3", len(blocks))
		}
		kinds := []BlockKind{blocks[0].Kind, blocks[1].Kind, blocks[2].Kind}
		want := []BlockKind{BlockParagraph, BlockCode, BlockParagraph}
		for i := range kinds {
			if kinds[i] != want[i] {
				t.Errorf("kinds = %v, want %v", kinds, want)
				break
			}
		}
	})

	t.Run("empty fence body produces no block", func(t *testing.T) {
		t.Parallel()

		blocks := ClassifyBlocks("Intro.\n\n```\n\n```")
		for _, block := range blocks {
			if block.Kind == BlockCode {
				t.Errorf("unexpected code block: %+v", block)
			}
		}
	})
}

func TestClassifyBlocksRuleCascade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantKind BlockKind
		wantBody string
		wantTag  string
	}{
		{
			name:     "marker heading level 1",
			text:     "# Title",
			wantKind: BlockHeading,
			wantBody: "Title",
			wantTag:  "1",
		},
		{
			name:     "marker heading level capped at 3",
			text:     "### Deep",
			wantKind: BlockHeading,
			wantBody: "Deep",
			wantTag:  "3",
		},
		{
			name:     "chapter title pattern",
			text:     "Chapter 2: The Middle",
			wantKind: BlockHeading,
			wantBody: "Chapter 2: The Middle",
			wantTag:  "2",
		},
		{
			name:     "all uppercase title",
			text:     "RESULTS AND DISCUSSION",
			wantKind: BlockHeading,
			wantBody: "RESULTS AND DISCUSSION",
			wantTag:  "2",
		},
		{
			name:     "unordered list",
			text:     "- a\n- b",
			wantKind: BlockUList,
			wantBody: "a\nb",
		},
		{
			name:     "unordered list with asterisks",
			text:     "* first\n* second",
			wantKind: BlockUList,
			wantBody: "first\nsecond",
		},
		{
			name:     "ordered list with dots and parens",
			text:     "1. one\n2) two",
			wantKind: BlockOList,
			wantBody: "one\ntwo",
		},
		{
			name:     "command listing",
			text:     "$ make build\nnpm install left-pad",
			wantKind: BlockCode,
			wantBody: "$ make build\nnpm install left-pad",
		},
		{
			name:     "paragraph joins lines with spaces",
			text:     "first line\nsecond line",
			wantKind: BlockParagraph,
			wantBody: "first line second line",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			blocks := ClassifyBlocks(tt.text)
			if len(blocks) != 1 {
				t.Fatalf("blocks = %d, want 1 (%+v)", len(blocks), blocks)
			}
			block := blocks[0]
			if block.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", block.Kind, tt.wantKind)
			}
			if block.Body != tt.wantBody {
				t.Errorf("body = %q, want %q", block.Body, tt.wantBody)
			}
			if block.Tag != tt.wantTag {
				t.Errorf("tag = %q, want %q", block.Tag, tt.wantTag)
			}
		})
	}
}

func TestClassifyBlocksPriorityOrder(t *testing.T) {
	t.Parallel()

	// A single "- item" line is a list, not a paragraph; a heading marker
	// wins over everything else.
	blocks := ClassifyBlocks("- only item")
	if len(blocks) != 1 || blocks[0].Kind != BlockUList {
		t.Errorf("blocks = %+v, want one ulist", blocks)
	}

	blocks = ClassifyBlocks("## UPPERCASE BUT MARKED")
	if len(blocks) != 1 || blocks[0].Kind != BlockHeading || blocks[0].Tag != "2" {
		t.Errorf("blocks = %+v, want marker heading level 2", blocks)
	}

	// Heading rules only fire for single-line chunks.
	blocks = ClassifyBlocks("# not a heading\nsecond line")
	if len(blocks) != 1 || blocks[0].Kind != BlockParagraph {
		t.Errorf("blocks = %+v, want one paragraph", blocks)
	}
}

func TestClassifyBlocksLineStatistics(t *testing.T) {
	t.Parallel()

	t.Run("long lines without blanks stay separate", func(t *testing.T) {
		t.Parallel()

		long1 := strings.Repeat("alpha ", 40) + "end." // ~244 chars
		long2 := strings.Repeat("beta ", 40) + "end."
		blocks := ClassifyBlocks(long1 + "\n" + long2)
		if len(blocks) != 2 {
			t.Fatalf("blocks = %d, want 2 separate paragraphs", len(blocks))
		}
	})

	t.Run("short lines without blanks join into one paragraph", func(t *testing.T) {
		t.Parallel()

		blocks := ClassifyBlocks("a short line\nanother short line\na third")
		if len(blocks) != 1 {
			t.Fatalf("blocks = %d, want 1 joined paragraph", len(blocks))
		}
		if !strings.Contains(blocks[0].Body, "a short line another short line") {
			t.Errorf("body = %q, want joined lines", blocks[0].Body)
		}
	})

	t.Run("blank-separated chunks bypass statistics", func(t *testing.T) {
		t.Parallel()

		blocks := ClassifyBlocks("one\n\ntwo")
		if len(blocks) != 2 {
			t.Fatalf("blocks = %d, want 2", len(blocks))
		}
	})
}
