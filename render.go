package xmag

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/alecthomas/chroma/v2/lexers"
)

//go:embed assets/issue.tex.tmpl
var issueAssets embed.FS

// issueTemplate wraps the generated body in the document preamble.
// TeX owns braces, so the template uses << >> delimiters.
var issueTemplate = template.Must(
	template.New("issue.tex.tmpl").Delims("<<", ">>").ParseFS(issueAssets, "assets/issue.tex.tmpl"),
)

// DefaultDateLayout formats article publish times in the header.
const DefaultDateLayout = "2006-01-02 15:04 MST"

// sourceLabelMax bounds the visible length of the source link label.
const sourceLabelMax = 44

// Document is one renderable .tex artifact. Index and StatusID are set in
// split mode only and drive output naming.
type Document struct {
	TeX      string
	Index    int
	StatusID string
}

// issueData feeds the embedded preamble template.
type issueData struct {
	PaperOption    string
	TopMarginMM    float64
	BottomMarginMM float64
	InnerMarginMM  float64
	OuterMarginMM  float64
	ColumnGapMM    float64
	BlankFirstPage bool
	IndexBlock     string
	BodyBlocks     []string
	AppendixImages []string
}

// RenderIssue assembles classified article content into one or more LaTeX
// documents according to the layout configuration. Continuous and newpage
// pagination produce a single document; split produces one independent
// document per article. dateLayout may be empty, which selects
// DefaultDateLayout.
func RenderIssue(contents []ArticleContent, media map[string][]LocalMedia, cfg LayoutConfig, dateLayout string) ([]Document, error) {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	if cfg.Pagination == PaginationSplit {
		docs := make([]Document, 0, len(contents))
		for i, article := range contents {
			// Value copy per article; nothing mutates it, but split
			// documents must not share layout state.
			articleCfg := cfg
			tex, err := renderDocument([]ArticleContent{article}, media, articleCfg, dateLayout, i+1, len(contents))
			if err != nil {
				return nil, err
			}
			docs = append(docs, Document{TeX: tex, Index: i + 1, StatusID: article.StatusID})
		}
		return docs, nil
	}

	tex, err := renderDocument(contents, media, cfg, dateLayout, 1, len(contents))
	if err != nil {
		return nil, err
	}
	return []Document{{TeX: tex}}, nil
}

// renderDocument renders articles into one .tex document. firstIndex is the
// 1-based run index of the first article, so split documents keep their
// "Article i/N" identity across the whole run.
func renderDocument(contents []ArticleContent, media map[string][]LocalMedia, cfg LayoutConfig, dateLayout string, firstIndex, total int) (string, error) {
	var bodyBlocks []string
	var appendixImages []string

	for offset, article := range contents {
		index := firstIndex + offset
		images := media[article.StatusID]

		body, leftover := renderArticle(article, images, cfg, dateLayout, index, total)
		bodyBlocks = append(bodyBlocks, body)
		for _, image := range leftover {
			appendixImages = append(appendixImages, renderSpanImage(image))
		}

		if cfg.Pagination == PaginationNewPage && offset < len(contents)-1 {
			bodyBlocks = append(bodyBlocks, `\newpage`)
		}
	}

	data := issueData{
		PaperOption:    cfg.paperOption(),
		TopMarginMM:    cfg.TopMarginMM,
		BottomMarginMM: cfg.BottomMarginMM,
		InnerMarginMM:  cfg.InnerMarginMM,
		OuterMarginMM:  cfg.OuterMarginMM,
		ColumnGapMM:    cfg.ColumnGapMM,
		BlankFirstPage: cfg.BlankFirstPage,
		BodyBlocks:     bodyBlocks,
		AppendixImages: appendixImages,
	}
	if cfg.IncludeIndex {
		data.IndexBlock = renderIndex(contents, dateLayout, firstIndex, total)
	}

	var out strings.Builder
	if err := issueTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering issue template: %w", err)
	}
	return out.String(), nil
}

// renderArticle produces the header plus multi-column body for one article.
// The second return value carries images deferred to the appendix.
func renderArticle(article ArticleContent, images []LocalMedia, cfg LayoutConfig, dateLayout string, index, total int) (string, []LocalMedia) {
	header := renderArticleHeader(article, dateLayout, index, total)
	blocks := renderContentBlocks(ClassifyBlocks(article.Text))

	switch cfg.ImageLayout {
	case ImageLayoutInline:
		body := columnRegion(cfg.Columns, header, renderInlineFlow(blocks, images))
		return body, nil

	case ImageLayoutSpan:
		spans := make([]string, 0, len(images))
		for _, image := range images {
			spans = append(spans, renderSpanImage(image))
		}
		body := columnRegion(cfg.Columns, header, strings.Join(blocks, "\n\n"))
		if len(spans) > 0 {
			body += "\n" + strings.Join(spans, "\n")
		}
		return body, nil

	default: // appendix: images are never placed next to their article
		body := columnRegion(cfg.Columns, header, strings.Join(blocks, "\n\n"))
		return body, images
	}
}

// columnRegion wraps header and body in a multicols* environment. A single
// column skips the environment entirely; multicol rejects one-column runs.
func columnRegion(columns int, header, body string) string {
	if columns <= 1 {
		return header + "\n" + body
	}
	return strings.Join([]string{
		fmt.Sprintf(`\begin{multicols*}{%d}`, columns),
		header,
		body,
		`\end{multicols*}`,
	}, "\n")
}

// renderInlineFlow interleaves images into the block flow: after block 1,
// then after every even-indexed block, leftovers at the end.
func renderInlineFlow(blocks []string, images []LocalMedia) string {
	var parts []string
	imageIndex := 0

	for blockIndex, block := range blocks {
		parts = append(parts, block)

		position := blockIndex + 1
		if (position == 1 || position%2 == 0) && imageIndex < len(images) {
			parts = append(parts, renderInlineImage(images[imageIndex]))
			imageIndex++
		}
	}
	for ; imageIndex < len(images); imageIndex++ {
		parts = append(parts, renderInlineImage(images[imageIndex]))
	}

	return strings.Join(parts, "\n\n")
}

func renderArticleHeader(article ArticleContent, dateLayout string, index, total int) string {
	return strings.Join([]string{
		`\vspace{1.8mm}`,
		`\noindent{\color{black!45}\rule{\linewidth}{0.55pt}}`,
		`\vspace{1.2mm}`,
		fmt.Sprintf(`\noindent\textbf{\large Article %d/%d}\hfill\texttt{%s}\\`, index, total, article.StatusID),
		fmt.Sprintf(`\textbf{%s} %s\\`, EscapeLaTeX(article.AuthorName), EscapeLaTeX(article.AuthorHandle)),
		fmt.Sprintf(`\textit{Published:} %s\\`, EscapeLaTeX(dateDisplay(article.PublishedAt, dateLayout))),
		fmt.Sprintf(`\textit{Source:} \href{%s}{%s}`, escapeHrefURL(article.URL), sourceLabel(article.URL)),
		`\vspace{1.6mm}`,
	}, "\n")
}

// sourceLabel truncates the source URL for display, ellipsis appended.
func sourceLabel(url string) string {
	if len(url) <= sourceLabelMax {
		return EscapeLaTeX(url)
	}
	return EscapeLaTeX(url[:sourceLabelMax]) + `\ldots{}`
}

func dateDisplay(value *time.Time, layout string) string {
	if value == nil {
		return "Unknown"
	}
	return strings.TrimSpace(value.Format(layout))
}

// renderContentBlocks serializes classified blocks to LaTeX. The classifier
// constrains block kinds, so there is no malformed-block path here.
func renderContentBlocks(blocks []RenderBlock) []string {
	rendered := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var tex string
		switch block.Kind {
		case BlockHeading:
			tex = renderHeadingBlock(block)
		case BlockUList:
			tex = renderListBlock(block, "itemize")
		case BlockOList:
			tex = renderListBlock(block, "enumerate")
		case BlockCode:
			tex = renderCodeBlock(block)
		default:
			tex = RenderInline(block.Body) + `\par`
		}
		if tex != "" {
			rendered = append(rendered, tex)
		}
	}
	return rendered
}

func renderHeadingBlock(block RenderBlock) string {
	body := RenderInline(strings.TrimSpace(block.Body))
	switch block.Tag {
	case "1":
		return `\noindent\textbf{\large ` + body + `}\par`
	case "3":
		return `\noindent\textit{` + body + `}\par`
	default:
		return `\noindent\textbf{` + body + `}\par`
	}
}

func renderListBlock(block RenderBlock, environment string) string {
	lines := strings.Split(block.Body, "\n")
	items := make([]string, 0, len(lines)+2)
	items = append(items, `\begin{`+environment+`}`)
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, `\item `+RenderInline(line))
		}
	}
	items = append(items, `\end{`+environment+`}`)
	return strings.Join(items, "\n")
}

func renderCodeBlock(block RenderBlock) string {
	begin := `\begin{lstlisting}` + listingsOption(block.Tag)
	// Keep user input from terminating the listing environment early.
	safe := strings.ReplaceAll(block.Body, `\end{lstlisting}`, `\\end{lstlisting}`)
	return strings.Join([]string{begin, safe, `\end{lstlisting}`}, "\n")
}

// listingsLanguages maps chroma's canonical lexer names to languages the
// listings package ships definitions for. JavaScript-family tags fall back
// to Java highlighting, the closest supported syntax.
var listingsLanguages = map[string]string{
	"Python":     "Python",
	"Java":       "Java",
	"JavaScript": "Java",
	"TypeScript": "Java",
	"C":          "C",
	"C++":        "C++",
	"Ruby":       "Ruby",
	"Perl":       "Perl",
	"PHP":        "PHP",
	"SQL":        "SQL",
}

// listingsOption resolves a fenced-code language tag to a listings language
// option. Tags are canonicalized through chroma's lexer registry so aliases
// ("py", "ts") resolve without a hand-kept alias table. Unknown or
// unsupported languages render untagged.
func listingsOption(tag string) string {
	if tag == "" {
		return ""
	}
	lexer := lexers.Get(strings.ToLower(strings.TrimSpace(tag)))
	if lexer == nil {
		return ""
	}
	mapped := listingsLanguages[lexer.Config().Name]
	if mapped == "" {
		return ""
	}
	return "[language=" + mapped + "]"
}

// renderIndex produces the optional contents page listing every article.
func renderIndex(contents []ArticleContent, dateLayout string, firstIndex, total int) string {
	lines := []string{
		`\noindent\textbf{\Large Contents}\par`,
		`\vspace{2.4mm}`,
	}
	for offset, article := range contents {
		lines = append(lines, fmt.Sprintf(
			`\noindent\textbf{Article %d/%d} --- %s %s --- \texttt{%s}\par`,
			firstIndex+offset, total,
			EscapeLaTeX(article.AuthorName), EscapeLaTeX(article.AuthorHandle),
			article.StatusID,
		))
	}
	return strings.Join(lines, "\n")
}

func renderInlineImage(image LocalMedia) string {
	return strings.Join([]string{
		`\begin{center}`,
		fmt.Sprintf(`\includegraphics[width=0.98\columnwidth]{\detokenize{%s}}`, texPath(image.LocalPath)),
		`\end{center}`,
		`\vspace{1.5mm}`,
	}, "\n")
}

func renderSpanImage(image LocalMedia) string {
	return strings.Join([]string{
		`\begin{center}`,
		fmt.Sprintf(`\includegraphics[width=0.98\textwidth]{\detokenize{%s}}`, texPath(image.LocalPath)),
		`\end{center}`,
		`\vspace{2.4mm}`,
	}, "\n")
}

// texPath normalizes a filesystem path for \includegraphics.
func texPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return strings.ReplaceAll(abs, `\`, `/`)
}
