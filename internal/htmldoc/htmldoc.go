// Package htmldoc provides an offline content provider backed by goquery.
// It serves saved HTML documents to the extraction pipeline, which keeps
// extractor behavior testable and debuggable without a browser session.
package htmldoc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	xmag "github.com/alnah/go-xmag"
)

// rootSelector matches the root content containers of a post page.
const rootSelector = "article"

// Provider opens local HTML files as pages. The timeout parameters are
// accepted for interface compatibility; static documents never wait.
type Provider struct{}

// Compile-time interface checks.
var (
	_ xmag.Provider = (*Provider)(nil)
	_ xmag.Page     = (*page)(nil)
	_ xmag.Element  = (*element)(nil)
)

// NewProvider creates an offline provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Open loads and parses the HTML file at path (a "file://" prefix is
// stripped).
func (p *Provider) Open(ctx context.Context, path string, _ time.Duration) (xmag.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = strings.TrimPrefix(path, "file://")
	file, err := os.Open(path) // #nosec G304 -- fixture path is caller-provided
	if err != nil {
		return nil, fmt.Errorf("opening HTML document: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML document: %w", err)
	}

	return &page{doc: doc}, nil
}

// Close is a no-op; the provider holds no session.
func (p *Provider) Close() error { return nil }

// FromReader builds a page directly from HTML content, for tests.
func FromReader(html string) (xmag.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML document: %w", err)
	}
	return &page{doc: doc}, nil
}

type page struct {
	doc *goquery.Document
}

// WaitReady checks for a root content element; static documents either have
// one or never will.
func (p *page) WaitReady(_ time.Duration) error {
	if p.doc.Find(rootSelector).Length() == 0 {
		return fmt.Errorf("%w: document has no content container", xmag.ErrArticleNotFound)
	}
	return nil
}

func (p *page) Articles() []xmag.Element {
	return wrapSelection(p.doc.Find(rootSelector))
}

// element adapts one goquery node to the provider element interface.
type element struct {
	sel *goquery.Selection
}

func (e *element) Query(selector string) []xmag.Element {
	return wrapSelection(e.sel.Find(selector))
}

// Text approximates a browser's visible text: block-level boundaries in the
// source become newlines so the sanitizer sees the same line structure a
// live page produces.
func (e *element) Text() string {
	var out strings.Builder
	e.sel.Contents().Each(func(_ int, node *goquery.Selection) {
		text := node.Text()
		if text == "" {
			return
		}
		if goquery.NodeName(node) == "#text" {
			out.WriteString(text)
			return
		}
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteString("\n")
		}
		out.WriteString(strings.TrimSpace(text))
		out.WriteString("\n")
	})
	return strings.TrimSpace(out.String())
}

func (e *element) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

func wrapSelection(sel *goquery.Selection) []xmag.Element {
	elements := make([]xmag.Element, 0, sel.Length())
	sel.Each(func(_ int, node *goquery.Selection) {
		elements = append(elements, &element{sel: node})
	})
	return elements
}
