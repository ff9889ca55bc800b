package xmag

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string][]Element
}

func (e *fakeElement) Query(selector string) []Element { return e.children[selector] }
func (e *fakeElement) Text() string                    { return e.text }
func (e *fakeElement) Attr(name string) string         { return e.attrs[name] }

func textElem(text string) *fakeElement { return &fakeElement{text: text} }

type fakePage struct {
	readyErr error
	articles []Element
}

func (p *fakePage) WaitReady(time.Duration) error { return p.readyErr }
func (p *fakePage) Articles() []Element           { return p.articles }

type openResult struct {
	page Page
	err  error
}

type fakeProvider struct {
	results  []openResult
	timeouts []time.Duration
}

func (p *fakeProvider) Open(_ context.Context, _ string, timeout time.Duration) (Page, error) {
	p.timeouts = append(p.timeouts, timeout)
	if len(p.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	result := p.results[0]
	p.results = p.results[1:]
	return result.page, result.err
}

func (p *fakeProvider) Close() error { return nil }

func singlePage(article Element) *fakePage {
	return &fakePage{articles: []Element{article}}
}

const longBody = "A body long enough for the primary selector to accept it outright."

func richArticle(statusID string) *fakeElement {
	return &fakeElement{
		text: longBody,
		children: map[string][]Element{
			queryTweetText: {textElem(longBody)},
			queryUserName:  {textElem("Alice Example\n@alice")},
			queryTime: {&fakeElement{attrs: map[string]string{
				"datetime": "2026-02-20T12:00:00Z",
			}}},
			queryMediaImg: {
				&fakeElement{attrs: map[string]string{"src": "https://pbs.twimg.com/media/one.jpg"}},
				&fakeElement{attrs: map[string]string{"src": "https://pbs.twimg.com/media/one.jpg"}},
				&fakeElement{attrs: map[string]string{"src": "data:image/png;base64,AAAA"}},
			},
			fmt.Sprintf(`a[href*="/status/%s"]`, statusID): {textElem("link")},
		},
	}
}

func TestExtractContent(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{page: singlePage(richArticle("111"))},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{
		URL:      "https://x.com/alice/status/111",
		StatusID: "111",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if content.StatusID != "111" {
		t.Errorf("StatusID = %q, want %q", content.StatusID, "111")
	}
	if content.AuthorName != "Alice Example" {
		t.Errorf("AuthorName = %q, want %q", content.AuthorName, "Alice Example")
	}
	if content.AuthorHandle != "@alice" {
		t.Errorf("AuthorHandle = %q, want %q", content.AuthorHandle, "@alice")
	}
	if content.PublishedAt == nil {
		t.Fatal("PublishedAt = nil, want parsed timestamp")
	}
	want := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	if !content.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", content.PublishedAt, want)
	}
	if content.Text != longBody {
		t.Errorf("Text = %q, want %q", content.Text, longBody)
	}
	if len(content.MediaURLs) != 1 || content.MediaURLs[0] != "https://pbs.twimg.com/media/one.jpg" {
		t.Errorf("MediaURLs = %v, want single deduped https URL", content.MediaURLs)
	}
	if len(provider.timeouts) != 1 {
		t.Errorf("Open calls = %d, want 1", len(provider.timeouts))
	}
}

func TestExtractPrefersAnchoredArticle(t *testing.T) {
	decoy := &fakeElement{
		text: "Decoy quoted post with an entirely different body inside it.",
		children: map[string][]Element{
			queryTweetText: {textElem("Decoy quoted post with an entirely different body inside it.")},
		},
	}
	provider := &fakeProvider{results: []openResult{
		{page: &fakePage{articles: []Element{decoy, richArticle("222")}}},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{
		URL:      "https://x.com/alice/status/222",
		StatusID: "222",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if content.Text != longBody {
		t.Errorf("Text = %q, want body of the anchored article", content.Text)
	}
}

func TestExtractFirstArticleWhenNoneAnchored(t *testing.T) {
	first := &fakeElement{
		text: longBody,
		children: map[string][]Element{
			queryTweetText: {textElem(longBody)},
		},
	}
	provider := &fakeProvider{results: []openResult{
		{page: &fakePage{articles: []Element{first, richArticle("999")}}},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{
		URL:      "https://x.com/alice/status/333",
		StatusID: "333",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if content.AuthorName != "Unknown" || content.AuthorHandle != "@unknown" {
		t.Errorf("author = %q %q, want defaults", content.AuthorName, content.AuthorHandle)
	}
	if content.PublishedAt != nil {
		t.Errorf("PublishedAt = %v, want nil", content.PublishedAt)
	}
}

func TestExtractBodyFallsBackToSecondaryQuery(t *testing.T) {
	article := &fakeElement{
		children: map[string][]Element{
			queryTweetText: {textElem("short")},
			queryLangDiv: {
				textElem("A medium candidate."),
				textElem("The much longer language-tagged candidate wins the comparison."),
			},
		},
	}
	provider := &fakeProvider{results: []openResult{
		{page: singlePage(article)},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "444"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := "The much longer language-tagged candidate wins the comparison."
	if content.Text != want {
		t.Errorf("Text = %q, want %q", content.Text, want)
	}
}

func TestExtractPrimaryConcatenatesDistinctMatches(t *testing.T) {
	segmentA := "First tweet segment carrying plenty of characters on its own."
	segmentB := "Second tweet segment carrying a different run of characters."
	article := &fakeElement{
		children: map[string][]Element{
			queryTweetText: {textElem(segmentA), textElem(segmentA), textElem(segmentB)},
		},
	}
	provider := &fakeProvider{results: []openResult{
		{page: singlePage(article)},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "555"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := segmentA + "\n\n" + segmentB
	if content.Text != want {
		t.Errorf("Text = %q, want deduped concatenation %q", content.Text, want)
	}
}

func TestExtractEmptyArticle(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{page: singlePage(textElem(""))},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	_, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "666"})
	if !errors.Is(err, ErrEmptyArticle) {
		t.Fatalf("Extract() error = %v, want ErrEmptyArticle", err)
	}
	if len(provider.timeouts) != 1 {
		t.Errorf("Open calls = %d, want 1 (no retry on empty article)", len(provider.timeouts))
	}
}

func TestExtractArticleNotFound(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{page: &fakePage{}},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	_, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "777"})
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("Extract() error = %v, want ErrArticleNotFound", err)
	}
}

func TestExtractRetriesTimeoutWithDoubledBudget(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{err: ErrArticleTimeout},
		{err: ErrArticleTimeout},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	_, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "888"})
	if !errors.Is(err, ErrArticleTimeout) {
		t.Fatalf("Extract() error = %v, want ErrArticleTimeout", err)
	}
	if len(provider.timeouts) != 2 {
		t.Fatalf("Open calls = %d, want 2", len(provider.timeouts))
	}
	if provider.timeouts[0] != 5*time.Second || provider.timeouts[1] != 10*time.Second {
		t.Errorf("timeouts = %v, want [5s 10s]", provider.timeouts)
	}
}

func TestExtractTimeoutThenSuccess(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{err: fmt.Errorf("page load: %w", context.DeadlineExceeded)},
		{page: singlePage(richArticle("111"))},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	content, err := extractor.Extract(context.Background(), ArticleInput{
		URL:      "https://x.com/alice/status/111",
		StatusID: "111",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if content.Text != longBody {
		t.Errorf("Text = %q, want recovered body", content.Text)
	}
	if len(provider.timeouts) != 2 {
		t.Errorf("Open calls = %d, want 2", len(provider.timeouts))
	}
}

func TestExtractGenericOpenFailure(t *testing.T) {
	provider := &fakeProvider{results: []openResult{
		{err: errors.New("connection refused")},
	}}
	extractor := NewExtractor(provider, 5*time.Second)

	_, err := extractor.Extract(context.Background(), ArticleInput{StatusID: "999"})
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("Extract() error = %v, want ErrExtraction", err)
	}
	if len(provider.timeouts) != 1 {
		t.Errorf("Open calls = %d, want 1 (no retry on non-timeout failure)", len(provider.timeouts))
	}
}
