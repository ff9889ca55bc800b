package xmag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Structural queries used against a loaded post page. The provider only has
// to support this fixed set.
const (
	queryTweetText = `[data-testid="tweetText"]`
	queryLangDiv   = `div[lang]`
	queryAutoDiv   = `div[dir="auto"]`
	queryUserName  = `[data-testid="User-Name"]`
	queryTime      = `time`
	queryMediaImg  = `img[src*="twimg.com/media"]`
)

// Body extraction thresholds.
const (
	minCandidateChars = 12 // shorter raw matches are discarded
	minAcceptedChars  = 40 // sanitized length that accepts the primary query
	maxCandidateNodes = 20 // cap on matches inspected per query
)

// maxExtractAttempts bounds the timeout retry; the second attempt doubles
// the page timeout.
const maxExtractAttempts = 2

// Element is one DOM node handle exposed by a content provider.
type Element interface {
	// Query returns the sub-elements matching a CSS selector, in document
	// order.
	Query(selector string) []Element
	// Text returns the node's visible text.
	Text() string
	// Attr returns an attribute value, empty when absent.
	Attr(name string) string
}

// Page is a loaded post page.
type Page interface {
	// WaitReady blocks until a root content element is present or the
	// timeout elapses.
	WaitReady(timeout time.Duration) error
	// Articles returns the page's root content elements in document order.
	Articles() []Element
}

// Provider opens post pages. Session lifecycle (browser start/stop, cookies)
// is the provider's concern.
type Provider interface {
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
	Close() error
}

// bodyQuery is one entry of the prioritized body-text strategy list.
type bodyQuery struct {
	selector string
	// concatAll concatenates every distinct match instead of taking the
	// single longest; only the highest-priority query does this, and only
	// it may accept immediately.
	concatAll bool
}

var bodyQueries = []bodyQuery{
	{selector: queryTweetText, concatAll: true},
	{selector: queryLangDiv},
	{selector: queryAutoDiv},
}

// Extractor turns a status URL into normalized article content using a
// content provider.
type Extractor struct {
	provider Provider
	timeout  time.Duration
}

// NewExtractor creates an Extractor. timeout bounds one page visit; a
// timed-out visit is retried once with the timeout doubled.
func NewExtractor(provider Provider, timeout time.Duration) *Extractor {
	return &Extractor{provider: provider, timeout: timeout}
}

// Extract loads one article and returns its normalized content.
// Timeouts retry once with a doubled budget; all other failures are
// normalized to ErrExtraction with the cause preserved.
func (e *Extractor) Extract(ctx context.Context, input ArticleInput) (ArticleContent, error) {
	timeout := e.timeout

	for attempt := 1; attempt <= maxExtractAttempts; attempt++ {
		content, err := e.extractOnce(ctx, input, timeout)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrArticleTimeout) {
			return ArticleContent{}, err
		}
		timeout *= 2
	}

	return ArticleContent{}, fmt.Errorf("%w: status id %s from %s", ErrArticleTimeout, input.StatusID, input.URL)
}

func (e *Extractor) extractOnce(ctx context.Context, input ArticleInput, timeout time.Duration) (ArticleContent, error) {
	page, err := e.provider.Open(ctx, input.URL, timeout)
	if err != nil {
		return ArticleContent{}, normalizeExtractErr(err, input)
	}

	if err := page.WaitReady(timeout); err != nil {
		return ArticleContent{}, normalizeExtractErr(err, input)
	}

	root, err := selectArticleRoot(page, input.StatusID)
	if err != nil {
		return ArticleContent{}, err
	}

	rawAuthor := ""
	if nodes := root.Query(queryUserName); len(nodes) > 0 {
		rawAuthor = strings.TrimSpace(nodes[0].Text())
	}
	authorName, authorHandle := extractAuthor(rawAuthor)

	var publishedAt *time.Time
	if nodes := root.Query(queryTime); len(nodes) > 0 {
		if parsed, err := time.Parse(time.RFC3339, nodes[0].Attr("datetime")); err == nil {
			publishedAt = &parsed
		}
	}

	text, err := extractBodyText(root, authorName, authorHandle)
	if err != nil {
		return ArticleContent{}, fmt.Errorf("%w: status id %s", err, input.StatusID)
	}

	return ArticleContent{
		StatusID:     input.StatusID,
		URL:          input.URL,
		AuthorName:   authorName,
		AuthorHandle: authorHandle,
		PublishedAt:  publishedAt,
		Text:         text,
		MediaURLs:    extractMediaURLs(root),
	}, nil
}

// selectArticleRoot picks the content container: prefer the element whose
// embedded link references the wanted status id, else the first container on
// the page.
func selectArticleRoot(page Page, statusID string) (Element, error) {
	articles := page.Articles()
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no content container for status id %s", ErrArticleNotFound, statusID)
	}

	anchor := fmt.Sprintf(`a[href*="/status/%s"]`, statusID)
	for _, article := range articles {
		if len(article.Query(anchor)) > 0 {
			return article, nil
		}
	}
	return articles[0], nil
}

// extractBodyText runs the prioritized body queries. The primary query
// concatenates distinct matches and accepts once the sanitized result is
// long enough; lower-priority queries contribute their longest raw match.
// Across everything the longest sanitized candidate wins, with the full
// element text as last resort.
func extractBodyText(root Element, authorName, authorHandle string) (string, error) {
	bestSanitized := ""

	for _, query := range bodyQueries {
		nodes := root.Query(query.selector)
		if len(nodes) > maxCandidateNodes {
			nodes = nodes[:maxCandidateNodes]
		}

		var collected []string
		for _, node := range nodes {
			candidate := strings.TrimSpace(node.Text())
			if len(candidate) >= minCandidateChars {
				collected = append(collected, candidate)
			}
		}
		if len(collected) == 0 {
			continue
		}

		var candidateText string
		if query.concatAll {
			candidateText = strings.Join(dedupePreserve(collected), "\n\n")
		} else {
			candidateText = longest(collected)
		}

		sanitized := SanitizeText(candidateText, authorName, authorHandle)
		if sanitized == "" {
			continue
		}
		if query.concatAll && len(sanitized) >= minAcceptedChars {
			return sanitized, nil
		}
		if len(sanitized) > len(bestSanitized) {
			bestSanitized = sanitized
		}
	}

	if fallback := strings.TrimSpace(root.Text()); fallback != "" {
		sanitized := SanitizeText(fallback, authorName, authorHandle)
		if len(sanitized) > len(bestSanitized) {
			bestSanitized = sanitized
		}
	}

	if bestSanitized == "" {
		return "", fmt.Errorf("%w: no usable text nodes", ErrEmptyArticle)
	}
	return bestSanitized, nil
}

// extractMediaURLs collects absolute http(s) media image sources, deduped in
// first-seen order.
func extractMediaURLs(root Element) []string {
	var urls []string
	for _, node := range root.Query(queryMediaImg) {
		src := node.Attr("src")
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			urls = append(urls, src)
		}
	}
	return dedupePreserve(urls)
}

// normalizeExtractErr keeps sentinel kinds intact and wraps anything else as
// a generic extraction failure with the cause preserved.
func normalizeExtractErr(err error, input ArticleInput) error {
	if errors.Is(err, ErrArticleTimeout) || errors.Is(err, ErrArticleNotFound) || errors.Is(err, context.DeadlineExceeded) {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrArticleTimeout) {
			return fmt.Errorf("%w: %v", ErrArticleTimeout, err)
		}
		return err
	}
	return fmt.Errorf("%w: status id %s: %v", ErrExtraction, input.StatusID, err)
}

func dedupePreserve(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}

func longest(items []string) string {
	best := ""
	for _, item := range items {
		if len(item) > len(best) {
			best = item
		}
	}
	return best
}
