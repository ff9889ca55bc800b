package xmag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// defaultMediaTimeout bounds one media GET.
const defaultMediaTimeout = 20 * time.Second

var unsafeFilenameRE = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NormalizeMediaURL rewrites an X media URL to request the original-quality
// asset: scheme, host, and path are kept; the query becomes exactly
// "format=<explicit|path extension|jpg>&name=orig".
func NormalizeMediaURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	format := parsed.Query().Get("format")
	if format == "" {
		format = strings.TrimPrefix(path.Ext(parsed.Path), ".")
	}
	if format == "" {
		format = "jpg"
	}

	query := url.Values{}
	query.Set("format", format)
	query.Set("name", "orig")

	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""
	return parsed.String()
}

// MediaFetcher downloads article media into a run-scoped directory.
// A zero-value fetcher uses http.DefaultClient semantics with the default
// timeout.
type MediaFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewMediaFetcher creates a MediaFetcher with its own HTTP client.
func NewMediaFetcher() *MediaFetcher {
	return &MediaFetcher{
		Client:  &http.Client{Timeout: defaultMediaTimeout},
		Timeout: defaultMediaTimeout,
	}
}

// Fetch downloads every media URL into outDir sequentially and returns local
// media metadata in input order. URLs are normalized and deduped first.
// Any transport or filesystem failure is fatal: the error aborts the caller's
// run rather than being recorded per asset.
func (f *MediaFetcher) Fetch(ctx context.Context, mediaURLs []string, outDir string) ([]LocalMedia, error) {
	if len(mediaURLs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrMediaDownload, outDir, err)
	}

	normalized := make([]string, 0, len(mediaURLs))
	for _, raw := range dedupePreserve(mediaURLs) {
		normalized = append(normalized, NormalizeMediaURL(raw))
	}

	local := make([]LocalMedia, 0, len(normalized))
	for index, mediaURL := range normalized {
		localPath := filepath.Join(outDir, mediaFilename(mediaURL, index+1))
		if err := f.fetchOne(ctx, mediaURL, localPath); err != nil {
			return nil, err
		}
		local = append(local, LocalMedia{SourceURL: mediaURL, LocalPath: localPath})
	}

	return local, nil
}

func (f *MediaFetcher) fetchOne(ctx context.Context, mediaURL, localPath string) error {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultMediaTimeout}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultMediaTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMediaDownload, mediaURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMediaDownload, mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %q: unexpected status %d", ErrMediaDownload, mediaURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %q: reading body: %v", ErrMediaDownload, mediaURL, err)
	}

	if err := os.WriteFile(localPath, body, 0o640); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrMediaDownload, localPath, err)
	}
	return nil
}

// mediaFilename builds a stable, filesystem-safe name: zero-padded index,
// sanitized URL stem, extension from the normalized format parameter.
func mediaFilename(mediaURL string, index int) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return fmt.Sprintf("%03d_image.jpg", index)
	}

	stem := strings.TrimSuffix(path.Base(parsed.Path), path.Ext(parsed.Path))
	if stem == "" || stem == "." || stem == "/" {
		stem = fmt.Sprintf("image_%03d", index)
	}
	stem = unsafeFilenameRE.ReplaceAllString(stem, "_")

	extension := parsed.Query().Get("format")
	if extension == "" {
		extension = "jpg"
	}

	return fmt.Sprintf("%03d_%s.%s", index, stem, extension)
}
