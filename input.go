package xmag

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// allowedHosts are the hosts accepted for status URLs (case-insensitive).
var allowedHosts = map[string]bool{
	"x.com":           true,
	"www.x.com":       true,
	"twitter.com":     true,
	"www.twitter.com": true,
}

// ParseStatusID extracts the numeric status id from an X/Twitter URL.
// The URL must use http(s), point at a known host, and contain a
// "/status/<digits>" path segment.
func ParseStatusID(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidURL, rawURL)
	}
	if !allowedHosts[strings.ToLower(parsed.Host)] {
		return "", fmt.Errorf("%w: unsupported host in %q (expected x.com or twitter.com)", ErrInvalidURL, rawURL)
	}

	parts := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	for i, part := range parts {
		if part != "status" || i+1 >= len(parts) {
			continue
		}
		id := parts[i+1]
		if !isDigits(id) {
			return "", fmt.Errorf("%w: status id is not numeric in %q", ErrInvalidURL, rawURL)
		}
		return id, nil
	}

	return "", fmt.Errorf("%w: could not find /status/<id> in %q", ErrInvalidURL, rawURL)
}

// LoadURLFile reads a URL file (one status URL per line) and returns ordered
// article inputs. Blank lines and #-comments are skipped. Lines repeating an
// already-seen status id are dropped silently; any malformed line fails with
// its 1-based line number.
func LoadURLFile(path string) ([]ArticleInput, error) {
	file, err := os.Open(path) // #nosec G304 -- path comes from the CLI user
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLFileRead, err)
	}
	defer file.Close()

	seen := make(map[string]bool)
	var items []ArticleInput

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		statusID, err := ParseStatusID(line)
		if err != nil {
			return nil, fmt.Errorf("invalid URL at line %d: %w", lineNumber, err)
		}

		if seen[statusID] {
			continue
		}
		seen[statusID] = true
		items = append(items, ArticleInput{URL: line, StatusID: statusID})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrURLFileRead, err)
	}

	if len(items) == 0 {
		return nil, ErrNoValidURLs
	}

	return items, nil
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
