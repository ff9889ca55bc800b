package xmag

import "errors"

// Sentinel errors for library operations.
var (
	// Input errors.
	ErrInvalidURL  = errors.New("invalid status URL")
	ErrURLFileRead = errors.New("failed to read URL file")
	ErrNoValidURLs = errors.New("no valid URLs found in URL file")

	// Per-article extraction errors.
	ErrExtraction      = errors.New("article extraction failed")
	ErrArticleNotFound = errors.New("article content not found")
	ErrArticleTimeout  = errors.New("article extraction timed out")
	ErrEmptyArticle    = errors.New("article text is empty after sanitization")

	// Run-level errors.
	ErrNoArticles    = errors.New("no extractable articles were found")
	ErrMediaDownload = errors.New("media download failed")

	// Layout validation errors.
	ErrInvalidPaper      = errors.New("invalid paper size")
	ErrInvalidColumns    = errors.New("invalid column count")
	ErrInvalidMargin     = errors.New("invalid margin")
	ErrInvalidColumnGap  = errors.New("invalid column gap")
	ErrInvalidPagination = errors.New("invalid pagination mode")
	ErrInvalidImageMode  = errors.New("invalid image layout mode")

	// Compiler errors.
	ErrCompilerNotFound = errors.New("tectonic not found on PATH")
	ErrCompile          = errors.New("tectonic compile failed")
	ErrMissingArtifact  = errors.New("expected output PDF not found")
)
