package xmag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-xmag/internal/fileutil"
)

// defaultTimeout bounds one page visit when no timeout option is given.
const defaultTimeout = 30 * time.Second

// Compiler abstracts the external document compiler.
type Compiler interface {
	Compile(texPath, outputPath string) error
}

// Fetcher abstracts media downloading.
type Fetcher interface {
	Fetch(ctx context.Context, mediaURLs []string, outDir string) ([]LocalMedia, error)
}

// Compile-time interface checks.
var (
	_ Compiler = (*TectonicCompiler)(nil)
	_ Fetcher  = (*MediaFetcher)(nil)
)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout      time.Duration
	headless     bool
	storageState string
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-page extraction timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("xmag: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithHeadless toggles headless mode for the default browser provider.
func WithHeadless(headless bool) Option {
	return func(s *Service) {
		s.cfg.headless = headless
	}
}

// WithStorageState points the default browser provider at a cookie file so
// logged-in sessions survive runs.
func WithStorageState(path string) Option {
	return func(s *Service) {
		s.cfg.storageState = path
	}
}

// WithProvider injects a content provider (e.g. an offline page source in
// tests), replacing the default headless browser.
func WithProvider(p Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithFetcher injects a media fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithCompiler injects a document compiler.
func WithCompiler(c Compiler) Option {
	return func(s *Service) {
		s.compiler = c
	}
}

// WithLogger injects a structured logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service orchestrates the URL-file-to-PDF pipeline. Runs are strictly
// sequential: articles are extracted one at a time in input order, and the
// only cross-article state is the read-only layout and the append-only
// report.
type Service struct {
	cfg      serviceConfig
	provider Provider
	fetcher  Fetcher
	compiler Compiler
	logger   zerolog.Logger
}

// New creates a Service with default collaborators: a headless rod browser,
// a plain HTTP media fetcher, and the tectonic compiler.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:    serviceConfig{timeout: defaultTimeout, headless: true},
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.provider == nil {
		s.provider = newRodProvider(s.cfg.headless, s.cfg.storageState)
	}
	if s.fetcher == nil {
		s.fetcher = NewMediaFetcher()
	}
	if s.compiler == nil {
		s.compiler = NewTectonicCompiler()
	}

	return s
}

// Close releases provider resources (the headless browser).
func (s *Service) Close() error {
	if s.provider != nil {
		return s.provider.Close()
	}
	return nil
}

// BuildInput carries the parameters of one BuildIssue run.
type BuildInput struct {
	URLFile         string
	Output          string
	Layout          LayoutConfig
	ContinueOnError bool
	KeepTex         bool
	DateLayout      string // Go time layout for header dates; empty = default
}

// BuildIssue builds one or more PDFs from a URL file. Per-article extraction
// failures are recorded and skipped in continue-on-error mode and abort the
// run otherwise; media, render, and compile failures always abort.
func (s *Service) BuildIssue(ctx context.Context, input BuildInput) (BuildReport, error) {
	var report BuildReport

	if err := input.Layout.Validate(); err != nil {
		return report, err
	}

	inputs, err := LoadURLFile(input.URLFile)
	if err != nil {
		return report, err
	}
	report.Total = len(inputs)

	contents, failures, err := s.extractAll(ctx, inputs, input.ContinueOnError)
	report.Failures = failures
	report.Failed = len(failures)
	if err != nil {
		report.Failed = report.Total - len(contents)
		return report, err
	}
	if len(contents) == 0 {
		return report, ErrNoArticles
	}
	report.Succeeded = len(contents)

	outputPDF := fileutil.ForceSuffix(input.Output, ".pdf")
	mediaMap, err := s.fetchAllMedia(ctx, contents, mediaDirFor(outputPDF))
	if err != nil {
		return report, err
	}

	documents, err := RenderIssue(contents, mediaMap, input.Layout, input.DateLayout)
	if err != nil {
		return report, err
	}

	for _, doc := range documents {
		pdfPath := outputPDF
		if doc.StatusID != "" {
			pdfPath = splitOutputPath(outputPDF, doc.Index, doc.StatusID)
		}

		outPath, err := s.compileDocument(doc.TeX, pdfPath, input.KeepTex)
		if err != nil {
			return report, err
		}
		report.Outputs = append(report.Outputs, outPath)
		s.logger.Info().Str("output", outPath).Msg("compiled document")
	}

	return report, nil
}

// extractAll walks the inputs in order. The returned failures are only
// populated in continue-on-error mode; otherwise the first failure aborts.
func (s *Service) extractAll(ctx context.Context, inputs []ArticleInput, continueOnError bool) ([]ArticleContent, []string, error) {
	extractor := NewExtractor(s.provider, s.cfg.timeout)

	var contents []ArticleContent
	var failures []string

	for _, item := range inputs {
		s.logger.Info().Str("url", item.URL).Str("status_id", item.StatusID).Msg("extracting article")

		content, err := extractor.Extract(ctx, item)
		if err != nil {
			if continueOnError {
				s.logger.Warn().Err(err).Str("url", item.URL).Msg("extraction failed; continuing")
				failures = append(failures, fmt.Sprintf("%s: %v", item.URL, err))
				continue
			}
			return contents, nil, fmt.Errorf("%s: %w", item.URL, err)
		}
		contents = append(contents, content)
	}

	return contents, failures, nil
}

// fetchAllMedia downloads every article's media into a per-article
// subdirectory of mediaDir. Any asset failure is fatal to the run.
func (s *Service) fetchAllMedia(ctx context.Context, contents []ArticleContent, mediaDir string) (map[string][]LocalMedia, error) {
	mediaMap := make(map[string][]LocalMedia, len(contents))
	for _, content := range contents {
		if len(content.MediaURLs) == 0 {
			continue
		}

		local, err := s.fetcher.Fetch(ctx, content.MediaURLs, filepath.Join(mediaDir, content.StatusID))
		if err != nil {
			return nil, err
		}
		mediaMap[content.StatusID] = local
		s.logger.Info().Str("status_id", content.StatusID).Int("count", len(local)).Msg("downloaded media")
	}
	return mediaMap, nil
}

// compileDocument writes the .tex next to the target PDF, compiles it, and
// removes the .tex unless it should be kept.
func (s *Service) compileDocument(tex, pdfPath string, keepTex bool) (string, error) {
	texPath := strings.TrimSuffix(pdfPath, ".pdf") + ".tex"
	if err := os.WriteFile(texPath, []byte(tex), 0o640); err != nil {
		return "", fmt.Errorf("writing %s: %w", texPath, err)
	}

	if err := s.compiler.Compile(texPath, pdfPath); err != nil {
		return "", err
	}

	if !keepTex {
		_ = os.Remove(texPath)
	}
	return pdfPath, nil
}

// splitOutputPath names one split-mode artifact: stem, zero-padded 3-digit
// run index, status id.
func splitOutputPath(outputPDF string, index int, statusID string) string {
	stem := strings.TrimSuffix(outputPDF, ".pdf")
	return fmt.Sprintf("%s-%03d-%s.pdf", stem, index, statusID)
}

// mediaDirFor places downloaded media next to the output artifact.
func mediaDirFor(outputPDF string) string {
	return strings.TrimSuffix(outputPDF, ".pdf") + "_media"
}
