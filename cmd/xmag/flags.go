package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	xmag "github.com/alnah/go-xmag"
)

// Sentinel errors for flag handling.
var (
	ErrFlagParse      = errors.New("invalid flags")
	ErrMissingURLFile = errors.New("--url-file is required")
	ErrMissingOutput  = errors.New("--output is required")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrShowHelp       = errors.New("help requested")
	ErrShowVersion    = errors.New("version requested")
)

// Timeout bounds in seconds for one page visit.
const (
	minTimeoutSeconds = 5
	maxTimeoutSeconds = 180
)

// buildFlags holds every CLI flag for a build run.
type buildFlags struct {
	urlFile string
	output  string
	config  string

	paper          string
	columns        int
	outerMarginMM  float64
	innerMarginMM  float64
	topMarginMM    float64
	bottomMarginMM float64
	columnGapMM    float64
	pagination     string
	imageLayout    string
	blankFirstPage bool
	indexPage      bool

	headless        bool
	storageState    string
	timeoutSeconds  int
	continueOnError bool
	keepTex         bool
	dateFormat      string

	verbose bool
	quiet   bool
	help    bool
	version bool
}

// newFlagSet declares all flags with layout defaults taken from the library.
func newFlagSet(flags *buildFlags) *flag.FlagSet {
	defaults := xmag.DefaultLayoutConfig()

	fs := flag.NewFlagSet("xmag", flag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&flags.urlFile, "url-file", "f", "", "text file with one status URL per line (required)")
	fs.StringVarP(&flags.output, "output", "o", "", "output PDF path (required)")
	fs.StringVarP(&flags.config, "config", "c", "", "YAML config file with layout defaults")

	fs.StringVar(&flags.paper, "paper", defaults.Paper, "paper size: a4 or letter")
	fs.IntVar(&flags.columns, "columns", defaults.Columns, "column count (1-6)")
	fs.Float64Var(&flags.outerMarginMM, "outer-margin-mm", defaults.OuterMarginMM, "outer page margin in mm")
	fs.Float64Var(&flags.innerMarginMM, "inner-margin-mm", defaults.InnerMarginMM, "inner page margin in mm (>= outer)")
	fs.Float64Var(&flags.topMarginMM, "top-margin-mm", defaults.TopMarginMM, "top page margin in mm")
	fs.Float64Var(&flags.bottomMarginMM, "bottom-margin-mm", defaults.BottomMarginMM, "bottom page margin in mm")
	fs.Float64Var(&flags.columnGapMM, "column-gap-mm", defaults.ColumnGapMM, "gap between columns in mm")
	fs.StringVar(&flags.pagination, "pagination", defaults.Pagination, "pagination mode: continuous, newpage, or split")
	fs.StringVar(&flags.imageLayout, "image-layout", defaults.ImageLayout, "image placement: span, inline, or appendix")
	fs.BoolVar(&flags.blankFirstPage, "blank-first-page", false, "start the document with an empty page")
	fs.BoolVar(&flags.indexPage, "index-page", false, "prepend a contents page listing every article")

	fs.BoolVar(&flags.headless, "headless", true, "run the browser headless")
	fs.StringVar(&flags.storageState, "storage-state", "", "JSON cookie file for an authenticated session")
	fs.IntVar(&flags.timeoutSeconds, "timeout-seconds", 30, "per-page timeout in seconds (5-180)")
	fs.BoolVar(&flags.continueOnError, "continue-on-error", false, "record per-article failures and keep going")
	fs.BoolVar(&flags.keepTex, "keep-tex", false, "keep the generated .tex files next to the output")
	fs.StringVar(&flags.dateFormat, "date-format", "iso", "header date format (preset or YYYY/MM/DD/HH/mm tokens)")

	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "errors only")
	fs.BoolVarP(&flags.help, "help", "h", false, "show help")
	fs.BoolVar(&flags.version, "version", false, "show version")

	return fs
}

// parseFlags parses args (excluding the program name) and applies config-file
// defaults underneath explicitly set flags.
func parseFlags(args []string) (*buildFlags, *flag.FlagSet, error) {
	flags := &buildFlags{}
	fs := newFlagSet(flags)

	if err := fs.Parse(args); err != nil {
		return nil, fs, fmt.Errorf("%w: %v", ErrFlagParse, err)
	}

	if flags.help {
		return flags, fs, ErrShowHelp
	}
	if flags.version {
		return flags, fs, ErrShowVersion
	}

	if flags.config != "" {
		cfg, err := loadConfig(flags.config)
		if err != nil {
			return nil, fs, err
		}
		applyConfig(flags, cfg, fs)
	}

	if flags.urlFile == "" {
		return nil, fs, ErrMissingURLFile
	}
	if flags.output == "" {
		return nil, fs, ErrMissingOutput
	}
	if flags.timeoutSeconds < minTimeoutSeconds || flags.timeoutSeconds > maxTimeoutSeconds {
		return nil, fs, fmt.Errorf("%w: %d seconds (must be between %d and %d)",
			ErrInvalidTimeout, flags.timeoutSeconds, minTimeoutSeconds, maxTimeoutSeconds)
	}

	return flags, fs, nil
}

// layoutFromFlags builds the layout configuration; validation happens in the
// library.
func layoutFromFlags(flags *buildFlags) xmag.LayoutConfig {
	return xmag.LayoutConfig{
		Paper:          flags.paper,
		Columns:        flags.columns,
		OuterMarginMM:  flags.outerMarginMM,
		InnerMarginMM:  flags.innerMarginMM,
		TopMarginMM:    flags.topMarginMM,
		BottomMarginMM: flags.bottomMarginMM,
		ColumnGapMM:    flags.columnGapMM,
		Pagination:     flags.pagination,
		ImageLayout:    flags.imageLayout,
		BlankFirstPage: flags.blankFirstPage,
		IncludeIndex:   flags.indexPage,
	}
}
