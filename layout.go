package xmag

import (
	"fmt"
	"strings"
)

// Paper size constants.
const (
	PaperA4     = "a4"
	PaperLetter = "letter"
)

// Pagination mode constants.
const (
	PaginationContinuous = "continuous"
	PaginationNewPage    = "newpage"
	PaginationSplit      = "split"
)

// Image layout mode constants.
const (
	ImageLayoutSpan     = "span"
	ImageLayoutInline   = "inline"
	ImageLayoutAppendix = "appendix"
)

// Column count bounds.
const (
	MinColumns = 1
	MaxColumns = 6
)

// LayoutConfig holds user-adjustable layout settings for the generated PDF.
// It is constructed once per run, validated, and read-only thereafter.
type LayoutConfig struct {
	Paper          string
	Columns        int
	OuterMarginMM  float64
	InnerMarginMM  float64
	TopMarginMM    float64
	BottomMarginMM float64
	ColumnGapMM    float64
	Pagination     string
	ImageLayout    string
	BlankFirstPage bool
	IncludeIndex   bool
}

// DefaultLayoutConfig returns the layout defaults: A4, three columns,
// one article per page, inline images.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Paper:          PaperA4,
		Columns:        3,
		OuterMarginMM:  4.0,
		InnerMarginMM:  9.0,
		TopMarginMM:    10.0,
		BottomMarginMM: 10.0,
		ColumnGapMM:    4.0,
		Pagination:     PaginationNewPage,
		ImageLayout:    ImageLayoutInline,
	}
}

// Validate checks paper size, column range, margin positivity, the
// inner >= outer margin relationship required by two-sided layouts, and the
// pagination/image mode enums.
func (c LayoutConfig) Validate() error {
	switch strings.ToLower(c.Paper) {
	case PaperA4, PaperLetter:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPaper, c.Paper)
	}

	if c.Columns < MinColumns || c.Columns > MaxColumns {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidColumns, c.Columns, MinColumns, MaxColumns)
	}

	margins := []struct {
		name  string
		value float64
	}{
		{"outer", c.OuterMarginMM},
		{"inner", c.InnerMarginMM},
		{"top", c.TopMarginMM},
		{"bottom", c.BottomMarginMM},
	}
	for _, m := range margins {
		if m.value <= 0 {
			return fmt.Errorf("%w: %s margin %.2fmm (must be positive)", ErrInvalidMargin, m.name, m.value)
		}
	}

	if c.InnerMarginMM < c.OuterMarginMM {
		return fmt.Errorf("%w: inner margin %.2fmm is smaller than outer margin %.2fmm", ErrInvalidMargin, c.InnerMarginMM, c.OuterMarginMM)
	}

	if c.ColumnGapMM <= 0 {
		return fmt.Errorf("%w: %.2fmm (must be positive)", ErrInvalidColumnGap, c.ColumnGapMM)
	}

	switch c.Pagination {
	case PaginationContinuous, PaginationNewPage, PaginationSplit:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPagination, c.Pagination)
	}

	switch c.ImageLayout {
	case ImageLayoutSpan, ImageLayoutInline, ImageLayoutAppendix:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidImageMode, c.ImageLayout)
	}

	return nil
}

// paperOption maps the paper size to its LaTeX geometry option.
func (c LayoutConfig) paperOption() string {
	if strings.ToLower(c.Paper) == PaperLetter {
		return "letterpaper"
	}
	return "a4paper"
}
