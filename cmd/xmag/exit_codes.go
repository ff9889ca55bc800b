package main

import (
	"errors"

	xmag "github.com/alnah/go-xmag"
	"github.com/alnah/go-xmag/internal/dateutil"
)

// Exit codes for the xmag CLI.
const (
	ExitSuccess = 0 // artifacts produced
	ExitBuild   = 1 // any build failure
	ExitUsage   = 2 // invalid flags, config, or layout validation
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use
// fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrFlagParse) ||
		errors.Is(err, ErrMissingURLFile) ||
		errors.Is(err, ErrMissingOutput) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, xmag.ErrInvalidPaper) ||
		errors.Is(err, xmag.ErrInvalidColumns) ||
		errors.Is(err, xmag.ErrInvalidMargin) ||
		errors.Is(err, xmag.ErrInvalidColumnGap) ||
		errors.Is(err, xmag.ErrInvalidPagination) ||
		errors.Is(err, xmag.ErrInvalidImageMode) {
		return ExitUsage
	}

	return ExitBuild
}
