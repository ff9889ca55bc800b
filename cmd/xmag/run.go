package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	xmag "github.com/alnah/go-xmag"
	"github.com/alnah/go-xmag/internal/dateutil"
)

// builder is the slice of the library the CLI needs; narrowed for testing.
type builder interface {
	BuildIssue(ctx context.Context, input xmag.BuildInput) (xmag.BuildReport, error)
	Close() error
}

// newService builds the production service from parsed flags.
func newService(flags *buildFlags, logger zerolog.Logger) builder {
	return xmag.New(
		xmag.WithTimeout(time.Duration(flags.timeoutSeconds)*time.Second),
		xmag.WithHeadless(flags.headless),
		xmag.WithStorageState(flags.storageState),
		xmag.WithLogger(logger),
	)
}

// run executes one build and writes the user-facing summary.
// Summary and output paths go to stdout; recorded failures go to stderr.
func run(ctx context.Context, flags *buildFlags, svc builder, stdout, stderr io.Writer) error {
	defer func() { _ = svc.Close() }()

	dateLayout, err := dateutil.ParseDateFormat(flags.dateFormat)
	if err != nil {
		return err
	}

	report, err := svc.BuildIssue(ctx, xmag.BuildInput{
		URLFile:         flags.urlFile,
		Output:          flags.output,
		Layout:          layoutFromFlags(flags),
		ContinueOnError: flags.continueOnError,
		KeepTex:         flags.keepTex,
		DateLayout:      dateLayout,
	})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(stdout, "Processed %d URL(s): %d succeeded, %d failed.\n",
		report.Total, report.Succeeded, report.Failed)
	for _, output := range report.Outputs {
		fmt.Fprintf(stdout, "Output: %s\n", output)
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(stderr, "Failures:")
		for _, failure := range report.Failures {
			fmt.Fprintf(stderr, "- %s\n", failure)
		}
	}

	return nil
}
