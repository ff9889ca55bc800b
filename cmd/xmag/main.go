package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	flags, fs, err := parseFlags(args)
	if err != nil {
		switch {
		case errors.Is(err, ErrShowHelp):
			fmt.Fprintln(os.Stdout, "xmag builds magazine-style PDFs from X status URLs.")
			fmt.Fprintln(os.Stdout, "\nUsage:\n  xmag --url-file urls.txt --output issue.pdf [flags]")
			fmt.Fprintln(os.Stdout, "\nFlags:")
			fmt.Fprint(os.Stdout, fs.FlagUsages())
			return ExitSuccess
		case errors.Is(err, ErrShowVersion):
			fmt.Fprintf(os.Stdout, "xmag %s\n", Version)
			return ExitSuccess
		default:
			fmt.Fprintln(os.Stderr, err)
			return exitCodeFor(err)
		}
	}

	logger := newLogger(flags)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug().Msgf(format, args...)
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, newService(flags, logger), os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// newLogger configures console logging per verbosity flags.
func newLogger(flags *buildFlags) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case flags.quiet:
		level = zerolog.ErrorLevel
	case flags.verbose:
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
