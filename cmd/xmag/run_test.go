package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	xmag "github.com/alnah/go-xmag"
	"github.com/alnah/go-xmag/internal/dateutil"
)

type fakeBuilder struct {
	input  xmag.BuildInput
	called bool
	closed bool

	report xmag.BuildReport
	err    error
}

func (b *fakeBuilder) BuildIssue(_ context.Context, input xmag.BuildInput) (xmag.BuildReport, error) {
	b.called = true
	b.input = input
	return b.report, b.err
}

func (b *fakeBuilder) Close() error {
	b.closed = true
	return nil
}

func testFlags(t *testing.T, args ...string) *buildFlags {
	t.Helper()
	flags, _, err := parseFlags(append([]string{"-f", "urls.txt", "-o", "issue.pdf"}, args...))
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	return flags
}

func TestRunSummary(t *testing.T) {
	svc := &fakeBuilder{report: xmag.BuildReport{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Outputs:   []string{"issue.pdf"},
		Failures:  []string{"https://x.com/a/status/1: blocked"},
	}}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), testFlags(t), svc, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "Processed 3 URL(s): 2 succeeded, 1 failed.") {
		t.Errorf("stdout = %q, missing summary line", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Output: issue.pdf") {
		t.Errorf("stdout = %q, missing output line", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Failures:") ||
		!strings.Contains(stderr.String(), "- https://x.com/a/status/1: blocked") {
		t.Errorf("stderr = %q, missing failure listing", stderr.String())
	}
	if !svc.closed {
		t.Error("service not closed")
	}
}

func TestRunPassesBuildInput(t *testing.T) {
	svc := &fakeBuilder{}
	flags := testFlags(t, "--columns", "2", "--continue-on-error", "--keep-tex")

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), flags, svc, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if svc.input.URLFile != "urls.txt" || svc.input.Output != "issue.pdf" {
		t.Errorf("input = %+v, want flag paths", svc.input)
	}
	if svc.input.Layout.Columns != 2 {
		t.Errorf("Layout.Columns = %d, want 2", svc.input.Layout.Columns)
	}
	if !svc.input.ContinueOnError || !svc.input.KeepTex {
		t.Errorf("input = %+v, want continue-on-error and keep-tex", svc.input)
	}
	if svc.input.DateLayout != "2006-01-02 15:04 MST" {
		t.Errorf("DateLayout = %q, want resolved iso preset", svc.input.DateLayout)
	}
}

func TestRunInvalidDateFormat(t *testing.T) {
	svc := &fakeBuilder{}
	flags := testFlags(t, "--date-format", strings.Repeat("Y", 60))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), flags, svc, &stdout, &stderr)
	if !errors.Is(err, dateutil.ErrInvalidDateFormat) {
		t.Fatalf("run() error = %v, want ErrInvalidDateFormat", err)
	}
	if svc.called {
		t.Error("BuildIssue called despite invalid date format")
	}
}

func TestRunBuildFailure(t *testing.T) {
	svc := &fakeBuilder{err: xmag.ErrNoArticles}

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), testFlags(t), svc, &stdout, &stderr)
	if !errors.Is(err, xmag.ErrNoArticles) {
		t.Fatalf("run() error = %v, want wrapped ErrNoArticles", err)
	}
	if !strings.HasPrefix(err.Error(), "build failed: ") {
		t.Errorf("error = %q, want build failed prefix", err)
	}
	if !svc.closed {
		t.Error("service not closed on failure")
	}
}
