// Package xmag builds magazine-style, multi-column PDFs from X/Twitter
// status URLs.
//
// The pipeline extracts article content from a rendered page, sanitizes the
// raw text, classifies it into structural blocks, renders inline markup into
// LaTeX, assembles one or more .tex documents, and compiles them with
// Tectonic.
//
// Basic usage:
//
//	svc := xmag.New(xmag.WithTimeout(30 * time.Second))
//	defer svc.Close()
//
//	report, err := svc.BuildIssue(ctx, xmag.BuildInput{
//		URLFile: "urls.txt",
//		Output:  "issue.pdf",
//		Layout:  xmag.DefaultLayoutConfig(),
//	})
//
// The content provider (headless Chrome via go-rod) and the Tectonic
// compiler are pluggable through options, which keeps the pipeline testable
// without a browser or a TeX installation.
package xmag
