// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"strings"
)

// ForceSuffix returns path with the given suffix, replacing any existing
// extension-like suffix only when it differs case-insensitively.
//
// Examples:
//   - ForceSuffix("issue", ".pdf") -> "issue.pdf"
//   - ForceSuffix("issue.PDF", ".pdf") -> "issue.PDF"
//   - ForceSuffix("issue.tex", ".pdf") -> "issue.tex.pdf"
func ForceSuffix(path, suffix string) string {
	if strings.HasSuffix(strings.ToLower(path), strings.ToLower(suffix)) {
		return path
	}
	return path + suffix
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
