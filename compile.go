package xmag

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alnah/go-xmag/internal/fileutil"
)

// CommandRunner abstracts external command execution to enable testing
// without real subprocesses.
type CommandRunner interface {
	Run(name string, args ...string) (stdout string, stderr string, err error)
	LookPath(name string) (string, error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Compile-time interface check.
var _ CommandRunner = (*ExecRunner)(nil)

// TectonicCompiler compiles .tex documents to PDF by invoking the tectonic
// CLI, expected on PATH.
type TectonicCompiler struct {
	Runner CommandRunner
}

// NewTectonicCompiler creates a TectonicCompiler with a real command runner.
func NewTectonicCompiler() *TectonicCompiler {
	return &TectonicCompiler{Runner: &ExecRunner{}}
}

// Compile runs tectonic on texPath with outputPath's directory as the output
// directory, then moves the produced PDF to outputPath. A non-zero exit or a
// missing artifact fails with the compiler's diagnostic preserved.
func (c *TectonicCompiler) Compile(texPath, outputPath string) error {
	if _, err := c.Runner.LookPath("tectonic"); err != nil {
		return fmt.Errorf("%w: install it and ensure `tectonic` is on PATH", ErrCompilerNotFound)
	}

	outDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrCompile, err)
	}

	_, stderr, err := c.Runner.Run("tectonic", "--outdir", outDir, texPath)
	if err != nil {
		diagnostic := strings.TrimSpace(stderr)
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return fmt.Errorf("%w: %s", ErrCompile, diagnostic)
	}

	stem := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	generated := filepath.Join(outDir, stem+".pdf")
	if !fileutil.FileExists(generated) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, generated)
	}

	if sameFile(generated, outputPath) {
		return nil
	}
	if err := os.Rename(generated, outputPath); err != nil {
		return fmt.Errorf("%w: moving %s to %s: %v", ErrCompile, generated, outputPath, err)
	}
	return nil
}

// sameFile reports whether two paths resolve to the same location.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
