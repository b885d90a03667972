// Package testutil provides test utilities and helpers for relnotes tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"
)

var (
	// relnotesBinaryPath caches the built relnotes binary path.
	relnotesBinaryPath string
	relnotesBuildOnce  sync.Once
	relnotesBuildErr   error
)

// E2EEnv provides an isolated environment for E2E testing. It manages a
// throwaway project directory and environment sanitization so tests
// never read the developer's user config or RELNOTES_* variables.
type E2EEnv struct {
	t           *testing.T
	tempDir     string
	originalEnv map[string]string
	extraEnv    []string
}

// CommandResult captures the result of running a relnotes command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new E2E test environment. The relnotes binary is
// built once per test session and every command runs inside a fresh
// temp directory with a scrubbed environment.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{
		t:           t,
		originalEnv: make(map[string]string),
	}

	env.setup()

	return env
}

func (e *E2EEnv) setup() {
	e.t.Helper()

	tempDir, err := os.MkdirTemp("", "relnotes-e2e-*")
	if err != nil {
		e.t.Fatalf("creating temp directory: %v", err)
	}
	e.tempDir = tempDir
	e.t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	e.buildRelnotes()
}

func (e *E2EEnv) buildRelnotes() {
	e.t.Helper()

	// Build the relnotes binary once per test session.
	relnotesBuildOnce.Do(func() {
		relnotesBinaryPath, relnotesBuildErr = doBuildRelnotes()
	})

	if relnotesBuildErr != nil {
		e.t.Fatalf("building relnotes: %v", relnotesBuildErr)
	}
}

func doBuildRelnotes() (string, error) {
	// Navigate from internal/testutil/ to the repo root.
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "relnotes-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "relnotes")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/relnotes")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building relnotes: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes a relnotes command in the isolated E2E environment.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(relnotesBinaryPath, args...)
	cmd.Dir = e.tempDir
	cmd.Env = e.buildIsolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	return result
}

func (e *E2EEnv) buildIsolatedEnv() []string {
	// HOME and XDG_CONFIG_HOME point into the temp directory so the
	// developer's user config and state never bleed into a test, and
	// no RELNOTES_* variable from the outer environment is carried over.
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + e.tempDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.tempDir, ".config"),
		"NO_COLOR=1",
	}

	safeVars := []string{
		"TERM",
		"LANG",
		"LC_ALL",
		"TMPDIR",
		"TMP",
		"TEMP",
	}

	for _, key := range safeVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return append(env, e.extraEnv...)
}

// SetEnv adds an environment variable to every subsequent Run call.
func (e *E2EEnv) SetEnv(key, value string) {
	e.extraEnv = append(e.extraEnv, key+"="+value)
}

// TempDir returns the root temp directory for this test environment.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// Path joins path elements onto the test project root.
func (e *E2EEnv) Path(elem ...string) string {
	return filepath.Join(append([]string{e.tempDir}, elem...)...)
}

// WriteFile writes a file relative to the test project root, creating
// parent directories as needed.
func (e *E2EEnv) WriteFile(rel, content string) {
	e.t.Helper()

	path := e.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", rel, err)
	}
}

// ReadFile reads a file relative to the test project root.
func (e *E2EEnv) ReadFile(rel string) string {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(rel))
	if err != nil {
		e.t.Fatalf("reading %s: %v", rel, err)
	}
	return string(content)
}

// FileExists reports whether a path relative to the project root exists.
func (e *E2EEnv) FileExists(rel string) bool {
	_, err := os.Stat(e.Path(rel))
	return err == nil
}
