// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for setting up test projects,
// running the CLI and capturing its output.
package shared

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/buildenv/cmd"
	"github.com/PolarWolf314/buildenv/internal/configs"
)

// SetupTestEnvironment changes into a fresh temporary project directory and
// clears BUILDENV_* variables. Everything is restored when the test ends.
func SetupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	// Resolve symlinks so paths match what the CLI reports (/tmp is a link on macOS).
	tempDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp directory: %v", err)
	}

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, configs.EnvPrefix) {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		cmd.ResetGlobalState()
	})

	return tempDir
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	stdout, stderr, err := CaptureStreams(fn)
	return stdout + stderr, err
}

// CaptureStreams captures stdout and stderr separately during function execution.
func CaptureStreams(fn func() error) (string, string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	copyTo := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		out <- buf.String()
	}
	go copyTo(stdoutReader, stdoutChan)
	go copyTo(stderrReader, stderrChan)

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, err
}

// RunCLI executes the buildenv CLI with args and returns its combined output.
func RunCLI(args ...string) (string, error) {
	return CaptureOutput(func() error {
		return execute(args)
	})
}

// RunCLIStreams executes the buildenv CLI with args and returns stdout and stderr separately.
func RunCLIStreams(args ...string) (string, string, error) {
	return CaptureStreams(func() error {
		return execute(args)
	})
}

func execute(args []string) error {
	cmd.ResetGlobalState()
	cmd.RootCmd.SetArgs(args)
	return cmd.RootCmd.ExecuteContext(context.Background())
}

// WithStdin runs fn with content available on stdin.
func WithStdin(t *testing.T, content string, fn func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stdin")
	WriteFile(t, path, content)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open stdin file: %v", err)
	}
	defer f.Close()

	original := os.Stdin
	os.Stdin = f
	defer func() { os.Stdin = original }()

	fn()
}

// InitializeProject runs init and generate in the current directory.
func InitializeProject(t *testing.T) {
	t.Helper()
	for _, args := range [][]string{{"init"}, {"generate"}} {
		if output, err := RunCLI(args...); err != nil {
			t.Fatalf("buildenv %s failed: %v\n%s", args[0], err, output)
		}
	}
}

// BuildProject initializes a project, writes build.env with content and encrypts it.
func BuildProject(t *testing.T, content string) {
	t.Helper()
	InitializeProject(t)
	WriteFile(t, "build.env", content)
	if output, err := RunCLI("build"); err != nil {
		t.Fatalf("buildenv build failed: %v\n%s", err, output)
	}
}

// WriteFile writes content to path, creating parent directories.
// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
