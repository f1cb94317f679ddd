package get_test

import (
	"strings"
	"testing"

	"github.com/PolarWolf314/buildenv/test/integration/shared"
)

// TestGetIntegration contains integration tests for the `buildenv get` command.
func TestGetIntegration(t *testing.T) {
	t.Run("GetValue", testGetValue)
	t.Run("GetValueVerbose", testGetValueVerbose)
	t.Run("GetMissingKey", testGetMissingKey)
	t.Run("GetDefault", testGetDefault)
	t.Run("GetEmptyDefault", testGetEmptyDefault)
	t.Run("GetParsingRules", testGetParsingRules)
}

func testGetValue(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "DB_HOST=localhost\nDB_PORT=5432")

	stdout, stderr, err := shared.RunCLIStreams("get", "DB_PORT")
	if err != nil {
		t.Fatalf("Command failed: %v\n%s", err, stderr)
	}
	if stdout != "5432\n" {
		t.Errorf("Expected 5432, got %q", stdout)
	}
}

// Log lines must not end up in $(buildenv get KEY -v).
func testGetValueVerbose(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "DB_HOST=localhost\nDB_PORT=5432")

	for _, flag := range []string{"-v", "-d"} {
		stdout, stderr, err := shared.RunCLIStreams("get", "DB_PORT", flag)
		if err != nil {
			t.Fatalf("Command failed with %s: %v\n%s", flag, err, stderr)
		}
		if stdout != "5432\n" {
			t.Errorf("Expected only the value on stdout with %s, got %q", flag, stdout)
		}
		if !strings.Contains(stderr, "[info]") {
			t.Errorf("Expected log lines on stderr with %s, got %q", flag, stderr)
		}
	}
}

func testGetMissingKey(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "DB_HOST=localhost")

	stdout, stderr, err := shared.RunCLIStreams("get", "MISSING")
	if err == nil {
		t.Fatal("Expected get to fail for a missing key")
	}
	if stdout != "" {
		t.Errorf("Expected nothing on stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "MISSING") {
		t.Errorf("Expected the key name in the error, got: %s", stderr)
	}
}

func testGetDefault(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "DB_HOST=localhost")

	stdout, _, err := shared.RunCLIStreams("get", "LOG_LEVEL", "--default", "info")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if stdout != "info\n" {
		t.Errorf("Expected default value, got %q", stdout)
	}

	// A present key ignores the default.
	stdout, _, err = shared.RunCLIStreams("get", "DB_HOST", "--default", "other")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if stdout != "localhost\n" {
		t.Errorf("Expected stored value, got %q", stdout)
	}
}

func testGetEmptyDefault(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "A=1")

	stdout, _, err := shared.RunCLIStreams("get", "B", "--default", "")
	if err != nil {
		t.Fatalf("Expected an explicit empty default to succeed: %v", err)
	}
	if stdout != "\n" {
		t.Errorf("Expected an empty line, got %q", stdout)
	}

	// The flag state from the previous run must not leak.
	if _, _, err := shared.RunCLIStreams("get", "B"); err == nil {
		t.Error("Expected get without --default to fail")
	}
}

func testGetParsingRules(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, "# comment\n\n  SPACED  =  value with spaces  \nURL=https://x.example/?a=b=c\nDUP=first\nDUP=second\nnot a pair\n")

	tests := []struct {
		key      string
		expected string
	}{
		{"SPACED", "value with spaces"},
		{"URL", "https://x.example/?a=b=c"},
		{"DUP", "second"},
	}

	for _, tt := range tests {
		stdout, stderr, err := shared.RunCLIStreams("get", tt.key)
		if err != nil {
			t.Errorf("get %s failed: %v\n%s", tt.key, err, stderr)
			continue
		}
		if stdout != tt.expected+"\n" {
			t.Errorf("get %s = %q, want %q", tt.key, stdout, tt.expected)
		}
	}
}
