package show_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PolarWolf314/buildenv/test/integration/shared"
)

const content = "DB_HOST=db.internal.example\nDB_PORT=5432\nEMPTY=\n"

// TestShowIntegration contains integration tests for the `buildenv show` command.
func TestShowIntegration(t *testing.T) {
	t.Run("ShowMasksValues", testShowMasksValues)
	t.Run("ShowReveal", testShowReveal)
	t.Run("ShowJSON", testShowJSON)
}

func testShowMasksValues(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, content)

	stdout, stderr, err := shared.RunCLIStreams("show")
	if err != nil {
		t.Fatalf("Command failed: %v\n%s", err, stderr)
	}

	expected := "DB_HOST=*****************le\nDB_PORT=****\nEMPTY=\n"
	if stdout != expected {
		t.Errorf("Expected masked listing in file order:\n%s\ngot:\n%s", expected, stdout)
	}
}

func testShowReveal(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, content)

	stdout, _, err := shared.RunCLIStreams("show", "--reveal")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if stdout != content {
		t.Errorf("Expected clear listing, got:\n%s", stdout)
	}
}

func testShowJSON(t *testing.T) {
	shared.SetupTestEnvironment(t)
	shared.BuildProject(t, content)

	stdout, _, err := shared.RunCLIStreams("show", "--json", "--reveal")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(stdout), &values); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, stdout)
	}
	if values["DB_PORT"] != "5432" || len(values) != 3 {
		t.Errorf("Unexpected values: %v", values)
	}
	if strings.Contains(stdout, "****") {
		t.Error("Values were masked despite --reveal")
	}
}
