package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/buildenv/internal/audit"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/PolarWolf314/buildenv/internal/secrets"
)

func TestBuild(t *testing.T) {
	settings, keys := setupProjectWithKeys(t)
	input := filepath.Join(settings.ProjectRoot, "build.env")
	writeTestFile(t, input, "DB_HOST=localhost\nDB_PORT=5432")

	result, err := Build(context.Background(), BuildOptions{Settings: settings})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expectedOutput := filepath.Join(settings.ProjectRoot, "public", "build.env.json")
	if len(result.Files) != 1 || result.Files[0].Input != input || result.Files[0].Output != expectedOutput {
		t.Fatalf("Unexpected result files: %+v", result.Files)
	}
	if result.Fingerprint != keys.Fingerprint {
		t.Errorf("Expected fingerprint %s, got %s", keys.Fingerprint, result.Fingerprint)
	}

	envelope, err := secrets.ParseEnvelope([]byte(readTestFile(t, expectedOutput)))
	if err != nil {
		t.Fatalf("Output is not a valid envelope: %v", err)
	}
	priv, err := secrets.ParsePrivateKey(readTestFile(t, keys.PrivateKeyPath))
	if err != nil {
		t.Fatalf("ParsePrivateKey failed: %v", err)
	}
	plaintext, err := secrets.Decrypt(envelope, priv)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plaintext != "DB_HOST=localhost\nDB_PORT=5432" {
		t.Errorf("Unexpected plaintext %q", plaintext)
	}

	entries, _ := audit.ReadEntries(settings.AuditLog)
	builds := audit.Filter(entries, audit.OpBuild)
	if len(builds) != 1 || len(builds[0].Files) != 1 || builds[0].Files[0] != "build.env" {
		t.Errorf("Expected one build audit entry for build.env, got %+v", builds)
	}
}

func TestBuild_DryRun(t *testing.T) {
	settings, _ := setupProjectWithKeys(t)
	writeTestFile(t, filepath.Join(settings.ProjectRoot, "build.env"), "A=1")

	result, err := Build(context.Background(), BuildOptions{Settings: settings, DryRun: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !result.DryRun || len(result.Files) != 1 {
		t.Fatalf("Unexpected dry-run result: %+v", result)
	}

	if _, err := os.Stat(result.Files[0].Output); !os.IsNotExist(err) {
		t.Error("Dry run must not write envelopes")
	}
	entries, _ := audit.ReadEntries(settings.AuditLog)
	if len(audit.Filter(entries, audit.OpBuild)) != 0 {
		t.Error("Dry run must not be audited as a build")
	}
}

func TestBuild_PatternsAndCollidingNames(t *testing.T) {
	settings, _ := setupProjectWithKeys(t)
	root := settings.ProjectRoot
	writeTestFile(t, filepath.Join(root, "apps", "web", "build.env"), "APP=web")
	writeTestFile(t, filepath.Join(root, "apps", "api", "build.env"), "APP=api")
	writeTestFile(t, filepath.Join(root, "apps", "api", "prod.env"), "APP=api-prod")

	result, err := Build(context.Background(), BuildOptions{
		Settings:     settings,
		FilePatterns: []string{"apps/**/*.env"},
		Output:       "dist",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("Expected 3 files, got %+v", result.Files)
	}

	expected := []string{
		filepath.Join(root, "dist", "apps", "web", "build.env.json"),
		filepath.Join(root, "dist", "apps", "api", "build.env.json"),
		filepath.Join(root, "dist", "prod.env.json"),
	}
	for _, path := range expected {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected envelope at %s: %v", path, err)
		}
	}
}

func TestBuild_MissingInput(t *testing.T) {
	settings, _ := setupProjectWithKeys(t)

	_, err := Build(context.Background(), BuildOptions{Settings: settings})
	if !errors.Is(err, kerrors.ErrFileNotFound) {
		t.Fatalf("Expected ErrFileNotFound, got: %v", err)
	}
}

func TestBuild_MissingPublicKey(t *testing.T) {
	settings := setupProject(t)
	writeTestFile(t, filepath.Join(settings.ProjectRoot, "build.env"), "A=1")

	_, err := Build(context.Background(), BuildOptions{Settings: settings})
	if !errors.Is(err, kerrors.ErrResourceNotFound) {
		t.Fatalf("Expected ErrResourceNotFound, got: %v", err)
	}
}

func TestBuild_InvalidPublicKey(t *testing.T) {
	settings := setupProject(t)
	writeTestFile(t, filepath.Join(settings.ProjectRoot, "build.env"), "A=1")
	writeTestFile(t, settings.PublicKeyPath, "not a key")

	_, err := Build(context.Background(), BuildOptions{Settings: settings})
	if !errors.Is(err, kerrors.ErrInvalidKeyFormat) {
		t.Fatalf("Expected ErrInvalidKeyFormat, got: %v", err)
	}
}

func TestBuild_InvalidUTF8(t *testing.T) {
	settings, _ := setupProjectWithKeys(t)
	writeTestFile(t, filepath.Join(settings.ProjectRoot, "build.env"), "A=\xff\xfe")

	_, err := Build(context.Background(), BuildOptions{Settings: settings})
	if !errors.Is(err, kerrors.ErrInvalidEncoding) {
		t.Fatalf("Expected ErrInvalidEncoding, got: %v", err)
	}
}

func TestBuild_CanceledContext(t *testing.T) {
	settings, _ := setupProjectWithKeys(t)
	writeTestFile(t, filepath.Join(settings.ProjectRoot, "build.env"), "A=1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Build(ctx, BuildOptions{Settings: settings}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
}

func TestEnvelopeNames(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "project")
	inputs := []string{
		filepath.Join(root, "build.env"),
		filepath.Join(root, "a", ".env"),
		filepath.Join(root, "b", ".env"),
	}

	names := envelopeNames(inputs, root)
	expected := []string{"build.env.json", "a/.env.json", "b/.env.json"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("envelopeNames[%d] = %q, expected %q", i, names[i], expected[i])
		}
	}
}
