package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

func TestInit(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	result, err := Init(context.Background(), InitOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if !configs.Exists(dir) {
		t.Fatal("Expected buildenv.toml to be written")
	}
	if result.ConfigPath != filepath.Join(dir, "buildenv.toml") {
		t.Errorf("Unexpected config path: %s", result.ConfigPath)
	}

	gitignore := readTestFile(t, filepath.Join(dir, ".gitignore"))
	for _, pattern := range []string{"private_key", "build.env"} {
		if !strings.Contains(gitignore, pattern+"\n") {
			t.Errorf("Expected %q in .gitignore, got %q", pattern, gitignore)
		}
	}
	if len(result.GitignoreAdded) != 2 {
		t.Errorf("Expected 2 patterns added, got %v", result.GitignoreAdded)
	}
}

func TestInit_AlreadyInitialized(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if _, err := Init(context.Background(), InitOptions{Dir: dir}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	_, err := Init(context.Background(), InitOptions{Dir: dir})
	if !errors.Is(err, kerrors.ErrProjectAlreadyInitialized) {
		t.Fatalf("Expected ErrProjectAlreadyInitialized, got: %v", err)
	}
}

func TestInit_KeepsExistingGitignore(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	gitignorePath := filepath.Join(dir, ".gitignore")
	writeTestFile(t, gitignorePath, "node_modules\n/private_key")

	result, err := Init(context.Background(), InitOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if len(result.GitignoreAdded) != 1 || result.GitignoreAdded[0] != "build.env" {
		t.Errorf("Expected only build.env to be added, got %v", result.GitignoreAdded)
	}

	gitignore := readTestFile(t, gitignorePath)
	if !strings.HasPrefix(gitignore, "node_modules\n/private_key\n") {
		t.Errorf("Existing .gitignore content was not preserved: %q", gitignore)
	}
}

func TestInit_SkipGitignore(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if _, err := Init(context.Background(), InitOptions{Dir: dir, SkipGitignore: true}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); !os.IsNotExist(err) {
		t.Error("Expected .gitignore to be left alone")
	}
}
