package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// skippedDirs are never searched when expanding directories or globs.
var skippedDirs = map[string]bool{
	".buildenv":    true,
	".git":         true,
	"node_modules": true,
}

// ResolveFiles takes user-provided paths, directories and globs and returns matching files.
//
// Literal file paths are returned as-is. Directories and globs (with ** support)
// only yield files that look like env files (see IsEnvFile).
// Returns ErrNoFilesFound if nothing matched and ErrFileNotFound for a missing literal path.
// Empty patterns return nil so the caller can fall back to its default input.
func ResolveFiles(patterns []string, projectPath string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	var files []string
	seen := make(map[string]bool) // Deduplicate.

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, projectPath)
		if err != nil {
			return nil, err
		}

		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}

	return files, nil
}

func resolvePattern(pattern string, projectPath string) ([]string, error) {
	absPattern := ResolvePath(projectPath, pattern)

	info, err := os.Stat(absPattern)
	if err == nil && info.IsDir() {
		return findFilesInDir(absPattern)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern)
	}

	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, pattern)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", pattern, err)
	}

	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if inSkippedDir(m) || !IsEnvFile(m) {
			continue
		}
		filtered = append(filtered, m)
	}

	return filtered, nil
}

func findFilesInDir(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && IsEnvFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// IsEnvFile reports whether path looks like a plaintext env file: build.env, .env, .env.production.
// Encrypted outputs (*.json) are never env files.
func IsEnvFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".json") {
		return false
	}
	return strings.HasSuffix(base, ".env") || strings.HasPrefix(base, ".env")
}

func inSkippedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if skippedDirs[part] {
			return true
		}
	}
	return false
}

// EnvelopeName returns the output name for an encrypted input file: build.env -> build.env.json.
func EnvelopeName(inputPath string) string {
	return filepath.Base(inputPath) + ".json"
}
