package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectFileName marks the root of a buildenv project.
const ProjectFileName = "buildenv.toml"

// FindProjectRoot walks up from dir looking for buildenv.toml.
// Returns the directory containing it, or an empty string if none was found.
func FindProjectRoot(dir string) (string, error) {
	currentDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		marker := filepath.Join(currentDir, ProjectFileName)
		fileInfo, err := os.Stat(marker)
		// No error means the path exists
		if err == nil {
			if !fileInfo.IsDir() {
				return currentDir, nil
			}
		} else if !os.IsNotExist(err) {
			// Return any error that's not "file not found" (like permission issues)
			return "", fmt.Errorf("error checking for %s at %s: %w", ProjectFileName, currentDir, err)
		}

		parentDir := filepath.Dir(currentDir)

		// Reached the filesystem root without finding a project file.
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}

// ResolvePath makes p absolute relative to base. Absolute paths and URLs with a scheme are returned unchanged.
func ResolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || HasScheme(p) {
		return p
	}
	return filepath.Join(base, p)
}
