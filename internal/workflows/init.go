package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Dir is the project directory. Defaults to the working directory.
	Dir string

	// SkipGitignore leaves .gitignore untouched.
	SkipGitignore bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// ConfigPath is the buildenv.toml that was written.
	ConfigPath string

	// GitignoreAdded lists the patterns appended to .gitignore.
	GitignoreAdded []string
}

// Init writes a buildenv.toml with the default settings and makes sure the
// private key and plaintext inputs are ignored by git.
//
// Returns ErrProjectAlreadyInitialized if buildenv.toml already exists in Dir.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	if configs.Exists(dir) {
		return nil, kerrors.ErrProjectAlreadyInitialized
	}

	defaults := configs.Defaults()
	configPath, err := configs.Save(dir, defaults)
	if err != nil {
		return nil, err
	}

	result := &InitResult{ConfigPath: configPath}
	if opts.SkipGitignore {
		return result, nil
	}

	patterns := append([]string{defaults.PrivateKeyPath}, defaults.Input...)
	added, err := ensureGitignored(filepath.Join(dir, ".gitignore"), patterns)
	if err != nil {
		return nil, fmt.Errorf("updating .gitignore: %w", err)
	}
	result.GitignoreAdded = added

	return result, nil
}

// ensureGitignored appends the patterns missing from the .gitignore at path.
func ensureGitignored(path string, patterns []string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		present[strings.TrimPrefix(line, "/")] = true
	}

	var missing []string
	for _, p := range patterns {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	var b strings.Builder
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("# buildenv\n")
	for _, p := range missing {
		b.WriteString(p)
		b.WriteString("\n")
	}

	// #nosec G302 -- .gitignore is committed and world readable by convention.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return nil, err
	}
	return missing, nil
}
