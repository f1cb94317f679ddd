package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/PolarWolf314/buildenv/internal/secrets"
	"github.com/PolarWolf314/buildenv/internal/storage"
	"github.com/PolarWolf314/buildenv/internal/utils"
	"golang.org/x/sync/errgroup"
)

// maxParallelBuilds bounds how many files are encrypted and uploaded at once.
const maxParallelBuilds = 4

// BuildOptions configures the build workflow.
type BuildOptions struct {
	// Settings supply defaults for everything below. If nil, settings are loaded from the working directory.
	Settings *configs.Settings

	// FilePatterns specifies files, directories or globs to encrypt. If empty, Settings.Input is used.
	FilePatterns []string

	// Output is the directory, https:// or s3:// prefix envelopes are written to. Defaults to Settings.Output.
	Output string

	// PublicKey is the location of the recipient's public key. Defaults to Settings.PublicKeyPath.
	PublicKey string

	// DryRun resolves inputs and outputs without encrypting or writing anything.
	DryRun bool

	Logger *logger.Logger
}

// BuiltFile pairs an input file with the envelope written for it.
type BuiltFile struct {
	Input  string
	Output string
}

// BuildResult contains the outcome of a build operation.
type BuildResult struct {
	Files []BuiltFile

	// Output is the resolved output location.
	Output string

	// Fingerprint identifies the public key the envelopes were sealed for.
	Fingerprint string

	// DryRun indicates whether this was a dry-run (nothing written).
	DryRun bool
}

// Build encrypts each input file into an envelope named <file>.json under the output location.
//
// Files are read and encrypted concurrently; the first failure cancels the rest.
// Returns ErrNoFilesFound or ErrFileNotFound when inputs can't be resolved,
// ErrInvalidKeyFormat for a bad public key, and ErrInvalidEncoding for a non UTF-8 input.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	settings, err := settingsOrDefault(opts.Settings)
	if err != nil {
		return nil, err
	}

	patterns := opts.FilePatterns
	if len(patterns) == 0 {
		patterns = settings.Input
	}

	inputs, err := utils.ResolveFiles(patterns, settings.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving file patterns: %w", err)
	}

	output := settings.Output
	if opts.Output != "" {
		output = utils.ResolvePath(settings.ProjectRoot, opts.Output)
	}
	publicKeyLocation := settings.PublicKeyPath
	if opts.PublicKey != "" {
		publicKeyLocation = utils.ResolvePath(settings.ProjectRoot, opts.PublicKey)
	}

	names := envelopeNames(inputs, settings.ProjectRoot)

	result := &BuildResult{
		Files:  make([]BuiltFile, len(inputs)),
		Output: output,
		DryRun: opts.DryRun,
	}
	for i, input := range inputs {
		result.Files[i] = BuiltFile{Input: input, Output: joinLocation(output, names[i])}
	}

	sopts := storageOptions(settings, opts.Logger)

	pub, err := loadPublicKey(ctx, publicKeyLocation, sopts)
	if err != nil {
		return nil, err
	}
	result.Fingerprint = fingerprint(pub)

	if opts.DryRun {
		return result, nil
	}

	out, err := storage.OpenDir(ctx, output, sopts)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelBuilds)

	for i, input := range inputs {
		input := input
		name := names[i]
		g.Go(func() error {
			return buildFile(gctx, input, name, pub, out, opts.Logger)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(audit.OpBuild)
	entry.Files = make([]string, len(inputs))
	for i, input := range inputs {
		entry.Files[i] = relativeTo(settings.ProjectRoot, input)
	}
	entry.Output = output
	entry.Fingerprint = result.Fingerprint
	recordAudit(settings, opts.Logger, entry)

	return result, nil
}

func buildFile(ctx context.Context, input, name string, pub *secrets.PublicKey, out storage.Storage, log *logger.Logger) error {
	plaintext, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	envelope, err := secrets.Encrypt(string(plaintext), pub)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", input, err)
	}

	data, err := envelope.Marshal()
	if err != nil {
		return fmt.Errorf("encoding envelope for %s: %w", input, err)
	}

	if err := out.Write(ctx, name, data); err != nil {
		return fmt.Errorf("writing envelope for %s: %w", input, err)
	}

	if log != nil {
		log.Debugf("Encrypted %s -> %s", input, name)
	}
	return nil
}

// envelopeNames picks output names: <base>.json, or the project relative path
// when several inputs share a base name.
func envelopeNames(inputs []string, projectRoot string) []string {
	counts := make(map[string]int)
	for _, input := range inputs {
		counts[utils.EnvelopeName(input)]++
	}

	names := make([]string, len(inputs))
	for i, input := range inputs {
		name := utils.EnvelopeName(input)
		if counts[name] > 1 {
			name = filepath.ToSlash(relativeTo(projectRoot, input)) + ".json"
		}
		names[i] = name
	}
	return names
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// joinLocation appends name to a directory or URL prefix for display.
func joinLocation(location, name string) string {
	if utils.HasScheme(location) {
		if location[len(location)-1] == '/' {
			return location + name
		}
		return location + "/" + name
	}
	return filepath.Join(location, filepath.FromSlash(name))
}
