package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/PolarWolf314/buildenv/internal/secrets"
	"github.com/PolarWolf314/buildenv/internal/storage"
)

// GenerateOptions configures the generate workflow.
type GenerateOptions struct {
	// Settings locate the key files. If nil, settings are loaded from the working directory.
	Settings *configs.Settings

	// Force overwrites existing key files.
	Force bool

	Logger *logger.Logger
}

// GenerateResult contains the outcome of a generate operation.
type GenerateResult struct {
	// PrivateKeyPath is where the base64 private key was written (mode 0600).
	PrivateKeyPath string

	// PublicKeyPath is where the PEM public key was written (mode 0644).
	PublicKeyPath string

	// Fingerprint identifies the new public key.
	Fingerprint string

	// Overwrote is true when existing key files were replaced.
	Overwrote bool
}

// Generate creates a new key pair and writes both halves to disk.
//
// Returns ErrKeyExists if either key file exists and Force is not set.
// Returns ErrKeyGeneration if the key pair cannot be generated.
func Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	settings, err := settingsOrDefault(opts.Settings)
	if err != nil {
		return nil, err
	}

	privateStore := &storage.FileStorage{Root: filepath.Dir(settings.PrivateKeyPath), Perm: 0600}
	privateName := filepath.Base(settings.PrivateKeyPath)
	publicStore := &storage.FileStorage{Root: filepath.Dir(settings.PublicKeyPath), Perm: 0644}
	publicName := filepath.Base(settings.PublicKeyPath)

	overwrote := false
	for _, existing := range []struct {
		store *storage.FileStorage
		name  string
		path  string
	}{
		{privateStore, privateName, settings.PrivateKeyPath},
		{publicStore, publicName, settings.PublicKeyPath},
	} {
		exists, err := existing.store.Exists(ctx, existing.name)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", existing.path, err)
		}
		if exists && !opts.Force {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyExists, existing.path)
		}
		overwrote = overwrote || exists
	}

	keyPair, err := secrets.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	// Both halves are staged first so a failed write leaves the previous pair untouched.
	privatePending, err := stageFile(ctx, privateStore, privateName, []byte(keyPair.PrivateKey+"\n"))
	if err != nil {
		return nil, fmt.Errorf("writing private key: %w", err)
	}
	defer os.Remove(privatePending)

	publicPending, err := stageFile(ctx, publicStore, publicName, []byte(keyPair.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("writing public key: %w", err)
	}
	defer os.Remove(publicPending)

	if err := os.Rename(publicPending, settings.PublicKeyPath); err != nil {
		return nil, fmt.Errorf("%w: installing public key: %v", kerrors.ErrIO, err)
	}
	if err := os.Rename(privatePending, settings.PrivateKeyPath); err != nil {
		return nil, fmt.Errorf("%w: installing private key: %v", kerrors.ErrIO, err)
	}

	pub, err := secrets.ParsePublicKey([]byte(keyPair.PublicKey))
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		PrivateKeyPath: settings.PrivateKeyPath,
		PublicKeyPath:  settings.PublicKeyPath,
		Fingerprint:    fingerprint(pub),
		Overwrote:      overwrote,
	}

	entry := audit.NewEntry(audit.OpGenerate)
	entry.Output = settings.PublicKeyPath
	entry.Fingerprint = result.Fingerprint
	recordAudit(settings, opts.Logger, entry)

	return result, nil
}

// stageFile writes data to a hidden pending file beside name and returns its path.
func stageFile(ctx context.Context, store *storage.FileStorage, name string, data []byte) (string, error) {
	pending := "." + name + ".pending"
	if err := store.Write(ctx, pending, data); err != nil {
		return "", err
	}
	return filepath.Join(store.Root, pending), nil
}
