package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/PolarWolf314/buildenv/internal/secrets"
	"github.com/PolarWolf314/buildenv/internal/utils"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// Settings locate the envelope and private key. If nil, settings are loaded from the working directory.
	Settings *configs.Settings

	// Source is the envelope location: a path, http(s):// URL or s3:// object. Defaults to Settings.Source.
	Source string

	// PrivateKeyData contains the private key bytes when reading from stdin.
	// If nil, BUILDENV_PRIVATE_KEY and then the private key file are used.
	PrivateKeyData []byte

	Logger *logger.Logger
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// Source is the resolved envelope location.
	Source string

	// Plaintext is the recovered configuration text.
	Plaintext string
}

// Decrypt fetches the envelope at the source location and opens it with the private key.
//
// Returns ErrKeyNotSet if no private key source is available, ErrResourceNotFound
// or ErrIO if the envelope can't be fetched, ErrMalformedEnvelope for a
// structurally invalid envelope and ErrDecryptFailed if the key is wrong or the
// envelope was tampered with.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	opened, err := openEnvelope(ctx, opts.Settings, opts.Source, opts.PrivateKeyData, opts.Logger)
	if err != nil {
		return nil, err
	}

	entry := audit.NewEntry(audit.OpDecrypt)
	entry.Source = opened.source
	entry.Fingerprint = fingerprint(opened.privateKey.Public())
	recordAudit(opened.settings, opts.Logger, entry)

	return &DecryptResult{Source: opened.source, Plaintext: opened.plaintext}, nil
}

// openedEnvelope is an envelope that was fetched and decrypted.
type openedEnvelope struct {
	settings   *configs.Settings
	source     string
	privateKey *secrets.PrivateKey
	plaintext  string
}

// openEnvelope resolves the source location and private key, then fetches and
// decrypts the envelope. An empty source means settings.Source.
func openEnvelope(ctx context.Context, settings *configs.Settings, source string, keyData []byte, log *logger.Logger) (*openedEnvelope, error) {
	settings, err := settingsOrDefault(settings)
	if err != nil {
		return nil, err
	}

	if source == "" {
		source = settings.Source
	} else {
		source = utils.ResolvePath(settings.ProjectRoot, source)
	}

	sopts := storageOptions(settings, log)

	// Resolve the key first so a missing key fails before any network round trip.
	privateKey, err := loadPrivateKey(ctx, keyData, settings, sopts)
	if err != nil {
		return nil, err
	}

	data, err := readLocation(ctx, source, sopts)
	if err != nil {
		return nil, fmt.Errorf("reading envelope %s: %w", source, err)
	}

	plaintext, err := secrets.DecryptBytes(data, privateKey)
	if err != nil {
		return nil, fmt.Errorf("opening envelope %s: %w", source, err)
	}

	return &openedEnvelope{
		settings:   settings,
		source:     source,
		privateKey: privateKey,
		plaintext:  plaintext,
	}, nil
}
