package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
	"github.com/PolarWolf314/buildenv/internal/secrets"
	"github.com/PolarWolf314/buildenv/internal/storage"
)

// storageOptions maps the settings onto the storage backends.
func storageOptions(settings *configs.Settings, log *logger.Logger) storage.Options {
	return storage.Options{
		HTTPTimeout:       settings.HTTPTimeout,
		HTTPRetries:       settings.HTTPRetries,
		S3Region:          settings.S3Region,
		S3Endpoint:        settings.S3Endpoint,
		S3PathStyle:       settings.S3PathStyle,
		S3AccessKeyID:     settings.S3AccessKeyID,
		S3SecretAccessKey: settings.S3SecretAccessKey,
		Logger:            log,
	}
}

// readLocation reads the single object named by location from whichever backend serves it.
func readLocation(ctx context.Context, location string, opts storage.Options) ([]byte, error) {
	store, name, err := storage.Open(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	return store.Read(ctx, name)
}

// loadPublicKey reads and parses the public key at location.
func loadPublicKey(ctx context.Context, location string, opts storage.Options) (*secrets.PublicKey, error) {
	data, err := readLocation(ctx, location, opts)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", location, err)
	}

	pub, err := secrets.ParsePublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", location, err)
	}
	return pub, nil
}

// loadPrivateKey resolves the private key. The first source present wins:
// explicit bytes (e.g. piped on stdin), BUILDENV_PRIVATE_KEY, then the key file.
func loadPrivateKey(ctx context.Context, keyData []byte, settings *configs.Settings, opts storage.Options) (*secrets.PrivateKey, error) {
	if len(keyData) > 0 {
		key, err := secrets.ParsePrivateKey(string(keyData))
		if err != nil {
			return nil, fmt.Errorf("parsing private key from stdin: %w", err)
		}
		return key, nil
	}

	if settings.PrivateKey != "" {
		key, err := secrets.ParsePrivateKey(settings.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("parsing %sPRIVATE_KEY: %w", configs.EnvPrefix, err)
		}
		return key, nil
	}

	if settings.PrivateKeyPath == "" {
		return nil, kerrors.ErrKeyNotSet
	}

	data, err := readLocation(ctx, settings.PrivateKeyPath, opts)
	if err != nil {
		if errors.Is(err, kerrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: %s does not exist and %sPRIVATE_KEY is not set", kerrors.ErrKeyNotSet, settings.PrivateKeyPath, configs.EnvPrefix)
		}
		return nil, fmt.Errorf("reading private key %s: %w", settings.PrivateKeyPath, err)
	}

	key, err := secrets.ParsePrivateKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", settings.PrivateKeyPath, err)
	}
	return key, nil
}

// fingerprint returns the key fingerprint, or an empty string if it can't be computed.
func fingerprint(pub *secrets.PublicKey) string {
	fp, err := secrets.Fingerprint(pub)
	if err != nil {
		return ""
	}
	return fp
}

// recordAudit appends entry to the audit log. Failures are only warned about.
func recordAudit(settings *configs.Settings, log *logger.Logger, entry audit.Entry) {
	if err := audit.Log(settings.AuditLog, entry); err != nil && log != nil {
		log.Warnf("Failed to write audit log: %v", err)
	}
}

// settingsOrDefault returns settings, or defaults rooted at the working directory.
func settingsOrDefault(settings *configs.Settings) (*configs.Settings, error) {
	if settings != nil {
		return settings, nil
	}
	return configs.Load(".")
}
