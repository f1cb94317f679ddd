package workflows

import (
	"context"

	"github.com/PolarWolf314/buildenv/internal/audit"
	"github.com/PolarWolf314/buildenv/internal/configs"
	"github.com/PolarWolf314/buildenv/internal/envconfig"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
)

// LoadOptions configures the load workflow.
type LoadOptions struct {
	// Settings locate the envelope and private key. If nil, settings are loaded from the working directory.
	Settings *configs.Settings

	// Source is the envelope location. Defaults to Settings.Source.
	Source string

	// PrivateKeyData contains the private key bytes when reading from stdin.
	PrivateKeyData []byte

	// Store receives the mapping. If nil, a new store is created.
	Store *envconfig.Store

	Logger *logger.Logger
}

// LoadResult contains the outcome of a load operation.
type LoadResult struct {
	// Source is the resolved envelope location.
	Source string

	// Store holds the loaded mapping.
	Store *envconfig.Store

	// Mapping is the snapshot that was loaded into Store.
	Mapping *envconfig.Mapping
}

// Load decrypts the envelope at the source location, parses it and installs
// the mapping in the store. The store is only replaced on success.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	opened, err := openEnvelope(ctx, opts.Settings, opts.Source, opts.PrivateKeyData, opts.Logger)
	if err != nil {
		return nil, err
	}

	mapping := envconfig.Parse(opened.plaintext)

	store := opts.Store
	if store == nil {
		store = envconfig.NewStore()
	}
	store.Load(mapping)

	entry := audit.NewEntry(audit.OpLoad)
	entry.Source = opened.source
	entry.Fingerprint = fingerprint(opened.privateKey.Public())
	entry.KeysCount = mapping.Len()
	recordAudit(opened.settings, opts.Logger, entry)

	return &LoadResult{Source: opened.source, Store: store, Mapping: store.Snapshot()}, nil
}
