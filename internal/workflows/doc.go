// Package workflows provides high-level orchestration for buildenv commands.
//
// Workflows coordinate multiple operations across packages (configs, secrets,
// storage, envconfig, audit) to implement complete user-facing features. Each
// workflow handles a single command's business logic, independent of CLI
// concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving inputs, keys and storage locations from the settings
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Init: Writes buildenv.toml and updates .gitignore
//   - Generate: Creates the RSA key pair
//   - Build: Encrypts env files into JSON envelopes
//   - Decrypt: Fetches and opens an envelope, returning the plaintext
//   - Load: Decrypt, then parse into a mapping installed in an envconfig.Store
//   - Log: Reads and filters the audit log
//   - Doctor: Runs health checks on keys, inputs and the source envelope
//
// # Private Key Resolution
//
// Decrypt and Load take the first private key source present:
//
//  1. PrivateKeyData (e.g. piped on stdin)
//  2. The BUILDENV_PRIVATE_KEY environment variable
//  3. The private key file from the settings
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	result, err := workflows.Load(ctx, opts)
//	if errors.Is(err, kerrors.ErrDecryptFailed) {
//	    // cannot recover configuration
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// This enables cancellation, timeouts, and passing request-scoped values.
package workflows
