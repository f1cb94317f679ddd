// Package errors provides typed error values for buildenv.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Project errors: project setup (ErrProjectAlreadyInitialized)
//   - Key errors: key generation and parsing (ErrKeyGeneration, ErrInvalidKeyFormat)
//   - Envelope errors: opening an envelope (ErrMalformedEnvelope, ErrDecryptFailed)
//   - Storage errors: reading and writing bytes (ErrIO, ErrResourceNotFound)
//   - File errors: input discovery (ErrNoFilesFound, ErrFileNotFound)
//   - Input errors: bad flags or lookups (ErrInvalidDateFormat, ErrKeyNotFound)
//
// ErrDecryptFailed deliberately covers both a failed key unwrap and a failed
// authentication tag. Callers cannot tell the two apart.
//
// ErrResourceNotFound wraps ErrIO, so errors.Is(err, ErrIO) holds for it too.
//
// # Usage
//
//	plaintext, err := secrets.DecryptBytes(data, privateKey)
//	if errors.Is(err, kerrors.ErrDecryptFailed) {
//	    // cannot recover configuration
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("reading envelope %s: %w", name, errors.ErrIO)
package errors
