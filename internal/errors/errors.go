package errors

import (
	"errors"
	"fmt"
)

// Project errors indicate issues with the project setup.
var (
	// ErrProjectAlreadyInitialized indicates buildenv.toml already exists.
	ErrProjectAlreadyInitialized = errors.New("project has already been initialized")
)

// Key errors indicate problems creating or reading key material.
var (
	// ErrKeyGeneration indicates the key pair could not be generated.
	// This points at an unusable cryptographic environment and is not retried.
	ErrKeyGeneration = errors.New("failed to generate key pair")

	// ErrInvalidKeyFormat indicates key material is malformed, not RSA, or too small.
	ErrInvalidKeyFormat = errors.New("invalid or unsupported key format")

	// ErrKeyExists indicates a key file already exists and would be overwritten.
	ErrKeyExists = errors.New("key file already exists")

	// ErrKeyNotSet indicates no private key was supplied by any source.
	ErrKeyNotSet = errors.New("no private key provided")
)

// Envelope errors indicate failures while opening an encrypted envelope.
var (
	// ErrMalformedEnvelope indicates the envelope JSON is structurally invalid.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrDecryptFailed indicates the envelope could not be decrypted.
	// Key unwrap and authentication failures both surface as this error.
	ErrDecryptFailed = errors.New("failed to decrypt envelope")

	// ErrInvalidEncoding indicates text is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")
)

// Storage errors indicate failures reading or writing envelope and key bytes.
var (
	// ErrIO is the generic failure of a storage collaborator.
	ErrIO = errors.New("storage I/O failure")

	// ErrResourceNotFound indicates the named resource does not exist.
	ErrResourceNotFound = fmt.Errorf("%w: resource not found", ErrIO)

	// ErrReadOnlyStorage indicates the storage backend does not accept writes.
	ErrReadOnlyStorage = errors.New("storage is read-only")

	// ErrUnsupportedLocation indicates a location with an unknown scheme.
	ErrUnsupportedLocation = errors.New("unsupported storage location")
)

// File errors indicate issues with input file discovery.
var (
	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")
)

// Input errors indicate invalid user input.
var (
	// ErrInvalidDateFormat indicates a date filter is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrKeyNotFound indicates a configuration key is absent from the loaded mapping.
	ErrKeyNotFound = errors.New("configuration key not found")
)
