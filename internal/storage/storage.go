package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	logger "github.com/PolarWolf314/buildenv/internal/logging"
)

// maxObjectSize bounds how much is read from any backend. Envelopes are small.
const maxObjectSize = 16 << 20

// Storage reads and writes named byte blobs. Names are relative to the storage root.
type Storage interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
}

// Options configure the backends created by Open and OpenDir.
type Options struct {
	HTTPTimeout time.Duration
	HTTPRetries int

	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3Client replaces the client built from the AWS default config.
	S3Client S3Client

	// Logger receives HTTP retry logs. Nil discards them.
	Logger *logger.Logger
}

// Open returns a storage holding the object at location and the object's name within it.
//
// Supported locations are local paths, file://, http(s):// and s3://bucket/key.
func Open(ctx context.Context, location string, opts Options) (Storage, string, error) {
	scheme, rest := splitScheme(location)

	switch scheme {
	case "":
		return NewFileStorage(filepath.Dir(location)), filepath.Base(location), nil
	case "file":
		return NewFileStorage(filepath.Dir(rest)), filepath.Base(rest), nil
	case "http", "https":
		// The full URL is the name so query strings (e.g. presigned URLs) survive.
		return NewHTTPStorage("", opts), location, nil
	case "s3":
		bucket, key := splitBucket(rest)
		if bucket == "" || key == "" {
			return nil, "", fmt.Errorf("%w: %s needs a bucket and a key", kerrors.ErrUnsupportedLocation, location)
		}
		s, err := NewS3Storage(ctx, bucket, "", opts)
		if err != nil {
			return nil, "", err
		}
		return s, key, nil
	default:
		return nil, "", fmt.Errorf("%w: %s", kerrors.ErrUnsupportedLocation, location)
	}
}

// OpenDir returns a storage rooted at the directory, URL prefix or bucket prefix named by location.
func OpenDir(ctx context.Context, location string, opts Options) (Storage, error) {
	scheme, rest := splitScheme(location)

	switch scheme {
	case "":
		return NewFileStorage(location), nil
	case "file":
		return NewFileStorage(rest), nil
	case "http", "https":
		return NewHTTPStorage(strings.TrimSuffix(location, "/"), opts), nil
	case "s3":
		bucket, prefix := splitBucket(rest)
		if bucket == "" {
			return nil, fmt.Errorf("%w: %s needs a bucket", kerrors.ErrUnsupportedLocation, location)
		}
		return NewS3Storage(ctx, bucket, prefix, opts)
	default:
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnsupportedLocation, location)
	}
}

func splitScheme(location string) (string, string) {
	u, err := url.Parse(location)
	// Single letter schemes are Windows drive letters.
	if err != nil || len(u.Scheme) < 2 || !strings.Contains(location, "://") {
		return "", location
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme, location[len(u.Scheme)+len("://"):]
}

func splitBucket(rest string) (bucket, key string) {
	bucket, key, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(path.Clean("/"+key), "/")
}

// cleanName rejects names that would escape the storage root.
func cleanName(name string) (string, error) {
	slashed := filepath.ToSlash(name)
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: invalid name %q", kerrors.ErrIO, name)
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty name", kerrors.ErrIO)
	}
	return cleaned, nil
}
