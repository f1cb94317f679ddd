package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

var _ Storage = (*FileStorage)(nil)

// FileStorage stores blobs as files under Root.
type FileStorage struct {
	Root string

	// Perm is the mode of newly written files.
	Perm fs.FileMode
}

// NewFileStorage returns a FileStorage rooted at root that writes 0644 files.
func NewFileStorage(root string) *FileStorage {
	return &FileStorage{Root: root, Perm: 0644}
}

func (s *FileStorage) path(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filepath.FromSlash(cleaned)), nil
}

// Read returns the contents of name.
func (s *FileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrResourceNotFound, p)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", kerrors.ErrIO, p, maxObjectSize)
	}

	return data, nil
}

// Write replaces name with data, creating parent directories as needed.
// The data is written to a temporary file first and renamed into place.
func (s *FileStorage) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0644
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}

	if err := os.Rename(tmpPath, p); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return nil
}

// Exists reports whether name is an existing file.
func (s *FileStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	p, err := s.path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return !info.IsDir(), nil
}
