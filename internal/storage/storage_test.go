package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	opts := Options{S3Client: newFakeS3()}

	testCases := []struct {
		name         string
		location     string
		expectedType string
		expectedName string
	}{
		{"RelativePath", filepath.Join("public", "build.env.json"), "*storage.FileStorage", "build.env.json"},
		{"AbsolutePath", filepath.Join(string(filepath.Separator), "srv", "build.env.json"), "*storage.FileStorage", "build.env.json"},
		{"FileURL", "file:///srv/build.env.json", "*storage.FileStorage", "build.env.json"},
		{"HTTPS", "https://cdn.example.com/cfg/build.env.json?sig=abc", "*storage.HTTPStorage", "https://cdn.example.com/cfg/build.env.json?sig=abc"},
		{"HTTP", "http://localhost:8080/build.env.json", "*storage.HTTPStorage", "http://localhost:8080/build.env.json"},
		{"S3", "s3://bucket/configs/build.env.json", "*storage.S3Storage", "configs/build.env.json"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, name, err := Open(ctx, tc.location, opts)
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", tc.location, err)
			}
			if got := typeName(s); got != tc.expectedType {
				t.Errorf("expected %s, got %s", tc.expectedType, got)
			}
			if name != tc.expectedName {
				t.Errorf("expected name %q, got %q", tc.expectedName, name)
			}
		})
	}
}

func TestOpen_Unsupported(t *testing.T) {
	ctx := context.Background()
	opts := Options{S3Client: newFakeS3()}

	for _, location := range []string{"ftp://host/x.json", "gs://bucket/x.json", "s3://bucket", "s3:///key"} {
		t.Run(location, func(t *testing.T) {
			_, _, err := Open(ctx, location, opts)
			if !errors.Is(err, kerrors.ErrUnsupportedLocation) {
				t.Errorf("expected ErrUnsupportedLocation, got %v", err)
			}
		})
	}
}

func TestOpenDir(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()

	s, err := OpenDir(ctx, "s3://bucket/envs/prod/", Options{S3Client: fake})
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	s3s, ok := s.(*S3Storage)
	if !ok {
		t.Fatalf("expected *S3Storage, got %s", typeName(s))
	}
	if s3s.Bucket != "bucket" || s3s.Prefix != "envs/prod" {
		t.Errorf("unexpected bucket/prefix: %q %q", s3s.Bucket, s3s.Prefix)
	}

	dir := t.TempDir()
	s, err = OpenDir(ctx, dir, Options{})
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}
	if fs, ok := s.(*FileStorage); !ok || fs.Root != dir {
		t.Errorf("expected FileStorage rooted at %s, got %#v", dir, s)
	}

	if _, err := OpenDir(ctx, "ftp://host/dir", Options{}); !errors.Is(err, kerrors.ErrUnsupportedLocation) {
		t.Errorf("expected ErrUnsupportedLocation, got %v", err)
	}
}

func TestCleanName(t *testing.T) {
	valid := map[string]string{
		"build.env.json":          "build.env.json",
		"/build.env.json":         "build.env.json",
		"apps/web/build.env.json": "apps/web/build.env.json",
		"./a//b.json":             "a/b.json",
	}
	for input, expected := range valid {
		got, err := cleanName(input)
		if err != nil {
			t.Errorf("cleanName(%q) failed: %v", input, err)
			continue
		}
		if got != expected {
			t.Errorf("cleanName(%q) = %q, expected %q", input, got, expected)
		}
	}

	for _, input := range []string{"", "/", "..", "../secret", "a/../../b"} {
		if _, err := cleanName(input); err == nil {
			t.Errorf("cleanName(%q) should fail", input)
		}
	}
}

func typeName(s Storage) string {
	switch s.(type) {
	case *FileStorage:
		return "*storage.FileStorage"
	case *HTTPStorage:
		return "*storage.HTTPStorage"
	case *S3Storage:
		return "*storage.S3Storage"
	default:
		return "unknown"
	}
}
