package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// fakeS3 is an in-memory S3Client keyed by bucket/key.
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	err          error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3aws.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3aws.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3aws.HeadObjectInput, _ ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3aws.HeadObjectOutput{}, nil
}

func TestS3Storage_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()

	s, err := NewS3Storage(ctx, "configs", "/envs/prod/", Options{S3Client: fake})
	if err != nil {
		t.Fatalf("NewS3Storage failed: %v", err)
	}

	if err := s.Write(ctx, "build.env.json", []byte(envelopeJSON)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, ok := fake.objects["configs/envs/prod/build.env.json"]; !ok {
		t.Fatalf("expected object under prefix, have %v", fake.objects)
	}
	if ct := fake.contentTypes["configs/envs/prod/build.env.json"]; ct != "application/json" {
		t.Errorf("expected application/json content type, got %q", ct)
	}

	data, err := s.Read(ctx, "build.env.json")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != envelopeJSON {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestS3Storage_ContentType(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s, _ := NewS3Storage(ctx, "b", "", Options{S3Client: fake})

	if err := s.Write(ctx, "public_key.pem", []byte("pem")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ct := fake.contentTypes["b/public_key.pem"]; ct != "application/octet-stream" {
		t.Errorf("expected application/octet-stream, got %q", ct)
	}
}

func TestS3Storage_Missing(t *testing.T) {
	ctx := context.Background()
	s, _ := NewS3Storage(ctx, "b", "", Options{S3Client: newFakeS3()})

	_, err := s.Read(ctx, "missing.json")
	if !errors.Is(err, kerrors.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}

	ok, err := s.Exists(ctx, "missing.json")
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestS3Storage_Exists(t *testing.T) {
	ctx := context.Background()
	s, _ := NewS3Storage(ctx, "b", "p", Options{S3Client: newFakeS3()})

	if err := s.Write(ctx, "x.json", []byte("{}")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ok, err := s.Exists(ctx, "x.json")
	if err != nil || !ok {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}
}

func TestS3Storage_ErrorClassification(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		expected    error
		notExpected error
	}{
		{"NoSuchKey", &types.NoSuchKey{}, kerrors.ErrResourceNotFound, nil},
		{"NoSuchBucket", &types.NoSuchBucket{}, kerrors.ErrResourceNotFound, nil},
		{"GenericNotFound", &smithy.GenericAPIError{Code: "NotFound"}, kerrors.ErrResourceNotFound, nil},
		{"AccessDenied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}, kerrors.ErrIO, kerrors.ErrResourceNotFound},
		{"Network", errors.New("connection reset"), kerrors.ErrIO, kerrors.ErrResourceNotFound},
		{"Canceled", context.Canceled, context.Canceled, kerrors.ErrIO},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			fake := newFakeS3()
			fake.err = tc.err
			s, _ := NewS3Storage(ctx, "b", "", Options{S3Client: fake})

			_, err := s.Read(ctx, "x.json")
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
			if tc.notExpected != nil && errors.Is(err, tc.notExpected) {
				t.Errorf("did not expect %v, got %v", tc.notExpected, err)
			}

			_, existsErr := s.Exists(ctx, "x.json")
			if tc.expected == kerrors.ErrResourceNotFound {
				if existsErr != nil {
					t.Errorf("Exists should treat not-found as false, got %v", existsErr)
				}
			} else if existsErr == nil {
				t.Error("Exists should surface the error")
			}
		})
	}
}

func TestS3Storage_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	s, _ := NewS3Storage(ctx, "b", "prefix", Options{S3Client: newFakeS3()})

	if err := s.Write(ctx, "../other/x.json", []byte("{}")); err == nil {
		t.Error("expected Write to reject a name outside the prefix")
	}
}
