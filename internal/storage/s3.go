package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var _ Storage = (*S3Storage)(nil)

// S3Client is the subset of the S3 API used by S3Storage.
type S3Client interface {
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
}

// S3Storage stores blobs as objects under Prefix in Bucket.
// Works with AWS S3 and S3-compatible services through a custom endpoint.
type S3Storage struct {
	Bucket string
	Prefix string

	client S3Client
}

// NewS3Storage returns an S3Storage. Unless opts.S3Client is set, the client is
// built from the AWS default config chain, with static credentials when both are given.
func NewS3Storage(ctx context.Context, bucket, prefix string, opts Options) (*S3Storage, error) {
	client := opts.S3Client
	if client == nil {
		var awsOptions []func(*config.LoadOptions) error
		if opts.S3Region != "" {
			awsOptions = append(awsOptions, config.WithRegion(opts.S3Region))
		}
		if opts.S3AccessKeyID != "" && opts.S3SecretAccessKey != "" {
			awsOptions = append(awsOptions, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(opts.S3AccessKeyID, opts.S3SecretAccessKey, ""),
			))
		}

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
			if opts.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.S3Endpoint)
			}
			o.UsePathStyle = opts.S3PathStyle
		})
	}

	return &S3Storage{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		client: client,
	}, nil
}

func (s *S3Storage) key(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if s.Prefix == "" {
		return cleaned, nil
	}
	return path.Join(s.Prefix, cleaned), nil
}

// Read downloads the object for name.
func (s *S3Storage) Read(ctx context.Context, name string) ([]byte, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "get", s.location(key))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", kerrors.ErrIO, s.location(key), maxObjectSize)
	}
	return data, nil
}

// Write uploads data as the object for name.
func (s *S3Storage) Write(ctx context.Context, name string, data []byte) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	if strings.HasSuffix(key, ".json") {
		contentType = "application/json"
	}

	_, err = s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return classifyS3Error(err, "put", s.location(key))
	}
	return nil
}

// Exists checks for the object with HEAD.
func (s *S3Storage) Exists(ctx context.Context, name string) (bool, error) {
	key, err := s.key(name)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		classified := classifyS3Error(err, "head", s.location(key))
		if errors.Is(classified, kerrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, classified
	}
	return true, nil
}

func (s *S3Storage) location(key string) string {
	return "s3://" + s.Bucket + "/" + key
}

// classifyS3Error maps S3 errors onto the storage sentinels.
func classifyS3Error(err error, operation, location string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", kerrors.ErrResourceNotFound, location)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: bucket for %s", kerrors.ErrResourceNotFound, location)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %s", kerrors.ErrResourceNotFound, location)
		default:
			return fmt.Errorf("%w: %s %s failed (code: %s): %v", kerrors.ErrIO, operation, location, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%w: %s %s failed: %v", kerrors.ErrIO, operation, location, err)
}
