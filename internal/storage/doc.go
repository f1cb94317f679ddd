// Package storage reads and writes envelopes and keys on local disk, over HTTP(S) and in S3.
//
// Open resolves a location naming a single object:
//
//	s, name, err := storage.Open(ctx, "s3://bucket/envs/build.env.json", opts)
//	data, err := s.Read(ctx, name)
//
// OpenDir resolves a directory or prefix that several objects are written to.
//
// HTTP storage is read-only and retries transient failures. A missing object
// is reported as errors.ErrResourceNotFound on every backend.
package storage
