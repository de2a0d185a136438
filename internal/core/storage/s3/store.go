// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package s3 stores image files in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"github.com/taibuivan/yomira-image/internal/core/storage"
)

// API is the subset of [*s3.Client] the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures the bucket connection.
type Options struct {
	Bucket   string
	Region   string
	Endpoint string

	// Prefix is prepended to every object key and to the CDN path.
	Prefix string
}

// Store keeps files as "<prefix>/<id>.<ext>" objects.
type Store struct {
	client API
	bucket string
	prefix string
	urls   storage.URLBuilder
	logger *slog.Logger
}

// NewStore loads the default AWS credential chain and returns a [Store].
// A custom endpoint switches the client to path-style addressing for S3-compatible services.
func NewStore(ctx context.Context, opts Options, urls storage.URLBuilder, logger *slog.Logger) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("s3: unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewStoreWithClient(client, opts, urls, logger), nil
}

// NewStoreWithClient returns a [Store] backed by an existing client.
func NewStoreWithClient(client API, opts Options, urls storage.URLBuilder, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		urls:   urls,
		logger: logger,
	}
}

// Name implements [storage.Backend].
func (s *Store) Name() string { return "s3" }

// Upload implements [storage.Backend].
func (s *Store) Upload(ctx context.Context, data []byte, mimeType string) (storage.Object, error) {
	object := storage.Object{
		ID:        ulid.Make().String(),
		Extension: storage.Extension(mimeType),
	}
	key := s.key(storage.FileName(object.ID, object.Extension))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return storage.Object{}, fmt.Errorf("s3: failed to upload %s: %w", key, err)
	}

	object.URL = s.URL(object.ID, object.Extension)
	s.logger.Debug("file_stored",
		slog.String("driver", s.Name()),
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int("bytes", len(data)),
	)
	return object, nil
}

// GetFile implements [storage.Backend]. Only filename is consulted.
func (s *Store) GetFile(ctx context.Context, _ string, filename string) error {
	key := s.key(filename)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("s3: failed to head %s: %w", key, err)
	}
	return nil
}

// RemoveFile implements [storage.Backend].
//
// S3 deletes succeed for missing keys, so existence is checked first to
// report [storage.ErrNotFound] like the other drivers.
func (s *Store) RemoveFile(ctx context.Context, descriptor storage.Descriptor) error {
	if err := s.GetFile(ctx, "", descriptor.FileName()); err != nil {
		return err
	}

	key := s.key(descriptor.FileName())
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: failed to delete %s: %w", key, err)
	}
	return nil
}

// URL implements [storage.Backend].
func (s *Store) URL(id, extension string) string {
	return s.urls.Build(id, extension)
}

func (s *Store) key(filename string) string {
	filename = path.Base(filename)
	if s.prefix == "" {
		return filename
	}
	return s.prefix + "/" + filename
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
