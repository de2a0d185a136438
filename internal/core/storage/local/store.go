// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package local stores image files on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/taibuivan/yomira-image/internal/core/storage"
)

// Store keeps every file flat under a base directory as "<id>.<ext>".
type Store struct {
	basePath string
	urls     storage.URLBuilder
	logger   *slog.Logger
}

// NewStore creates the base directory if needed and returns a [Store].
func NewStore(basePath string, urls storage.URLBuilder, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("local: failed to create base directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath, urls: urls, logger: logger}, nil
}

// Name implements [storage.Backend].
func (s *Store) Name() string { return "local" }

// BasePath returns the directory files are written to.
func (s *Store) BasePath() string { return s.basePath }

// Upload implements [storage.Backend].
func (s *Store) Upload(ctx context.Context, data []byte, mimeType string) (storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return storage.Object{}, err
	}

	object := storage.Object{
		ID:        ulid.Make().String(),
		Extension: storage.Extension(mimeType),
	}
	filePath := s.path(storage.FileName(object.ID, object.Extension))

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return storage.Object{}, fmt.Errorf("local: failed to write %s: %w", filePath, err)
	}

	object.URL = s.URL(object.ID, object.Extension)
	s.logger.Debug("file_stored",
		slog.String("driver", s.Name()),
		slog.String("path", filePath),
		slog.Int("bytes", len(data)),
	)
	return object, nil
}

// GetFile implements [storage.Backend]. Only filename is consulted.
func (s *Store) GetFile(ctx context.Context, _ string, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(s.path(filename)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("local: failed to stat %s: %w", filename, err)
	}
	return nil
}

// RemoveFile implements [storage.Backend].
func (s *Store) RemoveFile(ctx context.Context, descriptor storage.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.path(descriptor.FileName())); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("local: failed to remove %s: %w", descriptor.FileName(), err)
	}
	return nil
}

// URL implements [storage.Backend].
func (s *Store) URL(id, extension string) string {
	return s.urls.Build(id, extension)
}

// path confines filename to the base directory.
func (s *Store) path(filename string) string {
	return filepath.Join(s.basePath, filepath.Base(filename))
}
