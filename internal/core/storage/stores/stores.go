// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package stores selects the storage backend named by the configuration.
package stores

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/yomira-image/internal/core/storage"
	"github.com/taibuivan/yomira-image/internal/core/storage/local"
	"github.com/taibuivan/yomira-image/internal/core/storage/s3"
	"github.com/taibuivan/yomira-image/internal/platform/config"
)

// URLBuilder derives the public URL layout from the configuration.
func URLBuilder(cfg *config.Config) storage.URLBuilder {
	builder := storage.URLBuilder{
		CDNURL:    cfg.CDNURL,
		BaseURL:   cfg.PublicBaseURL,
		ServePath: cfg.LocalServePath,
	}

	switch cfg.StorageDriver {
	case config.StorageS3:
		builder.PathPrefix = cfg.S3Prefix
	default:
		builder.ServeLocal = cfg.LocalServeFiles
	}

	return builder
}

// New returns the backend for cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Backend, error) {
	urls := URLBuilder(cfg)

	var (
		backend storage.Backend
		err     error
	)

	switch cfg.StorageDriver {
	case config.StorageLocal:
		backend, err = local.NewStore(cfg.StoragePath, urls, logger)
	case config.StorageS3:
		backend, err = s3.NewStore(ctx, s3.Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		}, urls, logger)
	default:
		return nil, fmt.Errorf("stores: unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("storage_backend_selected",
		slog.String("driver", backend.Name()),
		slog.String("sample_url", urls.Build("{id}", "{ext}")),
	)

	return backend, nil
}
