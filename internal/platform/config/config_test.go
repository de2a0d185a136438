// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-image/internal/platform/config"
)

/*
TestLoad_Defaults verifies the defaults for a memory-backed local setup.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.StorageLocal, cfg.StorageDriver)
	assert.Equal(t, "/files", cfg.LocalServePath)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, "yomira-image-development", cfg.Namespace())
	assert.True(t, cfg.IsDevelopment())
}

/*
TestValidate_DriverRequirements checks the driver-specific rules.
*/
func TestValidate_DriverRequirements(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			DatabaseDriver:  config.DatabaseMemory,
			StorageDriver:   config.StorageLocal,
			StoragePath:     "./data/images",
			LocalServeFiles: true,
			MaxUploadBytes:  1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"valid_memory_local", func(*config.Config) {}, false},
		{"postgres_without_url", func(c *config.Config) { c.DatabaseDriver = config.DatabasePostgres }, true},
		{"mongo_without_url", func(c *config.Config) { c.DatabaseDriver = config.DatabaseMongo }, true},
		{"unknown_database", func(c *config.Config) { c.DatabaseDriver = "couch" }, true},
		{"s3_without_bucket", func(c *config.Config) { c.StorageDriver = config.StorageS3; c.CDNURL = "https://cdn" }, true},
		{"s3_without_cdn", func(c *config.Config) { c.StorageDriver = config.StorageS3; c.S3Bucket = "images" }, true},
		{"s3_complete", func(c *config.Config) {
			c.StorageDriver = config.StorageS3
			c.S3Bucket = "images"
			c.CDNURL = "https://cdn"
		}, false},
		{"local_without_serving_or_cdn", func(c *config.Config) { c.LocalServeFiles = false }, true},
		{"zero_upload_limit", func(c *config.Config) { c.MaxUploadBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
