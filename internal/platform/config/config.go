// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. An optional '.env' file
is loaded first through 'joho/godotenv' for local development.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/yomira-image/pkg/query"
)

// # Drivers

const (
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
	DatabaseMemory   = "memory"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// # Configuration Schema

// Config holds all runtime configuration for the image API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// ServiceName prefixes every scope in permission messages ("<name>-<env>:scope").
	ServiceName string `env:"SERVICE_NAME" envDefault:"yomira-image"`

	// Metadata persistence
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationPath  string `env:"MIGRATION_PATH"  envDefault:"./data/migrations"`
	MongoURL       string `env:"MONGO_URL"`
	MongoDatabase  string `env:"MONGO_DATABASE"  envDefault:"images"`

	// Key-Value Cache (Redis). Empty disables the listing cache.
	RedisURL        string        `env:"REDIS_URL"`
	ListingCacheTTL time.Duration `env:"LISTING_CACHE_TTL" envDefault:"60s"`

	// Authentication
	JWTPubKeyPath   string `env:"JWT_PUBLIC_KEY_PATH"`
	MasterTokenHash string `env:"MASTER_TOKEN_HASH"`
	AuthDisabled    bool   `env:"AUTH_DISABLED"  envDefault:"false"`
	AnonymousRead   bool   `env:"ANONYMOUS_READ" envDefault:"false"`

	// File storage
	StorageDriver   string `env:"STORAGE_DRIVER"    envDefault:"local"`
	StoragePath     string `env:"STORAGE_PATH"      envDefault:"./data/images"`
	CDNURL          string `env:"CDN_URL"`
	LocalServeFiles bool   `env:"LOCAL_SERVE_FILES" envDefault:"true"`
	LocalServePath  string `env:"LOCAL_SERVE_PATH"  envDefault:"/files"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"   envDefault:"http://localhost:8080"`

	// Object Storage (S3-compatible)
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION"   envDefault:"auto"`
	S3Endpoint string `env:"S3_ENDPOINT"`
	S3Prefix   string `env:"S3_PREFIX"`

	// Uploads
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"    envDefault:"15s"`

	// Cross-Origin Resource Sharing (comma-separated origins)
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the driver-specific requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DatabaseMongo:
		if c.MongoURL == "" {
			return errors.New("config: MONGO_URL is required for the mongo driver")
		}
	case DatabaseMemory:
	default:
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.StoragePath == "" {
			return errors.New("config: STORAGE_PATH is required for the local storage driver")
		}
		if !c.LocalServeFiles && c.CDNURL == "" {
			return errors.New("config: CDN_URL is required when LOCAL_SERVE_FILES is off")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required for the s3 storage driver")
		}
		if c.CDNURL == "" {
			return errors.New("config: CDN_URL is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Namespace returns the scope namespace, e.g. "yomira-image-production".
func (c *Config) Namespace() string {
	return c.ServiceName + "-" + c.Environment
}

// AllowedOrigins returns the CORS origins accepted outside development.
func (c *Config) AllowedOrigins() []string {
	return query.StringSlice(c.ExtraOrigins)
}
