// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present, so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, catalog, providers) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/espy/pkg/query"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Espy services.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Document store backend: "postgres" or "memory"
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL) backing the document store
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./internal/platform/migration/sql"`

	// Read-through document cache (Redis). Empty disables caching.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"6h"`

	// Primary catalog (IGDB)
	IGDBClientID    string  `env:"IGDB_CLIENT_ID,required,notEmpty"`
	IGDBToken       string  `env:"IGDB_TOKEN,required,notEmpty"`
	IGDBBaseURL     string  `env:"IGDB_BASE_URL"    envDefault:"https://api.igdb.com/v4"`
	IGDBRate        float64 `env:"IGDB_QPS"         envDefault:"4"`
	IGDBConcurrency int64   `env:"IGDB_CONCURRENCY" envDefault:"6"`

	// Secondary providers
	SteamAPIKey       string        `env:"STEAM_API_KEY"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
	MetacriticEnabled bool          `env:"METACRITIC_ENABLED" envDefault:"true"`

	// Operator credentials guarding write routes. Both empty leaves them open.
	JWTPrivKeyPath     string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath      string `env:"JWT_PUBLIC_KEY_PATH"`
	OperatorAPIKeyHash string `env:"OPERATOR_API_KEY_HASH"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env is the normal case outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field rules that struct tags cannot express.
func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.IGDBRate <= 0 || c.IGDBConcurrency <= 0 {
		return fmt.Errorf("config: IGDB_QPS and IGDB_CONCURRENCY must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// AllowsOrigin reports whether browsers at origin may call the API. Every
// origin is allowed in development. Otherwise espy.app hosts and the
// comma-separated EXTRA_ORIGINS are.
func (c *Config) AllowsOrigin(origin string) bool {
	if c.IsDevelopment() || strings.HasSuffix(origin, ".espy.app") || origin == "https://espy.app" {
		return true
	}
	return slices.Contains(query.StringSlice(c.ExtraOrigins), origin)
}

// OperatorAuthEnabled reports whether any operator credential is configured.
func (c *Config) OperatorAuthEnabled() bool {
	return c.JWTPubKeyPath != "" || c.OperatorAPIKeyHash != ""
}
