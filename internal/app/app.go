// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app builds the object graph shared by the API server and the
operator CLI: document store, optional cache, catalog connection, secondary
providers and the core services.

Usage:

	application, err := app.New(ctx, cfg, log)
	if err != nil {
	    return err
	}
	defer application.Close()
*/
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/espy/internal/core/aggregate"
	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/reconciler"
	"github.com/taibuivan/espy/internal/core/resolver"
	"github.com/taibuivan/espy/internal/platform/config"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/internal/platform/middleware"
	"github.com/taibuivan/espy/internal/platform/migration"
	pgstore "github.com/taibuivan/espy/internal/platform/postgres"
	redisstore "github.com/taibuivan/espy/internal/platform/redis"
	"github.com/taibuivan/espy/internal/platform/sec"
	"github.com/taibuivan/espy/internal/provider/gog"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/internal/provider/metacritic"
	"github.com/taibuivan/espy/internal/provider/steam"
)

// App holds the wired services and the connections they own.
type App struct {
	Docs       docstore.Store
	Catalog    *igdb.Client
	Resolver   *resolver.Service
	Reconciler *reconciler.Service

	pool   *pgxpool.Pool
	cache  *redis.Client
	logger *slog.Logger
}

// New connects the backends and wires the services. Postgres migrations run
// before the store is used.
func New(context context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{logger: logger}

	// ── 1. Document Store ─────────────────────────────────────────────────
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			return nil, fmt.Errorf("app: run migrations: %w", err)
		}

		pool, err := pgstore.NewPool(context, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("app: connect to postgres: %w", err)
		}
		app.pool = pool
		app.Docs = docstore.NewPostgresStore(pool)
	default:
		logger.Warn("memory_store_enabled")
		app.Docs = docstore.NewMemoryStore()
	}

	// ── 2. Read-through Cache ─────────────────────────────────────────────
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(context, cfg.RedisURL, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("app: connect to redis: %w", err)
		}
		app.cache = client
		app.Docs = docstore.NewCachedStore(app.Docs, client, cfg.CacheTTL, logger)
	}

	// ── 3. Catalog ────────────────────────────────────────────────────────
	app.Catalog = igdb.NewClient(igdb.NewConnection(igdb.Options{
		BaseURL:     cfg.IGDBBaseURL,
		ClientID:    cfg.IGDBClientID,
		Token:       cfg.IGDBToken,
		QPS:         cfg.IGDBRate,
		Concurrency: cfg.IGDBConcurrency,
	}, logger))

	// ── 4. Secondary Providers ────────────────────────────────────────────
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	steamClient := steam.NewClient(steam.Options{APIKey: cfg.SteamAPIKey, HTTPClient: httpClient}, logger)
	providers := resolver.Providers{
		Steam: steamClient,
		Gog:   gog.NewClient(gog.Options{HTTPClient: httpClient}, logger),
	}
	if cfg.MetacriticEnabled {
		providers.Metacritic = metacritic.NewClient(metacritic.Options{HTTPClient: httpClient}, logger)
	}

	// ── 5. Core Services ──────────────────────────────────────────────────
	games := game.NewDocumentRepository(app.Docs)
	app.Resolver = resolver.NewService(app.Catalog, app.Docs, providers, aggregate.NewUpdater(games, logger), logger)

	var library reconciler.Library
	if cfg.SteamAPIKey != "" {
		library = steamClient
	}
	app.Reconciler = reconciler.NewService(app.Catalog, games, app.Resolver, library, logger)

	return app, nil
}

// Credentials builds the operator credentials guarding write routes.
func Credentials(cfg *config.Config) (middleware.Credentials, error) {
	credentials := middleware.Credentials{APIKeyHash: cfg.OperatorAPIKeyHash}
	if cfg.JWTPubKeyPath == "" {
		return credentials, nil
	}

	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return credentials, fmt.Errorf("app: initialize jwt service: %w", err)
	}
	credentials.Verifier = tokens
	return credentials, nil
}

// CheckStore pings the Postgres pool. The memory store is always ready.
func (app *App) CheckStore(context context.Context) error {
	if app.pool == nil {
		return nil
	}
	return pgstore.Ping(context, app.pool)
}

// CheckCache pings Redis when caching is enabled.
func (app *App) CheckCache(context context.Context) error {
	if app.cache == nil {
		return nil
	}
	return redisstore.Ping(context, app.cache)
}

// Close releases the connections opened by [New].
func (app *App) Close() {
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("redis_close_failed", slog.Any("error", err))
		}
	}
	if app.pool != nil {
		app.logger.Info("closing_postgres_pool")
		app.pool.Close()
	}
}
