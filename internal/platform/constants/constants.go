// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, document collection names and
cross-cutting keys that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Per-IP buckets and upstream budgets.
  - Documents: Collection names used by the document store.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "espy-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Resolving a title with many relatives under the catalog budget takes a while.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 110 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StatementTimeout bounds a single SQL statement.
	StatementTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Upstream Budgets

const (
	// SteamRequests per SteamInterval, with SteamConcurrency calls in flight.
	SteamRequests    = 200
	SteamInterval    = 5 * time.Minute
	SteamConcurrency = 7

	// MetacriticRequests per second, with MetacriticConcurrency calls in flight.
	MetacriticRequests    = 2
	MetacriticConcurrency = 4

	// GogRequests per second, with GogConcurrency calls in flight.
	GogRequests    = 4
	GogConcurrency = 4

	// SyncConcurrency bounds storefront entries reconciled at once.
	SyncConcurrency = 4

	// RelatedConcurrency bounds related titles resolved at once for one entry.
	RelatedConcurrency = 4

	// SearchCoverConcurrency bounds cover lookups for one search.
	SearchCoverConcurrency = 8
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in operator JWTs.
	AuthIssuer = "espy.app"

	// ScopeCatalogWrite grants access to resolve and reconcile routes.
	ScopeCatalogWrite = "catalog:write"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAPIKey        = "X-Api-Key"
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Document Collections

const (
	CollectionGames           = "games"
	CollectionExternalGames   = "external_games"
	CollectionCompanies       = "companies"
	CollectionCollections     = "collections"
	CollectionFranchises      = "franchises"
	CollectionKeywords        = "keywords"
	CollectionGenres          = "genres"
	CollectionIgdbGenres      = "igdb_genres"
	CollectionNeedsAnnotation = "needs_annotation"
	CollectionWikipedia       = "wikipedia"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixDocument = "doc:"
)

// NegativeCacheTTL bounds how long a cached miss hides a document written
// by another process that bypassed the cache.
const NegativeCacheTTL = 1 * time.Minute
