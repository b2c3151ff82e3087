// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
)

// notFoundMarker is cached for documents the inner store does not have. It
// cannot be mistaken for a zstd frame, which always starts with the magic
// number 0x28B52FFD.
const notFoundMarker = "\x00missing"

// CachedStore is a Redis read-through cache in front of another [Store].
//
// # Consistency
//
// Writes and deletes go to the inner store first and then evict the cache
// key, so a reader sees at worst one stale read per TTL window when two
// processes race. Redis failures never fail a call: the cache is bypassed
// and a warning is logged.
//
// Misses are cached too, as a marker living for [constants.NegativeCacheTTL].
// Write and Delete evict the marker along with any cached body.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps inner with a Redis cache using the given TTL.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(collection, id string) string {
	return constants.RedisPrefixDocument + collection + ":" + id
}

// Read implements [Store].
func (store *CachedStore) Read(ctx context.Context, collection, id string) (json.RawMessage, error) {
	key := cacheKey(collection, id)

	payload, err := store.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(payload) == notFoundMarker {
			return nil, notFound(collection, id)
		}
		if body, decodeErr := decompress(payload); decodeErr == nil {
			return body, nil
		}
		store.logger.WarnContext(ctx, "cache_payload_corrupt", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		store.logger.WarnContext(ctx, "cache_read_failed", slog.String("key", key), slog.Any("error", err))
	}

	body, err := store.inner.Read(ctx, collection, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			store.markMissing(ctx, []string{key})
		}
		return nil, err
	}

	store.fill(ctx, map[string][]byte{key: body})
	return body, nil
}

// Write implements [Store].
func (store *CachedStore) Write(ctx context.Context, collection, id string, body json.RawMessage) (string, error) {
	id, err := store.inner.Write(ctx, collection, id, body)
	if err != nil {
		return "", err
	}
	store.evict(ctx, cacheKey(collection, id))
	return id, nil
}

// BatchRead implements [Store].
func (store *CachedStore) BatchRead(ctx context.Context, collection string, ids []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return &BatchResult{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(collection, id)
	}

	cached := make(map[string]json.RawMessage, len(ids))
	missing := make(map[string]bool)
	values, err := store.client.MGet(ctx, keys...).Result()
	if err != nil {
		store.logger.WarnContext(ctx, "cache_batch_read_failed", slog.String("collection", collection), slog.Any("error", err))
	} else {
		for i, value := range values {
			raw, ok := value.(string)
			if !ok {
				continue
			}
			if raw == notFoundMarker {
				missing[ids[i]] = true
				continue
			}
			if body, err := decompress([]byte(raw)); err == nil {
				cached[ids[i]] = body
			}
		}
	}

	var misses []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok && !missing[id] {
			misses = append(misses, id)
		}
	}

	fetched := make(map[string]json.RawMessage, len(misses))
	if len(misses) > 0 {
		inner, err := store.inner.BatchRead(ctx, collection, misses)
		if err != nil {
			return nil, err
		}

		fill := make(map[string][]byte, len(inner.Found))
		for _, document := range inner.Found {
			fetched[document.ID] = document.Body
			fill[cacheKey(collection, document.ID)] = document.Body
		}
		store.fill(ctx, fill)

		markers := make([]string, len(inner.NotFound))
		for i, id := range inner.NotFound {
			markers[i] = cacheKey(collection, id)
		}
		store.markMissing(ctx, markers)
	}

	result := &BatchResult{}
	for _, id := range ids {
		if body, ok := cached[id]; ok {
			result.Found = append(result.Found, Document{ID: id, Body: body})
		} else if body, ok := fetched[id]; ok {
			result.Found = append(result.Found, Document{ID: id, Body: body})
		} else {
			result.NotFound = append(result.NotFound, id)
		}
	}
	return result, nil
}

// Query implements [Store]. Queries always go to the inner store.
func (store *CachedStore) Query(ctx context.Context, collection, field string, op Op, value any) ([]Document, error) {
	return store.inner.Query(ctx, collection, field, op, value)
}

// Delete implements [Store].
func (store *CachedStore) Delete(ctx context.Context, collection, id string) error {
	if err := store.inner.Delete(ctx, collection, id); err != nil {
		return err
	}
	store.evict(ctx, cacheKey(collection, id))
	return nil
}

// fill stores compressed documents with the configured TTL in one round trip.
func (store *CachedStore) fill(ctx context.Context, documents map[string][]byte) {
	if len(documents) == 0 {
		return
	}

	pipe := store.client.Pipeline()
	for key, body := range documents {
		pipe.Set(ctx, key, compress(body), store.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		store.logger.WarnContext(ctx, "cache_fill_failed", slog.Int("documents", len(documents)), slog.Any("error", err))
	}
}

// markMissing caches a not-found marker for each key.
func (store *CachedStore) markMissing(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}

	pipe := store.client.Pipeline()
	for _, key := range keys {
		pipe.Set(ctx, key, notFoundMarker, constants.NegativeCacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		store.logger.WarnContext(ctx, "cache_mark_missing_failed", slog.Int("documents", len(keys)), slog.Any("error", err))
	}
}

func (store *CachedStore) evict(ctx context.Context, key string) {
	if err := store.client.Del(ctx, key).Err(); err != nil {
		store.logger.WarnContext(ctx, "cache_evict_failed", slog.String("key", key), slog.Any("error", err))
	}
}
