// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore_test

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/docstore"
)

type company struct {
	ID        uint64   `json:"id"`
	Name      string   `json:"name"`
	Developed []uint64 `json:"developed"`
}

/*
TestMemoryStore_ReadWrite verifies the NotFound signal and upsert semantics.
*/
func TestMemoryStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	// 1. Missing documents are reported as NOT_FOUND
	_, err := store.Read(ctx, "companies", "70")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	// 2. Put then Get
	_, err = docstore.Put(ctx, store, "companies", "70", company{ID: 70, Name: "Valve"})
	require.NoError(t, err)

	got, err := docstore.Get[company](ctx, store, "companies", "70")
	require.NoError(t, err)
	assert.Equal(t, "Valve", got.Name)

	// 3. Overwrite replaces the document
	_, err = docstore.Put(ctx, store, "companies", "70", company{ID: 70, Name: "Valve Corporation"})
	require.NoError(t, err)
	got, err = docstore.Get[company](ctx, store, "companies", "70")
	require.NoError(t, err)
	assert.Equal(t, "Valve Corporation", got.Name)
	assert.Equal(t, 1, store.Len("companies"))

	// 4. Empty id generates one
	id, err := docstore.Put(ctx, store, "needs_annotation", "", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

/*
TestMemoryStore_BatchRead verifies ordering and the not-found partition.
*/
func TestMemoryStore_BatchRead(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	for _, c := range []company{{ID: 1, Name: "a"}, {ID: 3, Name: "c"}} {
		_, err := docstore.Put(ctx, store, "companies", strconv.FormatUint(c.ID, 10), c)
		require.NoError(t, err)
	}

	found, missing, err := docstore.GetMany[company](ctx, store, "companies", []string{"3", "2", "1"})
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, uint64(3), found[0].ID)
	assert.Equal(t, uint64(1), found[1].ID)
	assert.Equal(t, []string{"2"}, missing)
}

/*
TestMemoryStore_Query verifies equality and array-contains matching.
*/
func TestMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	_, _ = docstore.Put(ctx, store, "companies", "1", company{ID: 1, Name: "Valve", Developed: []uint64{440, 620}})
	_, _ = docstore.Put(ctx, store, "companies", "2", company{ID: 2, Name: "Bethesda", Developed: []uint64{72}})

	byName, err := docstore.QueryAll[company](ctx, store, "companies", "name", docstore.OpEqual, "Valve")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, uint64(1), byName[0].ID)

	byGame, err := docstore.QueryAll[company](ctx, store, "companies", "developed", docstore.OpArrayContains, 72)
	require.NoError(t, err)
	require.Len(t, byGame, 1)
	assert.Equal(t, "Bethesda", byGame[0].Name)

	_, err = store.Query(ctx, "companies", "name", docstore.Op(">"), 1)
	assert.True(t, apperr.IsInvalidArgument(err))
}

/*
TestMemoryStore_Delete verifies that deleting is idempotent.
*/
func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	_, _ = docstore.Put(ctx, store, "games", "7", company{ID: 7})
	require.NoError(t, store.Delete(ctx, "games", "7"))
	require.NoError(t, store.Delete(ctx, "games", "7"))

	_, err := store.Read(ctx, "games", "7")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestCachedStore_RedisOutage verifies that an unreachable cache never fails a call.
*/
func TestCachedStore_RedisOutage(t *testing.T) {
	ctx := context.Background()
	inner := docstore.NewMemoryStore()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := docstore.NewCachedStore(inner, client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := docstore.Put(ctx, store, "games", "10", company{ID: 10, Name: "Half-Life"})
	require.NoError(t, err)

	got, err := docstore.Get[company](ctx, store, "games", "10")
	require.NoError(t, err)
	assert.Equal(t, "Half-Life", got.Name)

	result, err := store.BatchRead(ctx, "games", []string{"10", "11"})
	require.NoError(t, err)
	assert.Len(t, result.Found, 1)
	assert.Equal(t, []string{"11"}, result.NotFound)

	_, err = store.Read(ctx, "games", "11")
	assert.True(t, apperr.IsNotFound(err))
}
