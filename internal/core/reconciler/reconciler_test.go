// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconciler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/reconciler"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/internal/provider/igdb"
)

// # Fakes

type fakeCatalog struct {
	games     map[uint64]igdb.Game
	bundles   map[uint64][]igdb.Game
	externals map[string]uint64
	search    []igdb.Game
	fail      error

	searches atomic.Int32
	lookups  atomic.Int32
}

func (catalog *fakeCatalog) Game(_ context.Context, id uint64) (*igdb.Game, error) {
	if catalog.fail != nil {
		return nil, catalog.fail
	}
	source, ok := catalog.games[id]
	if !ok {
		return nil, apperr.NotFound("Game")
	}
	return &source, nil
}

func (catalog *fakeCatalog) Search(_ context.Context, _ string, _ int) ([]igdb.Game, error) {
	catalog.searches.Add(1)
	if catalog.fail != nil {
		return nil, catalog.fail
	}
	return catalog.search, nil
}

func (catalog *fakeCatalog) BundleContents(_ context.Context, bundleID uint64) ([]igdb.Game, error) {
	return catalog.bundles[bundleID], nil
}

func (catalog *fakeCatalog) ExternalGame(_ context.Context, store, storeID string) (*igdb.ExternalGame, error) {
	catalog.lookups.Add(1)
	if store != "steam" && store != "gog" {
		return nil, apperr.InvalidArgument("'" + store + "' store is not supported")
	}
	if catalog.fail != nil {
		return nil, catalog.fail
	}
	id, ok := catalog.externals[store+"_"+storeID]
	if !ok {
		return nil, apperr.NotFound("External game")
	}
	return &igdb.ExternalGame{Game: id, UID: storeID}, nil
}

type digestResolver struct{}

func (digestResolver) ResolveDigest(_ context.Context, source igdb.Game) (*game.Entry, error) {
	return game.NewEntry(source), nil
}

type fakeLibrary struct {
	owned []game.StoreEntry
}

func (library fakeLibrary) OwnedGames(_ context.Context, _ string) ([]game.StoreEntry, error) {
	return library.owned, nil
}

func newService(catalog *fakeCatalog, library reconciler.Library) (*reconciler.Service, *game.DocumentRepository) {
	games := game.NewDocumentRepository(docstore.NewMemoryStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return reconciler.NewService(catalog, games, digestResolver{}, library, logger), games
}

func ptr(value uint64) *uint64 { return &value }

func ids(entries []game.Entry) []uint64 {
	result := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.ID)
	}
	return result
}

// # Tests

/*
TestReconcile_StoreMapping verifies that a storefront id known to the catalog
resolves without a title search and that the mapping is written back.
*/
func TestReconcile_StoreMapping(t *testing.T) {
	catalog := &fakeCatalog{
		games:     map[uint64]igdb.Game{1: {ID: 1, Name: "Team Fortress 2"}},
		externals: map[string]uint64{"steam_440": 1},
	}
	service, games := newService(catalog, nil)

	record := game.StoreEntry{ID: "440", Title: "TF2", StorefrontName: "steam", URL: "https://store.steampowered.com/app/440"}
	entries, err := service.Reconcile(t.Context(), record)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids(entries))
	assert.Zero(t, catalog.searches.Load())

	mapping, err := games.ExternalGame(t.Context(), "steam", "440")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), mapping.IgdbID)
	assert.Equal(t, record.URL, mapping.StoreURL)

	// The stored mapping spares the catalog lookup.
	_, err = service.Reconcile(t.Context(), record)
	require.NoError(t, err)
	assert.Equal(t, int32(1), catalog.lookups.Load())
}

/*
TestReconcile_StoredEntry verifies that a stored entry is returned as is.
*/
func TestReconcile_StoredEntry(t *testing.T) {
	catalog := &fakeCatalog{externals: map[string]uint64{"gog_7": 5}}
	service, games := newService(catalog, nil)

	stored := game.NewEntry(igdb.Game{ID: 5, Name: "Stored"})
	stored.Keywords = []string{"stored"}
	require.NoError(t, games.SaveEntry(t.Context(), stored))

	entries, err := service.Reconcile(t.Context(), game.StoreEntry{ID: "7", StorefrontName: "gog"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"stored"}, entries[0].Keywords)
}

/*
TestReconcile_TitleSearch verifies the title fallback: records without a
mapping match the most relevant candidate above the threshold, and nothing
otherwise.
*/
func TestReconcile_TitleSearch(t *testing.T) {
	tests := []struct {
		name   string
		record game.StoreEntry
		search []igdb.Game
		want   []uint64
	}{
		{
			name:   "unmapped steam id",
			record: game.StoreEntry{ID: "999", Title: "Portal", StorefrontName: "steam"},
			search: []igdb.Game{{ID: 2, Name: "Portal Knights"}, {ID: 1, Name: "Portal"}},
			want:   []uint64{1},
		},
		{
			name:   "unsupported store",
			record: game.StoreEntry{ID: "abc", Title: "Portal 2", StorefrontName: "epic"},
			search: []igdb.Game{{ID: 3, Name: "Portal 2"}},
			want:   []uint64{3},
		},
		{
			name:   "title only",
			record: game.StoreEntry{Title: "Hades", StorefrontName: "local"},
			search: []igdb.Game{{ID: 4, Name: "Hades"}},
			want:   []uint64{4},
		},
		{
			name:   "no relevant candidate",
			record: game.StoreEntry{Title: "Completely Different", StorefrontName: "local"},
			search: []igdb.Game{{ID: 5, Name: "Stardew Valley"}},
			want:   []uint64{},
		},
		{
			name:   "no candidate",
			record: game.StoreEntry{Title: "Nothing", StorefrontName: "local"},
			want:   []uint64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newService(&fakeCatalog{search: tt.search}, nil)

			entries, err := service.Reconcile(t.Context(), tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(entries))
		})
	}
}

/*
TestReconcile_Bundle verifies that a bundle expands to itself plus members.
*/
func TestReconcile_Bundle(t *testing.T) {
	catalog := &fakeCatalog{
		games:     map[uint64]igdb.Game{10: {ID: 10, Name: "The Orange Box", Category: 3}},
		externals: map[string]uint64{"steam_1": 10},
		bundles: map[uint64][]igdb.Game{10: {
			{ID: 11, Name: "Half-Life 2"},
			{ID: 12, Name: "Portal"},
		}},
	}
	service, _ := newService(catalog, nil)

	entries, err := service.Reconcile(t.Context(), game.StoreEntry{ID: "1", StorefrontName: "steam"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 11, 12}, ids(entries))
	assert.Equal(t, game.CategoryBundle, entries[0].Category)
}

/*
TestReconcile_Version verifies that a version expands to its member titles
like a bundle, not to its version parent.
*/
func TestReconcile_Version(t *testing.T) {
	catalog := &fakeCatalog{
		games: map[uint64]igdb.Game{
			20: {ID: 20, Name: "Skyrim Special Edition", VersionParent: ptr(21)},
			21: {ID: 21, Name: "Skyrim"},
		},
		externals: map[string]uint64{"steam_489830": 20},
		bundles: map[uint64][]igdb.Game{20: {
			{ID: 30, Name: "Dawnguard"},
			{ID: 31, Name: "Hearthfire"},
		}},
	}
	service, _ := newService(catalog, nil)

	entries, err := service.Reconcile(t.Context(), game.StoreEntry{ID: "489830", StorefrontName: "steam"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{20, 30, 31}, ids(entries))
	assert.Equal(t, game.CategoryVersion, entries[0].Category)
}

/*
TestReconcile_MissingTitle verifies that a mapping to a title the catalog no
longer has yields an empty result.
*/
func TestReconcile_MissingTitle(t *testing.T) {
	catalog := &fakeCatalog{externals: map[string]uint64{"steam_1": 404}}
	service, _ := newService(catalog, nil)

	entries, err := service.Reconcile(t.Context(), game.StoreEntry{ID: "1", StorefrontName: "steam"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

/*
TestSync verifies that a failing record is reported without aborting the
batch and that reports keep the order of records.
*/
func TestSync(t *testing.T) {
	catalog := &fakeCatalog{
		games:     map[uint64]igdb.Game{1: {ID: 1, Name: "Team Fortress 2"}},
		externals: map[string]uint64{"steam_440": 1},
	}
	service, _ := newService(catalog, nil)

	reports := service.Sync(t.Context(), []game.StoreEntry{
		{ID: "440", StorefrontName: "steam"},
		{Title: "Unknown", StorefrontName: "local"},
	})
	require.Len(t, reports, 2)
	assert.Equal(t, []uint64{1}, reports[0].GameIDs)
	assert.Empty(t, reports[0].Error)
	assert.Empty(t, reports[1].GameIDs)
}

/*
TestSync_Errors verifies that catalog failures land in the report.
*/
func TestSync_Errors(t *testing.T) {
	catalog := &fakeCatalog{fail: apperr.RequestError("catalog", errors.New("unavailable"))}
	service, _ := newService(catalog, nil)

	reports := service.Sync(t.Context(), []game.StoreEntry{{ID: "440", Title: "TF2", StorefrontName: "steam"}})
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].Error)
	assert.Empty(t, reports[0].GameIDs)
}

/*
TestSyncLibrary verifies that an account's owned titles are reconciled, and
that the operation is rejected without a library.
*/
func TestSyncLibrary(t *testing.T) {
	catalog := &fakeCatalog{
		games:     map[uint64]igdb.Game{1: {ID: 1, Name: "Team Fortress 2"}},
		externals: map[string]uint64{"steam_440": 1},
	}

	service, _ := newService(catalog, fakeLibrary{owned: []game.StoreEntry{{ID: "440", Title: "Team Fortress 2", StorefrontName: "steam"}}})
	reports, err := service.SyncLibrary(t.Context(), "76561197960287930")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, []uint64{1}, reports[0].GameIDs)

	bare, _ := newService(catalog, nil)
	_, err = bare.SyncLibrary(t.Context(), "76561197960287930")
	assert.True(t, apperr.IsInvalidArgument(err))
}
