// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/resolver"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/internal/provider/igdb"
)

// fakeCatalog serves canned catalog records. A non-nil fail makes every
// call return it. failOn fails single methods by name.
type fakeCatalog struct {
	games        map[uint64]igdb.Game
	bundles      map[uint64][]uint64
	externals    map[uint64][]igdb.ExternalGame
	images       map[uint64]igdb.Image
	collections  map[uint64]igdb.Collection
	franchises   map[uint64]igdb.Collection
	involved     map[uint64]igdb.InvolvedCompany
	companies    map[uint64]igdb.Company
	releaseDates map[uint64]igdb.ReleaseDate
	websites     map[uint64]igdb.Website
	genres       map[uint64]igdb.Genre
	keywords     map[uint64]igdb.Keyword
	searchResult []igdb.Game

	fail     error
	failOn   map[string]error
	searches atomic.Int32

	mu      sync.Mutex
	fetched map[uint64]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		games:        map[uint64]igdb.Game{},
		bundles:      map[uint64][]uint64{},
		externals:    map[uint64][]igdb.ExternalGame{},
		images:       map[uint64]igdb.Image{},
		collections:  map[uint64]igdb.Collection{},
		franchises:   map[uint64]igdb.Collection{},
		involved:     map[uint64]igdb.InvolvedCompany{},
		companies:    map[uint64]igdb.Company{},
		releaseDates: map[uint64]igdb.ReleaseDate{},
		websites:     map[uint64]igdb.Website{},
		genres:       map[uint64]igdb.Genre{},
		keywords:     map[uint64]igdb.Keyword{},
		fetched:      map[uint64]int{},
	}
}

func (catalog *fakeCatalog) failure(method string) error {
	if catalog.fail != nil {
		return catalog.fail
	}
	return catalog.failOn[method]
}

func pick[T any](records map[uint64]T, ids []uint64) []T {
	var found []T
	for _, id := range ids {
		if record, ok := records[id]; ok {
			found = append(found, record)
		}
	}
	return found
}

func (catalog *fakeCatalog) Game(_ context.Context, id uint64) (*igdb.Game, error) {
	if err := catalog.failure("Game"); err != nil {
		return nil, err
	}
	source, ok := catalog.games[id]
	if !ok {
		return nil, apperr.NotFound("game")
	}
	return &source, nil
}

func (catalog *fakeCatalog) Games(_ context.Context, ids []uint64) ([]igdb.Game, error) {
	if err := catalog.failure("Games"); err != nil {
		return nil, err
	}
	catalog.mu.Lock()
	for _, id := range ids {
		catalog.fetched[id]++
	}
	catalog.mu.Unlock()
	return pick(catalog.games, ids), nil
}

func (catalog *fakeCatalog) Search(_ context.Context, _ string, _ int) ([]igdb.Game, error) {
	catalog.searches.Add(1)
	if err := catalog.failure("Search"); err != nil {
		return nil, err
	}
	return catalog.searchResult, nil
}

func (catalog *fakeCatalog) BundleContents(_ context.Context, bundleID uint64) ([]igdb.Game, error) {
	if err := catalog.failure("BundleContents"); err != nil {
		return nil, err
	}
	return pick(catalog.games, catalog.bundles[bundleID]), nil
}

func (catalog *fakeCatalog) ExternalGames(_ context.Context, gameID uint64) ([]igdb.ExternalGame, error) {
	if err := catalog.failure("ExternalGames"); err != nil {
		return nil, err
	}
	return catalog.externals[gameID], nil
}

func (catalog *fakeCatalog) Cover(_ context.Context, id uint64) (*igdb.Image, error) {
	if err := catalog.failure("Cover"); err != nil {
		return nil, err
	}
	image, ok := catalog.images[id]
	if !ok {
		return nil, apperr.NotFound("cover")
	}
	return &image, nil
}

func (catalog *fakeCatalog) Artworks(_ context.Context, ids []uint64) ([]igdb.Image, error) {
	if err := catalog.failure("Artworks"); err != nil {
		return nil, err
	}
	return pick(catalog.images, ids), nil
}

func (catalog *fakeCatalog) Screenshots(_ context.Context, ids []uint64) ([]igdb.Image, error) {
	if err := catalog.failure("Screenshots"); err != nil {
		return nil, err
	}
	return pick(catalog.images, ids), nil
}

func (catalog *fakeCatalog) Websites(_ context.Context, ids []uint64) ([]igdb.Website, error) {
	if err := catalog.failure("Websites"); err != nil {
		return nil, err
	}
	return pick(catalog.websites, ids), nil
}

func (catalog *fakeCatalog) Collections(_ context.Context, ids []uint64) ([]igdb.Collection, error) {
	if err := catalog.failure("Collections"); err != nil {
		return nil, err
	}
	return pick(catalog.collections, ids), nil
}

func (catalog *fakeCatalog) Franchises(_ context.Context, ids []uint64) ([]igdb.Collection, error) {
	if err := catalog.failure("Franchises"); err != nil {
		return nil, err
	}
	return pick(catalog.franchises, ids), nil
}

func (catalog *fakeCatalog) InvolvedCompanies(_ context.Context, ids []uint64) ([]igdb.InvolvedCompany, error) {
	if err := catalog.failure("InvolvedCompanies"); err != nil {
		return nil, err
	}
	return pick(catalog.involved, ids), nil
}

func (catalog *fakeCatalog) Companies(_ context.Context, ids []uint64) ([]igdb.Company, error) {
	if err := catalog.failure("Companies"); err != nil {
		return nil, err
	}
	return pick(catalog.companies, ids), nil
}

func (catalog *fakeCatalog) ReleaseDates(_ context.Context, ids []uint64) ([]igdb.ReleaseDate, error) {
	if err := catalog.failure("ReleaseDates"); err != nil {
		return nil, err
	}
	return pick(catalog.releaseDates, ids), nil
}

func (catalog *fakeCatalog) Genres(_ context.Context, ids []uint64) ([]igdb.Genre, error) {
	if err := catalog.failure("Genres"); err != nil {
		return nil, err
	}
	return pick(catalog.genres, ids), nil
}

func (catalog *fakeCatalog) Keywords(_ context.Context, ids []uint64) ([]igdb.Keyword, error) {
	if err := catalog.failure("Keywords"); err != nil {
		return nil, err
	}
	return pick(catalog.keywords, ids), nil
}

// fakeSteam serves canned storefront data per app id.
type fakeSteam struct {
	apps map[string]*game.SteamData
	tags []string
	fail error
}

func (steam *fakeSteam) AppData(_ context.Context, appID string) (*game.SteamData, error) {
	if steam.fail != nil {
		return nil, steam.fail
	}
	data, ok := steam.apps[appID]
	if !ok {
		return nil, apperr.NotFound("steam app " + appID)
	}
	clone := *data
	return &clone, nil
}

func (steam *fakeSteam) UserTags(_ context.Context, _ string) ([]string, error) {
	if steam.fail != nil {
		return nil, steam.fail
	}
	return steam.tags, nil
}

// recordingAggregates counts the entries handed to it.
type recordingAggregates struct {
	mu      sync.Mutex
	updated []uint64
}

func (aggregates *recordingAggregates) Update(_ context.Context, entry *game.Entry) {
	aggregates.mu.Lock()
	defer aggregates.mu.Unlock()
	aggregates.updated = append(aggregates.updated, entry.ID)
}

// fixedNow is the clock every resolver test runs on.
var fixedNow = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(catalog *fakeCatalog, providers resolver.Providers) (*resolver.Service, *docstore.MemoryStore) {
	docs := docstore.NewMemoryStore()
	service := resolver.NewService(catalog, docs, providers, &recordingAggregates{}, discardLogger(),
		resolver.WithClock(func() time.Time { return fixedNow }))
	return service, docs
}

func ptr(value uint64) *uint64 { return &value }
