// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reconciler maps storefront ownership records to catalog titles.

A record is matched through its storefront id first: the stored mapping,
then the catalog's external game index. Records without a mapping fall back
to a title search ranked by relevance. Bundles and versions are expanded
with their member titles.
*/
package reconciler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/ranking"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/pkg/slice"
	"github.com/taibuivan/espy/pkg/uuid"
)

// MatchThreshold is the minimum relevance of a title search match.
const MatchThreshold = 0.5

// searchLimit caps the candidates requested per title search.
const searchLimit = 10

// Catalog is the subset of the catalog client the reconciler reads from.
type Catalog interface {
	Game(context context.Context, id uint64) (*igdb.Game, error)
	Search(context context.Context, title string, limit int) ([]igdb.Game, error)
	BundleContents(context context.Context, bundleID uint64) ([]igdb.Game, error)
	ExternalGame(context context.Context, store, storeID string) (*igdb.ExternalGame, error)
}

// Resolver produces the digest-level entry of a catalog title.
type Resolver interface {
	ResolveDigest(context context.Context, source igdb.Game) (*game.Entry, error)
}

// Library lists the titles a storefront account owns.
type Library interface {
	OwnedGames(context context.Context, accountID string) ([]game.StoreEntry, error)
}

// Service reconciles storefront records.
type Service struct {
	catalog  Catalog
	games    game.Repository
	resolver Resolver
	library  Library
	logger   *slog.Logger
}

// NewService builds a reconciler. library may be nil when no storefront
// account listing is configured.
func NewService(catalog Catalog, games game.Repository, resolver Resolver, library Library, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, games: games, resolver: resolver, library: library, logger: logger}
}

// Reconcile returns the catalog entries a storefront record stands for. A
// record matching nothing yields an empty result, not an error.
func (service *Service) Reconcile(context context.Context, record game.StoreEntry) ([]game.Entry, error) {
	entry, err := service.match(context, record)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if entry == nil {
		service.logger.Info("reconcile_no_match",
			slog.String("store", record.StorefrontName),
			slog.String("store_id", record.ID),
			slog.String("title", record.Title),
		)
		return nil, nil
	}

	entries := []game.Entry{*entry}
	if entry.Category == game.CategoryBundle || entry.Category == game.CategoryVersion {
		entries = append(entries, service.bundleContents(context, entry)...)
	}
	return entries, nil
}

// match finds the entry of a record through its mapping or by title.
func (service *Service) match(context context.Context, record game.StoreEntry) (*game.Entry, error) {
	if record.ID != "" {
		id, found, err := service.mapping(context, record)
		if err != nil {
			return nil, err
		}
		if found {
			return service.entry(context, id, nil)
		}
	}
	return service.search(context, record.Title)
}

// mapping reads the catalog id of a storefront id, asking the catalog when
// the store has no mapping yet. Unsupported stores have no mapping.
func (service *Service) mapping(context context.Context, record game.StoreEntry) (uint64, bool, error) {
	stored, err := service.games.ExternalGame(context, record.StorefrontName, record.ID)
	if err == nil {
		return stored.IgdbID, true, nil
	}
	if !apperr.IsNotFound(err) {
		return 0, false, err
	}

	external, err := service.catalog.ExternalGame(context, record.StorefrontName, record.ID)
	switch {
	case apperr.IsNotFound(err) || apperr.IsInvalidArgument(err):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}

	mapping := game.ExternalGame{
		IgdbID:    external.Game,
		StoreName: record.StorefrontName,
		StoreID:   record.ID,
		StoreURL:  record.URL,
	}
	if err := service.games.SaveExternalGame(context, mapping); err != nil {
		service.logger.Warn("external_game_save_failed", slog.String("id", mapping.DocumentID()), slog.Any("error", err))
	}
	return external.Game, true, nil
}

// search resolves the most relevant title search match, or nil.
func (service *Service) search(context context.Context, title string) (*game.Entry, error) {
	if title == "" {
		return nil, nil
	}

	candidates, err := service.catalog.Search(context, title, searchLimit)
	if err != nil {
		return nil, err
	}

	ranked := ranking.Rank(title, candidates, func(candidate igdb.Game) string {
		return candidate.Name
	})
	if len(ranked) == 0 || ranked[0].Score < MatchThreshold {
		return nil, nil
	}

	best := ranked[0].Item
	service.logger.Debug("reconcile_title_match",
		slog.String("title", title),
		slog.Uint64("game_id", best.ID),
		slog.Float64("score", ranked[0].Score),
	)
	return service.entry(context, best.ID, &best)
}

// entry reads a stored entry, or resolves the title's digest. source spares
// a catalog read when the caller already holds the title.
func (service *Service) entry(context context.Context, id uint64, source *igdb.Game) (*game.Entry, error) {
	entry, err := service.games.Entry(context, id)
	if err == nil {
		return entry, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	if source == nil {
		source, err = service.catalog.Game(context, id)
		if err != nil {
			return nil, err
		}
	}
	return service.resolver.ResolveDigest(context, *source)
}

func (service *Service) bundleContents(context context.Context, bundle *game.Entry) []game.Entry {
	members, err := service.catalog.BundleContents(context, bundle.ID)
	if err != nil {
		service.logger.Warn("bundle_contents_failed", slog.Uint64("game_id", bundle.ID), slog.Any("error", err))
		return nil
	}

	entries := make([]game.Entry, 0, len(members))
	for _, member := range members {
		entry, err := service.entry(context, member.ID, &member)
		if err != nil {
			service.logger.Warn("bundle_member_failed", slog.Uint64("game_id", member.ID), slog.Any("error", err))
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

// # Batch Sync

// Report is the outcome of one record of a sync.
type Report struct {
	StoreEntry game.StoreEntry `json:"store_entry"`
	GameIDs    []uint64        `json:"game_ids"`
	Error      string          `json:"error,omitempty"`
}

// Sync reconciles records concurrently. A failing record is reported and
// never aborts the batch. Reports follow the order of records.
func (service *Service) Sync(context context.Context, records []game.StoreEntry) []Report {
	runID := uuid.New()
	reports := make([]Report, len(records))

	group, groupContext := errgroup.WithContext(context)
	group.SetLimit(constants.SyncConcurrency)

	for i, record := range records {
		group.Go(func() error {
			report := Report{StoreEntry: record, GameIDs: []uint64{}}

			entries, err := service.Reconcile(groupContext, record)
			if err != nil {
				report.Error = err.Error()
				service.logger.Warn("sync_entry_failed",
					slog.String("run_id", runID),
					slog.String("store", record.StorefrontName),
					slog.String("store_id", record.ID),
					slog.Any("error", err),
				)
			}
			for _, entry := range entries {
				report.GameIDs = append(report.GameIDs, entry.ID)
			}

			reports[i] = report
			return nil
		})
	}
	_ = group.Wait()

	matched := slice.Reduce(reports, 0, func(count int, report Report) int {
		if len(report.GameIDs) > 0 {
			return count + 1
		}
		return count
	})
	service.logger.Info("sync_finished",
		slog.String("run_id", runID),
		slog.Int("records", len(records)),
		slog.Int("matched", matched),
	)
	return reports
}

// SyncLibrary reconciles every title an account owns on the storefront.
func (service *Service) SyncLibrary(context context.Context, accountID string) ([]Report, error) {
	if service.library == nil {
		return nil, apperr.InvalidArgument("no storefront library is configured")
	}

	records, err := service.library.OwnedGames(context, accountID)
	if err != nil {
		return nil, err
	}
	return service.Sync(context, records), nil
}
