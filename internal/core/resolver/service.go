// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package resolver expands catalog ids into merged game entries.

Resolution runs in two phases:

  - Digest: the identity record. Cover, collections, franchises, companies,
    release date and scores are fetched concurrently and merged after join.
  - Info: keywords, websites, media and related titles. Related titles are
    resolved through the digest phase with a worklist and a visited set, so
    each id is resolved at most once per call.

Enrichment failures are logged and leave their field empty. Only a catalog
that fails every primary lookup fails the resolve.
*/
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/ranking"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/internal/platform/validate"
	"github.com/taibuivan/espy/internal/provider/igdb"
)

// SearchThreshold is the minimum relevance of a title search result.
const SearchThreshold = 1.0

// MaxDigestIDs caps the ids accepted by one digest batch.
const MaxDigestIDs = 100

// searchLimit caps the candidates requested per title search.
const searchLimit = 50

// Service resolves and serves game entries.
type Service struct {
	catalog    Catalog
	docs       docstore.Store
	games      game.Repository
	providers  Providers
	aggregates Aggregates
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used for timestamps and release checks.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

func NewService(catalog Catalog, docs docstore.Store, providers Providers, aggregates Aggregates, logger *slog.Logger, options ...Option) *Service {
	service := &Service{
		catalog:    catalog,
		docs:       docs,
		games:      game.NewDocumentRepository(docs),
		providers:  providers,
		aggregates: aggregates,
		logger:     logger,
		now:        time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Retrieve fetches a title from the catalog and fully resolves it.
func (service *Service) Retrieve(context context.Context, id uint64) (*game.Entry, error) {
	source, err := service.catalog.Game(context, id)
	if err != nil {
		return nil, err
	}
	return service.Resolve(context, *source)
}

// Resolve runs both phases on a catalog title and stores the entry.
func (service *Service) Resolve(context context.Context, source igdb.Game) (*game.Entry, error) {
	start := service.now()

	entry, err := service.ResolveDigest(context, source)
	if err != nil {
		return nil, err
	}

	if err := service.ResolveInfo(context, entry); err != nil {
		return nil, err
	}

	if err := service.games.SaveEntry(context, entry); err != nil {
		return nil, err
	}

	service.logger.Info("game_resolved",
		slog.Uint64("game_id", entry.ID),
		slog.String("name", entry.Name),
		slog.Duration("duration", service.now().Sub(start)),
	)
	return entry, nil
}

// Entry returns the stored entry of a title.
func (service *Service) Entry(context context.Context, id uint64) (*game.Entry, error) {
	return service.games.Entry(context, id)
}

// StoreMappings lists the storefront entries known to map to a title.
func (service *Service) StoreMappings(context context.Context, id uint64) ([]game.ExternalGame, error) {
	return service.games.ExternalGamesOf(context, id)
}

// Digest returns the digest of a title, from the store when it was resolved
// before and from the digest phase otherwise. Digests resolved here are not stored.
func (service *Service) Digest(context context.Context, id uint64) (*game.Digest, error) {
	entry, err := service.games.Entry(context, id)
	if err == nil {
		digest := entry.Digest()
		return &digest, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	source, err := service.catalog.Game(context, id)
	if err != nil {
		return nil, err
	}

	entry, err = service.ResolveDigest(context, *source)
	if err != nil {
		return nil, err
	}

	digest := entry.Digest()
	return &digest, nil
}

// Digests returns the digests of many titles in request order. Ids unknown
// to the catalog are skipped. The catalog error is returned only when
// nothing could be resolved.
func (service *Service) Digests(context context.Context, ids []uint64) ([]game.Digest, error) {
	ids = uniqueIDs(ids)

	validator := &validate.Validator{}
	validator.Custom("ids", len(ids) == 0, "At least one numeric id is required")
	validator.Custom("ids", len(ids) > MaxDigestIDs, fmt.Sprintf("At most %d ids per request", MaxDigestIDs))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	resolved, err := service.resolveDigests(context, ids, nil)
	if err != nil && len(resolved) == 0 {
		return nil, err
	}

	digests := make([]game.Digest, 0, len(resolved))
	for _, id := range ids {
		if digest, ok := resolved[id]; ok {
			digests = append(digests, digest)
		}
	}
	return digests, nil
}

// Search lists catalog titles matching title, most relevant first, with
// their covers resolved. baseGameOnly drops titles that have a parent game.
func (service *Service) Search(context context.Context, title string, baseGameOnly bool) ([]game.Entry, error) {
	candidates, err := service.catalog.Search(context, title, searchLimit)
	if err != nil {
		return nil, err
	}

	if baseGameOnly {
		kept := candidates[:0]
		for _, candidate := range candidates {
			if candidate.ParentGame == nil {
				kept = append(kept, candidate)
			}
		}
		candidates = kept
	}

	candidates = ranking.SortByRelevanceWithThreshold(title, candidates, gameName, SearchThreshold)

	entries := make([]game.Entry, len(candidates))
	group, groupContext := errgroup.WithContext(context)
	group.SetLimit(constants.SearchCoverConcurrency)

	for i, candidate := range candidates {
		group.Go(func() error {
			entry := game.NewEntry(candidate)
			if candidate.Cover != nil {
				cover, err := service.catalog.Cover(groupContext, *candidate.Cover)
				if err != nil {
					service.logger.Warn("search_cover_failed", slog.Uint64("game_id", candidate.ID), slog.Any("error", err))
				} else {
					image := game.ImageFromIGDB(*cover)
					entry.Cover = &image
				}
			}
			entries[i] = *entry
			return nil
		})
	}
	_ = group.Wait()

	return entries, nil
}

func gameName(candidate igdb.Game) string {
	return candidate.Name
}
