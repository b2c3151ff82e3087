// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package aggregate maintains the company, collection and franchise documents
that list the main titles attached to them.

Every resolved entry is folded in with a read-modify-write per document: a
missing document is seeded from the entry's digest of it, then the entry's
compact digest replaces any previous digest of the same title. Failures are
logged and never reach the caller.
*/
package aggregate

import (
	"context"
	"log/slog"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/apperr"
)

// Updater folds resolved entries into aggregate documents.
type Updater struct {
	games  game.Repository
	logger *slog.Logger
}

func NewUpdater(games game.Repository, logger *slog.Logger) *Updater {
	return &Updater{games: games, logger: logger}
}

// involvement is one company's part in a single entry.
type involvement struct {
	company   game.CompanyDigest
	developed bool
	published bool
}

// Update folds entry into its companies, collections and franchises. Only
// main titles are aggregated.
func (updater *Updater) Update(context context.Context, entry *game.Entry) {
	if !entry.Category.IsMain() {
		return
	}

	digest := entry.Digest().Compact()

	for _, involved := range involvements(entry) {
		if err := updater.updateCompany(context, involved, digest); err != nil {
			updater.logger.Warn("aggregate_company_failed",
				slog.Uint64("game_id", entry.ID),
				slog.Uint64("company_id", involved.company.ID),
				slog.Any("error", err),
			)
		}
	}

	for _, collection := range entry.Collections {
		updater.collection(context, game.CollectionSeries, collection, entry.ID, digest)
	}
	for _, franchise := range entry.Franchises {
		updater.collection(context, game.CollectionFranchise, franchise, entry.ID, digest)
	}
}

// involvements groups developers and publishers by company so a company
// that did both is read and written once.
func involvements(entry *game.Entry) []involvement {
	var grouped []involvement
	index := make(map[uint64]int)

	add := func(company game.CompanyDigest, developed, published bool) {
		if i, ok := index[company.ID]; ok {
			grouped[i].developed = grouped[i].developed || developed
			grouped[i].published = grouped[i].published || published
			return
		}
		index[company.ID] = len(grouped)
		grouped = append(grouped, involvement{company: company, developed: developed, published: published})
	}

	for _, company := range entry.Developers {
		add(company, true, false)
	}
	for _, company := range entry.Publishers {
		add(company, false, true)
	}
	return grouped
}

func (updater *Updater) updateCompany(context context.Context, involved involvement, digest game.Digest) error {
	company, err := updater.games.Company(context, involved.company.ID)
	switch {
	case apperr.IsNotFound(err):
		company = &game.Company{
			ID:   involved.company.ID,
			Name: involved.company.Name,
			Slug: involved.company.Slug,
		}
	case err != nil:
		return err
	}

	if involved.developed {
		company.Developed = game.UpsertDigest(company.Developed, digest)
	}
	if involved.published {
		company.Published = game.UpsertDigest(company.Published, digest)
	}

	return updater.games.SaveCompany(context, company)
}

func (updater *Updater) collection(context context.Context, kind game.CollectionType, reference game.CollectionDigest, gameID uint64, digest game.Digest) {
	err := updater.updateCollection(context, kind, reference, digest)
	if err != nil {
		updater.logger.Warn("aggregate_collection_failed",
			slog.Uint64("game_id", gameID),
			slog.Uint64("collection_id", reference.ID),
			slog.String("type", string(kind)),
			slog.Any("error", err),
		)
	}
}

func (updater *Updater) updateCollection(context context.Context, kind game.CollectionType, reference game.CollectionDigest, digest game.Digest) error {
	collection, err := updater.games.Collection(context, kind, reference.ID)
	switch {
	case apperr.IsNotFound(err):
		collection = &game.Collection{ID: reference.ID, Name: reference.Name, Slug: reference.Slug}
	case err != nil:
		return err
	}

	collection.Games = game.UpsertDigest(collection.Games, digest)
	return updater.games.SaveCollection(context, kind, collection)
}
