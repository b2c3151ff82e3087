// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package aggregate_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/espy/internal/core/aggregate"
	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/docstore"
)

func newUpdater() (*aggregate.Updater, *game.DocumentRepository, *docstore.MemoryStore) {
	docs := docstore.NewMemoryStore()
	repository := game.NewDocumentRepository(docs)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return aggregate.NewUpdater(repository, logger), repository, docs
}

func portal() *game.Entry {
	valve := game.CompanyDigest{ID: 56, Name: "Valve Corporation", Slug: "valve", Role: game.RoleDevPub}
	return &game.Entry{
		ID:          71,
		Name:        "Portal",
		Category:    game.CategoryMain,
		Keywords:    []string{"puzzle"},
		Developers:  []game.CompanyDigest{valve},
		Publishers:  []game.CompanyDigest{valve},
		Collections: []game.CollectionDigest{{ID: 87, Name: "Portal", Slug: "portal", Type: game.CollectionSeries}},
		Franchises:  []game.CollectionDigest{{ID: 13, Name: "Half-Life", Slug: "half-life", Type: game.CollectionFranchise}},
	}
}

/*
TestUpdater_SeedsAggregates verifies that missing documents are created with
the compact digest of the entry.
*/
func TestUpdater_SeedsAggregates(t *testing.T) {
	updater, repository, _ := newUpdater()

	updater.Update(t.Context(), portal())

	company, err := repository.Company(t.Context(), 56)
	require.NoError(t, err)
	assert.Equal(t, "Valve Corporation", company.Name)
	require.Len(t, company.Developed, 1)
	require.Len(t, company.Published, 1)
	assert.Equal(t, uint64(71), company.Developed[0].ID)
	assert.Nil(t, company.Developed[0].Keywords)
	assert.Nil(t, company.Developed[0].Developers)

	series, err := repository.Collection(t.Context(), game.CollectionSeries, 87)
	require.NoError(t, err)
	require.Len(t, series.Games, 1)

	franchise, err := repository.Collection(t.Context(), game.CollectionFranchise, 13)
	require.NoError(t, err)
	assert.Equal(t, "Half-Life", franchise.Name)
	require.Len(t, franchise.Games, 1)
}

/*
TestUpdater_Idempotent verifies that folding the same entry twice replaces
its digest instead of appending a duplicate.
*/
func TestUpdater_Idempotent(t *testing.T) {
	updater, repository, docs := newUpdater()

	entry := portal()
	updater.Update(t.Context(), entry)
	entry.Name = "Portal: Still Alive"
	updater.Update(t.Context(), entry)

	company, err := repository.Company(t.Context(), 56)
	require.NoError(t, err)
	require.Len(t, company.Developed, 1)
	assert.Equal(t, "Portal: Still Alive", company.Developed[0].Name)

	assert.Equal(t, 1, docs.Len(constants.CollectionCompanies))
	assert.Equal(t, 1, docs.Len(constants.CollectionCollections))
	assert.Equal(t, 1, docs.Len(constants.CollectionFranchises))
}

/*
TestUpdater_SkipsSideContent verifies that only main titles are aggregated.
*/
func TestUpdater_SkipsSideContent(t *testing.T) {
	tests := []struct {
		category   game.Category
		aggregated bool
	}{
		{game.CategoryMain, true},
		{game.CategoryRemaster, true},
		{game.CategoryDlc, false},
		{game.CategoryBundle, false},
		{game.CategoryVersion, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			updater, _, docs := newUpdater()

			entry := portal()
			entry.Category = tt.category
			updater.Update(t.Context(), entry)

			assert.Equal(t, tt.aggregated, docs.Len(constants.CollectionCompanies) == 1)
		})
	}
}

/*
TestUpdater_KeepsOtherTitles verifies that an existing aggregate keeps the
digests of other titles.
*/
func TestUpdater_KeepsOtherTitles(t *testing.T) {
	updater, repository, _ := newUpdater()

	require.NoError(t, repository.SaveCompany(t.Context(), &game.Company{
		ID:        56,
		Name:      "Valve Corporation",
		Slug:      "valve",
		Developed: []game.Digest{{ID: 220, Name: "Half-Life 2"}},
	}))

	updater.Update(t.Context(), portal())

	company, err := repository.Company(t.Context(), 56)
	require.NoError(t, err)
	require.Len(t, company.Developed, 2)
	assert.Equal(t, uint64(220), company.Developed[0].ID)
	assert.Equal(t, uint64(71), company.Developed[1].ID)
}
