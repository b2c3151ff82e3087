// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/core/resolver"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/provider/igdb"
)

// portalCatalog is a small catalog around Portal (71) and its DLC (72).
func portalCatalog() *fakeCatalog {
	catalog := newFakeCatalog()

	catalog.games[71] = igdb.Game{
		ID:                71,
		Name:              "Portal",
		URL:               "https://www.igdb.com/games/portal",
		FirstReleaseDate:  time.Date(2007, time.October, 9, 0, 0, 0, 0, time.UTC).Unix(),
		Status:            0,
		Cover:             ptr(9),
		Collection:        ptr(87),
		Franchises:        []uint64{13},
		InvolvedCompanies: []uint64{300, 301},
		ReleaseDates:      []uint64{500},
		Genres:            []uint64{9},
		Keywords:          []uint64{40},
		Websites:          []uint64{1, 2, 3, 4},
		Artworks:          []uint64{10},
		Screenshots:       []uint64{11},
		Dlcs:              []uint64{72},
	}
	catalog.games[72] = igdb.Game{ID: 72, Name: "Portal: Still Alive", Category: 1, ParentGame: ptr(71)}

	catalog.images[9] = igdb.Image{ID: 9, ImageID: "co1x7d", Width: 264, Height: 352}
	catalog.images[10] = igdb.Image{ID: 10, ImageID: "ar5k1"}
	catalog.images[11] = igdb.Image{ID: 11, ImageID: "sc6b2"}
	catalog.collections[87] = igdb.Collection{ID: 87, Name: "Portal", Slug: "portal"}
	catalog.franchises[13] = igdb.Collection{ID: 13, Name: "Half-Life", Slug: "half-life"}
	catalog.involved[300] = igdb.InvolvedCompany{ID: 300, Company: 56, Developer: true, Publisher: true}
	catalog.involved[301] = igdb.InvolvedCompany{ID: 301, Company: 57, Developer: true}
	catalog.companies[56] = igdb.Company{ID: 56, Name: "Valve Corporation"}
	catalog.companies[57] = igdb.Company{ID: 57, Name: "DigiPen Institute"}
	catalog.releaseDates[500] = igdb.ReleaseDate{ID: 500, Category: 0, Date: time.Date(2007, time.October, 10, 0, 0, 0, 0, time.UTC).Unix()}
	catalog.genres[9] = igdb.Genre{ID: 9, Name: "Puzzle"}
	catalog.keywords[40] = igdb.Keyword{ID: 40, Name: "portals"}
	catalog.websites[1] = igdb.Website{ID: 1, Category: 1, URL: "https://www.thinkwithportals.com"}
	catalog.websites[2] = igdb.Website{ID: 2, Category: 13, URL: "https://store.steampowered.com/app/400"}
	catalog.websites[3] = igdb.Website{ID: 3, Category: 99, URL: "https://example.com"}
	catalog.websites[4] = igdb.Website{ID: 4, Category: 17, URL: "https://www.gog.com/game/portal"}

	return catalog
}

func portalSteam() *game.SteamData {
	return &game.SteamData{
		Name:        "Portal",
		SteamAppID:  400,
		ReleaseDate: game.SteamReleaseDate{Date: "Oct 10, 2007"},
		Developers:  []string{"Valve"},
		Publishers:  []string{"Valve"},
		Score:       &game.SteamScore{ReviewScore: 98, TotalReviews: 50000},
		Metacritic:  &game.SteamMetacritic{Score: 90},
	}
}

/*
TestResolve_Idempotent verifies that re-resolving an unchanged title yields
a byte-for-byte identical entry.
*/
func TestResolve_Idempotent(t *testing.T) {
	catalog := portalCatalog()
	catalog.externals[71] = []igdb.ExternalGame{{Game: 71, UID: "400", Category: igdb.ExternalSteam}}
	steam := &fakeSteam{apps: map[string]*game.SteamData{"400": portalSteam()}, tags: []string{"Puzzle", "First-Person"}}
	service, _ := newService(catalog, resolver.Providers{Steam: steam})

	first, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, firstJSON, secondJSON)

	stored, err := service.Entry(t.Context(), 71)
	require.NoError(t, err)
	assert.Equal(t, "Portal", stored.Name)
}

/*
TestResolve_PrimaryFields verifies the merged identity of a fully mapped title.
*/
func TestResolve_PrimaryFields(t *testing.T) {
	catalog := portalCatalog()
	catalog.externals[71] = []igdb.ExternalGame{{Game: 71, UID: "400", Category: igdb.ExternalSteam}}
	data := portalSteam()
	data.Screenshots = []game.SteamImage{{ID: 0, PathFull: "https://cdn.steam/ss_0.jpg"}}
	steam := &fakeSteam{apps: map[string]*game.SteamData{"400": data}, tags: []string{"Puzzle"}}
	service, docs := newService(catalog, resolver.Providers{Steam: steam})

	entry, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	require.NotNil(t, entry.Cover)
	assert.Equal(t, "co1x7d", entry.Cover.ImageID)
	assert.Equal(t, []game.CollectionDigest{{ID: 87, Name: "Portal", Slug: "portal", Type: game.CollectionSeries}}, entry.Collections)
	assert.Equal(t, []string{"Puzzle"}, entry.IgdbGenres)
	assert.Equal(t, []string{"portals"}, entry.Keywords)

	// Steam lists only Valve, so DigiPen is narrowed away.
	require.Len(t, entry.Developers, 1)
	assert.Equal(t, "valve", entry.Developers[0].Slug)
	assert.Equal(t, game.RoleDevPub, entry.Developers[0].Role)
	require.Len(t, entry.Publishers, 1)

	require.NotNil(t, entry.Scores.Metacritic)
	assert.Equal(t, uint64(90), *entry.Scores.Metacritic)
	assert.Equal(t, game.SourceSteam, entry.Scores.MetacriticSource)
	assert.Equal(t, game.TierExcellent, entry.Scores.EspyTier)

	require.NotNil(t, entry.SteamData)
	assert.Equal(t, []string{"Puzzle"}, entry.SteamData.UserTags)
	assert.Empty(t, entry.Screenshots)
	require.Len(t, entry.Artwork, 1)

	require.Len(t, entry.Dlcs, 1)
	assert.Equal(t, "Portal: Still Alive", entry.Dlcs[0].Name)

	assert.Equal(t, fixedNow.Unix(), entry.LastUpdated)
	_, err = docs.Read(t.Context(), constants.CollectionNeedsAnnotation, "71")
	assert.NoError(t, err)
}

/*
TestResolve_SteamFailure verifies that a failing storefront leaves its data
empty while the catalog fields are populated.
*/
func TestResolve_SteamFailure(t *testing.T) {
	catalog := portalCatalog()
	catalog.externals[71] = []igdb.ExternalGame{{Game: 71, UID: "400", Category: igdb.ExternalSteam}}
	steam := &fakeSteam{fail: apperr.RequestError("steam", errors.New("connection reset"))}
	service, _ := newService(catalog, resolver.Providers{Steam: steam})

	entry, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	assert.Nil(t, entry.SteamData)
	assert.Equal(t, "Portal", entry.Name)
	assert.NotNil(t, entry.Cover)
	assert.Len(t, entry.Developers, 2)
	assert.Len(t, entry.Collections, 1)
	assert.Len(t, entry.Franchises, 1)
	assert.Equal(t, catalog.releaseDates[500].Date, entry.ReleaseDate)
	assert.Len(t, entry.Screenshots, 1)
	assert.Nil(t, entry.Scores.Metacritic)
}

/*
TestResolve_Websites verifies the website mapping and the leading catalog page.
*/
func TestResolve_Websites(t *testing.T) {
	service, _ := newService(portalCatalog(), resolver.Providers{})

	entry, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	assert.Equal(t, []game.Website{
		{URL: "https://www.igdb.com/games/portal", Authority: game.AuthorityIgdb},
		{URL: "https://www.thinkwithportals.com", Authority: game.AuthorityOfficial},
		{URL: "https://store.steampowered.com/app/400", Authority: game.AuthoritySteam},
		{URL: "https://www.gog.com/game/portal", Authority: game.AuthorityGog},
	}, entry.Websites)
}

/*
TestResolve_SteamFromWebsite verifies that a storefront website supplies the
app id when the catalog has no storefront mapping.
*/
func TestResolve_SteamFromWebsite(t *testing.T) {
	steam := &fakeSteam{apps: map[string]*game.SteamData{"400": portalSteam()}}
	service, _ := newService(portalCatalog(), resolver.Providers{Steam: steam})

	entry, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	require.NotNil(t, entry.SteamData)
	assert.Equal(t, uint64(400), entry.SteamData.SteamAppID)
	require.NotNil(t, entry.Scores.Thumbs)
	assert.Equal(t, uint64(98), *entry.Scores.Thumbs)
}

/*
TestResolve_Bundle verifies that a bundle lists the digests of its members.
*/
func TestResolve_Bundle(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.games[100] = igdb.Game{ID: 100, Name: "The Orange Box", Category: 3}
	catalog.games[101] = igdb.Game{ID: 101, Name: "Half-Life 2", ParentGame: nil}
	catalog.games[102] = igdb.Game{ID: 102, Name: "Team Fortress 2"}
	catalog.bundles[100] = []uint64{101, 102}
	service, _ := newService(catalog, resolver.Providers{})

	entry, err := service.Retrieve(t.Context(), 100)
	require.NoError(t, err)

	assert.Equal(t, game.CategoryBundle, entry.Category)
	require.Len(t, entry.Contents, 2)
	assert.Equal(t, uint64(101), entry.Contents[0].ID)
	assert.Equal(t, "Team Fortress 2", entry.Contents[1].Name)

	// Members came with the bundle query and are not fetched again.
	assert.Zero(t, catalog.fetched[101])
	assert.Zero(t, catalog.fetched[102])
}

/*
TestResolve_SelfReference verifies that a title listed as its own relative
gets its own digest and is never resolved again.
*/
func TestResolve_SelfReference(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.games[5] = igdb.Game{ID: 5, Name: "Ouroboros", ParentGame: ptr(5), Dlcs: []uint64{6, 6}, Remasters: []uint64{5}}
	catalog.games[6] = igdb.Game{ID: 6, Name: "Ouroboros: Tail", Category: 1, ParentGame: ptr(5)}
	service, _ := newService(catalog, resolver.Providers{})

	entry, err := service.Retrieve(t.Context(), 5)
	require.NoError(t, err)

	require.NotNil(t, entry.Parent)
	assert.Equal(t, uint64(5), entry.Parent.ID)
	require.Len(t, entry.Remasters, 1)
	assert.Equal(t, "Ouroboros", entry.Remasters[0].Name)
	require.Len(t, entry.Dlcs, 1)
	assert.Equal(t, uint64(6), entry.Dlcs[0].ID)

	assert.Zero(t, catalog.fetched[5])
	assert.Equal(t, 1, catalog.fetched[6])
}

/*
TestResolve_StoredRelatives verifies that relatives already in the store are
truncated instead of resolved.
*/
func TestResolve_StoredRelatives(t *testing.T) {
	catalog := portalCatalog()
	service, _ := newService(catalog, resolver.Providers{})

	_, err := service.Retrieve(t.Context(), 72)
	require.NoError(t, err)

	entry, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	require.Len(t, entry.Dlcs, 1)
	assert.Zero(t, catalog.fetched[72])
}

/*
TestResolve_CatalogUnavailable verifies that a resolve fails only when every
attempted catalog lookup failed on transport.
*/
func TestResolve_CatalogUnavailable(t *testing.T) {
	catalog := portalCatalog()
	source := catalog.games[71]
	catalog.fail = apperr.RequestError("igdb", errors.New("503"))
	service, _ := newService(catalog, resolver.Providers{})

	_, err := service.Resolve(t.Context(), source)

	require.Error(t, err)
	assert.True(t, apperr.IsRequestError(err))
}

/*
TestResolveDigest_PartialCatalogFailure verifies that failed primary lookups
leave their fields empty while the rest of the digest is filled.
*/
func TestResolveDigest_PartialCatalogFailure(t *testing.T) {
	catalog := portalCatalog()
	catalog.failOn = map[string]error{
		"Cover":             apperr.RequestError("igdb", errors.New("503")),
		"InvolvedCompanies": apperr.RequestError("igdb", errors.New("503")),
	}
	service, _ := newService(catalog, resolver.Providers{})

	entry, err := service.ResolveDigest(t.Context(), catalog.games[71])
	require.NoError(t, err)

	assert.Nil(t, entry.Cover)
	assert.Empty(t, entry.Developers)
	assert.Empty(t, entry.Publishers)

	assert.Equal(t, []game.CollectionDigest{{ID: 87, Name: "Portal", Slug: "portal", Type: game.CollectionSeries}}, entry.Collections)
	require.Len(t, entry.Franchises, 1)
	assert.Equal(t, "Half-Life", entry.Franchises[0].Name)
	assert.NotZero(t, entry.ReleaseDate)
	assert.Equal(t, []string{"Puzzle"}, entry.IgdbGenres)
}

/*
TestResolveDigest_ReleaseDate verifies the precedence between catalog and
storefront dates on a resolved entry.
*/
func TestResolveDigest_ReleaseDate(t *testing.T) {
	steamDate := time.Date(2007, time.October, 10, 12, 0, 0, 0, time.UTC).Unix()
	catalogDate := time.Date(2007, time.October, 9, 0, 0, 0, 0, time.UTC).Unix()
	obsolete := time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

	tests := []struct {
		name     string
		category int
		date     int64
		want     int64
	}{
		{"future_catalog_date", 2, obsolete, steamDate},
		{"exact_catalog_date", 0, catalogDate, catalogDate},
		{"missing_catalog_date", 2, 0, steamDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := portalCatalog()
			catalog.releaseDates[500] = igdb.ReleaseDate{ID: 500, Category: tt.category, Date: tt.date}
			catalog.externals[71] = []igdb.ExternalGame{{Game: 71, UID: "400", Category: igdb.ExternalSteam}}

			source := catalog.games[71]
			source.FirstReleaseDate = 0
			steam := &fakeSteam{apps: map[string]*game.SteamData{"400": portalSteam()}}
			service, _ := newService(catalog, resolver.Providers{Steam: steam})

			entry, err := service.ResolveDigest(t.Context(), source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.ReleaseDate)
		})
	}
}

/*
TestResolveDigest_Hype verifies that only unreleased titles carry hype.
*/
func TestResolveDigest_Hype(t *testing.T) {
	tests := []struct {
		name   string
		status int
		date   int64
		want   *uint64
	}{
		{"released", 0, 0, nil},
		{"announced_undated", 2, 0, ptr(150)},
		{"announced_past", 2, fixedNow.AddDate(-1, 0, 0).Unix(), nil},
		{"announced_future", 2, fixedNow.AddDate(1, 0, 0).Unix(), ptr(150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newService(newFakeCatalog(), resolver.Providers{})
			source := igdb.Game{ID: 1, Name: "Half-Life 3", Status: tt.status, FirstReleaseDate: tt.date, Follows: 100, Hypes: 50}

			entry, err := service.ResolveDigest(t.Context(), source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Scores.Hype)
		})
	}
}

/*
TestResolveDigest_Wikipedia verifies that stored encyclopedia data fills in
the score and narrows companies when the storefront is missing.
*/
func TestResolveDigest_Wikipedia(t *testing.T) {
	catalog := portalCatalog()
	service, docs := newService(catalog, resolver.Providers{})
	_, err := docs.Write(t.Context(), constants.CollectionWikipedia, "71",
		json.RawMessage(`{"developers":["Valve"],"publishers":["Valve"],"score":90}`))
	require.NoError(t, err)

	entry, err := service.ResolveDigest(t.Context(), catalog.games[71])
	require.NoError(t, err)

	require.NotNil(t, entry.Scores.Metacritic)
	assert.Equal(t, uint64(90), *entry.Scores.Metacritic)
	assert.Equal(t, game.SourceWikipedia, entry.Scores.MetacriticSource)
	require.Len(t, entry.Developers, 1)
	assert.Equal(t, "valve", entry.Developers[0].Slug)
}

/*
TestResolveDigest_GenreAnnotation verifies that an existing annotation is
copied and no marker is written.
*/
func TestResolveDigest_GenreAnnotation(t *testing.T) {
	catalog := portalCatalog()
	service, docs := newService(catalog, resolver.Providers{})
	_, err := docs.Write(t.Context(), constants.CollectionGenres, "71", json.RawMessage(`{"espy_genres":["Puzzler"]}`))
	require.NoError(t, err)

	entry, err := service.ResolveDigest(t.Context(), catalog.games[71])
	require.NoError(t, err)

	assert.Equal(t, []string{"Puzzler"}, entry.EspyGenres)
	assert.Zero(t, docs.Len(constants.CollectionNeedsAnnotation))
}

/*
TestDigest verifies that a digest is read from the store before the catalog
is consulted, and that catalog digests are not stored.
*/
func TestDigest(t *testing.T) {
	catalog := portalCatalog()
	service, docs := newService(catalog, resolver.Providers{})

	digest, err := service.Digest(t.Context(), 72)
	require.NoError(t, err)
	assert.Equal(t, "Portal: Still Alive", digest.Name)
	assert.Zero(t, docs.Len(constants.CollectionGames))

	_, err = service.Digest(t.Context(), 4040)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestDigests verifies batch digests in request order with unknown ids skipped.
*/
func TestDigests(t *testing.T) {
	catalog := portalCatalog()
	service, _ := newService(catalog, resolver.Providers{})

	_, err := service.Retrieve(t.Context(), 71)
	require.NoError(t, err)

	digests, err := service.Digests(t.Context(), []uint64{72, 999, 71, 72})
	require.NoError(t, err)
	require.Len(t, digests, 2)
	assert.Equal(t, uint64(72), digests[0].ID)
	assert.Equal(t, uint64(71), digests[1].ID)

	_, err = service.Digests(t.Context(), nil)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestSearch verifies the relevance threshold and the base game filter.
*/
func TestSearch(t *testing.T) {
	catalog := portalCatalog()
	catalog.searchResult = []igdb.Game{
		{ID: 74, Name: "Portal Knights"},
		{ID: 71, Name: "Portal", Cover: ptr(9)},
		{ID: 75, Name: "Portal", ParentGame: ptr(71)},
		{ID: 76, Name: "Unrelated Racer"},
	}
	service, _ := newService(catalog, resolver.Providers{})

	tests := []struct {
		name         string
		baseGameOnly bool
		want         []uint64
	}{
		{"all_titles", false, []uint64{71, 75}},
		{"base_games_only", true, []uint64{71}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := service.Search(t.Context(), "Portal", tt.baseGameOnly)
			require.NoError(t, err)

			var ids []uint64
			for _, entry := range entries {
				ids = append(ids, entry.ID)
			}
			assert.Equal(t, tt.want, ids)
			require.NotNil(t, entries[0].Cover)
			assert.Equal(t, "co1x7d", entries[0].Cover.ImageID)
		})
	}
}
