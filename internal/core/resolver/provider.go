// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"context"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/provider/igdb"
)

// Catalog is the subset of the catalog client the resolver reads from.
type Catalog interface {
	Game(context context.Context, id uint64) (*igdb.Game, error)
	Games(context context.Context, ids []uint64) ([]igdb.Game, error)
	Search(context context.Context, title string, limit int) ([]igdb.Game, error)
	BundleContents(context context.Context, bundleID uint64) ([]igdb.Game, error)
	ExternalGames(context context.Context, gameID uint64) ([]igdb.ExternalGame, error)

	Cover(context context.Context, id uint64) (*igdb.Image, error)
	Artworks(context context.Context, ids []uint64) ([]igdb.Image, error)
	Screenshots(context context.Context, ids []uint64) ([]igdb.Image, error)
	Websites(context context.Context, ids []uint64) ([]igdb.Website, error)

	Collections(context context.Context, ids []uint64) ([]igdb.Collection, error)
	Franchises(context context.Context, ids []uint64) ([]igdb.Collection, error)
	InvolvedCompanies(context context.Context, ids []uint64) ([]igdb.InvolvedCompany, error)
	Companies(context context.Context, ids []uint64) ([]igdb.Company, error)
	ReleaseDates(context context.Context, ids []uint64) ([]igdb.ReleaseDate, error)
	Genres(context context.Context, ids []uint64) ([]igdb.Genre, error)
	Keywords(context context.Context, ids []uint64) ([]igdb.Keyword, error)
}

// Steam reads storefront data. A nil Steam disables the lookups.
type Steam interface {
	AppData(context context.Context, appID string) (*game.SteamData, error)
	UserTags(context context.Context, appID string) ([]string, error)
}

// Metacritic reads critic scores by page slug.
type Metacritic interface {
	Score(context context.Context, slug string) (uint64, error)
}

// Gog reads GOG product data.
type Gog interface {
	Product(context context.Context, productID string) (*game.GogData, error)
}

// Aggregates receives every resolved entry. Implementations must not fail
// the resolve; they log their own errors.
type Aggregates interface {
	Update(context context.Context, entry *game.Entry)
}

// Providers groups the secondary sources. Any of them may be nil.
type Providers struct {
	Steam      Steam
	Metacritic Metacritic
	Gog        Gog
}
