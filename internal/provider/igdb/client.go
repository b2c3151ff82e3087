// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package igdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/taibuivan/espy/internal/platform/apperr"
)

// Endpoints used by the lookups.
const (
	EndpointGames             = "games"
	EndpointExternalGames     = "external_games"
	EndpointCovers            = "covers"
	EndpointArtworks          = "artworks"
	EndpointScreenshots       = "screenshots"
	EndpointWebsites          = "websites"
	EndpointCollections       = "collections"
	EndpointFranchises        = "franchises"
	EndpointInvolvedCompanies = "involved_companies"
	EndpointCompanies         = "companies"
	EndpointReleaseDates      = "release_dates"
	EndpointGenres            = "genres"
	EndpointKeywords          = "keywords"
)

// Platforms kept by title search (PC Windows and DOS).
var searchPlatforms = []uint64{6, 13}

// maxPerRequest is the largest page the API returns.
const maxPerRequest = 500

// Client exposes the typed catalog lookups over a shared [Connection].
type Client struct {
	connection *Connection
}

// NewClient wraps a connection.
func NewClient(connection *Connection) *Client {
	return &Client{connection: connection}
}

// # Games

// Game returns a single title by id.
func (client *Client) Game(context context.Context, id uint64) (*Game, error) {
	var games []Game
	query := NewQuery().Where("id = %d", id)
	if err := client.connection.Post(context, EndpointGames, query, &games); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("igdb game %d", id))
	}
	return &games[0], nil
}

// Games returns the titles with the given ids. Unknown ids are skipped.
func (client *Client) Games(context context.Context, ids []uint64) ([]Game, error) {
	return lookupIDs[Game](context, client.connection, EndpointGames, "id", ids)
}

// Search finds PC titles matching the given title.
func (client *Client) Search(context context.Context, title string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 20
	}

	var games []Game
	query := NewQuery().Search(title).WhereIDs("platforms", searchPlatforms).Limit(limit)
	if err := client.connection.Post(context, EndpointGames, query, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// BundleContents returns the titles that list bundleID as one of their bundles.
func (client *Client) BundleContents(context context.Context, bundleID uint64) ([]Game, error) {
	var games []Game
	query := NewQuery().Where("bundles = (%d)", bundleID).Limit(maxPerRequest)
	if err := client.connection.Post(context, EndpointGames, query, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// # External Ids

// ExternalGames returns every storefront mapping of a title.
func (client *Client) ExternalGames(context context.Context, gameID uint64) ([]ExternalGame, error) {
	var externals []ExternalGame
	query := NewQuery().Where("game = %d", gameID).Limit(maxPerRequest)
	if err := client.connection.Post(context, EndpointExternalGames, query, &externals); err != nil {
		return nil, err
	}
	return externals, nil
}

// ExternalGame finds the catalog mapping of a storefront id. Only "steam" and
// "gog" are supported; other stores return INVALID_ARGUMENT.
func (client *Client) ExternalGame(context context.Context, store, storeID string) (*ExternalGame, error) {
	category, err := ExternalCategory(store)
	if err != nil {
		return nil, err
	}

	var externals []ExternalGame
	query := NewQuery().Where("uid = %s & category = %d", strconv.Quote(storeID), category)
	if err := client.connection.Post(context, EndpointExternalGames, query, &externals); err != nil {
		return nil, err
	}
	if len(externals) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("igdb external game %s_%s", store, storeID))
	}
	return &externals[0], nil
}

// ExternalCategory maps a storefront name to its external game category.
func ExternalCategory(store string) (int, error) {
	switch store {
	case "steam":
		return ExternalSteam, nil
	case "gog":
		return ExternalGog, nil
	default:
		return 0, apperr.InvalidArgument(fmt.Sprintf("'%s' store is not supported", store))
	}
}

// # Media

// Cover returns a cover record.
func (client *Client) Cover(context context.Context, id uint64) (*Image, error) {
	var covers []Image
	if err := client.connection.Post(context, EndpointCovers, NewQuery().Where("id = %d", id), &covers); err != nil {
		return nil, err
	}
	if len(covers) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("igdb cover %d", id))
	}
	return &covers[0], nil
}

// Artworks returns artwork records by id.
func (client *Client) Artworks(context context.Context, ids []uint64) ([]Image, error) {
	return lookupIDs[Image](context, client.connection, EndpointArtworks, "id", ids)
}

// Screenshots returns screenshot records by id.
func (client *Client) Screenshots(context context.Context, ids []uint64) ([]Image, error) {
	return lookupIDs[Image](context, client.connection, EndpointScreenshots, "id", ids)
}

// Websites returns website records by id.
func (client *Client) Websites(context context.Context, ids []uint64) ([]Website, error) {
	return lookupIDs[Website](context, client.connection, EndpointWebsites, "id", ids)
}

// # Relations

// Collections returns collection records by id.
func (client *Client) Collections(context context.Context, ids []uint64) ([]Collection, error) {
	return lookupIDs[Collection](context, client.connection, EndpointCollections, "id", ids)
}

// Franchises returns franchise records by id.
func (client *Client) Franchises(context context.Context, ids []uint64) ([]Collection, error) {
	return lookupIDs[Collection](context, client.connection, EndpointFranchises, "id", ids)
}

// InvolvedCompanies returns involvement records by id.
func (client *Client) InvolvedCompanies(context context.Context, ids []uint64) ([]InvolvedCompany, error) {
	return lookupIDs[InvolvedCompany](context, client.connection, EndpointInvolvedCompanies, "id", ids)
}

// Companies returns company records by id.
func (client *Client) Companies(context context.Context, ids []uint64) ([]Company, error) {
	return lookupIDs[Company](context, client.connection, EndpointCompanies, "id", ids)
}

// ReleaseDates returns release records by id with their status name expanded.
func (client *Client) ReleaseDates(context context.Context, ids []uint64) ([]ReleaseDate, error) {
	return lookupIDs[ReleaseDate](context, client.connection, EndpointReleaseDates, "id", ids, "id", "category", "date", "status.name")
}

// Genres returns genre records by id.
func (client *Client) Genres(context context.Context, ids []uint64) ([]Genre, error) {
	return lookupIDs[Genre](context, client.connection, EndpointGenres, "id", ids)
}

// Keywords returns keyword records by id.
func (client *Client) Keywords(context context.Context, ids []uint64) ([]Keyword, error) {
	return lookupIDs[Keyword](context, client.connection, EndpointKeywords, "id", ids)
}

// lookupIDs fetches records whose field is in ids, one page per maxPerRequest ids.
// An empty id list issues no request.
func lookupIDs[T any](context context.Context, connection *Connection, endpoint, field string, ids []uint64, fields ...string) ([]T, error) {
	var records []T

	for start := 0; start < len(ids); start += maxPerRequest {
		end := min(start+maxPerRequest, len(ids))
		chunk := ids[start:end]

		var page []T
		query := NewQuery(fields...).WhereIDs(field, chunk).Limit(len(chunk))
		if err := connection.Post(context, endpoint, query, &page); err != nil {
			return nil, err
		}
		records = append(records, page...)
	}

	return records, nil
}
