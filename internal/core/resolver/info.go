// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/internal/provider/steam"
)

// ResolveInfo extends a digest-resolved entry with keywords, websites,
// media, related titles and storefront tags. It only fails when ctx ends.
func (service *Service) ResolveInfo(context context.Context, entry *game.Entry) error {
	source := entry.IgdbGame

	// ── Phase 1 ──────────────────────────────────────────────────────────
	var group errgroup.Group

	keywords := skipped[[]string]()
	if len(source.Keywords) > 0 {
		keywords = spawn(&group, func() ([]string, error) {
			return service.keywordNames(context, source.Keywords)
		})
	}

	websites := skipped[[]game.Website]()
	if len(source.Websites) > 0 {
		websites = spawn(&group, func() ([]game.Website, error) {
			return service.websites(context, source.Websites)
		})
	}

	artwork := skipped[[]game.Image]()
	if len(source.Artworks) > 0 {
		artwork = spawn(&group, func() ([]game.Image, error) {
			return service.images(context, source.Artworks, service.catalog.Artworks)
		})
	}

	related := spawn(&group, func() (relatedTitles, error) {
		return service.resolveRelated(context, entry), nil
	})

	_ = group.Wait()

	service.warnOn(source, "keywords", keywords.err)
	service.warnOn(source, "websites", websites.err)
	service.warnOn(source, "artwork", artwork.err)

	entry.Keywords = keywords.value
	entry.Websites = append(entry.Websites, websites.value...)
	entry.Artwork = artwork.value
	related.value.apply(entry)

	// ── Phase 2 ──────────────────────────────────────────────────────────
	if entry.SteamData == nil && service.providers.Steam != nil {
		service.steamFromWebsites(context, entry)
	}

	group = errgroup.Group{}

	screenshots := skipped[[]game.Image]()
	if len(source.Screenshots) > 0 && (entry.SteamData == nil || len(entry.SteamData.Screenshots) == 0) {
		screenshots = spawn(&group, func() ([]game.Image, error) {
			return service.images(context, source.Screenshots, service.catalog.Screenshots)
		})
	}

	tags := skipped[[]string]()
	if entry.SteamData != nil && service.providers.Steam != nil {
		appID := strconv.FormatUint(entry.SteamData.SteamAppID, 10)
		tags = spawn(&group, func() ([]string, error) {
			return service.providers.Steam.UserTags(context, appID)
		})
	}

	_ = group.Wait()

	service.warnOn(source, "screenshots", screenshots.err)
	service.warnOn(source, "steam_tags", tags.err)

	entry.Screenshots = screenshots.value
	if tags.ok() {
		entry.SteamData.UserTags = tags.value
	}

	return context.Err()
}

// steamFromWebsites fetches storefront data through a Steam website of the
// entry when the catalog had no Steam mapping.
func (service *Service) steamFromWebsites(context context.Context, entry *game.Entry) {
	for _, website := range entry.Websites {
		if website.Authority != game.AuthoritySteam {
			continue
		}
		appID, ok := steam.AppIDFromURL(website.URL)
		if !ok {
			continue
		}

		data, err := service.providers.Steam.AppData(context, appID)
		if err != nil {
			service.warnOn(entry.IgdbGame, "steam_website", err)
			return
		}

		entry.SteamData = data
		applySteam(entry, data)
		entry.Scores.Finalize(entry.ReleaseDate)
		return
	}
}

func (service *Service) keywordNames(context context.Context, ids []uint64) ([]string, error) {
	keywords, err := cachedLookup(context, service.docs, service.logger, constants.CollectionKeywords, ids, keywordID, service.catalog.Keywords)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		names = append(names, keyword.Name)
	}
	return names, nil
}

// websites maps catalog websites to authorities, dropping unknown categories.
func (service *Service) websites(context context.Context, ids []uint64) ([]game.Website, error) {
	records, err := service.catalog.Websites(context, ids)
	if err != nil {
		return nil, err
	}

	websites := make([]game.Website, 0, len(records))
	for _, record := range records {
		if authority, ok := game.AuthorityFromIGDB(record.Category); ok {
			websites = append(websites, game.Website{URL: record.URL, Authority: authority})
		}
	}
	return websites, nil
}

func (service *Service) images(context context.Context, ids []uint64, fetch func(context.Context, []uint64) ([]igdb.Image, error)) ([]game.Image, error) {
	records, err := fetch(context, ids)
	if err != nil {
		return nil, err
	}

	images := make([]game.Image, 0, len(records))
	for _, record := range records {
		images = append(images, game.ImageFromIGDB(record))
	}
	return images, nil
}
