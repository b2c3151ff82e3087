// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/internal/provider/metacritic"
)

// outcome is the result slot of one concurrent lookup. It is written by
// exactly one goroutine and read only after the group is joined.
type outcome[T any] struct {
	value     T
	err       error
	attempted bool
}

func (result *outcome[T]) tried() bool    { return result.attempted }
func (result *outcome[T]) failure() error { return result.err }

// ok reports whether the lookup ran and succeeded.
func (result *outcome[T]) ok() bool { return result.attempted && result.err == nil }

// spawn runs fetch on the group and returns the slot its result lands in.
func spawn[T any](group *errgroup.Group, fetch func() (T, error)) *outcome[T] {
	result := &outcome[T]{attempted: true}
	group.Go(func() error {
		result.value, result.err = fetch()
		return nil
	})
	return result
}

func skipped[T any]() *outcome[T] {
	return &outcome[T]{}
}

type attempt interface {
	tried() bool
	failure() error
}

// catalogUnavailable reports whether every attempted lookup failed on transport.
func catalogUnavailable(attempts ...attempt) bool {
	tried := 0
	for _, a := range attempts {
		if !a.tried() {
			continue
		}
		tried++
		if !apperr.IsRequestError(a.failure()) {
			return false
		}
	}
	return tried > 0
}

// ResolveDigest builds the identity record of a title: cover, collections,
// franchises, companies, release date, scores and genres. The entry is handed
// to the aggregates before it is returned but is not stored.
func (service *Service) ResolveDigest(context context.Context, source igdb.Game) (*game.Entry, error) {
	entry := game.NewEntry(source)
	externals := service.externalIDs(context, source.ID)

	var group errgroup.Group

	cover := skipped[*game.Image]()
	if source.Cover != nil {
		cover = spawn(&group, func() (*game.Image, error) {
			record, err := service.catalog.Cover(context, *source.Cover)
			if err != nil {
				return nil, err
			}
			image := game.ImageFromIGDB(*record)
			return &image, nil
		})
	}

	collections := skipped[[]game.CollectionDigest]()
	if ids := sortedIDs(source.Collection, source.Collections); len(ids) > 0 {
		collections = spawn(&group, func() ([]game.CollectionDigest, error) {
			return service.collectionDigests(context, game.CollectionSeries, ids)
		})
	}

	franchises := skipped[[]game.CollectionDigest]()
	if ids := sortedIDs(source.Franchise, source.Franchises); len(ids) > 0 {
		franchises = spawn(&group, func() ([]game.CollectionDigest, error) {
			return service.collectionDigests(context, game.CollectionFranchise, ids)
		})
	}

	companies := skipped[[]game.CompanyDigest]()
	if len(source.InvolvedCompanies) > 0 {
		companies = spawn(&group, func() ([]game.CompanyDigest, error) {
			return service.involvedCompanies(context, source.InvolvedCompanies)
		})
	}

	releases := skipped[[]igdb.ReleaseDate]()
	if len(source.ReleaseDates) > 0 {
		releases = spawn(&group, func() ([]igdb.ReleaseDate, error) {
			return service.catalog.ReleaseDates(context, source.ReleaseDates)
		})
	}

	genres := skipped[[]string]()
	if len(source.Genres) > 0 {
		genres = spawn(&group, func() ([]string, error) {
			return service.genreNames(context, source.Genres)
		})
	}

	steam := skipped[*game.SteamData]()
	if appID, ok := externals["steam"]; ok && service.providers.Steam != nil {
		steam = spawn(&group, func() (*game.SteamData, error) {
			return service.providers.Steam.AppData(context, appID)
		})
	}

	score := skipped[uint64]()
	if slug := metacritic.GuessSlug(source.URL); slug != "" && service.providers.Metacritic != nil {
		score = spawn(&group, func() (uint64, error) {
			return service.providers.Metacritic.Score(context, slug)
		})
	}

	gog := skipped[*game.GogData]()
	if productID, ok := externals["gog"]; ok {
		gog = spawn(&group, func() (*game.GogData, error) {
			return service.gogData(context, productID)
		})
	}

	wikipedia := spawn(&group, func() (*game.WikipediaData, error) {
		return service.games.Wikipedia(context, source.ID)
	})

	annotation := spawn(&group, func() (*game.GenreAnnotation, error) {
		return service.games.GenreAnnotation(context, source.ID)
	})

	_ = group.Wait()

	if catalogUnavailable(cover, collections, franchises, companies, releases) {
		return nil, apperr.RequestError("igdb", fmt.Errorf("every catalog lookup failed for game %d", source.ID))
	}

	service.warnOn(source, "cover", cover.err)
	service.warnOn(source, "collections", collections.err)
	service.warnOn(source, "franchises", franchises.err)
	service.warnOn(source, "companies", companies.err)
	service.warnOn(source, "release_dates", releases.err)
	service.warnOn(source, "genres", genres.err)
	service.warnOn(source, "steam", steam.err)
	service.warnOn(source, "metacritic", score.err)
	service.warnOn(source, "gog", gog.err)
	service.warnOn(source, "wikipedia", wikipedia.err)

	// ── Identity ─────────────────────────────────────────────────────────
	entry.Cover = cover.value
	entry.Collections = collections.value
	entry.Franchises = franchises.value
	entry.IgdbGenres = genres.value
	for _, company := range companies.value {
		if company.Role.IsDeveloper() {
			entry.Developers = append(entry.Developers, company)
		}
		if company.Role.IsPublisher() {
			entry.Publishers = append(entry.Publishers, company)
		}
	}

	// ── Release date ─────────────────────────────────────────────────────
	now := service.now()
	catalogDate, exact := catalogReleaseDate(releases.value, source.FirstReleaseDate)
	entry.ReleaseDate = catalogDate
	if steam.value != nil {
		entry.ReleaseDate = pickReleaseDate(catalogDate, exact, steam.value.ReleaseDate.Date, now)
	}

	// ── Scores ───────────────────────────────────────────────────────────
	if steam.value != nil {
		entry.SteamData = steam.value
		applySteam(entry, steam.value)
	}
	if score.ok() {
		entry.Scores.AddAggregate(score.value, game.SourceMetacritic)
	}
	if wiki := wikipedia.value; wiki != nil && (steam.value == nil || !score.ok()) {
		entry.Scores.AddAggregate(wiki.Score, game.SourceWikipedia)
		if steam.value == nil {
			entry.Developers = narrowCompanies(entry.Developers, wiki.Developers)
			entry.Publishers = narrowCompanies(entry.Publishers, wiki.Publishers)
		}
	}
	if gog.value != nil {
		entry.GogData = gog.value
		entry.Scores.AddAggregate(gog.value.CriticScore, game.SourceGog)
	}
	if entry.Status != game.StatusReleased && (entry.ReleaseDate == 0 || entry.ReleaseDate > now.Unix()) {
		if hype := source.Follows + source.Hypes; hype > 0 {
			entry.Scores.Hype = &hype
		}
	}
	entry.Scores.Finalize(entry.ReleaseDate)

	// ── Genres ───────────────────────────────────────────────────────────
	switch {
	case annotation.err == nil:
		entry.EspyGenres = slices.Clone(annotation.value.EspyGenres)
	case apperr.IsNotFound(annotation.err):
		request := game.AnnotationRequest{ID: entry.ID, Name: entry.Name, RequestedAt: now.Unix()}
		if err := service.games.RequestAnnotation(context, request); err != nil {
			service.logger.Warn("annotation_request_failed", slog.Uint64("game_id", entry.ID), slog.Any("error", err))
		}
	default:
		service.warnOn(source, "genre_annotation", annotation.err)
	}

	entry.LastUpdated = now.Unix()

	if service.aggregates != nil {
		service.aggregates.Update(context, entry)
	}

	service.logger.Debug("resolve_digest_finished", slog.Uint64("game_id", entry.ID), slog.String("name", entry.Name))
	return entry, nil
}

// applySteam merges storefront data into companies and scores.
func applySteam(entry *game.Entry, data *game.SteamData) {
	entry.Developers = narrowCompanies(entry.Developers, data.Developers)
	entry.Publishers = narrowCompanies(entry.Publishers, data.Publishers)

	if data.Score != nil {
		entry.Scores.AddSteam(data.Score.ReviewScore, data.Score.TotalReviews)
	}
	if data.Metacritic != nil {
		entry.Scores.AddAggregate(data.Metacritic.Score, game.SourceSteam)
	}
}

// narrowCompanies keeps the companies another source also lists, unless
// none of them is listed.
func narrowCompanies(companies []game.CompanyDigest, names []string) []game.CompanyDigest {
	if len(names) == 0 || len(companies) == 0 {
		return companies
	}

	listed := make(map[string]struct{}, len(names))
	for _, name := range names {
		listed[game.CompanySlug(name)] = struct{}{}
	}

	var narrowed []game.CompanyDigest
	for _, company := range companies {
		if _, ok := listed[company.Slug]; ok {
			narrowed = append(narrowed, company)
		}
	}
	if len(narrowed) == 0 {
		return companies
	}
	return narrowed
}

// # Lookups

// externalIDs maps storefront names to the title's ids on them.
func (service *Service) externalIDs(context context.Context, gameID uint64) map[string]string {
	ids := make(map[string]string)

	externals, err := service.catalog.ExternalGames(context, gameID)
	if err != nil {
		service.logger.Warn("external_games_failed", slog.Uint64("game_id", gameID), slog.Any("error", err))
		return ids
	}

	for _, external := range externals {
		var store string
		switch external.Category {
		case igdb.ExternalSteam:
			store = "steam"
		case igdb.ExternalGog:
			store = "gog"
		default:
			continue
		}
		if _, ok := ids[store]; !ok && external.UID != "" {
			ids[store] = external.UID
		}
	}
	return ids
}

func (service *Service) collectionDigests(context context.Context, kind game.CollectionType, ids []uint64) ([]game.CollectionDigest, error) {
	fetch := service.catalog.Collections
	if kind == game.CollectionFranchise {
		fetch = service.catalog.Franchises
	}

	records, err := cachedLookup(context, service.docs, service.logger, game.CollectionName(kind), ids, collectionID, fetch)
	if err != nil {
		return nil, err
	}

	digests := make([]game.CollectionDigest, 0, len(records))
	for _, record := range records {
		digests = append(digests, game.CollectionDigest{ID: record.ID, Name: record.Name, Slug: record.Slug, Type: kind})
	}
	return digests, nil
}

func (service *Service) involvedCompanies(context context.Context, ids []uint64) ([]game.CompanyDigest, error) {
	involved, err := service.catalog.InvolvedCompanies(context, ids)
	if err != nil {
		return nil, err
	}

	companyIDs := make([]uint64, 0, len(involved))
	for _, record := range involved {
		companyIDs = append(companyIDs, record.Company)
	}

	companies, err := cachedLookup(context, service.docs, service.logger, constants.CollectionCompanies, companyIDs, companyID, service.catalog.Companies)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]igdb.Company, len(companies))
	for _, company := range companies {
		byID[company.ID] = company
	}

	seen := make(map[uint64]struct{}, len(involved))
	digests := make([]game.CompanyDigest, 0, len(involved))
	for _, record := range involved {
		company, ok := byID[record.Company]
		if _, dup := seen[record.Company]; !ok || dup {
			continue
		}
		seen[record.Company] = struct{}{}

		digests = append(digests, game.CompanyDigest{
			ID:   company.ID,
			Name: company.Name,
			Slug: game.CompanySlug(company.Name),
			Role: game.RoleFromFlags(record),
		})
	}
	return digests, nil
}

func (service *Service) genreNames(context context.Context, ids []uint64) ([]string, error) {
	genres, err := cachedLookup(context, service.docs, service.logger, constants.CollectionIgdbGenres, ids, genreID, service.catalog.Genres)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		names = append(names, genre.Name)
	}
	return names, nil
}

// gogData reads the product data stored with the GOG mapping, falling back
// to the GOG API.
func (service *Service) gogData(context context.Context, productID string) (*game.GogData, error) {
	external, err := service.games.ExternalGame(context, "gog", productID)
	if err == nil && external.GogData != nil {
		return external.GogData, nil
	}
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	if service.providers.Gog == nil {
		return nil, apperr.NotFound(fmt.Sprintf("gog data of %s", productID))
	}
	return service.providers.Gog.Product(context, productID)
}

// warnOn logs a failed enrichment lookup. Missing data is not a warning.
func (service *Service) warnOn(source igdb.Game, lookup string, err error) {
	if err == nil {
		return
	}

	attributes := []any{
		slog.Uint64("game_id", source.ID),
		slog.String("lookup", lookup),
		slog.Any("error", err),
	}
	if apperr.IsNotFound(err) {
		service.logger.Debug("resolve_lookup_empty", attributes...)
		return
	}
	service.logger.Warn("resolve_lookup_failed", attributes...)
}

func collectionID(record igdb.Collection) uint64 { return record.ID }
func companyID(record igdb.Company) uint64       { return record.ID }
func genreID(record igdb.Genre) uint64           { return record.ID }
func keywordID(record igdb.Keyword) uint64       { return record.ID }
