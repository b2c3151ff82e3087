// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package steam reads store data, review scores, user tags and owned games
from the Steam storefront.

All calls share one budget of 200 requests per 5 minutes with at most 7 in
flight.
*/
package steam

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/throttle"
	"github.com/taibuivan/espy/internal/provider/web"
)

const (
	DefaultStoreURL = "https://store.steampowered.com"
	DefaultAPIURL   = "https://api.steampowered.com"

	storefront = "steam"
	tagsClass  = "glance_tags"
)

// Options configures a [Client]. Empty URLs fall back to the public hosts.
type Options struct {
	StoreURL   string
	APIURL     string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *throttle.Limiter
}

// Client is the Steam storefront client.
type Client struct {
	storeURL string
	apiURL   string
	apiKey   string
	fetcher  *web.Fetcher
	logger   *slog.Logger
}

func NewClient(options Options, logger *slog.Logger) *Client {
	storeURL := strings.TrimRight(options.StoreURL, "/")
	if storeURL == "" {
		storeURL = DefaultStoreURL
	}
	apiURL := strings.TrimRight(options.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	// Age-gated pages redirect without a birth date cookie
	headers := http.Header{}
	headers.Set("Cookie", "birthtime=0; path=/; max-age=315360000")

	limiter := options.Limiter
	if limiter == nil {
		limiter = throttle.New(constants.SteamRequests, constants.SteamInterval, constants.SteamConcurrency)
	}

	return &Client{
		storeURL: storeURL,
		apiURL:   apiURL,
		apiKey:   options.APIKey,
		fetcher:  web.NewFetcher(storefront, options.HTTPClient, limiter, headers, logger),
		logger:   logger,
	}
}

// # Store Data

// AppData returns the store record of appID with its review score attached.
// A failing score lookup only leaves the score empty.
func (client *Client) AppData(context context.Context, appID string) (*game.SteamData, error) {
	score, err := client.AppScore(context, appID)
	if err != nil {
		client.logger.Warn("steam_score_failed", slog.String("app_id", appID), slog.Any("error", err))
	}

	data, err := client.AppDetails(context, appID)
	if err != nil {
		return nil, err
	}

	data.Score = score
	return data, nil
}

type appDetailsResponse struct {
	Success bool           `json:"success"`
	Data    game.SteamData `json:"data"`
}

// AppDetails returns the store record of appID.
func (client *Client) AppDetails(context context.Context, appID string) (*game.SteamData, error) {
	url := fmt.Sprintf("%s/api/appdetails?appids=%s&l=english", client.storeURL, appID)

	var response map[string]appDetailsResponse
	if err := client.fetcher.GetJSON(context, url, &response); err != nil {
		return nil, err
	}

	details, ok := response[appID]
	if !ok || !details.Success {
		return nil, apperr.NotFound(fmt.Sprintf("steam app %s", appID))
	}
	return &details.Data, nil
}

type appReviewsResponse struct {
	QuerySummary struct {
		ReviewScoreDesc string `json:"review_score_desc"`
		TotalPositive   uint64 `json:"total_positive"`
		TotalReviews    uint64 `json:"total_reviews"`
	} `json:"query_summary"`
}

// AppScore returns the share of positive user reviews of appID.
func (client *Client) AppScore(context context.Context, appID string) (*game.SteamScore, error) {
	url := fmt.Sprintf("%s/appreviews/%s?json=1", client.storeURL, appID)

	var response appReviewsResponse
	if err := client.fetcher.GetJSON(context, url, &response); err != nil {
		return nil, err
	}

	summary := response.QuerySummary
	score := &game.SteamScore{
		TotalReviews:    summary.TotalReviews,
		ReviewScoreDesc: summary.ReviewScoreDesc,
	}
	if summary.TotalReviews > 0 {
		score.ReviewScore = uint64(math.Round(float64(summary.TotalPositive) / float64(summary.TotalReviews) * 100))
	}
	return score, nil
}

// UserTags scrapes the user-applied tags from the app's store page.
func (client *Client) UserTags(context context.Context, appID string) ([]string, error) {
	body, err := client.fetcher.Get(context, fmt.Sprintf("%s/app/%s/", client.storeURL, appID))
	if err != nil {
		return nil, err
	}

	root, err := web.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	container := web.FindByClass(root, tagsClass)
	if container == nil {
		return nil, apperr.NotFound(fmt.Sprintf("steam tags of app %s", appID))
	}

	var tags []string
	for _, anchor := range web.FindAllTags(container, "a") {
		if tag := web.Text(anchor); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// # Library

type ownedGamesResponse struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID      uint64 `json:"appid"`
			Name       string `json:"name"`
			ImgIconURL string `json:"img_icon_url"`
		} `json:"games"`
	} `json:"response"`
}

// OwnedGames lists the library of a Steam user as storefront entries.
func (client *Client) OwnedGames(context context.Context, steamID string) ([]game.StoreEntry, error) {
	if client.apiKey == "" {
		return nil, apperr.InvalidArgument("steam api key is not configured")
	}

	url := fmt.Sprintf("%s/IPlayerService/GetOwnedGames/v0001/?key=%s&steamid=%s&include_appinfo=true&format=json",
		client.apiURL, client.apiKey, steamID)

	var response ownedGamesResponse
	if err := client.fetcher.GetJSON(context, url, &response); err != nil {
		return nil, err
	}

	entries := make([]game.StoreEntry, 0, len(response.Response.Games))
	for _, owned := range response.Response.Games {
		entries = append(entries, game.StoreEntry{
			ID:             fmt.Sprintf("%d", owned.AppID),
			Title:          owned.Name,
			StorefrontName: storefront,
			Image:          owned.ImgIconURL,
		})
	}

	client.logger.Info("steam_owned_games", slog.String("steam_id", steamID), slog.Int("count", len(entries)))
	return entries, nil
}

// AppIDFromURL extracts the app id from a store page url such as
// https://store.steampowered.com/app/440/Team_Fortress_2/.
func AppIDFromURL(url string) (string, bool) {
	_, rest, found := strings.Cut(url, "store.steampowered.com/app/")
	if !found {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" || strings.Trim(id, "0123456789") != "" {
		return "", false
	}
	return id, true
}
