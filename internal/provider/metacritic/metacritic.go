// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metacritic reads critic scores from metacritic.com game pages.
package metacritic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/throttle"
	"github.com/taibuivan/espy/internal/provider/web"
)

const (
	DefaultBaseURL = "https://www.metacritic.com"

	scoreClass = "c-productScoreInfo_scoreNumber"
)

// Options configures a [Client].
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *throttle.Limiter
}

// Client scrapes game pages.
type Client struct {
	baseURL string
	fetcher *web.Fetcher
}

func NewClient(options Options, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := options.Limiter
	if limiter == nil {
		limiter = throttle.PerSecond(constants.MetacriticRequests, constants.MetacriticConcurrency)
	}

	return &Client{
		baseURL: baseURL,
		fetcher: web.NewFetcher("metacritic", options.HTTPClient, limiter, nil, logger),
	}
}

// Score returns the critic score on the page of slug. A page without a
// numeric score is NOT_FOUND.
func (client *Client) Score(context context.Context, slug string) (uint64, error) {
	if slug == "" {
		return 0, apperr.InvalidArgument("metacritic slug is empty")
	}

	body, err := client.fetcher.Get(context, fmt.Sprintf("%s/game/%s/", client.baseURL, slug))
	if err != nil {
		return 0, err
	}

	root, err := web.ParseHTML(body)
	if err != nil {
		return 0, err
	}

	container := web.FindByClass(root, scoreClass)
	if container == nil {
		return 0, apperr.NotFound(fmt.Sprintf("metacritic score of %s", slug))
	}

	text := web.Text(container)
	if span := web.FindTag(container, "span"); span != nil {
		text = web.Text(span)
	}

	score, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, apperr.NotFound(fmt.Sprintf("metacritic score of %s", slug))
	}
	return score, nil
}

// GuessSlug derives the page slug from a catalog url, whose last path
// segment usually matches.
func GuessSlug(igdbURL string) string {
	trimmed := strings.TrimRight(igdbURL, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}
