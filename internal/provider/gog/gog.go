// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package gog reads product data from the GOG storefront API.
package gog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/throttle"
	"github.com/taibuivan/espy/internal/provider/web"
)

const DefaultBaseURL = "https://api.gog.com"

// Options configures a [Client].
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *throttle.Limiter
}

// Client is the GOG products client.
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
		limiter = throttle.PerSecond(constants.GogRequests, constants.GogConcurrency)
	}

	headers := http.Header{}
	headers.Set("Accept-Language", "en-US;en")

	return &Client{
		baseURL: baseURL,
		fetcher: web.NewFetcher("gog", options.HTTPClient, limiter, headers, logger),
	}
}

type productResponse struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Images      struct {
		Logo string `json:"logo"`
	} `json:"images"`
	Description struct {
		Lead string `json:"lead"`
		Full string `json:"full"`
	} `json:"description"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// Product returns the storefront data of a GOG product id.
func (client *Client) Product(context context.Context, productID string) (*game.GogData, error) {
	url := fmt.Sprintf("%s/products/%s?expand=description", client.baseURL, productID)

	var product productResponse
	if err := client.fetcher.GetJSON(context, url, &product); err != nil {
		return nil, err
	}

	data := &game.GogData{
		ReleaseDate: dateOnly(product.ReleaseDate),
		Logo:        absoluteURL(product.Images.Logo),
		Description: product.Description.Full,
	}
	if data.Description == "" {
		data.Description = product.Description.Lead
	}
	for _, genre := range product.Genres {
		data.Genres = append(data.Genres, genre.Name)
	}
	for _, tag := range product.Tags {
		data.Tags = append(data.Tags, tag.Name)
	}
	return data, nil
}

// dateOnly keeps the YYYY-MM-DD prefix of a timestamp.
func dateOnly(timestamp string) string {
	if len(timestamp) < 10 {
		return ""
	}
	return timestamp[:10]
}

func absoluteURL(url string) string {
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}
