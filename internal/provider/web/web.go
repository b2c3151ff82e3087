// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package web holds the plumbing shared by the secondary providers: a
rate-limited GET and a few helpers for walking parsed HTML pages.
*/
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/throttle"
)

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Fetcher issues GET requests to one upstream under that upstream's budget.
type Fetcher struct {
	upstream string
	http     *http.Client
	limiter  *throttle.Limiter
	headers  http.Header
	logger   *slog.Logger
}

// NewFetcher builds a Fetcher. Headers are sent with every request.
func NewFetcher(upstream string, client *http.Client, limiter *throttle.Limiter, headers http.Header, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{
		upstream: upstream,
		http:     client,
		limiter:  limiter,
		headers:  headers,
		logger:   logger,
	}
}

// Get returns the body of url. A 404 is NOT_FOUND; any other non-2xx status
// or transport failure is REQUEST_ERROR.
func (fetcher *Fetcher) Get(context context.Context, url string) ([]byte, error) {
	release, err := fetcher.limiter.Enter(context)
	if err != nil {
		return nil, apperr.RequestError(fetcher.upstream, err)
	}
	defer release()

	request, err := http.NewRequestWithContext(context, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: build request: %w", fetcher.upstream, err))
	}
	for key, values := range fetcher.headers {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	start := time.Now()
	response, err := fetcher.http.Do(request)
	if err != nil {
		return nil, apperr.RequestError(fetcher.upstream, err)
	}
	defer response.Body.Close()

	fetcher.logger.Debug("provider_request",
		slog.String("upstream", fetcher.upstream),
		slog.Int("status", response.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	switch {
	case response.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound(url)
	case response.StatusCode < 200 || response.StatusCode > 299:
		return nil, apperr.RequestError(fetcher.upstream, fmt.Errorf("GET %s: status %d", url, response.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBody))
	if err != nil {
		return nil, apperr.RequestError(fetcher.upstream, err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into out.
func (fetcher *Fetcher) GetJSON(context context.Context, url string, out any) error {
	body, err := fetcher.Get(context, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Internal(fmt.Errorf("%s: decode %s: %w", fetcher.upstream, url, err))
	}
	return nil
}
