// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package igdb is the typed client for the IGDB catalog API.

Every request goes through a single [Connection], which owns the request
budget for the whole process. The typed lookups in [Client] build query
bodies with [Query] and decode the JSON arrays the API returns.

# Errors

  - Transport failure or non-2xx status: apperr REQUEST_ERROR.
  - Malformed response body: apperr INTERNAL_ERROR.
  - An empty result for a single-record lookup: apperr NOT_FOUND.
*/
package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/internal/platform/throttle"
)

// upstream names the service in REQUEST_ERROR messages.
const upstream = "igdb"

// Options configures a [Connection].
type Options struct {
	BaseURL     string
	ClientID    string
	Token       string
	QPS         float64
	Concurrency int64
	HTTPClient  *http.Client
}

// Connection is an authenticated, rate-limited channel to the catalog API.
type Connection struct {
	baseURL  string
	clientID string
	token    string
	limiter  *throttle.Limiter
	http     *http.Client
	logger   *slog.Logger
}

// NewConnection builds a Connection with its own limiter.
func NewConnection(options Options, logger *slog.Logger) *Connection {
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Connection{
		baseURL:  strings.TrimRight(options.BaseURL, "/"),
		clientID: options.ClientID,
		token:    options.Token,
		limiter:  throttle.PerSecond(options.QPS, options.Concurrency),
		http:     client,
		logger:   logger,
	}
}

// Post sends query to endpoint and decodes the JSON response into out.
func (connection *Connection) Post(context context.Context, endpoint string, query *Query, out any) error {
	release, err := connection.limiter.Enter(context)
	if err != nil {
		return apperr.RequestError(upstream, err)
	}
	defer release()

	url := fmt.Sprintf("%s/%s/", connection.baseURL, endpoint)
	body := query.String()

	request, err := http.NewRequestWithContext(context, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return apperr.Internal(fmt.Errorf("igdb: build request: %w", err))
	}
	request.Header.Set("Client-ID", connection.clientID)
	request.Header.Set("Authorization", "Bearer "+connection.token)
	request.Header.Set("Content-Type", "text/plain")
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	response, err := connection.http.Do(request)
	if err != nil {
		connection.logger.Warn("igdb_request_failed",
			slog.String("endpoint", endpoint),
			slog.Any("error", err),
		)
		return apperr.RequestError(upstream, err)
	}
	defer response.Body.Close()

	connection.logger.Debug("igdb_request",
		slog.String("endpoint", endpoint),
		slog.Int("status", response.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return apperr.RequestError(upstream, fmt.Errorf("POST %s: status %d: %s", endpoint, response.StatusCode, snippet))
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return apperr.Internal(fmt.Errorf("igdb: decode %s response: %w", endpoint, err))
	}
	return nil
}
