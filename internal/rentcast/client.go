// Package rentcast is the gateway to the RentCast sale listings API.
//
// Every failure (HTTP status, transport, decoding) is reported as an error
// ToolResult so it can be handed to the model; FetchListings never returns
// a Go error.
package rentcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"homesearch/internal/config"
	"homesearch/internal/logging"
	"homesearch/internal/metrics"
	"homesearch/internal/model"
)

// offlineAPIKey is sent when live calls are switched off
const offlineAPIKey = "0"

// Gateway outcomes
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeCached         = "cached"
)

// ListingCache stores successful listing pages keyed by request URL
type ListingCache interface {
	GetListings(ctx context.Context, key string) ([]model.ListingRecord, bool, error)
	PutListings(ctx context.Context, key string, records []model.ListingRecord) error
}

// Client queries the listings API
type Client struct {
	config     *config.RentCastConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      ListingCache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithCache enables result caching
func WithCache(cache ListingCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics records request outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.Component(l, "rentcast") }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a listings client
func NewClient(cfg *config.RentCastConfig, opts ...Option) *Client {
	c := &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logging.Discard(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestURL returns the URL a filter is fetched from
func (c *Client) RequestURL(f model.SearchFilter) string {
	return c.config.BaseURL + "?" + BuildQuery(f, c.config.PageSize)
}

// FetchListings runs one listings search and normalizes the response
func (c *Client) FetchListings(ctx context.Context, f model.SearchFilter) model.ToolResult {
	logger := logging.FromContext(ctx, c.logger)
	url := c.RequestURL(f)
	logger.Debug("constructed listings request", "url", url)

	if records, ok := c.lookup(ctx, logger, url); ok {
		c.metrics.ObserveGateway(OutcomeCached, 0)
		logger.Debug("listings served from cache", "url", url, "count", len(records))
		return model.Listings(records)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("listings rate limiter aborted", "error", err)
			return model.Failure(err.Error())
		}
	}

	start := time.Now()
	logger.Info("listings call started", "url", url)
	listings, status, err := c.do(ctx, url)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		c.metrics.ObserveGateway(OutcomeTransportError, elapsed)
		logger.Warn("listings call failed", "error", err, "took", elapsed)
		return model.Failure(err.Error())
	case status < 200 || status > 299:
		c.metrics.ObserveGateway(OutcomeHTTPError, elapsed)
		logger.Warn("listings API error", "status", status, "took", elapsed)
		return model.Failure(fmt.Sprintf("HTTP %d", status))
	}

	c.metrics.ObserveGateway(OutcomeOK, elapsed)
	logger.Info("listings call completed", "status", status, "count", len(listings), "took", elapsed)

	records := Records(listings)
	if logger.Enabled(ctx, slog.LevelDebug) {
		if b, err := json.Marshal(records); err == nil {
			logger.Debug("normalized listings", "listings", string(b))
		}
	}

	c.store(ctx, logger, url, records)
	return model.Listings(records)
}

// do performs the request. A non-2xx status is returned with a nil error.
func (c *Client) do(ctx context.Context, url string) ([]Listing, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	key := c.config.APIKey
	if !c.config.CallAPI {
		key = offlineAPIKey
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	var listings []Listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, resp.StatusCode, nil
}

func (c *Client) lookup(ctx context.Context, logger *slog.Logger, key string) ([]model.ListingRecord, bool) {
	if c.cache == nil {
		return nil, false
	}
	records, ok, err := c.cache.GetListings(ctx, key)
	switch {
	case err != nil:
		c.metrics.CacheLookup("error")
		logger.Warn("listings cache lookup failed", "error", err)
		return nil, false
	case !ok:
		c.metrics.CacheLookup("miss")
		return nil, false
	}
	c.metrics.CacheLookup("hit")
	return records, true
}

func (c *Client) store(ctx context.Context, logger *slog.Logger, key string, records []model.ListingRecord) {
	if c.cache == nil {
		return
	}
	if err := c.cache.PutListings(ctx, key, records); err != nil {
		logger.Warn("listings cache store failed", "error", err)
	}
}
