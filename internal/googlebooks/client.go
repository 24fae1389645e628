// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

const (
	// BreakerName labels the circuit breaker in logs and metrics.
	BreakerName = "google-books"

	// DefaultBaseURL is the public Google Books API root.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// maxPageSize is the largest maxResults the volumes endpoint accepts.
	maxPageSize = 40

	// maxErrorBodySize limits the response body read for error reporting.
	maxErrorBodySize = 64 * 1024 // 64KB
)

var (
	// ErrRateLimited is returned when the API answers HTTP 429.
	ErrRateLimited = errors.New("google books: rate limited")

	// ErrUnavailable is returned while the circuit breaker rejects requests.
	ErrUnavailable = errors.New("google books: circuit open")

	// errCallerDone marks failures caused by the caller's context ending,
	// whether canceled or past its deadline.
	errCallerDone = errors.New("google books: caller context done")
)

// Client searches Google Books volumes with client-side rate limiting and a
// circuit breaker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]recommend.ExternalVolume]
	logger     zerolog.Logger
}

var _ recommend.ExternalSearcher = (*Client)(nil)

// New creates a client from cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.ExternalConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return NewWithHTTPClient(cfg, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient creates a client that sends requests through hc.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWithHTTPClient(cfg *config.ExternalConfig, hc *http.Client, logger zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		httpClient: hc,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "googlebooks").Logger(),
	}
	c.cb = newBreaker(cfg, c.logger)
	return c
}

func newBreaker(cfg *config.ExternalConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]recommend.ExternalVolume] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(BreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]recommend.ExternalVolume](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= failures
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},

		// Cancellations and deadlines belong to the caller, not the remote API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerDone)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// Search returns up to maxResults volumes matching term.
func (c *Client) Search(ctx context.Context, term string, maxResults int) ([]recommend.ExternalVolume, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > maxPageSize {
		maxResults = maxPageSize
	}

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordExternalSearch(BreakerName, "canceled", time.Since(start))
		return nil, fmt.Errorf("google books: wait for rate limiter: %w", err)
	}

	volumes, err := c.cb.Execute(func() ([]recommend.ExternalVolume, error) {
		vols, err := c.search(ctx, term, maxResults)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerDone, err)
		}
		return vols, err
	})
	outcome := c.recordBreakerResult(err)
	metrics.RecordExternalSearch(BreakerName, outcome, time.Since(start))

	if err != nil {
		if outcome == "rejected" {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	c.logger.Debug().Str("term", term).Int("returned", len(volumes)).Msg("external search completed")
	return volumes, nil
}

// State reports the circuit breaker state.
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

// recordBreakerResult updates circuit breaker metrics and returns the search
// outcome label.
func (c *Client) recordBreakerResult(err error) string {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(BreakerName).Set(0)
		return "success"
	case errors.Is(err, errCallerDone):
		metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "canceled").Inc()
		return "canceled"
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "rejected").Inc()
		c.logger.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		return "rejected"
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(BreakerName).Set(float64(c.cb.Counts().ConsecutiveFailures))
		if errors.Is(err, ErrRateLimited) {
			return "rate_limited"
		}
		return "error"
	}
}

func (c *Client) search(ctx context.Context, term string, maxResults int) ([]recommend.ExternalVolume, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := c.baseURL + "/volumes?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("google books: unexpected status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("google books: decode response: %w", err)
	}
	return payload.toVolumes(maxResults), nil
}

// readBodyForError reads the response body for error reporting (max 64KB)
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
