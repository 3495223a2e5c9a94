// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package httpx provides a resilient JSON-over-HTTP client for external
// REST providers: bounded per-attempt timeouts, exponential backoff with a
// fixed attempt budget, and a circuit breaker guarding against a struggling
// upstream.
//
// Failures (network errors, timeouts, and non-2xx statuses) are treated as
// one retryable class. After the attempt budget is exhausted the last error
// propagates to the caller, carrying the HTTP status and any parsed error
// payload so callers can branch on status (e.g. treat 409 as "already
// exists").
package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/metrics"
)

// maxErrorBodyBytes bounds how much of an error response body is read.
const maxErrorBodyBytes = 8 << 10

// SleepFunc waits for the given duration or until the context is done.
// Tests inject a zero-delay implementation to assert attempt counts
// deterministically.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep waits with a timer, yielding on context cancellation.
func DefaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures a Client. BaseURL is required; everything else has
// a usable default.
type Options struct {
	// Name identifies the upstream in logs, metrics, and the breaker.
	Name string

	// BaseURL is the API root all request paths are relative to.
	BaseURL string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// RequestTimeout is the hard per-attempt timeout. Default 10s.
	RequestTimeout time.Duration

	// MaxAttempts is the total number of attempts per logical request.
	// Default 3.
	MaxAttempts int

	// BackoffBase is the delay before the first retry; the delay doubles
	// after each failed attempt. Default 300ms.
	BackoffBase time.Duration

	// Sleep is the backoff wait function. Default DefaultSleep.
	Sleep SleepFunc

	// HTTPClient performs the underlying requests. Default http.DefaultClient
	// semantics with no global timeout (per-attempt timeout is applied via
	// context).
	HTTPClient *http.Client
}

// Client performs resilient JSON requests against one upstream API.
type Client struct {
	name        string
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration
	sleep       SleepFunc
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[map[string]interface{}]
	logger      zerolog.Logger
}

// StatusError is a non-2xx response from the upstream. It carries the HTTP
// status and the parsed error payload so callers can branch on status.
type StatusError struct {
	Status  int
	Message string
	Payload map[string]interface{}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// New creates a resilient client for one upstream API.
func New(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "upstream"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 300 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = DefaultSleep
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	name := opts.Name
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[map[string]interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Statistical significance before tripping.
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &Client{
		name:        name,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		timeout:     opts.RequestTimeout,
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
		sleep:       opts.Sleep,
		httpClient:  opts.HTTPClient,
		breaker:     breaker,
		logger:      logging.With().Str("component", "httpx").Str("upstream", name).Logger(),
	}
}

// Request performs one logical JSON request with retries.
//
// The request is attempted up to MaxAttempts times; a failed attempt k
// (0-based) is followed by a wait of BackoffBase << k before the next one.
// Attempts are strictly sequential. On success the parsed JSON body is
// returned; an empty response body yields an empty object.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (map[string]interface{}, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.OutboundRequestDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.OutboundRetriesTotal.WithLabelValues(c.name).Inc()
			delay := c.backoffBase << (attempt - 1)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := c.breaker.Execute(func() (map[string]interface{}, error) {
			return c.doAttempt(ctx, method, path, payload)
		})
		if err == nil {
			metrics.OutboundAttemptsTotal.WithLabelValues(c.name, "success").Inc()
			return result, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.OutboundAttemptsTotal.WithLabelValues(c.name, "rejected").Inc()
		} else {
			metrics.OutboundAttemptsTotal.WithLabelValues(c.name, "failure").Inc()
		}

		lastErr = err
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Msg("request attempt failed")
	}

	return nil, lastErr
}

// doAttempt performs a single HTTP attempt with a hard timeout.
func (c *Client) doAttempt(ctx context.Context, method, path string, payload []byte) (map[string]interface{}, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	// Empty 2xx bodies (e.g. 204) are an empty object, not an error.
	if len(bytes.TrimSpace(respBody)) == 0 {
		return map[string]interface{}{}, nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	return result, nil
}

// newStatusError builds a StatusError from a non-2xx response, extracting
// a message from the JSON error body when one is present.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(body) == 0 {
		return se
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return se
	}

	se.Payload = payload
	if msg := extractErrorMessage(payload); msg != "" {
		se.Message = msg
	}
	return se
}

// extractErrorMessage pulls a human-readable message out of common error
// body shapes: {"message": "..."}, {"error": "..."}, {"error": {"message": "..."}}.
func extractErrorMessage(payload map[string]interface{}) string {
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	switch v := payload["error"].(type) {
	case string:
		return v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 2
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 0
	}
}
