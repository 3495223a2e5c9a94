// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/venued/venued/internal/cache"
	"github.com/venued/venued/internal/httpx"
	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/metrics"
)

// cacheKeyMethod namespaces recommendation entries in the shared cache.
const cacheKeyMethod = "recommend"

// ManagerConfig configures a Manager. Provider is required; the rest has
// usable defaults.
type ManagerConfig struct {
	Provider Provider

	// Cache holds provider responses. Default: a fresh 5-minute TTL cache.
	Cache *cache.Cache

	// Clock supplies wall-clock time. Default time.Now.
	Clock cache.Clock

	// Sleep waits between retries. Default httpx.DefaultSleep.
	Sleep httpx.SleepFunc

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BackoffBase is the delay before the first retry; it doubles per retry.
	BackoffBase time.Duration
}

// Manager serves venue recommendations with caching, retries, and a
// static fallback. GetRecommendations never fails: the Source field of
// the result tells the caller how trustworthy the data is.
type Manager struct {
	provider    Provider
	cache       *cache.Cache
	clock       cache.Clock
	sleep       httpx.SleepFunc
	maxRetries  int
	backoffBase time.Duration
	logger      zerolog.Logger
}

// NewManager creates a recommendation manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(5*time.Minute, cfg.Clock)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = httpx.DefaultSleep
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}

	return &Manager{
		provider:    cfg.Provider,
		cache:       cfg.Cache,
		clock:       cfg.Clock,
		sleep:       cfg.Sleep,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		logger:      logging.With().Str("component", "recommend").Logger(),
	}
}

// GetRecommendations returns venue recommendations for the prompt.
//
// A live cache entry is returned immediately. Otherwise the provider is
// called with up to MaxRetries retries under exponential backoff; transport
// errors and parse/validation failures form one retryable class. When the
// attempt budget is exhausted the static fallback set is returned; this
// method never returns an error.
func (m *Manager) GetRecommendations(ctx context.Context, prompt string) *Result {
	start := m.clock()
	key := cache.GenerateKey(cacheKeyMethod, prompt)

	if entry, ok := m.cache.Get(key); ok {
		if recs, ok := entry.Data.([]Recommendation); ok {
			metrics.RecommendCacheHits.Inc()
			return &Result{
				Recommendations: recs,
				Source:          SourceCache,
				Cached:          true,
				Performance: Performance{
					DurationMs: m.clock().Sub(start).Milliseconds(),
					Retries:    0,
				},
			}
		}
		// Wrong type under our key: some other caller polluted the shared
		// cache. Drop the entry and regenerate.
		m.cache.Delete(key)
	}
	metrics.RecommendCacheMisses.Inc()

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			delay := m.backoffBase << (attempt - 1)
			m.logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying provider call after delay")
			if err := m.sleep(ctx, delay); err != nil {
				// Context gone; no point in further attempts.
				break
			}
		}

		recs, err := m.fetchOnce(ctx, prompt)
		if err != nil {
			m.logger.Warn().Err(err).Int("attempt", attempt).Msg("provider attempt failed")
			continue
		}

		m.cache.Set(key, recs)
		return &Result{
			Recommendations: recs,
			Source:          SourceProvider,
			Cached:          false,
			Performance: Performance{
				DurationMs: m.clock().Sub(start).Milliseconds(),
				Retries:    attempt,
			},
		}
	}

	metrics.RecommendFallbacksTotal.Inc()
	m.logger.Error().Int("retries", m.maxRetries).Msg("all provider attempts failed, serving fallback data")

	return &Result{
		Recommendations: FallbackRecommendations(),
		Source:          SourceFallback,
		Cached:          false,
		Performance: Performance{
			DurationMs: m.clock().Sub(start).Milliseconds(),
			Retries:    m.maxRetries,
		},
	}
}

// fetchOnce performs one provider call and parses the response. Transport
// and parse/validation errors are indistinguishable to the caller.
func (m *Manager) fetchOnce(ctx context.Context, prompt string) ([]Recommendation, error) {
	raw, err := m.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseRecommendations(raw)
}

// CleanCache removes all expired cache entries and returns how many were
// evicted. Called opportunistically; it affects memory footprint only.
func (m *Manager) CleanCache() int {
	return m.cache.SweepExpired()
}

// CacheStats exposes entry count, counters, and per-entry age for
// observability.
type CacheStats struct {
	Entries int               `json:"entries"`
	Hits    int64             `json:"hits"`
	Misses  int64             `json:"misses"`
	Ages    []cache.EntryInfo `json:"ages"`
}

// GetCacheStats returns a snapshot of cache observability data.
func (m *Manager) GetCacheStats() CacheStats {
	stats := m.cache.GetStats()
	ages := m.cache.Entries()
	return CacheStats{
		Entries: len(ages),
		Hits:    stats.Hits,
		Misses:  stats.Misses,
		Ages:    ages,
	}
}
