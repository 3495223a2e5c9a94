// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package metrics provides Prometheus instrumentation for the API surface,
// the recommendation cache, and the outbound provider clients.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Outbound provider metrics (mail, llm)
	OutboundAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_attempts_total",
			Help: "Total outbound HTTP attempts per provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: success, failure, rejected
	)

	OutboundRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_retries_total",
			Help: "Total outbound request retries per provider",
		},
		[]string{"provider"},
	)

	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Outbound request duration per provider in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Recommendation cache metrics
	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total recommendation cache misses",
		},
	)

	RecommendFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Total recommendation requests served from static fallback data",
		},
	)

	// Mail workflow metrics
	MailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sends_total",
			Help: "Total offer emails sent per outcome",
		},
		[]string{"outcome"}, // outcome: sent, dev_mode, failed
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
