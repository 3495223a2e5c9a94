// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package recommend obtains structurally-validated venue recommendations
// from a text-generation provider, with response caching, retry with
// exponential backoff, and a static fallback dataset so the caller always
// receives a usable result.
package recommend

import "fmt"

// Result sources, reported so callers know how trustworthy the data is.
const (
	// SourceCache means the result was served from the in-memory cache.
	SourceCache = "cache"

	// SourceProvider means the result came from a live provider call.
	SourceProvider = "groq"

	// SourceFallback means all attempts failed and static data was served.
	SourceFallback = "fallback"
)

// CostBreakdown itemizes the estimated cost of a recommended venue.
type CostBreakdown struct {
	Venue    float64 `json:"venue"`
	Catering float64 `json:"catering"`
	Extras   float64 `json:"extras"`
	Total    float64 `json:"total"`
}

// Recommendation is a single venue suggestion.
type Recommendation struct {
	Name          string        `json:"name"`
	Reason        string        `json:"reason"`
	Features      []string      `json:"features"`
	Setup         string        `json:"setup"`
	Catering      string        `json:"catering"`
	CostBreakdown CostBreakdown `json:"costBreakdown"`
}

// Performance reports how a result was obtained.
type Performance struct {
	// DurationMs is the wall-clock time spent inside GetRecommendations.
	DurationMs int64 `json:"duration_ms"`

	// Retries is the number of retry attempts performed (0 on a cache hit
	// or first-attempt success).
	Retries int `json:"retries"`
}

// Result is the always-successful return value of GetRecommendations.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source"`
	Cached          bool             `json:"cached"`
	Performance     Performance      `json:"performance"`
}

// validateRecommendations enforces the structural invariants of a provider
// response: a non-empty sequence where every record carries non-empty
// name, reason, features, setup, and catering, and no negative costs.
// A response failing this is a parse failure, not partial success.
func validateRecommendations(recs []Recommendation) error {
	if len(recs) == 0 {
		return fmt.Errorf("empty recommendation list")
	}

	for i, rec := range recs {
		if rec.Name == "" {
			return fmt.Errorf("recommendation %d: missing name", i)
		}
		if rec.Reason == "" {
			return fmt.Errorf("recommendation %d (%s): missing reason", i, rec.Name)
		}
		if len(rec.Features) == 0 {
			return fmt.Errorf("recommendation %d (%s): missing features", i, rec.Name)
		}
		if rec.Setup == "" {
			return fmt.Errorf("recommendation %d (%s): missing setup", i, rec.Name)
		}
		if rec.Catering == "" {
			return fmt.Errorf("recommendation %d (%s): missing catering", i, rec.Name)
		}
		cb := rec.CostBreakdown
		if cb.Venue < 0 || cb.Catering < 0 || cb.Extras < 0 || cb.Total < 0 {
			return fmt.Errorf("recommendation %d (%s): negative cost", i, rec.Name)
		}
	}

	return nil
}
