// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package recommend

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ParseRecommendations extracts a validated recommendation list from a raw
// provider response.
//
// The provider is instructed to return only a JSON array, but real
// responses may include incidental prose, whitespace, or stray control
// characters, so parsing proceeds in stages:
//  1. strip C0/C1 control characters,
//  2. attempt a direct parse of the full cleaned text,
//  3. otherwise parse the first bracketed `[...]` substring.
//
// A response with no extractable array, an empty array, or any record
// missing a required field is a parse failure, handled by the caller the
// same way as a transport failure.
func ParseRecommendations(raw string) ([]Recommendation, error) {
	cleaned := stripControlChars(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, fmt.Errorf("empty provider response")
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &recs); err != nil {
		extracted, ok := extractArray(cleaned)
		if !ok {
			return nil, fmt.Errorf("no JSON array in provider response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &recs); err != nil {
			return nil, fmt.Errorf("invalid JSON array in provider response: %w", err)
		}
	}

	if err := validateRecommendations(recs); err != nil {
		return nil, fmt.Errorf("invalid recommendation structure: %w", err)
	}

	return recs, nil
}

// stripControlChars removes C0 and C1 control characters. This alters
// control characters embedded inside JSON strings too, which is accepted:
// provider responses never legitimately contain them.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// extractArray returns the substring from the first '[' through the last
// ']', covering responses wrapped in explanatory prose.
func extractArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, ']')
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
