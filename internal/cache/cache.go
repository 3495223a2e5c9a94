// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package cache provides a thread-safe in-memory TTL cache.
//
// Expired entries are removed lazily: on read, or when SweepExpired is
// called. There is no background sweeper; callers invoke SweepExpired
// opportunistically. The clock is injectable so tests can control expiry
// without real waits.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Entry is a cached item with its lifecycle timestamps.
type Entry struct {
	Data      interface{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a snapshot of cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// EntryInfo describes one live entry for observability endpoints.
type EntryInfo struct {
	Key string        `json:"key"`
	Age time.Duration `json:"age"`
}

// Cache is a mutex-guarded map with per-entry expiration.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	clock   Clock

	statsMu sync.Mutex
	stats   Stats
}

// New creates a cache with the given default TTL. A nil clock means
// time.Now.
func New(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get retrieves a live entry by key. An expired entry is deleted and
// reported as a miss; entries past their TTL are never served.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return Entry{}, false
	}

	if !c.clock().Before(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return Entry{}, false
	}

	c.recordHit()
	return entry, true
}

// Set stores a value under key with the default TTL, superseding any
// previous entry for the same key.
func (c *Cache) Set(key string, value interface{}) {
	now := c.clock()

	c.mu.Lock()
	c.entries[key] = Entry{
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
}

// Delete removes a specific entry. No-op for absent keys.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// SweepExpired removes all expired entries and returns how many were
// evicted.
func (c *Cache) SweepExpired() int {
	now := c.clock()

	c.mu.Lock()
	evicted := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(evicted)
	c.stats.TotalKeys = total
	c.statsMu.Unlock()

	return evicted
}

// GetStats returns a copy of the current counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Entries returns per-entry key and age for live entries.
func (c *Cache) Entries() []EntryInfo {
	now := c.clock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]EntryInfo, 0, len(c.entries))
	for key, entry := range c.entries {
		if now.Before(entry.ExpiresAt) {
			infos = append(infos, EntryInfo{Key: key, Age: now.Sub(entry.CreatedAt)})
		}
	}
	return infos
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *Cache) recordEviction() {
	c.statsMu.Lock()
	c.stats.Evictions++
	c.statsMu.Unlock()
}

// GenerateKey creates a deterministic cache key from a method name and
// parameters. Parameters are serialized to JSON and hashed; key equality
// therefore follows value equality of the parameters.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
