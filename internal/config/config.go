// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package config provides application configuration loaded via Koanf v2
// with layered sources: built-in defaults, an optional YAML file, and
// environment variables (highest priority).
//
// Every external collaborator (mail provider, LLM provider, record store)
// is configured here once at startup and passed explicitly to the
// components that need it; no component reads the environment on its own.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Mail     MailConfig     `koanf:"mail"`
	LLM      LLMConfig      `koanf:"llm"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// MailConfig holds the transactional-email provider settings.
type MailConfig struct {
	// BaseURL is the provider REST API root.
	BaseURL string `koanf:"base_url"`

	// APIKey is the bearer token. Empty disables real sends.
	APIKey string `koanf:"api_key"`

	// FromName is the display name on outgoing offers.
	FromName string `koanf:"from_name"`

	// Domain is the inbox/alias domain, e.g. "venued.email".
	Domain string `koanf:"domain"`

	// DevMode short-circuits real sends for local testing.
	DevMode bool `koanf:"dev_mode"`

	// RequestTimeout is the hard per-attempt timeout.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxAttempts is the total number of attempts per logical request.
	MaxAttempts int `koanf:"max_attempts"`

	// BackoffBase is the delay before the first retry; it doubles per attempt.
	BackoffBase time.Duration `koanf:"backoff_base"`
}

// LLMConfig holds the recommendation provider settings.
type LLMConfig struct {
	// APIKey authenticates against the provider. Empty disables the
	// recommendation manager entirely; callers serve fallback data.
	APIKey string `koanf:"api_key"`

	// BaseURL is the chat-completion endpoint root.
	BaseURL string `koanf:"base_url"`

	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`

	// CacheTTL bounds how long a cached response is served.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int `koanf:"max_retries"`

	// BackoffBase is the delay before the first retry; it doubles per retry.
	BackoffBase time.Duration `koanf:"backoff_base"`

	// RequestTimeout is the hard per-attempt timeout.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RatePerSecond paces outbound provider calls. 0 disables pacing.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// StoreConfig holds the booking record store settings.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" for tests.
	Path string `koanf:"path"`
}

// Authentication modes.
const (
	AuthModeJWT  = "jwt"
	AuthModeNone = "none"
)

// SecurityConfig holds auth and rate limiting settings.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". Token issuance is delegated to the
	// external auth provider; we only verify signatures.
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret verifies bearer tokens when AuthMode is "jwt".
	JWTSecret string `koanf:"jwt_secret"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Mail.MaxAttempts <= 0 {
		return fmt.Errorf("mail.max_attempts must be positive, got %d", c.Mail.MaxAttempts)
	}
	if c.Mail.BackoffBase <= 0 {
		return fmt.Errorf("mail.backoff_base must be positive, got %s", c.Mail.BackoffBase)
	}
	if !strings.HasPrefix(c.Mail.BaseURL, "http://") && !strings.HasPrefix(c.Mail.BaseURL, "https://") {
		return fmt.Errorf("mail.base_url must be an http(s) URL, got %q", c.Mail.BaseURL)
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.LLM.MaxRetries)
	}
	if c.LLM.CacheTTL <= 0 {
		return fmt.Errorf("llm.cache_ttl must be positive, got %s", c.LLM.CacheTTL)
	}

	switch c.Security.AuthMode {
	case AuthModeJWT:
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters when auth_mode is jwt")
		}
	case AuthModeNone:
		if c.Server.Environment == "production" {
			return fmt.Errorf("security.auth_mode \"none\" is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid security.auth_mode: %q (must be jwt or none)", c.Security.AuthMode)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	return nil
}

// MailEnabled reports whether real provider sends are possible.
func (c *Config) MailEnabled() bool {
	return c.Mail.APIKey != "" && !c.Mail.DevMode
}

// LLMEnabled reports whether the recommendation manager can call the provider.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}
