// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/venued/config.yaml",
	"/etc/venued/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all documented defaults. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8460,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Mail: MailConfig{
			BaseURL:        "https://api.agentmail.to/v0",
			APIKey:         "",
			FromName:       "Venued Bookings",
			Domain:         "venued.email",
			DevMode:        false,
			RequestTimeout: 10 * time.Second,
			MaxAttempts:    3,
			BackoffBase:    300 * time.Millisecond,
		},
		LLM: LLMConfig{
			APIKey:         "",
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "llama-3.3-70b-versatile",
			Temperature:    0.7,
			MaxTokens:      2048,
			CacheTTL:       5 * time.Minute,
			MaxRetries:     3,
			BackoffBase:    time.Second,
			RequestTimeout: 30 * time.Second,
			RatePerSecond:  2,
		},
		Store: StoreConfig{
			Path: "/data/venued.db",
		},
		Security: SecurityConfig{
			AuthMode:        AuthModeNone,
			JWTSecret:       "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MAIL_API_KEY -> mail.api_key etc.
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env var strings to slices for
// known slice fields; YAML values arrive as slices already and are skipped.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - MAIL_API_KEY     -> mail.api_key
//   - GROQ_API_KEY     -> llm.api_key
//   - HTTP_PORT        -> server.port
//   - MAIL_DEV_MODE    -> mail.dev_mode
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":   "server.host",
		"http_port":   "server.port",
		"environment": "server.environment",

		// Mail provider
		"mail_base_url":        "mail.base_url",
		"mail_api_key":         "mail.api_key",
		"agentmail_api_key":    "mail.api_key", // provider-branded alias
		"mail_from_name":       "mail.from_name",
		"mail_domain":          "mail.domain",
		"mail_dev_mode":        "mail.dev_mode",
		"mail_request_timeout": "mail.request_timeout",
		"mail_max_attempts":    "mail.max_attempts",
		"mail_backoff_base":    "mail.backoff_base",

		// LLM provider
		"groq_api_key":        "llm.api_key", // provider-branded alias
		"llm_api_key":         "llm.api_key",
		"llm_base_url":        "llm.base_url",
		"llm_model":           "llm.model",
		"llm_temperature":     "llm.temperature",
		"llm_max_tokens":      "llm.max_tokens",
		"llm_cache_ttl":       "llm.cache_ttl",
		"llm_max_retries":     "llm.max_retries",
		"llm_backoff_base":    "llm.backoff_base",
		"llm_request_timeout": "llm.request_timeout",
		"llm_rate_per_second": "llm.rate_per_second",

		// Store
		"store_path": "store.path",

		// Security
		"auth_mode":         "security.auth_mode",
		"jwt_secret":        "security.jwt_secret",
		"rate_limit_reqs":   "security.rate_limit_reqs",
		"rate_limit_window": "security.rate_limit_window",
		"cors_origins":      "security.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown env vars are dropped so random environment noise cannot
	// override configuration.
	return ""
}
