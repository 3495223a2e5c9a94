// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package main is the entry point for the Venued server.
//
// Venued is a venue-booking dashboard backend: booking records, offer
// emails through a transactional-mail provider, and LLM-backed venue
// recommendations with caching and a static fallback.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 with defaults, optional YAML file, and env vars
//  2. Logging: zerolog, JSON or console format
//  3. Record store: embedded SQLite for bookings and offers
//  4. Mail client: retrying HTTP client with circuit breaker
//  5. Recommendation manager: Groq chat completions with cache and fallback
//  6. HTTP server: chi router with auth, rate limiting, and Prometheus metrics
//
// # Configuration
//
// Key environment variables (see internal/config for the full mapping):
//
//	HTTP_PORT       listen port (default 8460)
//	STORE_PATH      SQLite file path (default /data/venued.db)
//	AGENTMAIL_API_KEY  mail provider token; empty disables real sends
//	GROQ_API_KEY    LLM provider token; empty serves fallback data
//	AUTH_MODE       "jwt" (default secret required) or "none" (dev only)
//	LOG_LEVEL       trace|debug|info|warn|error
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections and in-flight requests get 10 seconds to finish.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/venued/venued/internal/api"
	"github.com/venued/venued/internal/cache"
	"github.com/venued/venued/internal/config"
	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/mail"
	"github.com/venued/venued/internal/middleware"
	"github.com/venued/venued/internal/recommend"
	"github.com/venued/venued/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("store_path", cfg.Store.Path).
		Bool("mail_enabled", cfg.MailEnabled()).
		Bool("llm_enabled", cfg.LLMEnabled()).
		Msg("Starting Venued")

	if cfg.Security.AuthMode == config.AuthModeNone {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); all endpoints are public. Development use only.")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing record store")
		}
	}()
	logging.Info().Msg("Record store ready")

	var mailer api.Mailer
	if cfg.MailEnabled() || cfg.Mail.DevMode {
		mailer = mail.NewClient(cfg.Mail)
		logging.Info().
			Str("base_url", cfg.Mail.BaseURL).
			Bool("dev_mode", cfg.Mail.DevMode).
			Msg("Mail client initialized")
	} else {
		logging.Warn().Msg("Mail provider not configured; offer sending disabled")
	}

	var recommender api.Recommender
	if cfg.LLMEnabled() {
		recommender = recommend.NewManager(recommend.ManagerConfig{
			Provider:    recommend.NewGroqClient(cfg.LLM),
			Cache:       cache.New(cfg.LLM.CacheTTL, nil),
			MaxRetries:  cfg.LLM.MaxRetries,
			BackoffBase: cfg.LLM.BackoffBase,
		})
		logging.Info().
			Str("model", cfg.LLM.Model).
			Dur("cache_ttl", cfg.LLM.CacheTTL).
			Msg("Recommendation manager initialized")
	} else {
		logging.Warn().Msg("LLM provider not configured; recommendations will serve fallback data")
	}

	handler := api.NewHandler(cfg, st, mailer, recommender)
	auth := middleware.NewAuthenticator(cfg.Security)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, auth, cfg.Security),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown incomplete")
	}

	logging.Info().Msg("Application stopped gracefully")
}
