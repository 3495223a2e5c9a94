// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"context"
	"time"

	"github.com/venued/venued/internal/config"
	"github.com/venued/venued/internal/mail"
	"github.com/venued/venued/internal/recommend"
	"github.com/venued/venued/internal/store"
)

// Recommender serves venue recommendations. Satisfied by
// *recommend.Manager.
type Recommender interface {
	GetRecommendations(ctx context.Context, prompt string) *recommend.Result
	CleanCache() int
	GetCacheStats() recommend.CacheStats
}

// Mailer talks to the transactional-mail provider. Satisfied by
// *mail.Client.
type Mailer interface {
	CreateInbox(ctx context.Context, address string) (*mail.Inbox, error)
	GetAlias(ctx context.Context, address string) (*mail.Alias, error)
	CreateAlias(ctx context.Context, alias, target string, metadata map[string]interface{}) (*mail.Alias, error)
	SendMessage(ctx context.Context, inboxID string, msg mail.Message) (*mail.SendResult, error)
}

// Handler carries the dependencies shared by all endpoint handlers.
type Handler struct {
	config      *config.Config
	store       *store.Store
	mailer      Mailer
	recommender Recommender
	startTime   time.Time
}

// NewHandler wires the API handlers. mailer or recommender may be nil when
// the corresponding provider is not configured; the affected endpoints
// degrade instead of failing at startup.
func NewHandler(cfg *config.Config, st *store.Store, mailer Mailer, rec Recommender) *Handler {
	return &Handler{
		config:      cfg,
		store:       st,
		mailer:      mailer,
		recommender: rec,
		startTime:   time.Now(),
	}
}
