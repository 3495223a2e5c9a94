// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package mail integrates the hosted transactional-mail provider used for
// booking inboxes, venue aliases, and outbound offer messages. All provider
// calls go through the shared retrying HTTP client; this package adds the
// endpoint contracts, response normalization, and the dev-mode short
// circuit for local environments without provider credentials.
package mail

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/venued/venued/internal/config"
	"github.com/venued/venued/internal/httpx"
	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/metrics"
)

// Inbox is a provider mailbox that receives booking correspondence.
type Inbox struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// Alias is a provider address that forwards to a target inbox.
type Alias struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Target  string `json:"target"`
}

// Message is an outbound message body.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// SendResult reports the provider's acceptance of a message.
type SendResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to the mail provider's REST API.
type Client struct {
	http     *httpx.Client
	fromName string
	domain   string
	devMode  bool
	logger   zerolog.Logger
}

// NewClient builds a mail client from configuration. The underlying HTTP
// client carries the configured timeout, attempt count, and backoff.
func NewClient(cfg config.MailConfig) *Client {
	return &Client{
		http: httpx.New(httpx.Options{
			Name:           "agentmail",
			BaseURL:        cfg.BaseURL,
			APIKey:         cfg.APIKey,
			RequestTimeout: cfg.RequestTimeout,
			MaxAttempts:    cfg.MaxAttempts,
			BackoffBase:    cfg.BackoffBase,
		}),
		fromName: cfg.FromName,
		domain:   cfg.Domain,
		devMode:  cfg.DevMode,
		logger:   logging.With().Str("component", "mail").Logger(),
	}
}

// CreateInbox creates a booking inbox for the address. A 409 from the
// provider means the inbox already exists and is reported as success; the
// address doubles as the inbox identifier so sends keep working.
func (c *Client) CreateInbox(ctx context.Context, address string) (*Inbox, error) {
	resp, err := c.http.Request(ctx, "POST", "/inboxes", map[string]interface{}{
		"address": address,
		"type":    "booking",
	})
	if err != nil {
		if httpx.IsStatus(err, 409) {
			c.logger.Debug().Str("address", address).Msg("inbox already exists")
			return &Inbox{ID: address, Address: address}, nil
		}
		return nil, fmt.Errorf("create inbox: %w", err)
	}
	return normalizeInbox(resp, address), nil
}

// GetAlias looks up an alias by address. A 404 means the alias does not
// exist yet and is reported as (nil, nil) so the caller can create it.
func (c *Client) GetAlias(ctx context.Context, address string) (*Alias, error) {
	resp, err := c.http.Request(ctx, "GET", "/aliases/"+url.PathEscape(address), nil)
	if err != nil {
		if httpx.IsStatus(err, 404) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alias: %w", err)
	}
	return normalizeAlias(resp), nil
}

// CreateAlias creates a venue alias forwarding to target.
func (c *Client) CreateAlias(ctx context.Context, alias, target string, metadata map[string]interface{}) (*Alias, error) {
	resp, err := c.http.Request(ctx, "POST", "/aliases", map[string]interface{}{
		"alias":    alias,
		"target":   target,
		"type":     "venue",
		"metadata": metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create alias: %w", err)
	}
	return normalizeAlias(resp), nil
}

// SendMessage sends a message from the inbox. In dev mode no provider call
// is made and a synthesized result is returned.
func (c *Client) SendMessage(ctx context.Context, inboxID string, msg Message) (*SendResult, error) {
	if c.devMode {
		id := "dev-" + uuid.NewString()
		c.logger.Info().
			Str("inbox_id", inboxID).
			Strs("to", msg.To).
			Str("subject", msg.Subject).
			Str("message_id", id).
			Msg("dev mode enabled, skipping real send")
		metrics.MailSendsTotal.WithLabelValues("dev_mode").Inc()
		return &SendResult{ID: id, Status: "dev_mode"}, nil
	}

	resp, err := c.http.Request(ctx, "POST", "/inboxes/"+url.PathEscape(inboxID)+"/messages", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"text":    msg.Text,
		"html":    msg.HTML,
		"labels":  []string{"offer"},
	})
	if err != nil {
		metrics.MailSendsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("send message: %w", err)
	}

	result := normalizeSendResult(resp)
	metrics.MailSendsTotal.WithLabelValues("sent").Inc()
	c.logger.Info().
		Str("inbox_id", inboxID).
		Str("message_id", result.ID).
		Str("status", result.Status).
		Msg("message sent")
	return result, nil
}

// FromName returns the configured sender display name.
func (c *Client) FromName() string { return c.fromName }

// Domain returns the configured mail domain.
func (c *Client) Domain() string { return c.domain }
