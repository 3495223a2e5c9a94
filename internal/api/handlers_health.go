// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of the full health endpoint.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	MailEnabled    bool    `json:"mail_enabled"`
	LLMEnabled     bool    `json:"llm_enabled"`
	Uptime         float64 `json:"uptime_seconds"`
}

const version = "1.0.0"

// Health reports overall service health. The service is degraded when the
// record store is unreachable; missing provider credentials are reported
// but do not degrade health, the affected endpoints fall back instead.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	status := "healthy"
	if !storeConnected {
		status = "degraded"
	}

	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:         status,
		Version:        version,
		StoreConnected: storeConnected,
		MailEnabled:    h.config.MailEnabled(),
		LLMEnabled:     h.config.LLMEnabled(),
		Uptime:         time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is the liveness probe: 200 whenever the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 200 only when the record store
// answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.store.Ping(r.Context()) != nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY",
			"Record store is not reachable", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"ready": true})
}
