// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/venued/venued/internal/logging"
	"github.com/venued/venued/internal/mail"
	"github.com/venued/venued/internal/store"
	"github.com/venued/venued/internal/validation"
)

// SendOffer validates the request, ensures the booking inbox and optional
// venue alias exist at the mail provider, sends the offer email, and
// persists an offer record.
//
// Provider failures after retry exhaustion surface as 502
// EXTERNAL_SERVICE_FAILED with a generic message; details stay in the
// logs.
func (h *Handler) SendOffer(w http.ResponseWriter, r *http.Request) {
	var req OfferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"Request body must be valid JSON", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if h.mailer == nil {
		respondError(w, r, http.StatusServiceUnavailable, "MAIL_DISABLED",
			"Mail provider is not configured", nil)
		return
	}

	if req.BookingID != "" {
		if _, err := h.store.GetBooking(r.Context(), req.BookingID); err != nil {
			respondError(w, r, http.StatusNotFound, "NOT_FOUND",
				"Booking not found", err)
			return
		}
	}

	inbox, err := h.ensureInbox(r.Context())
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED",
			"Offer could not be sent", err)
		return
	}

	if req.VenueAlias != "" {
		if err := h.ensureAlias(r.Context(), req.VenueAlias, inbox.Address, req.BookingID); err != nil {
			respondError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED",
				"Offer could not be sent", err)
			return
		}
	}

	result, err := h.mailer.SendMessage(r.Context(), inbox.ID, mail.Message{
		To:      []string{req.RecipientEmail},
		Subject: req.Subject,
		Text:    req.Body,
		HTML:    req.HTMLBody,
	})
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED",
			"Offer could not be sent", err)
		return
	}

	offer := &store.Offer{
		BookingID:      req.BookingID,
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		MessageID:      result.ID,
		Status:         result.Status,
	}
	if err := h.store.CreateOffer(r.Context(), offer); err != nil {
		// The email went out; losing the record is worth surfacing but must
		// not report the send as failed.
		logging.Ctx(r.Context()).Error().Err(err).
			Str("message_id", result.ID).
			Msg("offer sent but record not persisted")
	}

	respondSuccess(w, r, http.StatusCreated, offer)
}

// ListOffers returns all sent offers, newest first.
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.store.ListOffers(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR",
			"Could not list offers", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, offers)
}

// ensureInbox creates (idempotently) and returns the booking inbox. The
// inbox address is derived from the configured mail domain.
func (h *Handler) ensureInbox(ctx context.Context) (*mail.Inbox, error) {
	address := "bookings@" + h.config.Mail.Domain
	inbox, err := h.mailer.CreateInbox(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("ensure inbox %s: %w", address, err)
	}
	return inbox, nil
}

// ensureAlias makes sure the venue alias exists and forwards to target.
func (h *Handler) ensureAlias(ctx context.Context, aliasAddr, target, bookingID string) error {
	alias, err := h.mailer.GetAlias(ctx, aliasAddr)
	if err != nil {
		return fmt.Errorf("look up alias %s: %w", aliasAddr, err)
	}
	if alias != nil {
		return nil
	}

	metadata := map[string]interface{}{}
	if bookingID != "" {
		metadata["booking_id"] = bookingID
	}
	if _, err := h.mailer.CreateAlias(ctx, aliasAddr, target, metadata); err != nil {
		return fmt.Errorf("create alias %s: %w", aliasAddr, err)
	}
	return nil
}
