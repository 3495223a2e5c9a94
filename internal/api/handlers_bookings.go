// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venued/venued/internal/store"
	"github.com/venued/venued/internal/validation"
)

// ListBookings returns all booking records, newest first.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.store.ListBookings(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR",
			"Could not list bookings", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, bookings)
}

// CreateBooking creates a booking record from the request body.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBookingRequest(w, r)
	if !ok {
		return
	}

	booking := bookingFromRequest(req)
	if err := h.store.CreateBooking(r.Context(), booking); err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR",
			"Could not create booking", err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, booking)
}

// GetBooking returns one booking by path ID.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.store.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, r, err, "Could not load booking")
		return
	}
	respondSuccess(w, r, http.StatusOK, booking)
}

// UpdateBooking replaces a booking's mutable fields.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBookingRequest(w, r)
	if !ok {
		return
	}

	booking := bookingFromRequest(req)
	booking.ID = chi.URLParam(r, "id")
	if err := h.store.UpdateBooking(r.Context(), booking); err != nil {
		h.respondStoreError(w, r, err, "Could not update booking")
		return
	}

	updated, err := h.store.GetBooking(r.Context(), booking.ID)
	if err != nil {
		h.respondStoreError(w, r, err, "Could not load booking")
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}

// DeleteBooking removes a booking by path ID.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteBooking(r.Context(), id); err != nil {
		h.respondStoreError(w, r, err, "Could not delete booking")
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"deleted": id})
}

// Stats returns the dashboard card aggregates.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR",
			"Could not compute stats", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, stats)
}

// decodeBookingRequest decodes and validates a booking body, writing the
// error response itself on failure.
func (h *Handler) decodeBookingRequest(w http.ResponseWriter, r *http.Request) (*BookingRequest, bool) {
	var req BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"Request body must be valid JSON", err)
		return nil, false
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return nil, false
	}
	return &req, true
}

// respondStoreError maps store errors to NOT_FOUND or DATABASE_ERROR.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Booking not found", nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", message, err)
}

func bookingFromRequest(req *BookingRequest) *store.Booking {
	return &store.Booking{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		VenueName:   req.VenueName,
		EventDate:   req.EventDate,
		GuestCount:  req.GuestCount,
		Status:      req.Status,
		TotalCost:   req.TotalCost,
		Notes:       req.Notes,
	}
}
