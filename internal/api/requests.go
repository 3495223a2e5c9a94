// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

// RecommendRequest asks for venue recommendations for an event prompt.
type RecommendRequest struct {
	Prompt string `json:"prompt" validate:"required,min=3,max=2000"`
}

// OfferRequest sends an offer email to a client.
type OfferRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	Subject        string `json:"subject" validate:"required,max=200"`
	Body           string `json:"body" validate:"required,max=20000"`
	HTMLBody       string `json:"html_body,omitempty" validate:"omitempty,max=100000"`

	// VenueAlias, when set, is ensured as a forwarding alias before the
	// send so replies route to the booking inbox.
	VenueAlias string `json:"venue_alias,omitempty" validate:"omitempty,email"`

	// BookingID links the offer to an existing booking record.
	BookingID string `json:"booking_id,omitempty" validate:"omitempty,uuid"`
}

// BookingRequest creates or updates a booking record.
type BookingRequest struct {
	ClientName  string  `json:"client_name" validate:"required,max=200"`
	ClientEmail string  `json:"client_email" validate:"required,email"`
	VenueName   string  `json:"venue_name" validate:"required,max=200"`
	EventDate   string  `json:"event_date" validate:"required,datetime=2006-01-02"`
	GuestCount  int     `json:"guest_count" validate:"gte=1,lte=10000"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
	TotalCost   float64 `json:"total_cost" validate:"gte=0"`
	Notes       string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
