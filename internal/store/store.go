// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

// Package store persists dashboard records in an embedded SQLite database.
// It holds bookings and sent offers; both are plain CRUD records whose only
// invariant is primary-key uniqueness.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is a client's venue reservation.
type Booking struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	VenueName   string    `json:"venue_name"`
	EventDate   string    `json:"event_date"`
	GuestCount  int       `json:"guest_count"`
	Status      string    `json:"status"`
	TotalCost   float64   `json:"total_cost"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Offer records an offer email sent to a client.
type Offer struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"booking_id,omitempty"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	MessageID      string    `json:"message_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Stats aggregates dashboard card numbers.
type Stats struct {
	TotalBookings     int64   `json:"total_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	OffersSent        int64   `json:"offers_sent"`
	ConfirmedRevenue  float64 `json:"confirmed_revenue"`
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	client_email TEXT NOT NULL,
	venue_name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	guest_count INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	total_cost REAL NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS offers (
	id TEXT PRIMARY KEY,
	booking_id TEXT NOT NULL DEFAULT '',
	recipient_email TEXT NOT NULL,
	subject TEXT NOT NULL,
	message_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);
CREATE INDEX IF NOT EXISTS idx_offers_booking ON offers(booking_id);
`

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateBooking inserts a booking. An empty ID gets a generated UUID and an
// empty status defaults to pending. Timestamps are set here.
func (s *Store) CreateBooking(ctx context.Context, b *Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, client_name, client_email, venue_name, event_date,
			guest_count, status, total_cost, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientName, b.ClientEmail, b.VenueName, b.EventDate,
		b.GuestCount, b.Status, b.TotalCost, b.Notes, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_name, client_email, venue_name, event_date,
			guest_count, status, total_cost, notes, created_at, updated_at
		 FROM bookings WHERE id = ?`, id).
		Scan(&b.ID, &b.ClientName, &b.ClientEmail, &b.VenueName, &b.EventDate,
			&b.GuestCount, &b.Status, &b.TotalCost, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// ListBookings returns all bookings, newest first.
func (s *Store) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_name, client_email, venue_name, event_date,
			guest_count, status, total_cost, notes, created_at, updated_at
		 FROM bookings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.ClientName, &b.ClientEmail, &b.VenueName, &b.EventDate,
			&b.GuestCount, &b.Status, &b.TotalCost, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking overwrites a booking's mutable fields. UpdatedAt is bumped.
func (s *Store) UpdateBooking(ctx context.Context, b *Booking) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET client_name = ?, client_email = ?, venue_name = ?,
			event_date = ?, guest_count = ?, status = ?, total_cost = ?,
			notes = ?, updated_at = ?
		 WHERE id = ?`,
		b.ClientName, b.ClientEmail, b.VenueName, b.EventDate, b.GuestCount,
		b.Status, b.TotalCost, b.Notes, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBooking removes a booking by ID.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateOffer records a sent offer. An empty ID gets a generated UUID.
func (s *Store) CreateOffer(ctx context.Context, o *Offer) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offers (id, booking_id, recipient_email, subject, message_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BookingID, o.RecipientEmail, o.Subject, o.MessageID, o.Status, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

// ListOffers returns all offers, newest first.
func (s *Store) ListOffers(ctx context.Context) ([]Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, booking_id, recipient_email, subject, message_id, status, created_at
		 FROM offers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	offers := []Offer{}
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.BookingID, &o.RecipientEmail, &o.Subject,
			&o.MessageID, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// GetStats aggregates the dashboard card numbers in one round trip per
// table.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN total_cost ELSE 0 END), 0)
		 FROM bookings`,
		StatusPending, StatusConfirmed, StatusCancelled, StatusConfirmed).
		Scan(&st.TotalBookings, &st.PendingBookings, &st.ConfirmedBookings,
			&st.CancelledBookings, &st.ConfirmedRevenue)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offers`).
		Scan(&st.OffersSent); err != nil {
		return nil, fmt.Errorf("offer stats: %w", err)
	}
	return &st, nil
}
