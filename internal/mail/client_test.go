// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package mail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/venued/venued/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler, devMode bool) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.MailConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		FromName:       "Venued Bookings",
		Domain:         "mail.venued.test",
		DevMode:        devMode,
		RequestTimeout: 2 * time.Second,
		MaxAttempts:    1,
		BackoffBase:    time.Millisecond,
	})
}

func TestCreateInbox(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inboxes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["address"] != "bookings@mail.venued.test" {
			t.Errorf("address = %v", body["address"])
		}
		if body["type"] != "booking" {
			t.Errorf("type = %v", body["type"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"inbox_id": "ibx_123", "address": "bookings@mail.venued.test"}`))
	})

	c := newTestClient(t, handler, false)
	inbox, err := c.CreateInbox(context.Background(), "bookings@mail.venued.test")
	if err != nil {
		t.Fatalf("CreateInbox() error = %v", err)
	}
	if inbox.ID != "ibx_123" {
		t.Errorf("ID = %q, want ibx_123", inbox.ID)
	}
	if inbox.Address != "bookings@mail.venued.test" {
		t.Errorf("Address = %q", inbox.Address)
	}
}

func TestCreateInboxConflictIsSuccess(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "inbox already exists"}`))
	})

	c := newTestClient(t, handler, false)
	inbox, err := c.CreateInbox(context.Background(), "bookings@mail.venued.test")
	if err != nil {
		t.Fatalf("CreateInbox() on 409 error = %v, want idempotent success", err)
	}
	if inbox.Address != "bookings@mail.venued.test" {
		t.Errorf("Address = %q, want supplied address", inbox.Address)
	}
	if inbox.ID != "bookings@mail.venued.test" {
		t.Errorf("ID = %q, want the address as identifier", inbox.ID)
	}
}

func TestCreateInboxConflictThenSend(t *testing.T) {
	t.Parallel()

	var sendPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/inboxes":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message": "inbox already exists"}`))
		default:
			sendPath = r.URL.Path
			_, _ = w.Write([]byte(`{"id": "msg_7", "status": "sent"}`))
		}
	})

	c := newTestClient(t, handler, false)
	inbox, err := c.CreateInbox(context.Background(), "bookings@mail.venued.test")
	if err != nil {
		t.Fatalf("CreateInbox() on 409 error = %v", err)
	}

	result, err := c.SendMessage(context.Background(), inbox.ID, Message{
		To:      []string{"client@example.com"},
		Subject: "Offer",
		Text:    "Offer details attached.",
	})
	if err != nil {
		t.Fatalf("SendMessage() after conflicted create error = %v", err)
	}
	if result.ID != "msg_7" {
		t.Errorf("result.ID = %q, want msg_7", result.ID)
	}
	if sendPath != "/inboxes/bookings@mail.venued.test/messages" {
		t.Errorf("send path = %q, want the address as inbox identifier", sendPath)
	}
}

func TestCreateInboxServerErrorPropagates(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	})

	c := newTestClient(t, handler, false)
	if _, err := c.CreateInbox(context.Background(), "x@mail.venued.test"); err == nil {
		t.Fatal("CreateInbox() on 500 returned nil error")
	}
}

func TestGetAlias(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/aliases/venue-7@mail.venued.test" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alias_id": "als_9", "address": "venue-7@mail.venued.test", "target": "bookings@mail.venued.test"}`))
	})

	c := newTestClient(t, handler, false)
	alias, err := c.GetAlias(context.Background(), "venue-7@mail.venued.test")
	if err != nil {
		t.Fatalf("GetAlias() error = %v", err)
	}
	if alias == nil {
		t.Fatal("GetAlias() = nil, want alias")
	}
	if alias.ID != "als_9" || alias.Target != "bookings@mail.venued.test" {
		t.Errorf("alias = %+v", alias)
	}
}

func TestGetAliasNotFound(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "not found"}`))
	})

	c := newTestClient(t, handler, false)
	alias, err := c.GetAlias(context.Background(), "missing@mail.venued.test")
	if err != nil {
		t.Fatalf("GetAlias() on 404 error = %v, want nil", err)
	}
	if alias != nil {
		t.Errorf("GetAlias() on 404 = %+v, want nil", alias)
	}
}

func TestCreateAlias(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["alias"] != "venue-7@mail.venued.test" {
			t.Errorf("alias = %v", body["alias"])
		}
		if body["type"] != "venue" {
			t.Errorf("type = %v", body["type"])
		}
		meta, _ := body["metadata"].(map[string]interface{})
		if meta["venue_id"] != "v7" {
			t.Errorf("metadata = %v", body["metadata"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "als_1", "alias_id": "ignored", "address": "venue-7@mail.venued.test", "target": "bookings@mail.venued.test"}`))
	})

	c := newTestClient(t, handler, false)
	alias, err := c.CreateAlias(context.Background(), "venue-7@mail.venued.test",
		"bookings@mail.venued.test", map[string]interface{}{"venue_id": "v7"})
	if err != nil {
		t.Fatalf("CreateAlias() error = %v", err)
	}
	if alias.ID != "als_1" {
		t.Errorf("ID = %q, want als_1 (id beats alias_id)", alias.ID)
	}
}

func TestSendMessage(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inboxes/ibx_123/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["subject"] != "Your offer from Venued" {
			t.Errorf("subject = %v", body["subject"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "msg_42", "status": "sent"}`))
	})

	c := newTestClient(t, handler, false)
	result, err := c.SendMessage(context.Background(), "ibx_123", Message{
		To:      []string{"client@example.com"},
		Subject: "Your offer from Venued",
		Text:    "Offer details attached.",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if result.ID != "msg_42" || result.Status != "sent" {
		t.Errorf("result = %+v", result)
	}
}

func TestSendMessageDevMode(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("dev mode must not hit the provider")
	})

	c := newTestClient(t, handler, true)
	result, err := c.SendMessage(context.Background(), "ibx_123", Message{
		To:      []string{"client@example.com"},
		Subject: "Offer",
	})
	if err != nil {
		t.Fatalf("SendMessage() in dev mode error = %v", err)
	}
	if result.Status != "dev_mode" {
		t.Errorf("Status = %q, want dev_mode", result.Status)
	}
	if result.ID == "" {
		t.Error("dev mode result has empty ID")
	}
}

func TestSendMessageFailure(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message": "provider unavailable"}`))
	})

	c := newTestClient(t, handler, false)
	if _, err := c.SendMessage(context.Background(), "ibx_123", Message{
		To:      []string{"client@example.com"},
		Subject: "Offer",
	}); err == nil {
		t.Fatal("SendMessage() on 502 returned nil error")
	}
}
