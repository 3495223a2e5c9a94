// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/venued/venued/internal/config"
	"github.com/venued/venued/internal/mail"
	"github.com/venued/venued/internal/middleware"
	"github.com/venued/venued/internal/recommend"
	"github.com/venued/venued/internal/store"
)

// fakeRecommender returns a canned result.
type fakeRecommender struct {
	result *recommend.Result
	stats  recommend.CacheStats
	swept  int
	prompt string
}

func (f *fakeRecommender) GetRecommendations(_ context.Context, prompt string) *recommend.Result {
	f.prompt = prompt
	return f.result
}

func (f *fakeRecommender) CleanCache() int                      { return f.swept }
func (f *fakeRecommender) GetCacheStats() recommend.CacheStats { return f.stats }

// fakeMailer records calls and can be scripted to fail.
type fakeMailer struct {
	inboxErr   error
	aliasErr   error
	sendErr    error
	hasAlias   bool
	inboxCalls int
	aliasGets  int
	aliasMakes int
	sent       []mail.Message
	sentInbox  string
}

func (f *fakeMailer) CreateInbox(_ context.Context, address string) (*mail.Inbox, error) {
	f.inboxCalls++
	if f.inboxErr != nil {
		return nil, f.inboxErr
	}
	return &mail.Inbox{ID: "ibx_1", Address: address}, nil
}

func (f *fakeMailer) GetAlias(_ context.Context, address string) (*mail.Alias, error) {
	f.aliasGets++
	if f.aliasErr != nil {
		return nil, f.aliasErr
	}
	if f.hasAlias {
		return &mail.Alias{ID: "als_1", Address: address}, nil
	}
	return nil, nil
}

func (f *fakeMailer) CreateAlias(_ context.Context, alias, target string, _ map[string]interface{}) (*mail.Alias, error) {
	f.aliasMakes++
	return &mail.Alias{ID: "als_2", Address: alias, Target: target}, nil
}

func (f *fakeMailer) SendMessage(_ context.Context, inboxID string, msg mail.Message) (*mail.SendResult, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentInbox = inboxID
	f.sent = append(f.sent, msg)
	return &mail.SendResult{ID: fmt.Sprintf("msg_%d", len(f.sent)), Status: "sent"}, nil
}

type testEnv struct {
	router      http.Handler
	store       *store.Store
	mailer      *fakeMailer
	recommender *fakeRecommender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Mail.Domain = "mail.venued.test"
	cfg.Mail.APIKey = "key"
	cfg.LLM.APIKey = "key"
	cfg.Security.AuthMode = config.AuthModeNone
	cfg.Security.RateLimitReqs = 1000
	cfg.Security.RateLimitWindow = time.Minute
	cfg.Security.CORSOrigins = []string{"*"}

	mailer := &fakeMailer{}
	rec := &fakeRecommender{
		result: &recommend.Result{
			Recommendations: recommend.FallbackRecommendations(),
			Source:          recommend.SourceProvider,
			Performance:     recommend.Performance{DurationMs: 12},
		},
	}

	h := NewHandler(cfg, st, mailer, rec)
	auth := middleware.NewAuthenticator(cfg.Security)
	return &testEnv{
		router:      NewRouter(h, auth, cfg.Security),
		store:       st,
		mailer:      mailer,
		recommender: rec,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	return &resp
}

func TestRecommendEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/recommend",
		map[string]string{"prompt": "garden wedding for 90 guests"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" {
		t.Errorf("Status = %q", resp.Status)
	}
	if env.recommender.prompt != "garden wedding for 90 guests" {
		t.Errorf("prompt forwarded = %q", env.recommender.prompt)
	}
	if resp.Metadata.DurationMS != 12 {
		t.Errorf("DurationMS = %d, want 12", resp.Metadata.DurationMS)
	}

	data, _ := json.Marshal(resp.Data)
	var result recommend.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Source != recommend.SourceProvider {
		t.Errorf("Source = %q", result.Source)
	}
	if len(result.Recommendations) != 3 {
		t.Errorf("got %d recommendations", len(result.Recommendations))
	}
}

func TestRecommendEndpointValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing prompt", body: map[string]string{}},
		{name: "short prompt", body: map[string]string{"prompt": "ab"}},
		{name: "not json", body: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v", resp.Error)
			}
		})
	}
}

func TestRecommendCacheEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.recommender.stats = recommend.CacheStats{Entries: 2, Hits: 5, Misses: 3}
	env.recommender.swept = 2

	rec := env.do(t, http.MethodGet, "/api/v1/recommend/cache/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"hits":5`) {
		t.Errorf("stats body = %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/recommend/cache/clean", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clean status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"evicted":2`) {
		t.Errorf("clean body = %s", rec.Body.String())
	}
}

func validOfferBody() map[string]interface{} {
	return map[string]interface{}{
		"recipient_email": "client@example.com",
		"subject":         "Offer for your event",
		"body":            "We would love to host you.",
	}
}

func TestSendOffer(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/offers/send", validOfferBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if env.mailer.inboxCalls != 1 {
		t.Errorf("inbox calls = %d, want 1", env.mailer.inboxCalls)
	}
	if env.mailer.sentInbox != "ibx_1" {
		t.Errorf("sent via inbox %q", env.mailer.sentInbox)
	}
	if len(env.mailer.sent) != 1 || env.mailer.sent[0].To[0] != "client@example.com" {
		t.Errorf("sent = %+v", env.mailer.sent)
	}

	offers, err := env.store.ListOffers(context.Background())
	if err != nil {
		t.Fatalf("ListOffers() error = %v", err)
	}
	if len(offers) != 1 || offers[0].MessageID != "msg_1" {
		t.Errorf("persisted offers = %+v", offers)
	}
}

func TestSendOfferWithExistingInbox(t *testing.T) {
	t.Parallel()

	var paths []string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/inboxes":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message": "inbox already exists"}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages"):
			_, _ = w.Write([]byte(`{"id": "msg_9", "status": "sent"}`))
		default:
			t.Errorf("unexpected provider request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Mail = config.MailConfig{
		BaseURL:        provider.URL,
		APIKey:         "key",
		FromName:       "Venued Bookings",
		Domain:         "mail.venued.test",
		RequestTimeout: 2 * time.Second,
		MaxAttempts:    1,
		BackoffBase:    time.Millisecond,
	}
	cfg.Security.AuthMode = config.AuthModeNone
	cfg.Security.RateLimitReqs = 1000
	cfg.Security.RateLimitWindow = time.Minute
	cfg.Security.CORSOrigins = []string{"*"}

	h := NewHandler(cfg, st, mail.NewClient(cfg.Mail), nil)
	router := NewRouter(h, middleware.NewAuthenticator(cfg.Security), cfg.Security)

	data, err := json.Marshal(validOfferBody())
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/send", strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	wantPaths := []string{
		"POST /inboxes",
		"POST /inboxes/bookings@mail.venued.test/messages",
	}
	if len(paths) != len(wantPaths) {
		t.Fatalf("provider saw %v, want %v", paths, wantPaths)
	}
	for i := range wantPaths {
		if paths[i] != wantPaths[i] {
			t.Errorf("provider call %d = %q, want %q", i, paths[i], wantPaths[i])
		}
	}

	offers, err := st.ListOffers(context.Background())
	if err != nil {
		t.Fatalf("ListOffers() error = %v", err)
	}
	if len(offers) != 1 || offers[0].MessageID != "msg_9" {
		t.Errorf("persisted offers = %+v", offers)
	}
}

func TestSendOfferEnsuresAlias(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := validOfferBody()
	body["venue_alias"] = "venue-7@mail.venued.test"

	rec := env.do(t, http.MethodPost, "/api/v1/offers/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if env.mailer.aliasGets != 1 || env.mailer.aliasMakes != 1 {
		t.Errorf("alias gets = %d, creates = %d, want 1 and 1",
			env.mailer.aliasGets, env.mailer.aliasMakes)
	}
}

func TestSendOfferExistingAliasNotRecreated(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.mailer.hasAlias = true

	body := validOfferBody()
	body["venue_alias"] = "venue-7@mail.venued.test"

	rec := env.do(t, http.MethodPost, "/api/v1/offers/send", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if env.mailer.aliasMakes != 0 {
		t.Errorf("alias created %d times for existing alias", env.mailer.aliasMakes)
	}
}

func TestSendOfferMailFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.mailer.sendErr = errors.New("provider down")

	rec := env.do(t, http.MethodPost, "/api/v1/offers/send", validOfferBody())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "EXTERNAL_SERVICE_FAILED" {
		t.Errorf("error = %+v", resp.Error)
	}
	if strings.Contains(rec.Body.String(), "provider down") {
		t.Error("internal error detail leaked to client")
	}

	offers, _ := env.store.ListOffers(context.Background())
	if len(offers) != 0 {
		t.Errorf("failed send persisted %d offers", len(offers))
	}
}

func TestSendOfferUnknownBooking(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := validOfferBody()
	body["booking_id"] = "0b6fdd45-95dd-4ec2-a906-26a7becfe322"

	rec := env.do(t, http.MethodPost, "/api/v1/offers/send", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func validBookingBody() map[string]interface{} {
	return map[string]interface{}{
		"client_name":  "Ada Lovelace",
		"client_email": "ada@example.com",
		"venue_name":   "Harborview Loft",
		"event_date":   "2026-10-02",
		"guest_count":  60,
		"total_cost":   4200.0,
	}
}

func TestBookingLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", validBookingBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var created store.Booking
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if created.ID == "" || created.Status != store.StatusPending {
		t.Fatalf("created booking = %+v", created)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	update := validBookingBody()
	update["status"] = store.StatusConfirmed
	update["guest_count"] = 75
	rec = env.do(t, http.MethodPut, "/api/v1/bookings/"+created.ID, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"confirmed"`) {
		t.Errorf("update body = %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/bookings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), created.ID) {
		t.Error("list does not contain created booking")
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/bookings/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestBookingValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := validBookingBody()
	body["client_email"] = "nope"
	body["guest_count"] = 0

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := validBookingBody()
	body["status"] = store.StatusConfirmed
	if rec := env.do(t, http.MethodPost, "/api/v1/bookings", body); rec.Code != http.StatusCreated {
		t.Fatalf("seed booking status = %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_bookings":1`) {
		t.Errorf("stats body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"confirmed_revenue":4200`) {
		t.Errorf("stats body = %s", rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200: %s", path, rec.Code, rec.Body.String())
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/health", nil)
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("health body = %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health/live", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
