// Venued - Venue Booking Dashboard and Offer Automation
// Copyright 2026 Venued Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venued/venued

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/venued/venued/internal/config"
	"github.com/venued/venued/internal/logging"
)

// UserKey carries the authenticated subject in the request context.
const UserKey contextKey = "user"

// Authenticator validates bearer tokens on protected routes.
type Authenticator struct {
	mode   string
	secret []byte
}

// NewAuthenticator builds an authenticator from security configuration.
// Mode "none" disables authentication entirely.
func NewAuthenticator(cfg config.SecurityConfig) *Authenticator {
	return &Authenticator{
		mode:   cfg.AuthMode,
		secret: []byte(cfg.JWTSecret),
	}
}

// Middleware returns the authentication middleware. In mode "none" it is a
// pass-through.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	if a.mode == config.AuthModeNone {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := a.authenticate(r)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).
					Str("path", r.URL.Path).
					Msg("authentication rejected")
				writeUnauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate extracts and verifies the bearer token, returning its
// subject.
func (a *Authenticator) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("malformed authorization header")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// GetUser extracts the authenticated subject from a context. Returns ""
// when the request was not authenticated.
func GetUser(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}

// writeUnauthorized emits the API's standard error envelope without
// importing the api package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error": map[string]interface{}{
			"code":    "UNAUTHORIZED",
			"message": "Authentication required",
			"details": map[string]interface{}{
				"request_id": GetRequestID(r.Context()),
			},
		},
	})
}
