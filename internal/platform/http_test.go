// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

func TestDoGETSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := doGET(context.Background(), srv.Client(), models.PlatformLuma, srv.URL, "secret-token")
	if err != nil {
		t.Fatalf("doGET: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", gotAuth)
	}
}

func TestDoGETClassifiesErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		headers    map[string]string
		check      func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *models.AuthenticationError
				if !errors.As(err, &authErr) {
					t.Fatalf("error = %v, want AuthenticationError", err)
				}
				if authErr.StatusCode != http.StatusUnauthorized {
					t.Errorf("StatusCode = %d, want 401", authErr.StatusCode)
				}
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *models.AuthenticationError
				if !errors.As(err, &authErr) {
					t.Fatalf("error = %v, want AuthenticationError", err)
				}
			},
		},
		{
			name:    "rate limited with retry-after",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rateErr *models.RateLimitError
				if !errors.As(err, &rateErr) {
					t.Fatalf("error = %v, want RateLimitError", err)
				}
				if rateErr.Source != models.RateLimitPartner {
					t.Errorf("Source = %v, want partner", rateErr.Source)
				}
				if rateErr.RetryAfter != 7*time.Second {
					t.Errorf("RetryAfter = %v, want 7s", rateErr.RetryAfter)
				}
			},
		},
		{
			name:   "rate limited without retry-after",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rateErr *models.RateLimitError
				if !errors.As(err, &rateErr) {
					t.Fatalf("error = %v, want RateLimitError", err)
				}
				if rateErr.RetryAfter != time.Second {
					t.Errorf("RetryAfter = %v, want 1s fallback", rateErr.RetryAfter)
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var transient *models.TransientNetworkError
				if !errors.As(err, &transient) {
					t.Fatalf("error = %v, want TransientNetworkError", err)
				}
				if transient.StatusCode != http.StatusBadGateway {
					t.Errorf("StatusCode = %d, want 502", transient.StatusCode)
				}
			},
		},
		{
			name:   "terminal client error",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				if models.IsRetryable(err) {
					t.Errorf("404 should map to a terminal, non-retryable error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := doGET(context.Background(), srv.Client(), models.PlatformLuma, srv.URL, "token")
			if err == nil {
				t.Fatal("doGET succeeded, want classified error")
			}
			tt.check(t, err)
		})
	}
}

func TestDoGETTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := doGET(context.Background(), &http.Client{Timeout: time.Second}, models.PlatformPartiful, srv.URL, "token")
	var transient *models.TransientNetworkError
	if !errors.As(err, &transient) {
		t.Fatalf("error = %v, want TransientNetworkError", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", time.Second},
		{"30", 30 * time.Second},
		{"0", 0},
		{"garbage", time.Second},
		{"-5", time.Second},
	}

	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
