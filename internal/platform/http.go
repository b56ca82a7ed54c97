// Eventgraph - Multi-Platform Event Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventgraph

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/eventgraph/internal/models"
)

// defaultTimeout bounds every outbound partner call.
const defaultTimeout = 10 * time.Second

// maxErrorBodySize limits the maximum amount of response body read for error
// reporting. This prevents unbounded memory allocation when reading large
// error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// newHTTPClient returns the shared client configuration for partner calls.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doGET performs an authenticated GET against a partner endpoint and returns
// the response body. Failures are classified into the engine's error
// taxonomy:
//
//   - transport errors and timeouts -> TransientNetworkError
//   - 401/403                      -> AuthenticationError
//   - 429                          -> RateLimitError (partner, Retry-After)
//   - 5xx                          -> TransientNetworkError
//   - any other non-200            -> terminal error with body excerpt
func doGET(ctx context.Context, client *http.Client, p models.Platform, reqURL, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &models.TransientNetworkError{Platform: p, Op: "GET", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &models.TransientNetworkError{Platform: p, Op: "read body", Err: err}
		}
		return body, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &models.AuthenticationError{Platform: p, StatusCode: resp.StatusCode}

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &models.RateLimitError{
			Platform:   p,
			Source:     models.RateLimitPartner,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}

	case resp.StatusCode >= 500:
		return nil, &models.TransientNetworkError{Platform: p, Op: "GET", StatusCode: resp.StatusCode}

	default:
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%s request failed with status %d: %s", p, resp.StatusCode, string(body))
	}
}

// parseRetryAfter interprets a Retry-After header as delay seconds (RFC 6585).
// A missing or unparseable header falls back to one second.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return time.Second
}
