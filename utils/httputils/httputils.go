// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides utility functions for working with HTTP.
package httputils

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

/////////////////////////////////////////
/// RoundTrippers

// LoggingRoundTripper logs one line per HTTP transaction. Bodies are never
// read, so it is safe to use on large downloads.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Logger == nil {
		return t.Transport.RoundTrip(req)
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		t.Logger.Debug("http request failed",
			"method", req.Method, "url", req.URL.String(), "elapsed", time.Since(start), "error", err)

		return nil, err
	}

	size := "unknown"
	if resp.ContentLength >= 0 {
		size = humanize.Bytes(uint64(resp.ContentLength))
	}

	t.Logger.Debug("http request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"size", size,
		"elapsed", time.Since(start))

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface. The caller's request
// is left untouched.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.Headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.Headers {
			req.Header.Set(k, v)
		}
	}

	return t.Transport.RoundTrip(req)
}

// NewClient returns a client that sends userAgent with every request and,
// when logger is not nil, logs each transaction at debug level. There is no
// overall timeout; callers bound requests with their context.
func NewClient(userAgent string, logger *slog.Logger) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if logger != nil {
		transport = &LoggingRoundTripper{Transport: transport, Logger: logger}
	}

	if userAgent != "" {
		transport = &AppendRequestHeadersRoundTripper{
			Transport: transport,
			Headers:   map[string]string{"User-Agent": userAgent},
		}
	}

	return &http.Client{Transport: transport}
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// CheckResponse returns a *StatusError when resp is not successful.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &StatusError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
}
