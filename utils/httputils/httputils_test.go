// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyRoundTripper records the last request and replies with a fixed response.
type dummyRoundTripper struct {
	lastRequest *http.Request
	body        string
	err         error
}

func (d *dummyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req
	if d.err != nil {
		return nil, d.err
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Header:        make(http.Header),
		Body:          io.NopCloser(strings.NewReader(d.body)),
		ContentLength: int64(len(d.body)),
		Request:       req,
	}, nil
}

func TestLoggingRoundTripper(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drt := &dummyRoundTripper{body: "response body"}
	lt := &LoggingRoundTripper{Transport: drt, Logger: logger}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/abc", nil)
	require.NoError(t, err)

	resp, err := lt.RoundTrip(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "response body", string(body), "the body must not be consumed")

	log := buf.String()
	assert.Contains(t, log, "url=http://example.com/abc")
	assert.Contains(t, log, "status=200")
	assert.Contains(t, log, `size="13 B"`)
}

func TestLoggingRoundTripperError(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cause := errors.New("connection refused")
	lt := &LoggingRoundTripper{Transport: &dummyRoundTripper{err: cause}, Logger: logger}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/abc", nil)
	require.NoError(t, err)

	_, err = lt.RoundTrip(req)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, buf.String(), "http request failed")
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &dummyRoundTripper{}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers:   map[string]string{"X-Test-Header": "TestValue"},
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	require.NoError(t, err)

	resp, err := atr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, dummy.lastRequest)
	assert.Equal(t, "TestValue", dummy.lastRequest.Header.Get("X-Test-Header"))
	assert.Empty(t, req.Header.Get("X-Test-Header"), "the original request must not be modified")
}

func TestNewClient(t *testing.T) {
	var agent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")

		if r.URL.Path == "/missing" {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient("geocoder-test/1.0", slog.New(slog.NewTextHandler(io.Discard, nil)))

	resp, err := client.Get(srv.URL + "/file")
	require.NoError(t, err)
	resp.Body.Close()
	require.NoError(t, CheckResponse(resp))
	assert.Equal(t, "geocoder-test/1.0", agent)

	resp, err = client.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	err = CheckResponse(resp)

	var statusErr *StatusError

	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "/missing")
}
