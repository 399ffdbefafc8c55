// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geocoder/gazetteer/gazetteertest"
	"github.com/jcodagnone/geocoder/search"
	"github.com/jcodagnone/geocoder/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T, opts ...Option) *Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	d := gazetteertest.Fixture()
	svc := search.NewService(memory.New(d.Countries, d.Admin1, d.Admin2, d.Localities, d.AlternateNames))

	return New(svc, opts...)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	return w
}

func TestSearchAPI(t *testing.T) {
	s := setupServerTest(t)

	w := get(t, s, "/search?q=Paris,%20France")
	require.Equal(t, http.StatusOK, w.Code)

	var results []search.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Equal(t, []search.Result{
		{ID: gazetteertest.ParisFR, Name: "Paris, Île-de-France, France"},
	}, results)

	w = get(t, s, "/search?q=spring&partial=true&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 1)
}

func TestSearchAPIBlank(t *testing.T) {
	s := setupServerTest(t)

	for _, target := range []string{"/search", "/search?q=", "/search?q=%20%20"} {
		w := get(t, s, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.JSONEq(t, `[]`, w.Body.String(), target)
	}
}

func TestSearchAPIBadRequest(t *testing.T) {
	s := setupServerTest(t)

	tests := []struct {
		target string
		error  string
	}{
		{"/search?q=Paris&partial=maybe", "partial must be a boolean"},
		{"/search?q=Paris&limit=ten", "limit must be a non negative integer"},
		{"/search?q=Paris&limit=-1", "limit must be a non negative integer"},
	}

	for _, tc := range tests {
		w := get(t, s, tc.target)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.target)
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.error), w.Body.String(), tc.target)
	}
}

func TestPlaceAPI(t *testing.T) {
	s := setupServerTest(t)

	w := get(t, s, fmt.Sprintf("/places/%d", gazetteertest.ParisFR))
	require.Equal(t, http.StatusOK, w.Code)

	var detail search.Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, gazetteertest.ParisFR, detail.ID)
	assert.Equal(t, "Paris, Île-de-France, France", detail.LongName)
	assert.Equal(t, "France", detail.CountryName)
	assert.Equal(t, "FR", detail.CountryCode)
	assert.NotEmpty(t, detail.H3Cell)

	w = get(t, s, "/places/paris")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, s, "/places/1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"place not found"}`, w.Body.String())
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthAPI(t *testing.T) {
	w := get(t, setupServerTest(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, setupServerTest(t, WithPinger(fakePinger{})), "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, setupServerTest(t, WithPinger(fakePinger{err: errors.New("database is closed")})), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

// slowSearcher blocks until the request context is done.
type slowSearcher struct{}

func (slowSearcher) Search(ctx context.Context, _ string, _ bool, _ int) ([]search.Result, error) {
	<-ctx.Done()

	return nil, fmt.Errorf("finding places: %w", ctx.Err())
}

func (slowSearcher) Lookup(_ context.Context, _ int64) (*search.Detail, error) {
	return nil, errors.New("broken store")
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := New(slowSearcher{}, WithRequestTimeout(10*time.Millisecond))

	w := get(t, s, "/search?q=Paris")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"error":"search failed"}`, w.Body.String())

	w = get(t, s, "/places/42")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"lookup failed"}`, w.Body.String())
}

func TestRun(t *testing.T) {
	s := setupServerTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
