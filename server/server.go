// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes place search over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/search"
)

const shutdownTimeout = 5 * time.Second

// Searcher answers the queries served by the server.
type Searcher interface {
	Search(ctx context.Context, term string, partial bool, limit int) ([]search.Result, error)
	Lookup(ctx context.Context, id int64) (*search.Detail, error)
}

// Pinger reports whether the backing store is reachable. *sql.DB is one.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout bounds the time spent on each request. Zero disables the
// limit.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithPinger makes /health check p.
func WithPinger(p Pinger) Option {
	return func(s *Server) {
		s.pinger = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

type Server struct {
	searcher Searcher
	pinger   Pinger
	timeout  time.Duration
	logger   *slog.Logger
	engine   *gin.Engine
}

// New returns a server answering with searcher. The gin mode must be set
// before calling it.
func New(searcher Searcher, opts ...Option) *Server {
	s := &Server{
		searcher: searcher,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	if s.timeout > 0 {
		r.Use(s.deadline)
	}

	r.GET("/search", s.search)
	r.GET("/places/:id", s.place)
	r.GET("/health", s.health)

	s.engine = r

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) logRequests(ctx *gin.Context) {
	start := time.Now()

	ctx.Next()

	s.logger.Debug("request",
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"query", ctx.Request.URL.RawQuery,
		"status", ctx.Writer.Status(),
		"elapsed", time.Since(start))
}

func (s *Server) deadline(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), s.timeout)
	defer cancel()

	ctx.Request = ctx.Request.WithContext(c)
	ctx.Next()
}

func (s *Server) search(ctx *gin.Context) {
	term := ctx.Query("q")

	partial := false
	if v := ctx.Query("partial"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "partial must be a boolean"})

			return
		}

		partial = b
	}

	limit := 0
	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non negative integer"})

			return
		}

		limit = n
	}

	if strings.TrimSpace(term) == "" {
		ctx.JSON(http.StatusOK, []search.Result{})

		return
	}

	results, err := s.searcher.Search(ctx.Request.Context(), term, partial, limit)
	if err != nil {
		s.fail(ctx, "search failed", err)

		return
	}

	ctx.JSON(http.StatusOK, results)
}

func (s *Server) place(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})

		return
	}

	detail, err := s.searcher.Lookup(ctx.Request.Context(), id)
	if errors.Is(err, gazetteer.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "place not found"})

		return
	}

	if err != nil {
		s.fail(ctx, "lookup failed", err)

		return
	}

	ctx.JSON(http.StatusOK, detail)
}

func (s *Server) health(ctx *gin.Context) {
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx.Request.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})

			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) fail(ctx *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}

	s.logger.Error(msg, "path", ctx.Request.URL.Path, "error", err)
	ctx.JSON(status, gin.H{"error": msg})
}
