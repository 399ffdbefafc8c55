// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package search resolves place queries against a gazetteer store and shapes
// the ranked results for presentation.
package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/query"
	"github.com/jcodagnone/geocoder/spatial"
)

// Default result limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Store is the read side of the gazetteer used by the service. It must be safe
// for concurrent use.
type Store interface {
	query.AlternateNameResolver

	// FindPlaces returns the places matching expr ordered by population,
	// largest first and unknown populations last.
	FindPlaces(ctx context.Context, expr query.Expr, limit, offset int) ([]*gazetteer.Place, error)

	// GetPlace returns the place with the given id or gazetteer.ErrNotFound.
	GetPlace(ctx context.Context, id int64) (*gazetteer.Place, error)
}

// Result is a single search match.
type Result struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Detail describes a single place.
type Detail struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	LongName     string  `json:"long_name"`
	CountryName  string  `json:"country_name"`
	CountryCode  string  `json:"country_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	FeatureClass string  `json:"feature_class"`
	FeatureCode  string  `json:"feature_code"`
	Population   *int64  `json:"population"`
	H3Cell       string  `json:"h3_cell,omitempty"`
}

// Service answers search and lookup requests. It keeps no per request state
// and can be shared between goroutines.
type Service struct {
	store        Store
	resolver     query.AlternateNameResolver
	matcher      *query.Matcher
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultLimit sets the number of results returned when the caller does
// not ask for a specific amount.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithMaxLimit caps the number of results a caller can ask for.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAlternateNameCache keeps up to size alternate name lookups in memory.
// A size of zero or less disables the cache.
func WithAlternateNameCache(size int) Option {
	return func(s *Service) {
		if size <= 0 {
			return
		}

		cached, err := NewCachedResolver(s.store, size)
		if err != nil {
			s.logger.Warn("alternate name cache disabled", "error", err)

			return
		}

		s.resolver = cached
	}
}

// NewService returns a service reading from store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		resolver:     store,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.matcher = query.NewMatcher(s.resolver)

	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}

	return s
}

// Explain returns the predicate a search for term would run, nil for a blank
// term.
func (s *Service) Explain(ctx context.Context, term string, partial bool) (query.Expr, error) {
	return s.matcher.Build(ctx, query.Parse(term), partial)
}

// Search returns the places matching term, most populated first. A blank term
// yields an empty list without touching the store. A limit of zero or less
// selects the default limit.
func (s *Service) Search(ctx context.Context, term string, partial bool, limit int) ([]Result, error) {
	terms := query.Parse(term)
	if len(terms) == 0 {
		return []Result{}, nil
	}

	expr, err := s.matcher.Build(ctx, terms, partial)
	if err != nil {
		return nil, fmt.Errorf("building query for %q: %w", term, err)
	}

	limit = s.limit(limit)
	s.logger.Debug("searching places", "term", term, "partial", partial, "limit", limit, "expr", expr.String())

	places, err := s.store.FindPlaces(ctx, expr, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("finding places for %q: %w", term, err)
	}

	SortPlaces(places)

	if len(places) > limit {
		places = places[:limit]
	}

	results := make([]Result, len(places))
	for i, p := range places {
		results[i] = Result{ID: p.ID, Name: p.LongName()}
	}

	return results, nil
}

// Lookup returns the details of the place with the given id. The error
// matches gazetteer.ErrNotFound when there is no such place.
func (s *Service) Lookup(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.store.GetPlace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up place %d: %w", id, err)
	}

	d := &Detail{
		ID:           p.ID,
		Name:         p.Name,
		LongName:     p.LongName(),
		CountryName:  p.CountryName(),
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		FeatureClass: p.FeatureClass,
		FeatureCode:  p.FeatureCode,
		Population:   p.Population,
	}

	if p.Country != nil {
		d.CountryCode = p.Country.Code
	}

	if cell, err := p.Point().Cell(spatial.DefaultH3Resolution); err == nil {
		d.H3Cell = cell.String()
	} else {
		s.logger.Warn("cannot index place", "id", p.ID, "error", err)
	}

	return d, nil
}

func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}

	return min(n, s.maxLimit)
}

// SortPlaces orders places by population, largest first. Places without a
// population go last; ties are broken by id so the order is stable across
// calls.
func SortPlaces(places []*gazetteer.Place) {
	slices.SortStableFunc(places, ComparePlaces)
}

// ComparePlaces is the ranking order used by SortPlaces.
func ComparePlaces(a, b *gazetteer.Place) int {
	switch {
	case a.Population == nil && b.Population != nil:
		return 1
	case a.Population != nil && b.Population == nil:
		return -1
	case a.Population != nil && b.Population != nil && *a.Population != *b.Population:
		return cmp.Compare(*b.Population, *a.Population)
	}

	return cmp.Compare(a.ID, b.ID)
}
