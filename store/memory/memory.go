// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides an immutable in-memory gazetteer store that
// evaluates query predicates directly.
package memory

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/query"
	"github.com/jcodagnone/geocoder/search"
	"github.com/jcodagnone/geocoder/utils/textutils"
)

// Store holds a joined snapshot of the gazetteer. It is safe for concurrent use.
type Store struct {
	places   []*gazetteer.Place
	byID     map[int64]*gazetteer.Place
	altNames []gazetteer.AlternateName
	calls    atomic.Int64
}

// New joins the records into places. References to records that are not
// part of the snapshot are left empty.
func New(
	countries []gazetteer.Country,
	admin1 []gazetteer.Admin1,
	admin2 []gazetteer.Admin2,
	localities []gazetteer.Locality,
	altNames []gazetteer.AlternateName,
) *Store {
	countries, admin1, admin2 = slices.Clone(countries), slices.Clone(admin1), slices.Clone(admin2)

	countryByCode := make(map[string]*gazetteer.Country, len(countries))
	for i := range countries {
		countryByCode[countries[i].Code] = &countries[i]
	}

	admin1ByID := make(map[int64]*gazetteer.Admin1, len(admin1))
	for i := range admin1 {
		admin1ByID[admin1[i].ID] = &admin1[i]
	}

	admin2ByID := make(map[int64]*gazetteer.Admin2, len(admin2))
	for i := range admin2 {
		admin2ByID[admin2[i].ID] = &admin2[i]
	}

	s := &Store{
		places:   make([]*gazetteer.Place, 0, len(localities)),
		byID:     make(map[int64]*gazetteer.Place, len(localities)),
		altNames: slices.Clone(altNames),
	}

	for _, l := range localities {
		p := &gazetteer.Place{Locality: l}
		if l.CountryCode != nil {
			p.Country = countryByCode[*l.CountryCode]
		}

		if l.Admin1ID != nil {
			p.Admin1 = admin1ByID[*l.Admin1ID]
		}

		if l.Admin2ID != nil {
			p.Admin2 = admin2ByID[*l.Admin2ID]
		}

		s.places = append(s.places, p)
		s.byID[p.ID] = p
	}

	return s
}

// Calls returns the number of store operations served so far.
func (s *Store) Calls() int64 {
	return s.calls.Load()
}

// LocalityIDsByAlternateName implements query.AlternateNameResolver.
func (s *Store) LocalityIDsByAlternateName(_ context.Context, name string, prefix bool) ([]int64, error) {
	s.calls.Add(1)

	var ids []int64

	for _, a := range s.altNames {
		var ok bool
		if prefix {
			ok = textutils.HasPrefixFold(a.Name, name)
		} else {
			ok = textutils.EqualFold(a.Name, name)
		}

		if ok {
			ids = append(ids, a.LocalityID)
		}
	}

	slices.Sort(ids)

	return slices.Compact(ids), nil
}

// FindPlaces implements search.Store.
func (s *Store) FindPlaces(ctx context.Context, expr query.Expr, limit, offset int) ([]*gazetteer.Place, error) {
	s.calls.Add(1)

	var matches []*gazetteer.Place

	for _, p := range s.places {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if query.Eval(expr, p) {
			cp := *p
			matches = append(matches, &cp)
		}
	}

	search.SortPlaces(matches)

	if offset >= len(matches) {
		return []*gazetteer.Place{}, nil
	}

	matches = matches[max(offset, 0):]
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// GetPlace implements search.Store.
func (s *Store) GetPlace(_ context.Context, id int64) (*gazetteer.Place, error) {
	s.calls.Add(1)

	p, ok := s.byID[id]
	if !ok {
		return nil, gazetteer.ErrNotFound
	}

	cp := *p

	return &cp, nil
}
