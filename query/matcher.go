// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
)

// AlternateNameResolver finds the localities known by an alternate name.
type AlternateNameResolver interface {
	// LocalityIDsByAlternateName returns the distinct ids of the localities
	// with an alternate name equal to name, or starting with it when prefix is
	// set. Comparison ignores case.
	LocalityIDsByAlternateName(ctx context.Context, name string, prefix bool) ([]int64, error)
}

// Matcher builds locality predicates from parsed query terms.
//
// Evaluation happens in two phases: alternate name lookups are resolved into
// id sets first, and the sets are folded into the predicate as IDIn nodes, so
// the resulting Expr is self contained and can be compiled by any store.
type Matcher struct {
	resolver AlternateNameResolver
}

// NewMatcher returns a matcher resolving alternate names with r.
func NewMatcher(r AlternateNameResolver) *Matcher {
	return &Matcher{resolver: r}
}

type comparison bool

const (
	exact  comparison = false
	prefix comparison = true
)

func (c comparison) match(f Field, v string) Expr {
	if c == prefix {
		return Prefix{Field: f, Value: v}
	}

	return Exact{Field: f, Value: v}
}

// Build returns the predicate selecting the localities that match terms.
//
// A single term with partial set matches any locality whose name, or one of
// its alternate names, starts with the term. Otherwise the first term must
// equal the locality name or an alternate name, and every other term is a
// qualifier that must equal the name of the locality's country, admin1 or
// admin2, the country code, or an alternate name of any of them. With partial
// set the last qualifier only needs to be a prefix.
//
// Build returns a nil Expr, without calling the resolver, when there are no
// terms.
func (m *Matcher) Build(ctx context.Context, terms []string, partial bool) (Expr, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	if len(terms) == 1 && partial {
		return m.primary(ctx, terms[0], prefix)
	}

	primary, err := m.primary(ctx, terms[0], exact)
	if err != nil {
		return nil, err
	}

	ret := And{Terms: []Expr{primary}}

	qualifiers := terms[1:]
	if partial {
		qualifiers = terms[1 : len(terms)-1]
	}

	for _, q := range qualifiers {
		expr, err := m.qualifier(ctx, q, exact)
		if err != nil {
			return nil, err
		}

		ret.Terms = append(ret.Terms, expr)
	}

	if partial {
		expr, err := m.qualifier(ctx, terms[len(terms)-1], prefix)
		if err != nil {
			return nil, err
		}

		ret.Terms = append(ret.Terms, expr)
	}

	return ret, nil
}

func (m *Matcher) primary(ctx context.Context, term string, cmp comparison) (Expr, error) {
	ids, err := m.alternates(ctx, term, cmp)
	if err != nil {
		return nil, err
	}

	return Or{Terms: []Expr{
		cmp.match(LocalityName, term),
		IDIn{Field: LocalityID, IDs: ids},
	}}, nil
}

// Alternate names only point to localities, so a qualifier alias matches the
// hierarchy level whose id is the id of the aliased locality.
func (m *Matcher) qualifier(ctx context.Context, term string, cmp comparison) (Expr, error) {
	ids, err := m.alternates(ctx, term, cmp)
	if err != nil {
		return nil, err
	}

	return Or{Terms: []Expr{
		cmp.match(CountryName, term),
		cmp.match(CountryCode, term),
		IDIn{Field: CountryID, IDs: ids},
		cmp.match(Admin1Name, term),
		IDIn{Field: Admin1ID, IDs: ids},
		cmp.match(Admin2Name, term),
		IDIn{Field: Admin2ID, IDs: ids},
	}}, nil
}

func (m *Matcher) alternates(ctx context.Context, term string, cmp comparison) ([]int64, error) {
	ids, err := m.resolver.LocalityIDsByAlternateName(ctx, term, bool(cmp))
	if err != nil {
		return nil, fmt.Errorf("resolving alternate names for %q: %w", term, err)
	}

	return ids, nil
}
