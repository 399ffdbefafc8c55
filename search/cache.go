// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jcodagnone/geocoder/query"
)

type resolverKey struct {
	name   string
	prefix bool
}

// CachedResolver memoizes alternate name lookups. It assumes the gazetteer
// does not change while it is in use.
//
// Names are cached exactly as given. How two names compare is up to the
// wrapped resolver, so "USA" and "usa" are separate entries even when they
// resolve to the same localities.
type CachedResolver struct {
	resolver query.AlternateNameResolver
	cache    *lru.Cache[resolverKey, []int64]
}

// NewCachedResolver returns a resolver that keeps up to size lookups of r.
func NewCachedResolver(r query.AlternateNameResolver, size int) (*CachedResolver, error) {
	cache, err := lru.New[resolverKey, []int64](size)
	if err != nil {
		return nil, fmt.Errorf("creating alternate name cache: %w", err)
	}

	return &CachedResolver{resolver: r, cache: cache}, nil
}

// LocalityIDsByAlternateName implements query.AlternateNameResolver. Failed
// lookups are not cached.
func (c *CachedResolver) LocalityIDsByAlternateName(ctx context.Context, name string, prefix bool) ([]int64, error) {
	key := resolverKey{name: name, prefix: prefix}
	if ids, ok := c.cache.Get(key); ok {
		return slices.Clone(ids), nil
	}

	ids, err := c.resolver.LocalityIDsByAlternateName(ctx, name, prefix)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, slices.Clone(ids))

	return ids, nil
}

// Len returns the number of cached lookups.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}
