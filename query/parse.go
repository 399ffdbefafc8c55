// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package query turns free-text place queries into predicates over the
// locality collection.
//
// A query is a comma separated list of terms read from the most specific to
// the least specific one: "Springfield, Illinois, USA". The first term names
// the locality, the rest qualify it by country, first or second level
// administrative region.
package query

import (
	"strings"
)

// Parse splits a raw query on commas into its terms. Terms are trimmed and
// empty ones dropped, so blank input yields no terms. Terms are not
// normalized otherwise: case and diacritics are left to the matcher.
func Parse(term string) []string {
	var terms []string

	for _, t := range strings.Split(term, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	return terms
}
