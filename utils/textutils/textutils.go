// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides the caseless string comparisons used when
// matching place names.
package textutils

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case folded form of s. Diacritics are preserved:
// "Île" and "ile" do not fold to the same value.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefixFold reports whether s begins with prefix under Unicode case
// folding. An empty prefix matches every string.
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(Fold(s), Fold(prefix))
}
