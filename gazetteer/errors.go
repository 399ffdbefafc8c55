// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested place does not exist.
var ErrNotFound = errors.New("place not found")

// IntegrityKind classifies the source records dropped while building the
// gazetteer.
type IntegrityKind int

const (
	// IntegrityUnknown unclassified problem.
	IntegrityUnknown IntegrityKind = iota
	// IntegrityDanglingCountry reference to a country that was not loaded.
	IntegrityDanglingCountry
	// IntegrityDanglingLocality reference to a locality that was not loaded.
	IntegrityDanglingLocality
	// IntegrityDuplicateAdmin2 repeated (country, admin1, name) admin2 key.
	IntegrityDuplicateAdmin2
	// IntegrityDuplicateAlternateName repeated alternate name for a locality.
	IntegrityDuplicateAlternateName
	// IntegrityMalformed record that could not be parsed.
	IntegrityMalformed
)

func (k IntegrityKind) String() string {
	switch k {
	case IntegrityDanglingCountry:
		return "dangling country"
	case IntegrityDanglingLocality:
		return "dangling locality"
	case IntegrityDuplicateAdmin2:
		return "duplicate admin2"
	case IntegrityDuplicateAlternateName:
		return "duplicate alternate name"
	case IntegrityMalformed:
		return "malformed record"
	default:
		return "unknown"
	}
}

// IntegrityError describes a source record that violates the gazetteer
// invariants. It is counted and skipped by the loader, never returned by a
// search.
type IntegrityError struct {
	Kind    IntegrityKind
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// IsIntegrityError reports whether err is an IntegrityError of the given kind.
func IsIntegrityError(err error, kind IntegrityKind) bool {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}

	return false
}
