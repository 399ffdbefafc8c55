// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"fmt"

	"github.com/jcodagnone/geocoder/gazetteer"
)

type admin1Entry struct {
	id     int64
	admin2 map[string]int64 // admin2 code -> id
}

// Index resolves the geonames administrative codes of a row to record ids.
// It lives only for the duration of a load.
type Index struct {
	countries map[string]map[string]*admin1Entry // country -> admin1 code
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{countries: make(map[string]map[string]*admin1Entry)}
}

// AddCountry registers a country code.
func (x *Index) AddCountry(code string) {
	if _, ok := x.countries[code]; !ok {
		x.countries[code] = make(map[string]*admin1Entry)
	}
}

// HasCountry reports whether the country code was registered.
func (x *Index) HasCountry(code string) bool {
	_, ok := x.countries[code]

	return ok
}

// AddAdmin1 registers a first level division of a known country.
func (x *Index) AddAdmin1(country, code string, id int64) error {
	admins, ok := x.countries[country]
	if !ok {
		return &gazetteer.IntegrityError{
			Kind:    gazetteer.IntegrityDanglingCountry,
			Message: fmt.Sprintf("admin1 %d refers to unknown country %q", id, country),
		}
	}

	admins[code] = &admin1Entry{id: id, admin2: make(map[string]int64)}

	return nil
}

// Admin1 returns the id of a first level division.
func (x *Index) Admin1(country, code string) (int64, bool) {
	e, ok := x.countries[country][code]
	if !ok {
		return 0, false
	}

	return e.id, true
}

// AddAdmin2 registers a second level division under its admin1. It reports
// false, and registers nothing, when the admin1 is unknown.
func (x *Index) AddAdmin2(country, admin1, code string, id int64) bool {
	e, ok := x.countries[country][admin1]
	if !ok {
		return false
	}

	e.admin2[code] = id

	return true
}

// Resolve returns the admin1 and admin2 ids for the codes of a locality. An
// empty country resolves to no references at all; an unknown country is an
// integrity error.
func (x *Index) Resolve(country, admin1, admin2 string) (*int64, *int64, error) {
	if country == "" {
		return nil, nil, nil
	}

	admins, ok := x.countries[country]
	if !ok {
		return nil, nil, &gazetteer.IntegrityError{
			Kind:    gazetteer.IntegrityDanglingCountry,
			Message: fmt.Sprintf("unknown country %q", country),
		}
	}

	e, ok := admins[admin1]
	if !ok {
		return nil, nil, nil
	}

	admin1ID := e.id

	admin2ID, ok := e.admin2[admin2]
	if !ok {
		return &admin1ID, nil, nil
	}

	return &admin1ID, &admin2ID, nil
}
