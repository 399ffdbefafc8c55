// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package gazetteer defines the place records the search core reads: countries,
// first and second level administrative regions, localities and their
// alternate names.
package gazetteer

import (
	"strings"

	"github.com/jcodagnone/geocoder/spatial"
)

// Feature classes kept in the gazetteer.
const (
	FeatureClassAdmin     = "A" // country, state, region…
	FeatureClassPopulated = "P" // city, village…
)

// FeatureCodeIndependentPolity is the feature code of a sovereign country.
const FeatureCodeIndependentPolity = "PCLI"

// Country is identified by its ISO 3166 two letter code.
type Country struct {
	Code      string `json:"code"`
	GeonameID *int64 `json:"geoname_id,omitempty"` // locality that represents the country
	Name      string `json:"name"`
}

// Admin1 is a first level administrative division (state, province…).
type Admin1 struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"` // unique within the country
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}

// Admin2 is a second level administrative division (county, department…).
type Admin2 struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Admin1ID    *int64 `json:"admin1_id,omitempty"`
}

// Locality is a named place with coordinates. Any of its administrative
// references may be missing.
type Locality struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	CountryCode  *string `json:"country_code,omitempty"`
	Admin1ID     *int64  `json:"admin1_id,omitempty"`
	Admin2ID     *int64  `json:"admin2_id,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	FeatureClass string  `json:"feature_class"`
	FeatureCode  string  `json:"feature_code"`
	Population   *int64  `json:"population,omitempty"`
}

// Point returns the locality coordinates.
func (l *Locality) Point() spatial.Point {
	return spatial.Point{Lat: l.Latitude, Lng: l.Longitude}
}

// AlternateName is an alias, translation or historic name of a locality.
type AlternateName struct {
	LocalityID  int64  `json:"locality_id"`
	Name        string `json:"name"`
	IsPreferred bool   `json:"is_preferred"`
	IsShort     bool   `json:"is_short"`
	IsASCIIfied bool   `json:"is_asciified"`
}

// Place is a locality joined with the records of its administrative hierarchy.
// A nil Country, Admin1 or Admin2 means the reference is absent.
type Place struct {
	Locality
	Country *Country `json:"country,omitempty"`
	Admin1  *Admin1  `json:"admin1,omitempty"`
	Admin2  *Admin2  `json:"admin2,omitempty"`
}

// IsCountry reports whether the place is the locality designated to represent
// its own country.
func (p *Place) IsCountry() bool {
	return p.FeatureCode == FeatureCodeIndependentPolity &&
		p.Country != nil &&
		p.Country.GeonameID != nil &&
		*p.Country.GeonameID == p.ID
}

// LongName returns the display name of the place, from the most specific
// segment to the country, e.g. "Paris, Île-de-France, France". A segment equal
// to the one before it is skipped.
func (p *Place) LongName() string {
	// Countries use the name from the countries table, which tends to be the
	// common name ("Finland") rather than the formal one ("Republic of Finland").
	first := p.Name
	if p.IsCountry() {
		first = p.Country.Name
	}

	parts := []string{first}
	appendPart := func(name string) {
		if name != parts[len(parts)-1] {
			parts = append(parts, name)
		}
	}

	if p.Admin2 != nil {
		appendPart(p.Admin2.Name)
	}

	if p.Admin1 != nil {
		appendPart(p.Admin1.Name)
	}

	if p.Country != nil {
		appendPart(p.Country.Name)
	}

	return strings.Join(parts, ", ")
}

// CountryName returns the name of the place's country, empty when absent.
func (p *Place) CountryName() string {
	if p.Country == nil {
		return ""
	}

	return p.Country.Name
}

// PopulationOrZero returns the population, zero when unknown.
func (p *Place) PopulationOrZero() int64 {
	if p.Population == nil {
		return 0
	}

	return *p.Population
}
