// Copyright 2025 The Geocoder Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// CoordinatePlaces is the number of decimal places kept for coordinates.
const CoordinatePlaces = 5

// DefaultH3Resolution is the resolution used for the cell reported with a place.
const DefaultH3Resolution = 7

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%.*f %.*f)", CoordinatePlaces, p.Lng, CoordinatePlaces, p.Lat)
}

// Valid reports whether the point lies within the latitude and longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Rounded returns the point with both coordinates rounded to CoordinatePlaces.
func (p Point) Rounded() Point {
	return Point{Lat: Round(p.Lat), Lng: Round(p.Lng)}
}

// Round rounds v to CoordinatePlaces decimal places.
func Round(v float64) float64 {
	scale := math.Pow10(CoordinatePlaces)

	return math.Round(v*scale) / scale
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("spatial: point %s out of range", p)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}
