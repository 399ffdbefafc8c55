// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"
	"strings"
)

// Field is an attribute of a locality or of its administrative hierarchy that
// a predicate can test.
type Field int

const (
	LocalityID Field = iota
	LocalityName
	CountryCode
	CountryName
	CountryID // geoname id of the locality representing the country
	Admin1ID
	Admin1Name
	Admin2ID
	Admin2Name
)

var fieldNames = map[Field]string{
	LocalityID:   "locality.id",
	LocalityName: "locality.name",
	CountryCode:  "country.code",
	CountryName:  "country.name",
	CountryID:    "country.geoname_id",
	Admin1ID:     "admin1.id",
	Admin1Name:   "admin1.name",
	Admin2ID:     "admin2.id",
	Admin2Name:   "admin2.name",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("field(%d)", int(f))
}

// IsText reports whether the field holds a name or code.
func (f Field) IsText() bool {
	switch f {
	case LocalityName, CountryCode, CountryName, Admin1Name, Admin2Name:
		return true
	default:
		return false
	}
}

// Expr is a node of a locality predicate. The concrete types are Exact,
// Prefix, IDIn, And and Or.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Exact matches when the field equals Value, ignoring case.
type Exact struct {
	Field Field
	Value string
}

// Prefix matches when the field starts with Value, ignoring case.
type Prefix struct {
	Field Field
	Value string
}

// IDIn matches when the field is one of IDs. An empty set matches nothing.
type IDIn struct {
	Field Field
	IDs   []int64
}

// And matches when all of its terms match. An empty And always matches.
type And struct {
	Terms []Expr
}

// Or matches when any of its terms matches. An empty Or never matches.
type Or struct {
	Terms []Expr
}

func (Exact) isExpr()  {}
func (Prefix) isExpr() {}
func (IDIn) isExpr()   {}
func (And) isExpr()    {}
func (Or) isExpr()     {}

func (e Exact) String() string {
	return fmt.Sprintf("%s = %q", e.Field, e.Value)
}

func (e Prefix) String() string {
	return fmt.Sprintf("%s ^= %q", e.Field, e.Value)
}

func (e IDIn) String() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}

	return fmt.Sprintf("%s in [%s]", e.Field, strings.Join(ids, " "))
}

func (e And) String() string {
	return join("and", e.Terms)
}

func (e Or) String() string {
	return join("or", e.Terms)
}

func join(op string, terms []Expr) string {
	if len(terms) == 0 {
		return "(" + op + ")"
	}

	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}

	return "(" + op + " " + strings.Join(parts, " ") + ")"
}
