// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"slices"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/utils/textutils"
)

// Eval reports whether the place satisfies expr. A missing hierarchy level
// never satisfies a comparison on its fields. A nil expr matches nothing.
func Eval(expr Expr, p *gazetteer.Place) bool {
	switch e := expr.(type) {
	case Exact:
		v, ok := textField(p, e.Field)

		return ok && textutils.EqualFold(v, e.Value)
	case Prefix:
		v, ok := textField(p, e.Field)

		return ok && textutils.HasPrefixFold(v, e.Value)
	case IDIn:
		id, ok := idField(p, e.Field)

		return ok && slices.Contains(e.IDs, id)
	case And:
		for _, t := range e.Terms {
			if !Eval(t, p) {
				return false
			}
		}

		return true
	case Or:
		for _, t := range e.Terms {
			if Eval(t, p) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func textField(p *gazetteer.Place, f Field) (string, bool) {
	switch f {
	case LocalityName:
		return p.Name, true
	case CountryCode:
		if p.Country != nil {
			return p.Country.Code, true
		}
	case CountryName:
		if p.Country != nil {
			return p.Country.Name, true
		}
	case Admin1Name:
		if p.Admin1 != nil {
			return p.Admin1.Name, true
		}
	case Admin2Name:
		if p.Admin2 != nil {
			return p.Admin2.Name, true
		}
	}

	return "", false
}

func idField(p *gazetteer.Place, f Field) (int64, bool) {
	switch f {
	case LocalityID:
		return p.ID, true
	case CountryID:
		if p.Country != nil && p.Country.GeonameID != nil {
			return *p.Country.GeonameID, true
		}
	case Admin1ID:
		if p.Admin1 != nil {
			return p.Admin1.ID, true
		}
	case Admin2ID:
		if p.Admin2 != nil {
			return p.Admin2.ID, true
		}
	}

	return 0, false
}
