// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package gazetteertest provides a small gazetteer for tests.
package gazetteertest

import "github.com/jcodagnone/geocoder/gazetteer"

// Well known ids of the fixture.
const (
	UnitedStatesID      int64 = 6252001
	FranceID            int64 = 3017382
	FinlandID           int64 = 660013
	IllinoisID          int64 = 4896861
	MassachusettsID     int64 = 6254926
	TexasID             int64 = 4736286
	FranceAdjacentID    int64 = 9000001
	IleDeFranceID       int64 = 3012874
	SangamonID          int64 = 4250545
	HampdenID           int64 = 4938757
	LamarID             int64 = 4705086
	ParisDepartementID  int64 = 2968815
	SpringfieldIL       int64 = 4250542
	SpringfieldMA       int64 = 4951788
	SpringfieldUnknown  int64 = 9000004
	Springdale          int64 = 4132093
	Offspring           int64 = 9000005
	ParisFR             int64 = 2988507
	ParisTX             int64 = 4717560
	ParisFranceAdjacent int64 = 9000002
	Nullville           int64 = 9000003
)

func ptr[T any](v T) *T { return &v }

// Data is a complete set of gazetteer records.
type Data struct {
	Countries      []gazetteer.Country
	Admin1         []gazetteer.Admin1
	Admin2         []gazetteer.Admin2
	Localities     []gazetteer.Locality
	AlternateNames []gazetteer.AlternateName
}

// Fixture returns a fresh copy of the test gazetteer: a few Springfields and
// Parises, the countries they belong to and some aliases.
func Fixture() *Data {
	return &Data{
		Countries: []gazetteer.Country{
			{Code: "US", GeonameID: ptr(UnitedStatesID), Name: "United States"},
			{Code: "FR", GeonameID: ptr(FranceID), Name: "France"},
			{Code: "FI", GeonameID: ptr(FinlandID), Name: "Finland"},
			{Code: "AQ", Name: "Antarctica"},
		},
		Admin1: []gazetteer.Admin1{
			{ID: IllinoisID, Code: "IL", Name: "Illinois", CountryCode: "US"},
			{ID: MassachusettsID, Code: "MA", Name: "Massachusetts", CountryCode: "US"},
			{ID: TexasID, Code: "TX", Name: "Texas", CountryCode: "US"},
			{ID: FranceAdjacentID, Code: "ZZ", Name: "France-adjacent", CountryCode: "US"},
			{ID: IleDeFranceID, Code: "11", Name: "Île-de-France", CountryCode: "FR"},
		},
		Admin2: []gazetteer.Admin2{
			{ID: SangamonID, Code: "167", Name: "Sangamon County", CountryCode: "US", Admin1ID: ptr(IllinoisID)},
			{ID: HampdenID, Code: "013", Name: "Hampden County", CountryCode: "US", Admin1ID: ptr(MassachusettsID)},
			{ID: LamarID, Code: "277", Name: "Lamar County", CountryCode: "US", Admin1ID: ptr(TexasID)},
			{ID: ParisDepartementID, Code: "75", Name: "Paris", CountryCode: "FR", Admin1ID: ptr(IleDeFranceID)},
		},
		Localities: []gazetteer.Locality{
			{
				ID: SpringfieldIL, Name: "Springfield", CountryCode: ptr("US"),
				Admin1ID: ptr(IllinoisID), Admin2ID: ptr(SangamonID),
				Latitude: 39.80172, Longitude: -89.64371,
				FeatureClass: "P", FeatureCode: "PPLA", Population: ptr(int64(200)),
			},
			{
				ID: SpringfieldMA, Name: "Springfield", CountryCode: ptr("US"),
				Admin1ID: ptr(MassachusettsID), Admin2ID: ptr(HampdenID),
				Latitude: 42.10148, Longitude: -72.58981,
				FeatureClass: "P", FeatureCode: "PPLA2", Population: ptr(int64(150)),
			},
			{
				ID: SpringfieldUnknown, Name: "Springfield", CountryCode: ptr("US"),
				Latitude: 37.21533, Longitude: -93.29824,
				FeatureClass: "P", FeatureCode: "PPL",
			},
			{
				ID: Springdale, Name: "Springdale", CountryCode: ptr("US"),
				Latitude: 36.18674, Longitude: -94.12881,
				FeatureClass: "P", FeatureCode: "PPL", Population: ptr(int64(80)),
			},
			{
				ID: Offspring, Name: "Offspring", CountryCode: ptr("US"),
				Latitude: 40.0, Longitude: -100.0,
				FeatureClass: "P", FeatureCode: "PPL", Population: ptr(int64(500)),
			},
			{
				ID: ParisFR, Name: "Paris", CountryCode: ptr("FR"),
				Admin1ID: ptr(IleDeFranceID), Admin2ID: ptr(ParisDepartementID),
				Latitude: 48.85341, Longitude: 2.3488,
				FeatureClass: "P", FeatureCode: "PPLC", Population: ptr(int64(2138551)),
			},
			{
				ID: ParisTX, Name: "Paris", CountryCode: ptr("US"),
				Admin1ID: ptr(TexasID), Admin2ID: ptr(LamarID),
				Latitude: 33.66094, Longitude: -95.55551,
				FeatureClass: "P", FeatureCode: "PPLA2", Population: ptr(int64(24171)),
			},
			{
				ID: ParisFranceAdjacent, Name: "Paris", CountryCode: ptr("US"),
				Admin1ID: ptr(FranceAdjacentID),
				Latitude: 35.0, Longitude: -90.0,
				FeatureClass: "P", FeatureCode: "PPL", Population: ptr(int64(10)),
			},
			{
				ID: UnitedStatesID, Name: "United States", CountryCode: ptr("US"),
				Latitude: 39.76, Longitude: -98.5,
				FeatureClass: "A", FeatureCode: "PCLI", Population: ptr(int64(327167434)),
			},
			{
				ID: FranceID, Name: "Republic of France", CountryCode: ptr("FR"),
				Latitude: 46.0, Longitude: 2.0,
				FeatureClass: "A", FeatureCode: "PCLI", Population: ptr(int64(66987244)),
			},
			{
				ID: FinlandID, Name: "Republic of Finland", CountryCode: ptr("FI"),
				Latitude: 64.0, Longitude: 26.0,
				FeatureClass: "A", FeatureCode: "PCLI", Population: ptr(int64(5518050)),
			},
			{
				ID: IllinoisID, Name: "Illinois", CountryCode: ptr("US"), Admin1ID: ptr(IllinoisID),
				Latitude: 40.00032, Longitude: -89.25037,
				FeatureClass: "A", FeatureCode: "ADM1", Population: ptr(int64(12830632)),
			},
			{
				ID: Nullville, Name: "Nullville",
				Latitude: 0, Longitude: 0,
				FeatureClass: "P", FeatureCode: "PPL",
			},
		},
		AlternateNames: []gazetteer.AlternateName{
			{LocalityID: UnitedStatesID, Name: "USA", IsShort: true},
			{LocalityID: UnitedStatesID, Name: "America"},
			{LocalityID: FranceID, Name: "Frankreich"},
			{LocalityID: ParisFR, Name: "Lutetia"},
			{LocalityID: ParisFR, Name: "Paname", IsShort: true},
			{LocalityID: IllinoisID, Name: "Land of Lincoln"},
			{LocalityID: SpringfieldMA, Name: "Springfield, Mass."},
		},
	}
}
