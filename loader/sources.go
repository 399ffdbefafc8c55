// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package loader

// DefaultBaseURL is where geonames publishes its daily dump.
const DefaultBaseURL = "https://download.geonames.org/export/dump/"

// Files of the geonames dump, in load order.
const (
	CountryInfoFile     = "countryInfo.txt"
	Admin1File          = "admin1CodesASCII.txt"
	Admin2File          = "admin2Codes.txt"
	LocalitiesFile      = "allCountries.zip"
	AlternateNamesFile  = "alternateNames.zip"
	LocalitiesEntry     = "allCountries.txt"
	AlternateNamesEntry = "alternateNames.txt"
)

// Files returns the names of every file a load needs.
func Files() []string {
	return []string{CountryInfoFile, Admin1File, Admin2File, LocalitiesFile, AlternateNamesFile}
}
