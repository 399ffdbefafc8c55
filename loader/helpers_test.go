// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tsv(rows ...[]string) string {
	var sb strings.Builder

	for _, r := range rows {
		sb.WriteString(strings.Join(r, "\t"))
		sb.WriteString("\n")
	}

	return sb.String()
}

func countryRow(iso, name, geonameID string) []string {
	r := make([]string, 19)
	r[0], r[4], r[16] = iso, name, geonameID

	return r
}

func geonameRow(id, name, lat, lng, class, code, country, admin1, admin2, population string) []string {
	r := make([]string, 19)
	r[0], r[1], r[2] = id, name, name
	r[4], r[5], r[6], r[7] = lat, lng, class, code
	r[8], r[10], r[11], r[14] = country, admin1, admin2, population

	return r
}

var (
	countryInfoTxt = "# GeoNames country info\n#ISO\tISO3\tISO-Numeric\n" + tsv(
		countryRow("US", "United States", "6252001"),
		countryRow("FR", "France", "3017382"),
		countryRow("CS", "Serbia and Montenegro", ""),
	)

	admin1Txt = tsv(
		[]string{"US.IL", "Illinois", "Illinois", "4896861"},
		[]string{"US.MA", "Massachusetts", "Massachusetts", "6254926"},
		[]string{"FR.11", "Île-de-France", "Ile-de-France", "3012874"},
		[]string{"XX.01", "Nowhere", "Nowhere", "9100000"},
		[]string{"US-TX", "Texas", "Texas", "4736286"},
	)

	admin2Txt = tsv(
		[]string{"US.IL.167", "Sangamon County", "Sangamon County", "4250545"},
		[]string{"US.MA.013", "Hampden County", "Hampden County", "4938757"},
		[]string{"US.MA.013", "Hampden County", "Hampden County", "4938758"},
		[]string{"US.ZZ.001", "Orphan County", "Orphan County", "9100001"},
		[]string{"FR.11.75", "Paris", "Paris", "2968815"},
		[]string{"XX.01.001", "Lost County", "Lost County", "9100002"},
	)

	allCountriesTxt = tsv(
		geonameRow("4250542", "Springfield", "39.80172", "-89.64371", "P", "PPLA", "US", "IL", "167", "116250"),
		geonameRow("4951788", "Springfield", "42.10148", "-72.58981", "P", "PPLA2", "US", "MA", "013", "155929"),
		geonameRow("2988507", "Paris", "48.85341", "2.3488", "P", "PPLC", "FR", "11", "75", "2138551"),
		geonameRow("6252001", "United States", "39.76", "-98.5", "A", "PCLI", "US", "00", "", "327167434"),
		geonameRow("9100010", "Orphanville", "40", "-80", "P", "PPL", "US", "ZZ", "001", ""),
		geonameRow("9100011", "Mount Nothing", "10", "10", "T", "MT", "US", "", "", ""),
		geonameRow("9100012", "Ghost Town", "10", "10", "P", "PPL", "XX", "01", "", ""),
		geonameRow("9100013", "Nowhere", "0.123456", "0.654321", "P", "PPL", "", "", "", "0"),
		geonameRow("9100014", "Broken", "abc", "10", "P", "PPL", "US", "", "", ""),
	)

	alternateNamesTxt = tsv(
		[]string{"1", "6252001", "en", "USA", "", "1", "", "", "", ""},
		[]string{"2", "6252001", "en", "America", "", "", "", "", "", ""},
		[]string{"3", "6252001", "es", "USA", "", "", "", "", "", ""},
		[]string{"4", "2988507", "link", "https://en.wikipedia.org/wiki/Paris", "", "", "", "", "", ""},
		[]string{"5", "2988507", "la", "Lutetia", "", "", "", "1", "", ""},
		[]string{"6", "9100012", "en", "Ghost", "", "", "", "", "", ""},
		[]string{"7", "9100011", "en", "Mt Nothing", "", "", "", "", "", ""},
		[]string{"8", "2988507", "fr", "Paris", "1", "", "", "", "", ""},
	)
)

func writeZip(t *testing.T, path, entry, content string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	w, err := zw.Create(entry)
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}

	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
}

// writeDump writes a complete, small geonames dump into dir.
func writeDump(t *testing.T, dir string) {
	t.Helper()

	for name, content := range map[string]string{
		CountryInfoFile: countryInfoTxt,
		Admin1File:      admin1Txt,
		Admin2File:      admin2Txt,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	writeZip(t, filepath.Join(dir, LocalitiesFile), LocalitiesEntry, allCountriesTxt)
	writeZip(t, filepath.Join(dir, AlternateNamesFile), AlternateNamesEntry, alternateNamesTxt)
}

func readFile(dir, name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))

	return string(b), err
}
