// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/spatial"
)

const maxLineSize = 1 << 20

// isolanguage of the alternate name rows that hold URLs.
const linkLanguage = "link"

type admin2Key struct {
	country, admin1, name string
}

type alternateKey struct {
	locality int64
	name     string
}

// Parser turns geonames dump files into gazetteer records. Files must be
// parsed in dependency order: countries, admin1, admin2, localities and
// alternate names. A Parser is not safe for concurrent use.
//
// Rows that break an invariant are dropped and reported to OnSkip; only I/O
// errors and errors returned by the emit callbacks stop parsing.
type Parser struct {
	// OnSkip, when set, receives every dropped row.
	OnSkip func(*gazetteer.IntegrityError)

	index      *Index
	admin2     map[admin2Key]struct{}
	localities map[int64]struct{}
	alternates map[alternateKey]struct{}
}

// NewParser returns a parser with an empty index.
func NewParser() *Parser {
	return &Parser{
		index:      NewIndex(),
		admin2:     make(map[admin2Key]struct{}),
		localities: make(map[int64]struct{}),
		alternates: make(map[alternateKey]struct{}),
	}
}

// Index returns the administrative index built so far.
func (p *Parser) Index() *Index {
	return p.index
}

func (p *Parser) skip(err *gazetteer.IntegrityError) {
	if p.OnSkip != nil {
		p.OnSkip(err)
	}
}

func (p *Parser) malformed(file string, line int, format string, args ...any) {
	p.skip(&gazetteer.IntegrityError{
		Kind:    gazetteer.IntegrityMalformed,
		Message: fmt.Sprintf("%s:%d: ", file, line) + fmt.Sprintf(format, args...),
	})
}

// forEachRow calls fn with the tab separated fields of every line of r.
func forEachRow(r io.Reader, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++

		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}

		if err := fn(line, strings.Split(text, "\t")); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading line %d: %w", line+1, err)
	}

	return nil
}

// Countries parses countryInfo.txt. Comment lines and former countries, which
// have no geoname id, are ignored.
func (p *Parser) Countries(r io.Reader, emit func(gazetteer.Country) error) error {
	return forEachRow(r, func(line int, fields []string) error {
		if strings.HasPrefix(fields[0], "#") {
			return nil
		}

		if len(fields) < 17 {
			p.malformed(CountryInfoFile, line, "expected 17 fields, got %d", len(fields))

			return nil
		}

		// Serbia and Montenegro, Netherlands Antilles...
		if fields[16] == "" {
			return nil
		}

		id, err := strconv.ParseInt(fields[16], 10, 64)
		if err != nil {
			p.malformed(CountryInfoFile, line, "bad geoname id %q", fields[16])

			return nil
		}

		p.index.AddCountry(fields[0])

		return emit(gazetteer.Country{Code: fields[0], GeonameID: &id, Name: fields[4]})
	})
}

// Admin1 parses admin1CodesASCII.txt: `CC.CODE name asciiname geonameid`.
func (p *Parser) Admin1(r io.Reader, emit func(gazetteer.Admin1) error) error {
	return forEachRow(r, func(line int, fields []string) error {
		if len(fields) < 4 {
			p.malformed(Admin1File, line, "expected 4 fields, got %d", len(fields))

			return nil
		}

		country, code, ok := strings.Cut(fields[0], ".")
		if !ok {
			p.malformed(Admin1File, line, "bad code %q", fields[0])

			return nil
		}

		id, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			p.malformed(Admin1File, line, "bad geoname id %q", fields[3])

			return nil
		}

		if err := p.index.AddAdmin1(country, code, id); err != nil {
			p.skip(err.(*gazetteer.IntegrityError))

			return nil
		}

		return emit(gazetteer.Admin1{ID: id, Code: code, Name: fields[1], CountryCode: country})
	})
}

// Admin2 parses admin2Codes.txt: `CC.A1.A2 name asciiname geonameid`. Only
// the first division with a given country, admin1 code and name is kept.
// Divisions under an unknown admin1 are kept without it, but localities
// cannot resolve to them.
func (p *Parser) Admin2(r io.Reader, emit func(gazetteer.Admin2) error) error {
	return forEachRow(r, func(line int, fields []string) error {
		if len(fields) < 4 {
			p.malformed(Admin2File, line, "expected 4 fields, got %d", len(fields))

			return nil
		}

		codes := strings.Split(fields[0], ".")
		if len(codes) != 3 {
			p.malformed(Admin2File, line, "bad code %q", fields[0])

			return nil
		}

		country, admin1, code, name := codes[0], codes[1], codes[2], fields[1]

		id, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			p.malformed(Admin2File, line, "bad geoname id %q", fields[3])

			return nil
		}

		if !p.index.HasCountry(country) {
			p.skip(&gazetteer.IntegrityError{
				Kind:    gazetteer.IntegrityDanglingCountry,
				Message: fmt.Sprintf("admin2 %d refers to unknown country %q", id, country),
			})

			return nil
		}

		key := admin2Key{country: country, admin1: admin1, name: name}
		if _, dup := p.admin2[key]; dup {
			p.skip(&gazetteer.IntegrityError{
				Kind:    gazetteer.IntegrityDuplicateAdmin2,
				Message: fmt.Sprintf("%s:%d: %s.%s %q already loaded", Admin2File, line, country, admin1, name),
			})

			return nil
		}

		p.admin2[key] = struct{}{}

		a := gazetteer.Admin2{ID: id, Code: code, Name: name, CountryCode: country}
		if admin1ID, ok := p.index.Admin1(country, admin1); ok {
			a.Admin1ID = &admin1ID
			p.index.AddAdmin2(country, admin1, code, id)
		}

		return emit(a)
	})
}

// Localities parses the geoname table (allCountries.txt). Only populated
// places and administrative areas are kept.
func (p *Parser) Localities(r io.Reader, emit func(gazetteer.Locality) error) error {
	return forEachRow(r, func(line int, fields []string) error {
		if len(fields) < 15 {
			p.malformed(LocalitiesEntry, line, "expected at least 15 fields, got %d", len(fields))

			return nil
		}

		class := fields[6]
		if class != gazetteer.FeatureClassPopulated && class != gazetteer.FeatureClassAdmin {
			return nil
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			p.malformed(LocalitiesEntry, line, "bad geoname id %q", fields[0])

			return nil
		}

		lat, errLat := strconv.ParseFloat(fields[4], 64)
		lng, errLng := strconv.ParseFloat(fields[5], 64)

		pt := spatial.Point{Lat: lat, Lng: lng}
		if errLat != nil || errLng != nil || !pt.Valid() {
			p.malformed(LocalitiesEntry, line, "bad coordinates %q %q", fields[4], fields[5])

			return nil
		}

		var population *int64

		if fields[14] != "" {
			n, err := strconv.ParseInt(fields[14], 10, 64)
			if err != nil {
				p.malformed(LocalitiesEntry, line, "bad population %q", fields[14])

				return nil
			}

			population = &n
		}

		admin1ID, admin2ID, err := p.index.Resolve(fields[8], fields[10], fields[11])
		if err != nil {
			ie := err.(*gazetteer.IntegrityError)
			ie.Message = fmt.Sprintf("locality %d: %s", id, ie.Message)
			p.skip(ie)

			return nil
		}

		var country *string
		if fields[8] != "" {
			country = &fields[8]
		}

		pt = pt.Rounded()
		p.localities[id] = struct{}{}

		return emit(gazetteer.Locality{
			ID:           id,
			Name:         fields[1],
			CountryCode:  country,
			Admin1ID:     admin1ID,
			Admin2ID:     admin2ID,
			Latitude:     pt.Lat,
			Longitude:    pt.Lng,
			FeatureClass: class,
			FeatureCode:  fields[7],
			Population:   population,
		})
	})
}

// AlternateNames parses alternateNames.txt. Names of localities that were not
// loaded, link rows and repeated names of a locality are dropped.
func (p *Parser) AlternateNames(r io.Reader, emit func(gazetteer.AlternateName) error) error {
	return forEachRow(r, func(line int, fields []string) error {
		if len(fields) < 4 {
			p.malformed(AlternateNamesEntry, line, "expected at least 4 fields, got %d", len(fields))

			return nil
		}

		if fields[2] == linkLanguage {
			return nil
		}

		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			p.malformed(AlternateNamesEntry, line, "bad geoname id %q", fields[1])

			return nil
		}

		if _, ok := p.localities[id]; !ok {
			p.skip(&gazetteer.IntegrityError{
				Kind:    gazetteer.IntegrityDanglingLocality,
				Message: fmt.Sprintf("alternate name %q refers to unknown locality %d", fields[3], id),
			})

			return nil
		}

		key := alternateKey{locality: id, name: fields[3]}
		if _, dup := p.alternates[key]; dup {
			p.skip(&gazetteer.IntegrityError{
				Kind:    gazetteer.IntegrityDuplicateAlternateName,
				Message: fmt.Sprintf("locality %d already has alternate name %q", id, fields[3]),
			})

			return nil
		}

		p.alternates[key] = struct{}{}

		return emit(gazetteer.AlternateName{
			LocalityID:  id,
			Name:        fields[3],
			IsPreferred: flag(fields, 4),
			IsShort:     flag(fields, 5),
		})
	})
}

func flag(fields []string, i int) bool {
	return i < len(fields) && fields[i] == "1"
}
