// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

// Package store keeps the gazetteer in DuckDB and answers place queries by
// compiling query predicates into SQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/query"
)

// Store is a gazetteer backed by a SQL database speaking the DuckDB dialect.
// Reads are safe for concurrent use; loads must not overlap with reads.
type Store struct {
	db *sql.DB
}

// New returns a store over db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateSchema creates the gazetteer tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS countries (
			code VARCHAR PRIMARY KEY,
			geoname_id BIGINT,
			name VARCHAR NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS admin1 (
			id BIGINT PRIMARY KEY,
			code VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			country_code VARCHAR NOT NULL,
			UNIQUE(country_code, code)
		);

		CREATE TABLE IF NOT EXISTS admin2 (
			id BIGINT PRIMARY KEY,
			code VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			country_code VARCHAR NOT NULL,
			admin1_id BIGINT,
			UNIQUE(country_code, admin1_id, name)
		);

		CREATE TABLE IF NOT EXISTS localities (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL,
			country_code VARCHAR,
			admin1_id BIGINT,
			admin2_id BIGINT,
			latitude DECIMAL(8, 5) NOT NULL,
			longitude DECIMAL(8, 5) NOT NULL,
			feature_class VARCHAR NOT NULL,
			feature_code VARCHAR NOT NULL,
			population BIGINT
		);

		CREATE TABLE IF NOT EXISTS alternate_names (
			locality_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			is_preferred BOOLEAN NOT NULL DEFAULT FALSE,
			is_short BOOLEAN NOT NULL DEFAULT FALSE,
			is_asciified BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE(locality_id, name)
		);

		CREATE INDEX IF NOT EXISTS localities_name_idx ON localities(lower(name));
		CREATE INDEX IF NOT EXISTS alternate_names_name_idx ON alternate_names(lower(name));
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// Clear deletes every row, dependents first.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"alternate_names", "localities", "admin2", "admin1", "countries"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	return nil
}

// Counts is the number of rows of each table.
type Counts struct {
	Countries      int64 `json:"countries"`
	Admin1         int64 `json:"admin1"`
	Admin2         int64 `json:"admin2"`
	Localities     int64 `json:"localities"`
	AlternateNames int64 `json:"alternate_names"`
}

// Counts returns the number of rows of each table.
func (s *Store) Counts(ctx context.Context) (*Counts, error) {
	var c Counts

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM countries),
			(SELECT count(*) FROM admin1),
			(SELECT count(*) FROM admin2),
			(SELECT count(*) FROM localities),
			(SELECT count(*) FROM alternate_names)
	`).Scan(&c.Countries, &c.Admin1, &c.Admin2, &c.Localities, &c.AlternateNames)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	return &c, nil
}

// InsertCountries inserts countries in a single transaction.
func (s *Store) InsertCountries(ctx context.Context, countries []gazetteer.Country) error {
	return s.insert(ctx, "countries",
		`INSERT INTO countries(code, geoname_id, name) VALUES (?, ?, ?)`,
		len(countries), func(i int) []any {
			c := &countries[i]

			return []any{c.Code, nullInt64(c.GeonameID), c.Name}
		})
}

// InsertAdmin1 inserts first level divisions in a single transaction.
func (s *Store) InsertAdmin1(ctx context.Context, admin1 []gazetteer.Admin1) error {
	return s.insert(ctx, "admin1",
		`INSERT INTO admin1(id, code, name, country_code) VALUES (?, ?, ?, ?)`,
		len(admin1), func(i int) []any {
			a := &admin1[i]

			return []any{a.ID, a.Code, a.Name, a.CountryCode}
		})
}

// InsertAdmin2 inserts second level divisions in a single transaction.
func (s *Store) InsertAdmin2(ctx context.Context, admin2 []gazetteer.Admin2) error {
	return s.insert(ctx, "admin2",
		`INSERT INTO admin2(id, code, name, country_code, admin1_id) VALUES (?, ?, ?, ?, ?)`,
		len(admin2), func(i int) []any {
			a := &admin2[i]

			return []any{a.ID, a.Code, a.Name, a.CountryCode, nullInt64(a.Admin1ID)}
		})
}

// InsertLocalities inserts localities in a single transaction.
func (s *Store) InsertLocalities(ctx context.Context, localities []gazetteer.Locality) error {
	return s.insert(ctx, "localities", `
		INSERT INTO localities(
			id,
			name,
			country_code,
			admin1_id,
			admin2_id,
			latitude,
			longitude,
			feature_class,
			feature_code,
			population
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, len(localities), func(i int) []any {
		l := &localities[i]

		return []any{
			l.ID,
			l.Name,
			nullString(l.CountryCode),
			nullInt64(l.Admin1ID),
			nullInt64(l.Admin2ID),
			l.Latitude,
			l.Longitude,
			l.FeatureClass,
			l.FeatureCode,
			nullInt64(l.Population),
		}
	})
}

// InsertAlternateNames inserts alternate names in a single transaction.
func (s *Store) InsertAlternateNames(ctx context.Context, names []gazetteer.AlternateName) error {
	return s.insert(ctx, "alternate_names", `
		INSERT INTO alternate_names(locality_id, name, is_preferred, is_short, is_asciified)
		VALUES (?, ?, ?, ?, ?)
	`, len(names), func(i int) []any {
		a := &names[i]

		return []any{a.LocalityID, a.Name, a.IsPreferred, a.IsShort, a.IsASCIIfied}
	})
}

func (s *Store) insert(ctx context.Context, table, stmtSQL string, n int, row func(i int) []any) (err error) {
	if n == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}

	defer func() {
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, rErr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i := range n {
		if _, err = stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", table, err)
	}

	return nil
}

const placeColumns = `
	l.id,
	l.name,
	l.country_code,
	l.admin1_id,
	l.admin2_id,
	CAST(l.latitude AS DOUBLE),
	CAST(l.longitude AS DOUBLE),
	l.feature_class,
	l.feature_code,
	l.population,
	c.code,
	c.geoname_id,
	c.name,
	a1.id,
	a1.code,
	a1.name,
	a1.country_code,
	a2.id,
	a2.code,
	a2.name,
	a2.country_code,
	a2.admin1_id
`

const placeJoins = `
	FROM localities l
	LEFT JOIN countries c ON c.code = l.country_code
	LEFT JOIN admin1 a1 ON a1.id = l.admin1_id
	LEFT JOIN admin2 a2 ON a2.id = l.admin2_id
`

// FindPlaces returns the places matching expr, most populated first with
// unknown populations last and ties ordered by id. A limit of zero or less
// returns every match.
func (s *Store) FindPlaces(ctx context.Context, expr query.Expr, limit, offset int) ([]*gazetteer.Place, error) {
	where, args := Compile(expr)

	q := "SELECT " + placeColumns + placeJoins + " WHERE " + where +
		" ORDER BY l.population DESC NULLS LAST, l.id"
	if limit > 0 {
		q += " LIMIT ?"

		args = append(args, limit)
	}

	if offset > 0 {
		q += " OFFSET ?"

		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying places: %w", err)
	}
	defer rows.Close()

	places := []*gazetteer.Place{}

	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}

		places = append(places, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading places: %w", err)
	}

	return places, nil
}

// GetPlace returns the place with the given id or gazetteer.ErrNotFound.
func (s *Store) GetPlace(ctx context.Context, id int64) (*gazetteer.Place, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+placeColumns+placeJoins+" WHERE l.id = ?", id)

	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gazetteer.ErrNotFound
	}

	return p, err
}

// LocalityIDsByAlternateName implements query.AlternateNameResolver.
func (s *Store) LocalityIDsByAlternateName(ctx context.Context, name string, prefix bool) ([]int64, error) {
	cond := "lower(name) = lower(?)"
	if prefix {
		cond = "starts_with(lower(name), lower(?))"
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT locality_id FROM alternate_names WHERE "+cond+" ORDER BY locality_id", name)
	if err != nil {
		return nil, fmt.Errorf("querying alternate names: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning alternate name: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading alternate names: %w", err)
	}

	return ids, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(row scanner) (*gazetteer.Place, error) {
	var (
		p                              gazetteer.Place
		countryCode                    sql.NullString
		admin1ID, admin2ID, population sql.NullInt64
		cCode, cName                   sql.NullString
		cGeonameID                     sql.NullInt64
		a1ID                           sql.NullInt64
		a1Code, a1Name, a1Country      sql.NullString
		a2ID, a2Admin1                 sql.NullInt64
		a2Code, a2Name, a2Country      sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&countryCode,
		&admin1ID,
		&admin2ID,
		&p.Latitude,
		&p.Longitude,
		&p.FeatureClass,
		&p.FeatureCode,
		&population,
		&cCode,
		&cGeonameID,
		&cName,
		&a1ID,
		&a1Code,
		&a1Name,
		&a1Country,
		&a2ID,
		&a2Code,
		&a2Name,
		&a2Country,
		&a2Admin1,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("scanning place: %w", err)
	}

	p.CountryCode = stringPtr(countryCode)
	p.Admin1ID = int64Ptr(admin1ID)
	p.Admin2ID = int64Ptr(admin2ID)
	p.Population = int64Ptr(population)

	if cCode.Valid {
		p.Country = &gazetteer.Country{Code: cCode.String, GeonameID: int64Ptr(cGeonameID), Name: cName.String}
	}

	if a1ID.Valid {
		p.Admin1 = &gazetteer.Admin1{ID: a1ID.Int64, Code: a1Code.String, Name: a1Name.String, CountryCode: a1Country.String}
	}

	if a2ID.Valid {
		p.Admin2 = &gazetteer.Admin2{
			ID:          a2ID.Int64,
			Code:        a2Code.String,
			Name:        a2Name.String,
			CountryCode: a2Country.String,
			Admin1ID:    int64Ptr(a2Admin1),
		}
	}

	return &p, nil
}

var columns = map[query.Field]string{
	query.LocalityID:   "l.id",
	query.LocalityName: "l.name",
	query.CountryCode:  "c.code",
	query.CountryName:  "c.name",
	query.CountryID:    "c.geoname_id",
	query.Admin1ID:     "a1.id",
	query.Admin1Name:   "a1.name",
	query.Admin2ID:     "a2.id",
	query.Admin2Name:   "a2.name",
}

// Compile translates expr into a SQL condition over the localities joined
// with their hierarchy, and the arguments for its placeholders. Comparisons
// ignore case and prefixes are matched literally, so LIKE wildcards in a
// value have no special meaning. A nil expr or an unknown field compiles to
// FALSE.
func Compile(expr query.Expr) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	compile(&sb, &args, expr)

	return sb.String(), args
}

func compile(sb *strings.Builder, args *[]any, expr query.Expr) {
	switch e := expr.(type) {
	case query.Exact:
		col, ok := columns[e.Field]
		if !ok || !e.Field.IsText() {
			sb.WriteString("FALSE")

			return
		}

		fmt.Fprintf(sb, "lower(%s) = lower(?)", col)

		*args = append(*args, e.Value)
	case query.Prefix:
		col, ok := columns[e.Field]
		if !ok || !e.Field.IsText() {
			sb.WriteString("FALSE")

			return
		}

		fmt.Fprintf(sb, "starts_with(lower(%s), lower(?))", col)

		*args = append(*args, e.Value)
	case query.IDIn:
		col, ok := columns[e.Field]
		if !ok || e.Field.IsText() || len(e.IDs) == 0 {
			sb.WriteString("FALSE")

			return
		}

		// One list parameter whatever the size of the set.
		fmt.Fprintf(sb, "list_contains(CAST(? AS BIGINT[]), %s)", col)

		*args = append(*args, e.IDs)
	case query.And:
		combine(sb, args, "AND", "TRUE", e.Terms)
	case query.Or:
		combine(sb, args, "OR", "FALSE", e.Terms)
	default:
		sb.WriteString("FALSE")
	}
}

func combine(sb *strings.Builder, args *[]any, op, empty string, terms []query.Expr) {
	if len(terms) == 0 {
		sb.WriteString(empty)

		return
	}

	sb.WriteString("(")

	for i, t := range terms {
		if i > 0 {
			sb.WriteString(" " + op + " ")
		}

		compile(sb, args, t)
	}

	sb.WriteString(")")
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}

	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}

	return *v
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	return &v.Int64
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}

	return &v.String
}
