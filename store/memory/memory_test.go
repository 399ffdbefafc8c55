// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"

	"github.com/jcodagnone/geocoder/gazetteer"
	"github.com/jcodagnone/geocoder/gazetteer/gazetteertest"
	"github.com/jcodagnone/geocoder/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	d := gazetteertest.Fixture()

	return New(d.Countries, d.Admin1, d.Admin2, d.Localities, d.AlternateNames)
}

func TestNewJoinsHierarchy(t *testing.T) {
	s := newTestStore()

	p, err := s.GetPlace(context.Background(), gazetteertest.SpringfieldIL)
	require.NoError(t, err)
	require.NotNil(t, p.Country)
	require.NotNil(t, p.Admin1)
	require.NotNil(t, p.Admin2)
	assert.Equal(t, "United States", p.Country.Name)
	assert.Equal(t, "Illinois", p.Admin1.Name)
	assert.Equal(t, "Sangamon County", p.Admin2.Name)

	p, err = s.GetPlace(context.Background(), gazetteertest.Nullville)
	require.NoError(t, err)
	assert.Nil(t, p.Country)
	assert.Nil(t, p.Admin1)
	assert.Nil(t, p.Admin2)
}

func TestNewCopiesInput(t *testing.T) {
	d := gazetteertest.Fixture()
	s := New(d.Countries, d.Admin1, d.Admin2, d.Localities, d.AlternateNames)

	d.Countries[0].Name = "Changed"

	p, err := s.GetPlace(context.Background(), gazetteertest.SpringfieldIL)
	require.NoError(t, err)
	assert.Equal(t, "United States", p.Country.Name)
}

func TestGetPlaceNotFound(t *testing.T) {
	_, err := newTestStore().GetPlace(context.Background(), 42)
	assert.ErrorIs(t, err, gazetteer.ErrNotFound)
}

func TestLocalityIDsByAlternateName(t *testing.T) {
	s := newTestStore()

	tests := []struct {
		name     string
		prefix   bool
		expected []int64
	}{
		{name: "usa", expected: []int64{gazetteertest.UnitedStatesID}},
		{name: "Pa", prefix: true, expected: []int64{gazetteertest.ParisFR}},
		{name: "Pa", expected: nil},
		{name: "", prefix: true, expected: []int64{
			gazetteertest.ParisFR, gazetteertest.FranceID, gazetteertest.IllinoisID,
			gazetteertest.SpringfieldMA, gazetteertest.UnitedStatesID,
		}},
	}

	for _, tc := range tests {
		got, err := s.LocalityIDsByAlternateName(context.Background(), tc.name, tc.prefix)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got, "%q prefix=%v", tc.name, tc.prefix)
	}
}

func TestFindPlaces(t *testing.T) {
	s := newTestStore()
	expr := query.Exact{Field: query.LocalityName, Value: "springfield"}

	places, err := s.FindPlaces(context.Background(), expr, 0, 0)
	require.NoError(t, err)
	require.Len(t, places, 3)
	assert.Equal(t, gazetteertest.SpringfieldIL, places[0].ID)
	assert.Equal(t, gazetteertest.SpringfieldMA, places[1].ID)
	assert.Equal(t, gazetteertest.SpringfieldUnknown, places[2].ID)

	places, err = s.FindPlaces(context.Background(), expr, 1, 1)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, gazetteertest.SpringfieldMA, places[0].ID)

	places, err = s.FindPlaces(context.Background(), expr, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, places)

	places, err = s.FindPlaces(context.Background(), query.Or{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, places)

	places, err = s.FindPlaces(context.Background(), query.And{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, places, len(gazetteertest.Fixture().Localities))
}

func TestFindPlacesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestStore().FindPlaces(ctx, query.And{}, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalls(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, int64(0), s.Calls())

	_, _ = s.GetPlace(context.Background(), gazetteertest.ParisFR)
	_, _ = s.LocalityIDsByAlternateName(context.Background(), "x", false)

	assert.Equal(t, int64(2), s.Calls())
}
