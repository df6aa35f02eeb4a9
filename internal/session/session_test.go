package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

func TestFiltersReset(t *testing.T) {
	window := dataprocessing.DateWindow{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	full := Filters{
		Categories:   []string{"volume-bombeado"},
		Wells:        []string{"PM-01"},
		Measurements: []string{"NA (m)"},
		Columns:      []string{"Volume Bombeado (L)"},
		DateWindow:   window,
		Granularity:  domain.GranularityWeek,
	}

	tests := []struct {
		key   FilterKey
		check func(t *testing.T, f Filters)
	}{
		{KeyCategories, func(t *testing.T, f Filters) { assert.Nil(t, f.Categories); assert.NotNil(t, f.Wells) }},
		{KeyWells, func(t *testing.T, f Filters) { assert.Nil(t, f.Wells); assert.NotNil(t, f.Columns) }},
		{KeyMeasurements, func(t *testing.T, f Filters) { assert.Nil(t, f.Measurements) }},
		{KeyColumns, func(t *testing.T, f Filters) { assert.Nil(t, f.Columns) }},
		{KeyDateWindow, func(t *testing.T, f Filters) {
			assert.True(t, f.DateWindow.IsZero())
			assert.Equal(t, domain.GranularityWeek, f.Granularity)
		}},
		{KeyGranularity, func(t *testing.T, f Filters) {
			assert.Equal(t, domain.GranularityDay, f.Granularity)
			assert.Equal(t, window, f.DateWindow)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			f := full.Clone()
			require.NoError(t, f.Reset(tt.key))
			tt.check(t, f)
		})
	}

	f := full.Clone()
	assert.ErrorIs(t, f.Reset("colour"), ErrUnknownFilter)

	f.ResetAll()
	assert.Equal(t, DefaultFilters(), f)
}

func TestParseFilterKey(t *testing.T) {
	k, err := ParseFilterKey("wells")
	require.NoError(t, err)
	assert.Equal(t, KeyWells, k)

	_, err = ParseFilterKey("Wells")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestSessionWindow(t *testing.T) {
	s := New(time.Now())
	s.Span = dataprocessing.DateWindow{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, s.Span, s.Window())

	s.Filters.DateWindow = dataprocessing.DateWindow{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, s.Filters.DateWindow, s.Window())
}
