package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

func TestDashboardServiceUpload(t *testing.T) {
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	view, err := ds.GetSession(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, []string{"campanha.xlsx"}, view.Files)
	require.Len(t, view.Sheets, 4)
	assert.Equal(t, domain.SheetVolumePumped, view.Sheets[0].Sheet)
	assert.Equal(t, 10, view.Sheets[0].Rows)
	assert.Equal(t, []string{"Data", "Volume Bombeado (L)"}, view.Sheets[0].Columns, "placeholder columns are dropped")

	assert.True(t, date(2024, 1, 1).Equal(view.Span.Start))
	assert.True(t, date(2024, 1, 10).Equal(view.Span.End))
	assert.Equal(t, view.Span, view.Window, "window defaults to the pumped-volume span")
}

func TestDashboardServiceUploadStacksFiles(t *testing.T) {
	ds := newTestService(t, DashboardOptions{})
	ctx := context.Background()
	view, err := ds.CreateSession(ctx)
	require.NoError(t, err)

	data := fieldWorkbook(t)
	view, err = ds.Upload(ctx, view.ID, []UploadFile{
		{Name: "janeiro.xlsx", Reader: bytes.NewReader(data)},
		{Name: "copia.xlsx", Reader: bytes.NewReader(data)},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, view.Sheets[0].Rows)
	assert.Equal(t, []string{"janeiro.xlsx", "copia.xlsx"}, view.Files)
}

func TestDashboardServiceUploadErrors(t *testing.T) {
	missingSheet := fieldSheets()
	delete(missingSheet, "FL")

	missingColumn := fieldSheets()
	missingColumn["Volume Produto"] = [][]interface{}{
		{"Data", "Volume Removido SAO (L)"},
		{date(2024, 1, 1), 10},
	}

	tests := []struct {
		name  string
		data  func(t *testing.T) []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "missing sheet",
			data: func(t *testing.T) []byte {
				return xlsxBytes(t, []string{"Volume Bombeado", "Volume Produto"}, missingSheet)
			},
			check: func(t *testing.T, err error) {
				var target *dataprocessing.MissingSheetError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, "FL", target.Sheet)
				assert.Equal(t, "bad.xlsx", target.File)
			},
		},
		{
			name: "missing column",
			data: func(t *testing.T) []byte {
				return xlsxBytes(t, fieldOrder, missingColumn)
			},
			check: func(t *testing.T, err error) {
				var target *dataprocessing.MissingColumnError
				require.True(t, errors.As(err, &target))
				assert.Equal(t, "Volume Removido Bailer (L)", target.Column)
			},
		},
		{
			name: "not a workbook",
			data: func(t *testing.T) []byte { return []byte("Data;Volume\n") },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, dataprocessing.ErrUnreadable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newTestService(t, DashboardOptions{})
			ctx := context.Background()
			view, err := ds.CreateSession(ctx)
			require.NoError(t, err)

			_, err = ds.Upload(ctx, view.ID, []UploadFile{{Name: "bad.xlsx", Reader: bytes.NewReader(tt.data(t))}})
			require.Error(t, err)
			tt.check(t, err)

			after, err := ds.GetSession(ctx, view.ID)
			require.NoError(t, err)
			assert.Empty(t, after.Sheets, "a rejected upload leaves the session untouched")
		})
	}
}

func TestDashboardServiceSessionNotFound(t *testing.T) {
	ds := newTestService(t, DashboardOptions{})
	ctx := context.Background()

	_, err := ds.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, ds.DeleteSession(ctx, "missing"), ErrSessionNotFound)
	_, err = ds.Charts(ctx, "missing", "fl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = ds.Upload(ctx, "missing", []UploadFile{{Name: "a.xlsx", Reader: bytes.NewReader(nil)}})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = ds.Upload(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestDashboardServiceUpdateFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("valid window and granularity", func(t *testing.T) {
		ds := newTestService(t, DashboardOptions{})
		id := loadedSession(t, ds)

		view, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
			Start:       ptr(date(2024, 1, 3)),
			End:         ptr(date(2024, 1, 5)),
			Granularity: ptr("Semanal"),
			Categories:  ptr([]string{"Volume Bombeado", "fl"}),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.GranularityWeek, view.Filters.Granularity)
		assert.Equal(t, []string{"volume-bombeado", "fl"}, view.Filters.Categories)
		assert.True(t, date(2024, 1, 3).Equal(view.Window.Start))
		assert.True(t, date(2024, 1, 5).Equal(view.Window.End))
	})

	t.Run("one bound keeps the other", func(t *testing.T) {
		ds := newTestService(t, DashboardOptions{})
		id := loadedSession(t, ds)

		view, err := ds.UpdateFilters(ctx, id, FiltersUpdate{Start: ptr(date(2024, 1, 4))})
		require.NoError(t, err)
		assert.True(t, date(2024, 1, 4).Equal(view.Window.Start))
		assert.True(t, date(2024, 1, 10).Equal(view.Window.End))
	})

	invalid := []struct {
		name   string
		update FiltersUpdate
		check  func(t *testing.T, err error)
	}{
		{"inverted window", FiltersUpdate{Start: ptr(date(2024, 1, 5)), End: ptr(date(2024, 1, 3))}, func(t *testing.T, err error) {
			var target *dataprocessing.InvalidRangeError
			require.True(t, errors.As(err, &target))
			assert.Equal(t, "start is after end", target.Reason)
		}},
		{"outside span", FiltersUpdate{Start: ptr(date(2023, 12, 1)), End: ptr(date(2024, 1, 3))}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, dataprocessing.ErrInvalidRange)
		}},
		{"unknown sheet", FiltersUpdate{Categories: ptr([]string{"pressao"})}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnknownSheet)
		}},
		{"bad granularity", FiltersUpdate{Granularity: ptr("hourly")}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrInvalidInput)
		}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			ds := newTestService(t, DashboardOptions{})
			id := loadedSession(t, ds)

			_, err := ds.UpdateFilters(ctx, id, tt.update)
			require.Error(t, err)
			tt.check(t, err)

			view, err := ds.GetSession(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.GranularityDay, view.Filters.Granularity, "rejected updates change nothing")
			assert.Equal(t, view.Span, view.Window)
		})
	}

	t.Run("window before upload", func(t *testing.T) {
		ds := newTestService(t, DashboardOptions{})
		view, err := ds.CreateSession(ctx)
		require.NoError(t, err)
		_, err = ds.UpdateFilters(ctx, view.ID, FiltersUpdate{Start: ptr(date(2024, 1, 1))})
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestDashboardServiceResetFilter(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Start:       ptr(date(2024, 1, 3)),
		Granularity: ptr("month"),
		Wells:       ptr([]string{"PM-01"}),
	})
	require.NoError(t, err)

	view, err := ds.ResetFilter(ctx, id, "granularity")
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityDay, view.Filters.Granularity)
	assert.Equal(t, []string{"PM-01"}, view.Filters.Wells)
	assert.True(t, date(2024, 1, 3).Equal(view.Window.Start))

	view, err = ds.ResetFilter(ctx, id, "date_window")
	require.NoError(t, err)
	assert.Equal(t, view.Span, view.Window)

	view, err = ds.ResetFilter(ctx, id, "")
	require.NoError(t, err)
	assert.Nil(t, view.Filters.Wells)

	_, err = ds.ResetFilter(ctx, id, "colour")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardServiceTable(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{Wells: ptr([]string{"PM-02"})})
	require.NoError(t, err)

	view, err := ds.Table(ctx, id, "fl")
	require.NoError(t, err)
	assert.Equal(t, domain.SheetFreePhase, view.Sheet)
	assert.Equal(t, 3, view.Total)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "PM-02", view.Rows[0][1])

	_, err = ds.Table(ctx, id, "pressao")
	assert.ErrorIs(t, err, ErrUnknownSheet)
}

func TestDashboardServiceSheetNotLoaded(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	view, err := ds.CreateSession(ctx)
	require.NoError(t, err)

	_, err = ds.Charts(ctx, view.ID, "volume-bombeado")
	assert.ErrorIs(t, err, ErrNoData)

	sheets := fieldSheets()
	delete(sheets, "Hidrômetros")
	_, err = ds.Upload(ctx, view.ID, []UploadFile{{Name: "a.xlsx", Reader: bytes.NewReader(xlsxBytes(t, fieldOrder[:3], sheets))}})
	require.NoError(t, err)

	_, err = ds.KPIs(ctx, view.ID, "hidrometros")
	assert.ErrorIs(t, err, ErrSheetNotLoaded)
}
