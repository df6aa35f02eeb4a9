package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fielddash/pkg/contracts/domain"
)

func TestChartsSelectionRequired(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	tests := []struct {
		slug    string
		message string
	}{
		{"volume-bombeado", MessageSelectColumns},
		{"volume-produto", MessageSelectColumns},
		{"fl", MessageSelectMeasurements},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			res, err := ds.Charts(ctx, id, tt.slug)
			require.NoError(t, err)
			assert.Equal(t, StatusSelectionRequired, res.Status)
			assert.Equal(t, tt.message, res.Message)
			assert.Empty(t, res.Charts)
		})
	}
}

func TestChartsWeeklyVolume(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Columns:     ptr([]string{domain.ColumnVolumePumped, domain.ColumnVolumeTotal}),
		Granularity: ptr("week"),
	})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "volume-bombeado")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []string{domain.ColumnVolumePumped, domain.ColumnVolumeTotal}, res.Options.Columns)
	require.Len(t, res.Charts, 3)

	dual := res.Charts[0]
	assert.Equal(t, domain.ChartDualAxis, dual.Kind)
	require.Len(t, dual.Series, 2)
	assert.Equal(t, []float64{700, 300}, dual.Series[0].Y)
	assert.Equal(t, []float64{700, 1000}, dual.Series[1].Y)
	assert.Equal(t, []string{"Sem 01/2024", "Sem 02/2024"}, dual.Series[0].X)

	bar := res.Charts[1]
	assert.Equal(t, domain.ChartBar, bar.Kind)
	assert.Equal(t, "Volume Bombeado (L) ao Longo do Tempo", bar.Title)
	assert.Equal(t, []float64{700, 300}, bar.Series[0].Y)

	line := res.Charts[2]
	assert.Equal(t, domain.ChartLine, line.Kind)
	assert.Equal(t, []float64{700, 1000}, line.Series[0].Y, "running total follows aggregation")
}

func TestChartsCumulativeAfterWindow(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Columns: ptr([]string{domain.ColumnVolumeTotal}),
		Start:   ptr(date(2024, 1, 8)),
	})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "volume-bombeado")
	require.NoError(t, err)
	require.Len(t, res.Charts, 1)
	assert.Equal(t, []float64{100, 200, 300}, res.Charts[0].Series[0].Y)
	assert.Equal(t, []string{"08/01/2024", "09/01/2024", "10/01/2024"}, res.Charts[0].Series[0].X)
}

func TestChartsProductVolumeSumsSources(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Columns: ptr([]string{domain.ColumnRemovedTotal, "not a column"}),
	})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "volume-produto")
	require.NoError(t, err)
	require.Len(t, res.Charts, 1)
	assert.Equal(t, []float64{15, 35}, res.Charts[0].Series[0].Y)
}

func TestChartsFreePhasePerWell(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Measurements: ptr([]string{domain.ColumnProductThickness}),
		Granularity:  ptr("week"),
	})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "fl")
	require.NoError(t, err)
	assert.Equal(t, []string{"PM-01", "PM-02"}, res.Options.Wells)
	require.Len(t, res.Charts, 1)

	c := res.Charts[0]
	assert.Equal(t, domain.ChartLine, c.Kind)
	assert.Equal(t, "Esp. (m) por Poço", c.Title)
	require.Len(t, c.Series, 1, "a well whose weekly mean is zero is dropped")
	assert.Equal(t, "PM-01", c.Series[0].Name)
	assert.Equal(t, []float64{0.5}, c.Series[0].Y)
}

func TestChartsWellSelection(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{
		Measurements: ptr([]string{domain.ColumnWaterLevel}),
		Wells:        ptr([]string{"PM-02"}),
	})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "fl")
	require.NoError(t, err)
	require.Len(t, res.Charts, 1)
	require.Len(t, res.Charts[0].Series, 1)
	assert.Equal(t, "PM-02", res.Charts[0].Series[0].Name)
	assert.Equal(t, []float64{3.0}, res.Charts[0].Series[0].Y)
}

func TestChartsDetectedColumns(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{Columns: ptr([]string{"HD-01 (m³)"})})
	require.NoError(t, err)

	res, err := ds.Charts(ctx, id, "hidrometros")
	require.NoError(t, err)
	assert.Equal(t, []string{"HD-01 (m³)", domain.ColumnVolumeTotal}, res.Options.Columns)
	require.Len(t, res.Charts, 2)
	assert.Equal(t, []float64{5, 12}, res.Charts[0].Series[1].Y)
}

func TestChartsStableIDs(t *testing.T) {
	ctx := context.Background()
	ds := newTestService(t, DashboardOptions{})
	id := loadedSession(t, ds)

	_, err := ds.UpdateFilters(ctx, id, FiltersUpdate{Columns: ptr([]string{domain.ColumnVolumePumped})})
	require.NoError(t, err)

	first, err := ds.Charts(ctx, id, "volume-bombeado")
	require.NoError(t, err)
	_, err = ds.UpdateFilters(ctx, id, FiltersUpdate{Start: ptr(date(2024, 1, 5))})
	require.NoError(t, err)
	second, err := ds.Charts(ctx, id, "volume-bombeado")
	require.NoError(t, err)

	require.Len(t, second.Charts, len(first.Charts))
	for i := range first.Charts {
		assert.Equal(t, first.Charts[i].ID, second.Charts[i].ID)
	}
	assert.NotEqual(t, first.Charts[0].ID, first.Charts[1].ID)
}
