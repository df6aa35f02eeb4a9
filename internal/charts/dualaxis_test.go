package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

func seriesTable(values ...float64) *dataprocessing.Table {
	rows := make([][]dataprocessing.Value, len(values))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// inserted in reverse to exercise the sort
	for i, v := range values {
		rows[len(values)-1-i] = []dataprocessing.Value{
			dataprocessing.Time(start.AddDate(0, 0, i)),
			dataprocessing.Number(v),
		}
	}
	return dataprocessing.NewTable([]string{"Data", "Volume"}, rows)
}

func TestBuildDualAxisTrimsLeadingZerosOnly(t *testing.T) {
	spec, err := BuildDualAxis(seriesTable(0, 0, 5, 3, 0, 7), DualAxisOptions{X: "Data", Y: "Volume", Title: "Volume"})
	require.NoError(t, err)

	require.Len(t, spec.Series, 2)
	assert.Equal(t, []float64{5, 3, 0, 7}, spec.Series[0].Y)
	assert.Equal(t, []float64{5, 8, 8, 15}, spec.Series[1].Y)
	assert.Equal(t, "2024-01-03", spec.Series[0].X[0])
	assert.Equal(t, spec.Series[0].X, spec.Series[1].X)
}

func TestBuildDualAxisSeries(t *testing.T) {
	spec, err := BuildDualAxis(seriesTable(10, 20, 30), DualAxisOptions{X: "Data", Y: "Volume", Title: "Volume Bombeado"})
	require.NoError(t, err)

	assert.Equal(t, domain.ChartDualAxis, spec.Kind)
	assert.Equal(t, "Volume Bombeado - Valores Individuais vs Acumulados", spec.Title)
	assert.Equal(t, "Volume Bombeado Individual", spec.Series[0].Name)
	assert.Equal(t, domain.SeriesBar, spec.Series[0].Mode)
	assert.Equal(t, DefaultPrimaryColor, spec.Series[0].Color)
	assert.Equal(t, "Volume Bombeado Acumulado", spec.Series[1].Name)
	assert.Equal(t, domain.SeriesLinesMarkers, spec.Series[1].Mode)
	assert.Equal(t, "y2", spec.Series[1].Axis)
	assert.Equal(t, DefaultSecondaryColor, spec.Series[1].Color)
	require.NotNil(t, spec.Y2Axis)
	assert.Equal(t, "right", spec.Y2Axis.Side)

	// individual 10..30 padded by 8% of 20
	assert.InDeltaSlice(t, []float64{8.4, 31.6}, spec.YAxis.Range, 1e-9)
	// cumulative 10..60 padded by 8% of 50
	assert.InDeltaSlice(t, []float64{6, 64}, spec.Y2Axis.Range, 1e-9)
}

func TestBuildDualAxisTickAlignment(t *testing.T) {
	inputs := [][]float64{
		{10, 20, 30, 40},
		{1200, 5, 870, 3300, 15},
		{0.5, 0.25, 0.75},
		{-4, 2, 9},
	}

	for _, values := range inputs {
		spec, err := BuildDualAxis(seriesTable(values...), DualAxisOptions{X: "Data", Y: "Volume"})
		require.NoError(t, err)

		left, right := spec.YAxis, *spec.Y2Axis
		require.Len(t, left.TickValues, DefaultTickCount)
		require.Len(t, right.TickValues, DefaultTickCount)
		assert.InDelta(t, left.Range[0], left.TickValues[0], 1e-9)
		assert.InDelta(t, left.Range[1], left.TickValues[len(left.TickValues)-1], 1e-9)
		assert.InDelta(t, right.Range[0], right.TickValues[0], 1e-6)
		assert.InDelta(t, right.Range[1], right.TickValues[len(right.TickValues)-1], 1e-6)

		// every tick sits at the same relative height on both axes
		for i := range left.TickValues {
			l := (left.TickValues[i] - left.Range[0]) / (left.Range[1] - left.Range[0])
			r := (right.TickValues[i] - right.Range[0]) / (right.Range[1] - right.Range[0])
			assert.InDelta(t, l, r, 1e-9)
			if i > 0 {
				assert.Greater(t, right.TickValues[i], right.TickValues[i-1])
			}
		}
	}
}

func TestBuildDualAxisConstantSeries(t *testing.T) {
	spec, err := BuildDualAxis(seriesTable(100), DualAxisOptions{X: "Data", Y: "Volume"})
	require.NoError(t, err)

	// [100, 101] padded by 0.08
	assert.InDeltaSlice(t, []float64{99.92, 101.08}, spec.YAxis.Range, 1e-9)
	assert.InDeltaSlice(t, []float64{99.92, 101.08}, spec.Y2Axis.Range, 1e-9)
}

func TestBuildDualAxisEmpty(t *testing.T) {
	empty := dataprocessing.EmptyTable("Data", "Volume")

	spec, err := BuildDualAxis(empty, DualAxisOptions{X: "Data", Y: "Volume"})
	require.NoError(t, err)

	assert.True(t, spec.Empty())
	assert.InDeltaSlice(t, []float64{-0.08, 1.08}, spec.YAxis.Range, 1e-9)
	assert.Len(t, spec.YAxis.TickValues, DefaultTickCount)
}

func TestBuildDualAxisAllZeros(t *testing.T) {
	spec, err := BuildDualAxis(seriesTable(0, 0, 0), DualAxisOptions{X: "Data", Y: "Volume"})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0}, spec.Series[0].Y)
}

func TestBuildDualAxisMissingColumn(t *testing.T) {
	_, err := BuildDualAxis(seriesTable(1), DualAxisOptions{X: "Data", Y: "Nope"})
	assert.ErrorIs(t, err, dataprocessing.ErrMissingColumn)
}

func TestBuildDualAxisSortKey(t *testing.T) {
	tbl := dataprocessing.NewTable([]string{"Data", "Período", "Volume"}, [][]dataprocessing.Value{
		{dataprocessing.Time(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)), dataprocessing.Text("Fev/2024"), dataprocessing.Number(2)},
		{dataprocessing.Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), dataprocessing.Text("Jan/2024"), dataprocessing.Number(1)},
		{dataprocessing.Time(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), dataprocessing.Text("Abr/2024"), dataprocessing.Number(4)},
	})

	spec, err := BuildDualAxis(tbl, DualAxisOptions{X: "Período", SortKey: "Data", Y: "Volume"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan/2024", "Fev/2024", "Abr/2024"}, spec.Series[0].X)
}

func TestBuildDualAxisStableID(t *testing.T) {
	opts := DualAxisOptions{Key: "volume-bombeado/Volume", X: "Data", Y: "Volume"}

	a, err := BuildDualAxis(seriesTable(1, 2), opts)
	require.NoError(t, err)
	b, err := BuildDualAxis(seriesTable(5, 6, 7), opts)
	require.NoError(t, err)
	c, err := BuildDualAxis(seriesTable(1, 2), DualAxisOptions{Key: "other", X: "Data", Y: "Volume"})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestBuildDualAxisPadding(t *testing.T) {
	zero, wide := 0.0, 0.25
	tests := []struct {
		name    string
		padding *float64
		left    []float64
	}{
		{"unset uses default", nil, []float64{8.4, 31.6}},
		{"explicit zero", &zero, []float64{10, 30}},
		{"explicit value", &wide, []float64{5, 35}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := BuildDualAxis(seriesTable(10, 20, 30), DualAxisOptions{X: "Data", Y: "Volume", Padding: tt.padding})
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.left, spec.YAxis.Range, 1e-9)
		})
	}
}
