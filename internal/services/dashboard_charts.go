package services

import (
	"context"
	"fmt"

	"fielddash/internal/charts"
	"fielddash/internal/dataprocessing"
	"fielddash/internal/session"
	"fielddash/pkg/contracts/domain"
)

// Chart result statuses
const (
	StatusOK                = "ok"
	StatusSelectionRequired = "selection_required"
)

// Guidance shown when the user has not picked what to plot
const (
	MessageSelectColumns      = "Por favor, selecione pelo menos uma coluna para o gráfico."
	MessageSelectMeasurements = "Por favor, selecione pelo menos uma medição para o gráfico."
)

// Colors of the single-series charts
const (
	barColor  = "#156082"
	lineColor = "#c44d15"
)

// SheetOptions lists what the user can select for a sheet
type SheetOptions struct {
	Columns      []string `json:"columns,omitempty"`
	Wells        []string `json:"wells,omitempty"`
	Measurements []string `json:"measurements,omitempty"`
}

// ChartsResult is the outcome of one chart pipeline run. When Status is
// selection_required, Charts is empty and Message tells the user what to pick.
type ChartsResult struct {
	Sheet       domain.SheetName          `json:"sheet"`
	Status      string                    `json:"status"`
	Message     string                    `json:"message,omitempty"`
	Granularity domain.Granularity        `json:"granularity"`
	Window      dataprocessing.DateWindow `json:"window"`
	Options     SheetOptions              `json:"options"`
	Charts      []*domain.ChartSpec       `json:"charts"`
}

// Charts runs filter, aggregate, cumulative and chart building for one sheet
func (ds *DashboardService) Charts(ctx context.Context, id, slug string) (*ChartsResult, error) {
	s, err := ds.session(id)
	if err != nil {
		return nil, err
	}
	return ds.buildCharts(ctx, s, slug)
}

func (ds *DashboardService) buildCharts(ctx context.Context, s *session.Session, slug string) (result *ChartsResult, err error) {
	schema, t, err := ds.sheet(s, slug)
	if err != nil {
		return nil, err
	}

	_, finish := ds.telemetry.stage(ctx, "charts", string(schema.Name))
	defer func() { finish(err) }()

	filtered, err := windowed(s, schema, t)
	if err != nil {
		return nil, err
	}

	result = &ChartsResult{
		Sheet:       schema.Name,
		Status:      StatusOK,
		Granularity: s.Filters.Granularity,
		Window:      s.Window(),
		Options:     sheetOptions(schema, t),
		Charts:      []*domain.ChartSpec{},
	}

	if schema.LevelType() {
		err = ds.levelCharts(s, schema, filtered, result)
	} else {
		err = ds.volumeCharts(s, schema, filtered, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// volumeCharts draws a dual-axis chart and a bar chart per selected value
// column, and a line chart of the running total when it is selected.
func (ds *DashboardService) volumeCharts(s *session.Session, schema domain.SheetSchema, t *dataprocessing.Table, result *ChartsResult) error {
	values := valueColumns(schema, t)
	selected := intersect(s.Filters.Columns, result.Options.Columns)
	if len(selected) == 0 {
		result.Status = StatusSelectionRequired
		result.Message = MessageSelectColumns
		return nil
	}

	table, err := aggregateVolumes(t, schema, values, s.Filters.Granularity)
	if err != nil {
		return err
	}
	x := domain.ColumnPeriod

	for _, col := range selected {
		key := fmt.Sprintf("%s|%s|%s", schema.Slug, col, s.Filters.Granularity)
		if col == cumulativeColumn(schema) {
			spec, err := charts.BuildSeries(table, charts.SeriesOptions{
				Key:     key,
				Kind:    domain.ChartLine,
				X:       x,
				SortKey: domain.ColumnDate,
				Y:       col,
				Title:   fmt.Sprintf("%s ao Longo do Tempo", col),
				Colors:  []string{lineColor},
			})
			if err != nil {
				return err
			}
			result.Charts = append(result.Charts, spec)
			continue
		}

		dual, err := charts.BuildDualAxis(table, ds.dualAxisOptions(key, x, col))
		if err != nil {
			return err
		}
		bar, err := charts.BuildSeries(table, charts.SeriesOptions{
			Key:     key,
			Kind:    domain.ChartBar,
			X:       x,
			SortKey: domain.ColumnDate,
			Y:       col,
			Title:   fmt.Sprintf("%s ao Longo do Tempo", col),
			Colors:  []string{barColor},
		})
		if err != nil {
			return err
		}
		result.Charts = append(result.Charts, dual, bar)
	}
	return nil
}

// levelCharts draws one line chart per selected measurement with one series per well
func (ds *DashboardService) levelCharts(s *session.Session, schema domain.SheetSchema, t *dataprocessing.Table, result *ChartsResult) error {
	selected := intersect(s.Filters.Measurements, schema.Values)
	if len(selected) == 0 {
		result.Status = StatusSelectionRequired
		result.Message = MessageSelectMeasurements
		return nil
	}

	x := domain.ColumnPeriod
	for _, m := range selected {
		agg, err := dataprocessing.Aggregate(t, dataprocessing.SpecForSchema(schema, []string{m}, s.Filters.Granularity))
		if err != nil {
			return err
		}
		agg = withDayLabels(agg, s.Filters.Granularity)

		spec, err := charts.BuildSeries(agg, charts.SeriesOptions{
			Key:     fmt.Sprintf("%s|%s|%s", schema.Slug, m, s.Filters.Granularity),
			Kind:    domain.ChartLine,
			X:       x,
			SortKey: domain.ColumnDate,
			Y:       m,
			GroupBy: domain.ColumnWell,
			Title:   fmt.Sprintf("%s por Poço", m),
		})
		if err != nil {
			return err
		}
		result.Charts = append(result.Charts, spec)
	}
	return nil
}

// aggregateVolumes re-aggregates a flow sheet and derives its running total
// from the aggregated rows.
func aggregateVolumes(t *dataprocessing.Table, schema domain.SheetSchema, values []string, g domain.Granularity) (*dataprocessing.Table, error) {
	agg, err := dataprocessing.Aggregate(t, dataprocessing.SpecForSchema(schema, values, g))
	if err != nil {
		return nil, err
	}
	agg, err = dataprocessing.AddCumulative(agg, domain.ColumnDate, values, cumulativeColumn(schema))
	if err != nil {
		return nil, err
	}
	return withDayLabels(agg, g), nil
}

// withDayLabels adds the Período column to daily tables so every granularity
// plots against the same label column.
func withDayLabels(t *dataprocessing.Table, g domain.Granularity) *dataprocessing.Table {
	if g != domain.GranularityDay || t.HasColumn(domain.ColumnPeriod) {
		return t
	}
	labels := make([]dataprocessing.Value, t.Len())
	for i := range labels {
		if d, ok := t.Value(i, domain.ColumnDate).Time(); ok {
			labels[i] = dataprocessing.Text(dataprocessing.PeriodLabel(d, g))
		}
	}
	return t.WithColumn(domain.ColumnPeriod, labels)
}

// cumulativeColumn names the running total of a flow sheet
func cumulativeColumn(schema domain.SheetSchema) string {
	if schema.Cumulative != "" {
		return schema.Cumulative
	}
	return domain.ColumnVolumeTotal
}

// valueColumns returns the measurement columns of a sheet; detected sheets
// use the numeric columns of the loaded table.
func valueColumns(schema domain.SheetSchema, t *dataprocessing.Table) []string {
	if schema.DetectValues {
		return dataprocessing.DetectNumericColumns(t, domain.ColumnDate, domain.ColumnPeriod, cumulativeColumn(schema))
	}
	return schema.Values
}

func sheetOptions(schema domain.SheetSchema, t *dataprocessing.Table) SheetOptions {
	if schema.LevelType() {
		return SheetOptions{
			Wells:        dataprocessing.DistinctText(t, domain.ColumnWell),
			Measurements: schema.Values,
		}
	}
	cols := append([]string(nil), valueColumns(schema, t)...)
	return SheetOptions{Columns: append(cols, cumulativeColumn(schema))}
}

// intersect keeps the selected values that are allowed, in selection order
func intersect(selected, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	var out []string
	for _, s := range selected {
		if set[s] {
			out = append(out, s)
			delete(set, s)
		}
	}
	return out
}
