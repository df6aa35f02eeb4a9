package services

import (
	"context"
	"fmt"
	"time"

	"fielddash/internal/dataprocessing"
	"fielddash/internal/session"
	"fielddash/pkg/contracts/domain"
)

// KPI card keys
const (
	KPICurrentValue      = "current_value"
	KPIWellsInOperation  = "wells_in_operation"
	KPICurrentCumulative = "current_cumulative"
	KPIDaysWithoutRecord = "days_without_record"
	KPIMonitoredWells    = "monitored_wells"
)

// KPI card colors
const (
	colorValue      = "#0571ED"
	colorWells      = "#2EE43D"
	colorCumulative = "#DD7D23"
	colorStale      = "#D7263D"
)

// readingColumns are the free-phase readings that mark a well as operating
var readingColumns = []string{domain.ColumnProductThickness, domain.ColumnWaterLevel, domain.ColumnProductLevel}

// TableView is a display-ready copy of a filtered sheet
type TableView struct {
	Sheet   domain.SheetName          `json:"sheet"`
	Window  dataprocessing.DateWindow `json:"window"`
	Columns []string                  `json:"columns"`
	Rows    [][]interface{}           `json:"rows"`
	Total   int                       `json:"total"`
}

// Table returns the date- and well-filtered canonical table of a sheet
func (ds *DashboardService) Table(ctx context.Context, id, slug string) (*TableView, error) {
	s, err := ds.session(id)
	if err != nil {
		return nil, err
	}
	schema, t, err := ds.sheet(s, slug)
	if err != nil {
		return nil, err
	}
	filtered, err := windowed(s, schema, t)
	if err != nil {
		return nil, err
	}
	view := &TableView{
		Sheet:   schema.Name,
		Window:  s.Window(),
		Columns: filtered.Columns(),
		Rows:    make([][]interface{}, filtered.Len()),
		Total:   t.Len(),
	}
	for i := 0; i < filtered.Len(); i++ {
		row := filtered.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v.Interface()
		}
		view.Rows[i] = cells
	}
	return view, nil
}

// KPIs computes the headline cards of a sheet over the current date window
func (ds *DashboardService) KPIs(ctx context.Context, id, slug string) (*domain.KPISet, error) {
	s, err := ds.session(id)
	if err != nil {
		return nil, err
	}
	schema, t, err := ds.sheet(s, slug)
	if err != nil {
		return nil, err
	}

	_, finish := ds.telemetry.stage(ctx, "kpis", string(schema.Name))
	filtered, err := windowed(s, schema, t)
	if err != nil {
		finish(err)
		return nil, err
	}

	set := &domain.KPISet{Sheet: schema.Name}
	if schema.LevelType() {
		err = ds.levelKPIs(s, filtered, set)
	} else {
		err = ds.volumeKPIs(s, schema, filtered, set)
	}
	finish(err)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (ds *DashboardService) volumeKPIs(s *session.Session, schema domain.SheetSchema, t *dataprocessing.Table, set *domain.KPISet) error {
	values := valueColumns(schema, t)
	target := cumulativeColumn(schema)
	withTotal, err := dataprocessing.AddCumulative(t, domain.ColumnDate, values, target)
	if err != nil {
		return err
	}

	var current, cumulative float64
	var last *time.Time
	if pos := dataprocessing.Latest(withTotal, domain.ColumnDate); pos >= 0 {
		current = dataprocessing.RowSums(withTotal, values)[pos]
		cumulative = withTotal.Value(pos, target).FloatOrZero()
		if d, ok := withTotal.Value(pos, domain.ColumnDate).Time(); ok {
			last = &d
		}
	}

	wells, err := ds.wellsInOperation(s)
	if err != nil {
		return err
	}

	set.LastRecord = last
	set.Cards = []domain.KPI{
		{Key: KPICurrentValue, Title: currentValueTitle(schema), Value: current, Unit: "L", Color: colorValue},
		{Key: KPIWellsInOperation, Title: "Nº de Poços em Operação", Value: float64(wells), Color: colorWells},
		{Key: KPICurrentCumulative, Title: "Volume Acumulado Atual", Value: cumulative, Unit: "L", Color: colorCumulative},
		{Key: KPIDaysWithoutRecord, Title: "Dias Sem Registro", Value: float64(ds.daysWithout(last)), Unit: "dias", Color: colorStale},
	}
	return nil
}

func (ds *DashboardService) levelKPIs(s *session.Session, t *dataprocessing.Table, set *domain.KPISet) error {
	var last *time.Time
	if pos := dataprocessing.Latest(t, domain.ColumnDate); pos >= 0 {
		if d, ok := t.Value(pos, domain.ColumnDate).Time(); ok {
			last = &d
		}
	}
	wells, err := ds.wellsInOperation(s)
	if err != nil {
		return err
	}

	set.LastRecord = last
	set.Cards = []domain.KPI{
		{Key: KPIMonitoredWells, Title: "Poços Monitorados", Value: float64(len(dataprocessing.DistinctText(t, domain.ColumnWell))), Color: colorValue},
		{Key: KPIWellsInOperation, Title: "Nº de Poços em Operação", Value: float64(wells), Color: colorWells},
		{Key: KPIDaysWithoutRecord, Title: "Dias Sem Registro", Value: float64(ds.daysWithout(last)), Unit: "dias", Color: colorStale},
	}
	return nil
}

// wellsInOperation counts the wells with a non-zero free-phase reading in the
// current window. Sessions without the FL sheet report 0.
func (ds *DashboardService) wellsInOperation(s *session.Session) (int, error) {
	schema, ok := domain.SchemaFor(domain.SheetFreePhase)
	if !ok {
		return 0, nil
	}
	t, ok := s.Table(domain.SheetFreePhase)
	if !ok {
		return 0, nil
	}
	filtered, err := windowed(s, schema, t)
	if err != nil {
		return 0, fmt.Errorf("wells in operation: %w", err)
	}
	return dataprocessing.ActiveEntities(filtered, domain.ColumnWell, readingColumns), nil
}

func (ds *DashboardService) daysWithout(last *time.Time) int {
	if last == nil {
		return 0
	}
	return dataprocessing.DaysSince(*last, ds.now())
}

func currentValueTitle(schema domain.SheetSchema) string {
	switch schema.Name {
	case domain.SheetVolumePumped:
		return "Volume Bombeado Atual"
	case domain.SheetProductVolume:
		return "Volume Produto Atual"
	default:
		return "Volume Atual"
	}
}
