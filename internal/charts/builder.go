package charts

import (
	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

// Palette is cycled through when a chart has one series per entity
var Palette = []string{
	"#156082", "#c44d15", "#0571ED", "#2EE43D", "#DD7D23", "#D7263D",
	"#6C4AB6", "#1B998B", "#8F6A45", "#5D6D7E",
}

// SeriesOptions configures BuildSeries
type SeriesOptions struct {
	Key     string
	Kind    domain.ChartKind
	X       string
	SortKey string
	Y       string
	// GroupBy splits the rows into one series per distinct value
	GroupBy string
	Title   string
	YTitle  string
	Colors  []string
}

// BuildSeries builds a single-axis bar or line chart of Y against X
func BuildSeries(t *dataprocessing.Table, opts SeriesOptions) (*domain.ChartSpec, error) {
	if opts.Kind == "" {
		opts.Kind = domain.ChartBar
	}
	if opts.SortKey == "" {
		opts.SortKey = opts.X
	}
	if opts.YTitle == "" {
		opts.YTitle = opts.Y
	}
	if len(opts.Colors) == 0 {
		opts.Colors = Palette
	}
	if opts.Key == "" {
		opts.Key = opts.Title + "|" + opts.Y
	}
	required := []string{opts.X, opts.SortKey, opts.Y}
	if opts.GroupBy != "" {
		required = append(required, opts.GroupBy)
	}
	for _, c := range required {
		if t.Len() > 0 && !t.HasColumn(c) {
			return nil, &dataprocessing.MissingColumnError{Column: c}
		}
	}

	mode := domain.SeriesBar
	if opts.Kind == domain.ChartLine {
		mode = domain.SeriesLinesMarkers
	}

	sorted := t.SortBy(opts.SortKey)
	groups := []string{""}
	if opts.GroupBy != "" {
		groups = dataprocessing.DistinctText(sorted, opts.GroupBy)
	}

	spec := &domain.ChartSpec{
		ID:    ChartID(string(opts.Kind), opts.Key),
		Kind:  opts.Kind,
		Title: opts.Title,
		XAxis: domain.Axis{Title: opts.X},
		YAxis: domain.Axis{Title: opts.YTitle, Side: "left"},
	}
	for i, g := range groups {
		part := sorted
		name := opts.Y
		if opts.GroupBy != "" {
			part = dataprocessing.FilterIn(sorted, opts.GroupBy, []string{g})
			name = g
		}
		spec.Series = append(spec.Series, domain.Series{
			Name:  name,
			Mode:  mode,
			Axis:  "y",
			Color: opts.Colors[i%len(opts.Colors)],
			X:     axisLabels(part, opts.X),
			Y:     part.Floats(opts.Y),
		})
	}
	return spec, nil
}
