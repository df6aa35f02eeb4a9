package charts

import (
	"fmt"

	"fielddash/internal/dataprocessing"
	"fielddash/pkg/contracts/domain"
)

// Default presentation settings for dual-axis charts
const (
	DefaultPrimaryColor   = "#156082"
	DefaultSecondaryColor = "#c44d15"
	DefaultTickCount      = 5
	DefaultPadding        = 0.08
)

// DualAxisOptions configures BuildDualAxis
type DualAxisOptions struct {
	// Key names the logical chart for ID derivation; Title and Y are used when empty
	Key string
	X   string
	// SortKey orders the rows; defaults to X. Aggregated tables sort on the
	// bucket-start column while X shows the period label.
	SortKey        string
	Y              string
	Title          string
	PrimaryColor   string
	SecondaryColor string
	// TickCount is the number of gridlines per axis; zero or less means
	// DefaultTickCount
	TickCount int
	// Padding is the share of the span added above and below each axis; nil
	// means DefaultPadding, and an explicit zero disables padding
	Padding *float64
}

func (o DualAxisOptions) withDefaults() DualAxisOptions {
	if o.SortKey == "" {
		o.SortKey = o.X
	}
	if o.PrimaryColor == "" {
		o.PrimaryColor = DefaultPrimaryColor
	}
	if o.SecondaryColor == "" {
		o.SecondaryColor = DefaultSecondaryColor
	}
	if o.TickCount <= 0 {
		o.TickCount = DefaultTickCount
	}
	if o.Padding == nil || *o.Padding < 0 {
		padding := DefaultPadding
		o.Padding = &padding
	}
	if o.Title == "" {
		o.Title = o.Y
	}
	if o.Key == "" {
		o.Key = o.Title + "|" + o.Y
	}
	return o
}

// BuildDualAxis pairs the individual values of Y (bars, left axis) with their
// running total (line with markers, right axis).
//
// Rows are ordered by the sort key and the leading run of exact zeros is
// trimmed. Both axes are padded by Padding × span, and the right-axis ticks are
// the affine image of the left-axis ticks, so gridlines line up across axes.
// A table without rows gives an empty chart with [0, 1] based ranges.
func BuildDualAxis(t *dataprocessing.Table, opts DualAxisOptions) (*domain.ChartSpec, error) {
	opts = opts.withDefaults()
	for _, c := range []string{opts.X, opts.SortKey, opts.Y} {
		if t.Len() > 0 && !t.HasColumn(c) {
			return nil, &dataprocessing.MissingColumnError{Column: c}
		}
	}

	sorted := t.SortBy(opts.SortKey)
	values := sorted.Floats(opts.Y)
	labels := axisLabels(sorted, opts.X)

	start := leadingZeros(values)
	values, labels = values[start:], labels[start:]
	running := dataprocessing.RunningTotal(values)

	left := NewScale(values, *opts.Padding)
	right := NewScale(running, *opts.Padding)

	leftTicks := left.Ticks(opts.TickCount)
	rightTicks := make([]float64, len(leftTicks))
	leftText := make([]string, len(leftTicks))
	rightText := make([]string, len(leftTicks))
	for i, v := range leftTicks {
		rightTicks[i] = left.MapTo(right, v)
		leftText[i] = FormatTick(v)
		rightText[i] = FormatInteger(rightTicks[i])
	}

	return &domain.ChartSpec{
		ID:    ChartID(string(domain.ChartDualAxis), opts.Key),
		Kind:  domain.ChartDualAxis,
		Title: fmt.Sprintf("%s - Valores Individuais vs Acumulados", opts.Title),
		XAxis: domain.Axis{Title: opts.X},
		YAxis: domain.Axis{
			Title:      fmt.Sprintf("%s (Individual)", opts.Title),
			Range:      []float64{left.Low, left.High},
			TickValues: leftTicks,
			TickText:   leftText,
			Side:       "left",
		},
		Y2Axis: &domain.Axis{
			Title:      fmt.Sprintf("%s (Acumulado)", opts.Title),
			Range:      []float64{right.Low, right.High},
			TickValues: rightTicks,
			TickText:   rightText,
			Side:       "right",
		},
		Series: []domain.Series{
			{
				Name:  fmt.Sprintf("%s Individual", opts.Title),
				Mode:  domain.SeriesBar,
				Axis:  "y",
				Color: opts.PrimaryColor,
				X:     labels,
				Y:     values,
			},
			{
				Name:  fmt.Sprintf("%s Acumulado", opts.Title),
				Mode:  domain.SeriesLinesMarkers,
				Axis:  "y2",
				Color: opts.SecondaryColor,
				X:     labels,
				Y:     running,
			},
		},
	}, nil
}

// leadingZeros returns the length of the leading run of exact zeros. A series
// of zeros only is kept whole.
func leadingZeros(values []float64) int {
	for i, v := range values {
		if v != 0 {
			return i
		}
	}
	return 0
}

func axisLabels(t *dataprocessing.Table, column string) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.Value(i, column).String()
	}
	return out
}
