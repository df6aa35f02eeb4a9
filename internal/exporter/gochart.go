package exporter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fielddash/internal/charts"
	"fielddash/pkg/contracts/domain"
)

const maxXLabels = 12

// GoChartRasterizer draws charts in-process with go-chart. It needs no
// browser, so it is always available; bars are drawn as filled areas.
type GoChartRasterizer struct {
	Width  int
	Height int
}

// NewGoChartRasterizer creates a rasterizer producing width × height images
func NewGoChartRasterizer(width, height int) *GoChartRasterizer {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 600
	}
	return &GoChartRasterizer{Width: width, Height: height}
}

func (g *GoChartRasterizer) Name() string { return "gochart" }

func (g *GoChartRasterizer) Available() bool { return true }

// Rasterize renders the chart as PNG
func (g *GoChartRasterizer) Rasterize(ctx context.Context, spec *domain.ChartSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Empty() {
		return nil, fmt.Errorf("chart %s has no points", spec.ID)
	}

	labels := mergeLabels(spec.Series)
	position := make(map[string]float64, len(labels))
	for i, l := range labels {
		position[l] = float64(i)
	}

	dual := spec.Y2Axis != nil
	series := make([]chart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		xs := make([]float64, 0, s.Len())
		ys := make([]float64, 0, s.Len())
		for i, y := range s.Y {
			if i < len(s.X) {
				xs = append(xs, position[s.X[i]])
				ys = append(ys, y)
			}
		}
		cs := chart.ContinuousSeries{
			Name:    s.Name,
			Style:   seriesStyle(s),
			XValues: xs,
			YValues: ys,
		}
		// go-chart draws its primary axis on the right
		if dual && s.Axis != "y2" {
			cs.YAxis = chart.YAxisSecondary
		}
		series = append(series, cs)
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      g.Width,
		Height:     g.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  spec.XAxis.Title,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
			Ticks: xTicks(labels),
		},
		Series: series,
	}
	if dual {
		ch.YAxisSecondary = yAxis(spec.YAxis, spec.Series, "y")
		ch.YAxis = yAxis(*spec.Y2Axis, spec.Series, "y2")
	} else {
		ch.YAxis = yAxis(spec.YAxis, spec.Series, "y")
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart %s: %w", spec.ID, err)
	}
	return buf.Bytes(), nil
}

func seriesStyle(s domain.Series) chart.Style {
	c := drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))
	st := chart.Style{StrokeColor: c, StrokeWidth: 3}
	switch s.Mode {
	case domain.SeriesBar:
		st.FillColor = c.WithAlpha(110)
		st.StrokeWidth = 1
	case domain.SeriesLinesMarkers:
		st.DotColor = c
		st.DotWidth = 4
	}
	return st
}

func yAxis(a domain.Axis, series []domain.Series, axis string) chart.YAxis {
	out := chart.YAxis{Name: a.Title}
	if len(a.Range) == 2 {
		out.Range = &chart.ContinuousRange{Min: a.Range[0], Max: a.Range[1]}
	} else {
		var ys []float64
		for _, s := range series {
			if s.Axis == axis || (axis == "y" && s.Axis == "") {
				ys = append(ys, s.Y...)
			}
		}
		sc := charts.NewScale(ys, charts.DefaultPadding)
		out.Range = &chart.ContinuousRange{Min: sc.Low, Max: sc.High}
	}
	for i, v := range a.TickValues {
		label := charts.FormatTick(v)
		if i < len(a.TickText) {
			label = a.TickText[i]
		}
		out.Ticks = append(out.Ticks, chart.Tick{Value: v, Label: label})
	}
	return out
}

func xTicks(labels []string) []chart.Tick {
	step := (len(labels) + maxXLabels - 1) / maxXLabels
	if step < 1 {
		step = 1
	}
	var ticks []chart.Tick
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}

// mergeLabels unions the x labels of every series, keeping each series' own order
func mergeLabels(series []domain.Series) []string {
	var out []string
	index := make(map[string]bool)
	for _, s := range series {
		prev := -1
		for _, l := range s.X {
			if index[l] {
				for i, existing := range out {
					if existing == l {
						prev = i
						break
					}
				}
				continue
			}
			at := prev + 1
			out = append(out, "")
			copy(out[at+1:], out[at:])
			out[at] = l
			index[l] = true
			prev = at
		}
	}
	return out
}
