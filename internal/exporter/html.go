package exporter

import (
	"bytes"
	"fmt"
	"html/template"

	"fielddash/pkg/contracts/domain"
)

// DefaultPlotlyURL is the script loaded by exported documents
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

const fragmentTemplate = `<div id="chart-{{.ID}}" class="chart" style="width:100%;height:{{.Height}}px"></div>
<script>Plotly.newPlot("chart-{{.ID}}", {{.Data}}, {{.Layout}}, {"responsive": true, "displaylogo": false});</script>
`

const documentTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
</head>
<body>
{{range .Fragments}}{{.}}{{end}}</body>
</html>
`

var (
	fragmentTmpl = template.Must(template.New("fragment").Parse(fragmentTemplate))
	documentTmpl = template.Must(template.New("document").Parse(documentTemplate))
)

// HTMLRenderer renders chart specifications as Plotly markup
type HTMLRenderer struct {
	PlotlyURL string
	Height    int
}

// NewHTMLRenderer creates a renderer; an empty URL selects DefaultPlotlyURL
func NewHTMLRenderer(plotlyURL string, height int) *HTMLRenderer {
	if plotlyURL == "" {
		plotlyURL = DefaultPlotlyURL
	}
	if height <= 0 {
		height = 500
	}
	return &HTMLRenderer{PlotlyURL: plotlyURL, Height: height}
}

// Fragment renders one chart as a div plus its plotting script
func (r *HTMLRenderer) Fragment(spec *domain.ChartSpec) (template.HTML, error) {
	data, layout := PlotlyFigure(spec)
	var buf bytes.Buffer
	err := fragmentTmpl.Execute(&buf, map[string]interface{}{
		"ID":     spec.ID,
		"Height": r.Height,
		"Data":   data,
		"Layout": layout,
	})
	if err != nil {
		return "", fmt.Errorf("render chart %s: %w", spec.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// Document renders a standalone page holding every chart in order
func (r *HTMLRenderer) Document(title string, charts []*domain.ChartSpec) ([]byte, error) {
	fragments := make([]template.HTML, 0, len(charts))
	for _, c := range charts {
		f, err := r.Fragment(c)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}

	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, map[string]interface{}{
		"Title":     title,
		"PlotlyURL": r.PlotlyURL,
		"Fragments": fragments,
	})
	if err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLBundle concatenates every chart into one HTML document
func HTMLBundle(charts []*domain.ChartSpec) ([]byte, error) {
	return NewHTMLRenderer("", 0).Document("Gráficos", charts)
}

// PlotlyFigure converts a chart specification into Plotly data and layout
func PlotlyFigure(spec *domain.ChartSpec) ([]map[string]interface{}, map[string]interface{}) {
	data := make([]map[string]interface{}, 0, len(spec.Series))
	for _, s := range spec.Series {
		trace := map[string]interface{}{
			"name": s.Name,
			"x":    s.X,
			"y":    s.Y,
		}
		if s.Axis == "y2" {
			trace["yaxis"] = "y2"
		}
		switch s.Mode {
		case domain.SeriesBar:
			trace["type"] = "bar"
			trace["marker"] = map[string]interface{}{"color": s.Color}
		default:
			trace["type"] = "scatter"
			trace["mode"] = string(s.Mode)
			trace["line"] = map[string]interface{}{"color": s.Color, "width": 3}
			trace["marker"] = map[string]interface{}{"size": 6}
		}
		data = append(data, trace)
	}

	layout := map[string]interface{}{
		"title":     map[string]interface{}{"text": spec.Title},
		"xaxis":     map[string]interface{}{"title": map[string]interface{}{"text": spec.XAxis.Title}, "tickangle": -45},
		"yaxis":     plotlyAxis(spec.YAxis),
		"hovermode": "x unified",
		"dragmode":  "zoom",
		"margin":    map[string]interface{}{"b": 100},
		"legend": map[string]interface{}{
			"orientation": "h",
			"yanchor":     "top",
			"y":           -0.3,
			"xanchor":     "center",
			"x":           0.5,
			"title":       map[string]interface{}{"text": "Séries"},
		},
	}
	if spec.Y2Axis != nil {
		y2 := plotlyAxis(*spec.Y2Axis)
		y2["overlaying"] = "y"
		y2["side"] = "right"
		y2["showgrid"] = false
		layout["yaxis2"] = y2
	}
	return data, layout
}

func plotlyAxis(a domain.Axis) map[string]interface{} {
	out := map[string]interface{}{
		"title": map[string]interface{}{"text": a.Title},
	}
	if len(a.Range) == 2 {
		out["range"] = a.Range
	}
	if len(a.TickValues) > 0 {
		out["tickmode"] = "array"
		out["tickvals"] = a.TickValues
		out["ticktext"] = a.TickText
	}
	return out
}
