package domain

// ChartKind identifies how a chart specification should be drawn
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartLine     ChartKind = "line"
	ChartDualAxis ChartKind = "dual_axis"
)

// SeriesMode mirrors the trace modes understood by the front-end renderer
type SeriesMode string

const (
	SeriesBar          SeriesMode = "bar"
	SeriesLines        SeriesMode = "lines"
	SeriesLinesMarkers SeriesMode = "lines+markers"
)

// ChartSpec is a renderer-agnostic chart description.
// ID is stable for the same logical chart so the front-end can re-render in place.
type ChartSpec struct {
	ID     string    `json:"id"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XAxis  Axis      `json:"x_axis"`
	YAxis  Axis      `json:"y_axis"`
	Y2Axis *Axis     `json:"y2_axis,omitempty"`
	Series []Series  `json:"series"`
}

// Axis describes one chart axis. TickValues/TickText are only set when the
// producer pins tick positions (dual-axis charts).
type Axis struct {
	Title      string    `json:"title"`
	Range      []float64 `json:"range,omitempty"`
	TickValues []float64 `json:"tick_values,omitempty"`
	TickText   []string  `json:"tick_text,omitempty"`
	Side       string    `json:"side,omitempty"`
}

// Series is one trace in a chart
type Series struct {
	Name  string     `json:"name"`
	Mode  SeriesMode `json:"mode"`
	Axis  string     `json:"axis"`
	Color string     `json:"color"`
	X     []string   `json:"x"`
	Y     []float64  `json:"y"`
}

// Len returns the number of points in the series
func (s Series) Len() int {
	return len(s.Y)
}

// Empty reports whether every series of the chart has no points
func (c *ChartSpec) Empty() bool {
	for _, s := range c.Series {
		if s.Len() > 0 {
			return false
		}
	}
	return true
}
