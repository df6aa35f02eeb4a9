// Package charts turns processed tables into renderer-agnostic chart
// specifications (domain.ChartSpec).
//
// BuildDualAxis pairs an individual series with its running total on two
// independently scaled axes whose ticks line up; BuildSeries covers plain bar
// and line charts. Chart IDs are derived from the chart's logical key, so the
// same chart keeps its ID across filter changes.
package charts
