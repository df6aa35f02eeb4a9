// Package exporter produces the downloadable artifacts of the dashboard.
//
// This package contains four main components:
//
// HTML: HTMLRenderer renders chart specifications as Plotly fragments;
// HTMLBundle concatenates them into a single document.
//
// Images: ImageBundle rasterizes charts through a Rasterizer and zips them as
// grafico_<n>.png. ChromeRasterizer screenshots the Plotly rendering with
// headless Chrome; GoChartRasterizer draws in-process with go-chart. When no
// rasterizer is available the result carries a notice instead of an archive.
//
// Spreadsheets: WorkbookBytes writes a table to a single-sheet xlsx named
// after the download file; ChartsWorkbook dumps chart traces.
//
// CSV: WriteTable writes a table as UTF-8 CSV with a BOM for Excel.
//
// Example usage:
//
//	page, err := exporter.HTMLBundle(specs)
//
//	r := exporter.FirstAvailable(exporter.NewChromeRasterizer(opts), exporter.NewGoChartRasterizer(1200, 600))
//	res, err := exporter.ImageBundle(ctx, r, specs, 2)
//	if !res.Available {
//	    show(res.Notice)
//	}
package exporter
