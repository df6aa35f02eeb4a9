package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fielddash/internal/dataprocessing"
	"fielddash/internal/exporter"
	"fielddash/pkg/contracts/domain"
)

// ExportFormat selects what Export produces
type ExportFormat string

const (
	FormatHTML      ExportFormat = "html"
	FormatPNG       ExportFormat = "png"
	FormatXLSX      ExportFormat = "xlsx"
	FormatCSV       ExportFormat = "csv"
	FormatChartData ExportFormat = "chart-data"
)

// ExportFormats lists every supported format
func ExportFormats() []ExportFormat {
	return []ExportFormat{FormatHTML, FormatPNG, FormatXLSX, FormatCSV, FormatChartData}
}

// ParseExportFormat validates a format name
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ExportFormats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ExportResult carries either a downloadable artifact or a notice for the
// user (missing selection, image export unavailable).
type ExportResult struct {
	Status   string             `json:"status"`
	Notice   string             `json:"notice,omitempty"`
	Artifact *exporter.Artifact `json:"-"`
	Files    []string           `json:"files,omitempty"`
}

// Export produces a download of the current sheet view
func (ds *DashboardService) Export(ctx context.Context, id, slug string, format ExportFormat) (result *ExportResult, err error) {
	s, err := ds.session(id)
	if err != nil {
		return nil, err
	}
	schema, t, err := ds.sheet(s, slug)
	if err != nil {
		return nil, err
	}

	ctx, finish := ds.telemetry.stage(ctx, "export", string(schema.Name))
	defer func() {
		finish(err)
		status := "failure"
		if err == nil {
			status = result.Status
		}
		ds.telemetry.recordExport(ctx, format, status)
	}()

	switch format {
	case FormatXLSX, FormatCSV:
		filtered, err := windowed(s, schema, t)
		if err != nil {
			return nil, err
		}
		return tableExport(filtered, schema, format)

	case FormatHTML, FormatPNG, FormatChartData:
		charts, err := ds.buildCharts(ctx, s, slug)
		if err != nil {
			return nil, err
		}
		if charts.Status != StatusOK {
			return &ExportResult{Status: charts.Status, Notice: charts.Message}, nil
		}
		return ds.chartExport(ctx, schema, charts.Charts, format)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func tableExport(t *dataprocessing.Table, schema domain.SheetSchema, format ExportFormat) (*ExportResult, error) {
	name := fmt.Sprintf("%s.%s", schema.Slug, format)
	if format == FormatCSV {
		var buf bytes.Buffer
		if err := exporter.WriteTable(&buf, t); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
		return artifactResult(name, exporter.ContentTypeCSV, buf.Bytes()), nil
	}
	data, err := exporter.WorkbookBytes(t, name)
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return artifactResult(name, exporter.ContentTypeXLSX, data), nil
}

func (ds *DashboardService) chartExport(ctx context.Context, schema domain.SheetSchema, charts []*domain.ChartSpec, format ExportFormat) (*ExportResult, error) {
	switch format {
	case FormatHTML:
		data, err := ds.html.Document(fmt.Sprintf("Gráficos de %s", schema.Name), charts)
		if err != nil {
			return nil, err
		}
		return artifactResult(fmt.Sprintf("graficos_%s.html", schema.Slug), exporter.ContentTypeHTML, data), nil

	case FormatChartData:
		data, err := exporter.ChartsWorkbook(charts)
		if err != nil {
			return nil, err
		}
		return artifactResult(fmt.Sprintf("graficos_%s.xlsx", schema.Slug), exporter.ContentTypeXLSX, data), nil
	}

	images, err := exporter.ImageBundle(ctx, ds.rasterizer, charts, ds.limit)
	if err != nil {
		return nil, err
	}
	if !images.Available {
		ds.logger.InfoContext(ctx, "image export skipped",
			slog.String("rasterizer", ds.rasterizer.Name()),
			slog.String("notice", images.Notice))
		return &ExportResult{Status: StatusUnavailable, Notice: images.Notice}, nil
	}
	res := artifactResult(fmt.Sprintf("graficos_%s.zip", schema.Slug), exporter.ContentTypeZIP, images.Archive)
	res.Files = images.Files
	return res, nil
}

// StatusUnavailable marks an export the server cannot produce
const StatusUnavailable = "unavailable"

func artifactResult(name, contentType string, data []byte) *ExportResult {
	return &ExportResult{
		Status:   StatusOK,
		Artifact: &exporter.Artifact{FileName: name, ContentType: contentType, Data: data},
		Files:    []string{name},
	}
}
